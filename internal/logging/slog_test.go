// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newCapturedSlogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(&SlogHandler{logger: NewTestLogger(buf)})
}

func TestSlogHandlerLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func(l *slog.Logger)
		want string
	}{
		{"info", func(l *slog.Logger) { l.Info("m") }, `"level":"info"`},
		{"warn", func(l *slog.Logger) { l.Warn("m") }, `"level":"warn"`},
		{"error", func(l *slog.Logger) { l.Error("m") }, `"level":"error"`},
		{"debug", func(l *slog.Logger) { l.Debug("m") }, `"level":"debug"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newCapturedSlogger(&buf))
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q missing %s", buf.String(), tt.want)
			}
		})
	}
}

func TestSlogHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := newCapturedSlogger(&buf)

	l.Info("started", slog.String("service", "refresh"), slog.Int("workers", 3))

	out := buf.String()
	if !strings.Contains(out, `"service":"refresh"`) {
		t.Errorf("missing string attr in %q", out)
	}
	if !strings.Contains(out, `"workers":3`) {
		t.Errorf("missing int attr in %q", out)
	}
}

func TestSlogHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	l := newCapturedSlogger(&buf).With(slog.String("supervisor", "root")).WithGroup("child")

	l.Info("event", slog.String("name", "worker"))

	out := buf.String()
	if !strings.Contains(out, `"supervisor":"root"`) {
		t.Errorf("missing inherited attr in %q", out)
	}
	if !strings.Contains(out, `"child.name":"worker"`) {
		t.Errorf("missing grouped attr in %q", out)
	}
}
