// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/streamvault/internal/config"
	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/recommend"
	"github.com/tomtom215/streamvault/internal/store"
)

// fakeGenerator records Generate calls and can be told to fail for
// specific profiles.
type fakeGenerator struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *fakeGenerator) Generate(_ context.Context, profileID string) (*recommend.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, profileID)
	if f.fail[profileID] {
		return nil, errors.New("boom")
	}
	return &recommend.Result{}, nil
}

func (f *fakeGenerator) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func fastConfig() config.RefreshConfig {
	return config.RefreshConfig{
		Enabled:           true,
		Interval:          time.Minute,
		ProfilesPerSecond: 10000,
		MaxPerRun:         100,
	}
}

func newTestWorker(t *testing.T, cfg config.RefreshConfig) (*Worker, *store.Memory, *fakeGenerator) {
	t.Helper()
	mem := store.NewMemory()
	gen := &fakeGenerator{fail: map[string]bool{}}
	w, err := NewWorker(mem, gen, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	return w, mem, gen
}

func seedWatch(t *testing.T, mem *store.Memory, profileID string, at time.Time) {
	t.Helper()
	err := mem.InsertOne(context.Background(), store.ColWatchHistory, models.WatchHistory{
		ID:          models.NewID(),
		ProfileID:   profileID,
		ContentID:   "c1",
		Progress:    50,
		Status:      models.StatusWatching,
		LastWatched: at,
		CreatedAt:   at,
	})
	if err != nil {
		t.Fatalf("seed watch history: %v", err)
	}
}

func seedReview(t *testing.T, mem *store.Memory, profileID string, at time.Time) {
	t.Helper()
	err := mem.InsertOne(context.Background(), store.ColReviews, models.Review{
		ID:        models.NewID(),
		ProfileID: profileID,
		ContentID: "c1",
		Rating:    4,
		CreatedAt: at,
		UpdatedAt: at,
	})
	if err != nil {
		t.Fatalf("seed review: %v", err)
	}
}

func TestNewWorkerValidation(t *testing.T) {
	mem := store.NewMemory()
	gen := &fakeGenerator{}

	cases := []struct {
		name string
		s    Store
		g    Generator
		cfg  config.RefreshConfig
	}{
		{"nil store", nil, gen, fastConfig()},
		{"nil generator", mem, nil, fastConfig()},
		{"zero interval", mem, gen, config.RefreshConfig{ProfilesPerSecond: 1, MaxPerRun: 1}},
		{"zero rate", mem, gen, config.RefreshConfig{Interval: time.Minute, MaxPerRun: 1}},
		{"zero cap", mem, gen, config.RefreshConfig{Interval: time.Minute, ProfilesPerSecond: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewWorker(tc.s, tc.g, tc.cfg, zerolog.Nop()); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := NewWorker(mem, gen, fastConfig(), zerolog.Nop()); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestSweepRegeneratesActiveProfiles(t *testing.T) {
	w, mem, gen := newTestWorker(t, fastConfig())

	base := time.Now().UTC()
	w.lastSweep = base

	seedWatch(t, mem, "p1", base.Add(time.Second))
	seedWatch(t, mem, "p2", base.Add(2*time.Second))
	seedReview(t, mem, "p2", base.Add(3*time.Second))
	seedReview(t, mem, "p3", base.Add(4*time.Second))
	// Stale activity must not trigger a refresh.
	seedWatch(t, mem, "p4", base.Add(-time.Hour))

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	want := []string{"p1", "p2", "p3"}
	got := gen.called()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
}

func TestSweepAdvancesWatermark(t *testing.T) {
	w, mem, gen := newTestWorker(t, fastConfig())

	base := time.Now().UTC()
	w.lastSweep = base.Add(-time.Minute)
	seedWatch(t, mem, "p1", base)

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	if got := gen.called(); len(got) != 1 {
		t.Errorf("calls = %v, want exactly one regeneration", got)
	}
}

func TestSweepHonorsCap(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxPerRun = 2
	w, mem, gen := newTestWorker(t, cfg)

	base := time.Now().UTC()
	w.lastSweep = base
	for i, id := range []string{"p1", "p2", "p3", "p4"} {
		seedWatch(t, mem, id, base.Add(time.Duration(i+1)*time.Second))
	}

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if got := gen.called(); len(got) != 2 {
		t.Errorf("calls = %v, want the first 2 active profiles", got)
	}
}

func TestSweepRetriesDeferredProfiles(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxPerRun = 2
	w, mem, gen := newTestWorker(t, cfg)

	base := time.Now().UTC()
	w.lastSweep = base
	for i, id := range []string{"p1", "p2", "p3", "p4"} {
		seedWatch(t, mem, id, base.Add(time.Duration(i+1)*time.Second))
	}

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	want := []string{"p1", "p2", "p3", "p4"}
	got := gen.called()
	if len(got) != len(want) {
		t.Fatalf("calls across two sweeps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls across two sweeps = %v, want %v", got, want)
		}
	}
}

func TestSweepRetriesFailedProfiles(t *testing.T) {
	w, mem, gen := newTestWorker(t, fastConfig())
	gen.fail["p1"] = true

	base := time.Now().UTC()
	w.lastSweep = base
	seedWatch(t, mem, "p1", base.Add(time.Second))
	seedWatch(t, mem, "p2", base.Add(2*time.Second))

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}

	gen.fail["p1"] = false
	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	want := []string{"p1", "p2", "p1"}
	got := gen.called()
	if len(got) != len(want) {
		t.Fatalf("calls across two sweeps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls across two sweeps = %v, want %v", got, want)
		}
	}
}

func TestSweepSurvivesGeneratorFailure(t *testing.T) {
	w, mem, gen := newTestWorker(t, fastConfig())
	gen.fail["p1"] = true

	base := time.Now().UTC()
	w.lastSweep = base
	seedWatch(t, mem, "p1", base.Add(time.Second))
	seedWatch(t, mem, "p2", base.Add(2*time.Second))

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep should tolerate per-profile failures: %v", err)
	}
	got := gen.called()
	if len(got) != 2 || got[1] != "p2" {
		t.Errorf("calls = %v, want p2 processed after p1 failed", got)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := fastConfig()
	cfg.Interval = 5 * time.Millisecond
	w, mem, gen := newTestWorker(t, cfg)

	w.lastSweep = time.Now().UTC().Add(-time.Minute)
	seedWatch(t, mem, "p1", time.Now().UTC())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for len(gen.called()) == 0 {
		select {
		case <-deadline:
			t.Fatal("worker never swept")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}
