// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/store"
)

// ListContent returns a filtered, paginated slice of the catalog.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	q := r.URL.Query()
	req := ListContentRequest{
		GenreID:     queryInt(r, "genre_id", 0),
		ContentType: q.Get("content_type"),
		Search:      strings.TrimSpace(q.Get("search")),
		SortBy:      q.Get("sort_by"),
		Limit:       queryInt(r, "limit", 20),
		Offset:      queryInt(r, "offset", 0),
	}
	if !validateRequest(rw, &req) {
		return
	}

	filter := store.Filter{}
	if req.GenreID > 0 {
		filter["genre_ids"] = store.In([]int{req.GenreID})
	}
	if req.ContentType != "" {
		filter["content_type"] = req.ContentType
	}

	sortKey := req.SortBy
	switch sortKey {
	case "":
		sortKey = "average_rating"
	case "release_year":
		// The query value names the year; documents store the full date.
		sortKey = "release_date"
	}
	sort := store.Sort{{Key: sortKey, Desc: sortKey != "title"}}

	opts := &store.FindOptions{Sort: sort}
	if req.Search == "" {
		opts.Limit = int64(req.Limit)
		opts.Skip = int64(req.Offset)
	}

	var content []models.Content
	if err := h.store.Find(r.Context(), store.ColContent, filter, opts, &content); err != nil {
		rw.StoreError(err)
		return
	}

	// Title search matches case-insensitive substrings; it runs over
	// the filtered set, so pagination applies after the match.
	if req.Search != "" {
		needle := strings.ToLower(req.Search)
		matched := content[:0]
		for _, c := range content {
			if strings.Contains(strings.ToLower(c.Title), needle) {
				matched = append(matched, c)
			}
		}
		content = matched
		if req.Offset < len(content) {
			content = content[req.Offset:]
		} else {
			content = content[:0]
		}
		if len(content) > req.Limit {
			content = content[:req.Limit]
		}
	}

	rw.SuccessWithPagination(content, &PaginationMeta{
		Count:   len(content),
		Offset:  req.Offset,
		Limit:   req.Limit,
		HasMore: len(content) == req.Limit,
	})
}

// GetContent returns a single catalog entry.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var content models.Content
	err := h.store.FindOne(r.Context(), store.ColContent, store.Filter{"id": chi.URLParam(r, "contentID")}, &content)
	if err != nil {
		rw.StoreError(err)
		return
	}
	rw.Success(content)
}
