// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/store"
)

// seedBrowseCatalog loads a small mixed catalog for list tests.
func seedBrowseCatalog(ts *testServer) {
	ts.seedCatalogItem("m1", "The Long Road", models.ContentMovie, []int{18}, 4.8, 40)
	ts.seedCatalogItem("m2", "Road Trip", models.ContentMovie, []int{35}, 4.1, 25)
	ts.seedCatalogItem("t1", "Night Watch", models.ContentTVShow, []int{18, 80}, 4.5, 30)
	ts.seedCatalogItem("d1", "Deep Ocean", models.ContentDocumentary, []int{99}, 3.9, 12)
	ts.seedCatalogItem("m3", "Another Story", models.ContentMovie, []int{18}, 3.2, 8)
}

func titles(content []models.Content) []string {
	out := make([]string, len(content))
	for i, c := range content {
		out[i] = c.ID
	}
	return out
}

func TestListContent(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.register("viewer@example.com", "viewer")
	seedBrowseCatalog(ts)

	list := func(t *testing.T, query string, wantStatus int) ([]models.Content, envelope) {
		t.Helper()
		rec, env := ts.do(http.MethodGet, "/api/v1/content"+query, token, nil)
		if rec.Code != wantStatus {
			t.Fatalf("status = %d, want %d (body %s)", rec.Code, wantStatus, rec.Body.String())
		}
		var content []models.Content
		if rec.Code == http.StatusOK {
			decodeData(t, env, &content)
		}
		return content, env
	}

	t.Run("default order is rating descending", func(t *testing.T) {
		content, _ := list(t, "", http.StatusOK)
		want := []string{"m1", "t1", "m2", "d1", "m3"}
		got := titles(content)
		if len(got) != len(want) {
			t.Fatalf("got %d items, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("order = %v, want %v", got, want)
			}
		}
	})

	t.Run("genre filter", func(t *testing.T) {
		content, _ := list(t, "?genre_id=18", http.StatusOK)
		if got := titles(content); len(got) != 3 {
			t.Fatalf("genre 18 matched %v, want m1 t1 m3", got)
		}
	})

	t.Run("content type filter", func(t *testing.T) {
		content, _ := list(t, "?content_type=documentary", http.StatusOK)
		if len(content) != 1 || content[0].ID != "d1" {
			t.Fatalf("documentary filter = %v, want [d1]", titles(content))
		}
	})

	t.Run("title sort ascends", func(t *testing.T) {
		content, _ := list(t, "?sort_by=title", http.StatusOK)
		if content[0].ID != "m3" {
			t.Errorf("first = %s, want m3 (Another Story)", content[0].ID)
		}
	})

	t.Run("search is case-insensitive substring", func(t *testing.T) {
		content, _ := list(t, "?search=road", http.StatusOK)
		got := titles(content)
		if len(got) != 2 {
			t.Fatalf("search matched %v, want m1 and m2", got)
		}
		// Rating order is preserved within matches.
		if got[0] != "m1" || got[1] != "m2" {
			t.Errorf("order = %v, want [m1 m2]", got)
		}
	})

	t.Run("search with offset", func(t *testing.T) {
		content, _ := list(t, "?search=road&offset=1", http.StatusOK)
		if len(content) != 1 || content[0].ID != "m2" {
			t.Fatalf("got %v, want [m2]", titles(content))
		}
	})

	t.Run("pagination", func(t *testing.T) {
		content, env := list(t, "?limit=2&offset=2", http.StatusOK)
		got := titles(content)
		if len(got) != 2 || got[0] != "m2" || got[1] != "d1" {
			t.Fatalf("page = %v, want [m2 d1]", got)
		}
		if env.Meta == nil || env.Meta.Pagination == nil {
			t.Fatal("expected pagination meta")
		}
		if !env.Meta.Pagination.HasMore {
			t.Error("expected has_more on a full page")
		}
	})

	t.Run("invalid content type rejected", func(t *testing.T) {
		list(t, "?content_type=podcast", http.StatusBadRequest)
	})

	t.Run("limit above cap rejected", func(t *testing.T) {
		list(t, "?limit=500", http.StatusBadRequest)
	})
}

func TestListContentReleaseSort(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.register("sorter@example.com", "sorter")

	now := models.Now()
	insert := func(id, title string, released time.Time, avg float64) {
		ts.mustInsert(store.ColContent, models.Content{
			ID:            id,
			Title:         title,
			ContentType:   models.ContentMovie,
			GenreIDs:      []int{18},
			Language:      "en",
			Cast:          []string{},
			AverageRating: avg,
			TotalRatings:  10,
			ReleaseDate:   &released,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	// Rating order would put the older title first.
	insert("c_old", "Vintage Cut", time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC), 4.9)
	insert("c_new", "Fresh Premiere", time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), 3.1)

	rec, env := ts.do(http.MethodGet, "/api/v1/content?sort_by=release_year", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var content []models.Content
	decodeData(t, env, &content)
	got := titles(content)
	if len(got) != 2 || got[0] != "c_new" || got[1] != "c_old" {
		t.Fatalf("order = %v, want newest release first [c_new c_old]", got)
	}
}

func TestGetContent(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.register("getter@example.com", "getter")
	seedBrowseCatalog(ts)

	t.Run("known id", func(t *testing.T) {
		rec, env := ts.do(http.MethodGet, "/api/v1/content/t1", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var got models.Content
		decodeData(t, env, &got)
		if got.Title != "Night Watch" {
			t.Errorf("title = %q, want Night Watch", got.Title)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		rec, env := ts.do(http.MethodGet, "/api/v1/content/"+models.NewID(), token, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		if env.Error == nil || env.Error.Code != ErrCodeNotFound {
			t.Errorf("error = %+v, want code %s", env.Error, ErrCodeNotFound)
		}
	})
}
