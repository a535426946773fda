// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/store"
)

func TestCreateProfile(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.register("owner@example.com", "owner1")

	t.Run("defaults for adult profile", func(t *testing.T) {
		p := ts.createProfile(token, "Main", "")
		if p.ProfileType != models.ProfileAdult {
			t.Errorf("profile_type = %q, want adult", p.ProfileType)
		}
		if p.MaturityRating != "R" {
			t.Errorf("maturity_rating = %q, want R", p.MaturityRating)
		}
		if p.Language != "en" {
			t.Errorf("language = %q, want en", p.Language)
		}
		if !p.AutoPlayNext || !p.AutoPlayPreviews {
			t.Error("autoplay should default on")
		}
	})

	t.Run("kids profile gets PG rating", func(t *testing.T) {
		p := ts.createProfile(token, "Junior", "kids")
		if p.ProfileType != models.ProfileKids || p.MaturityRating != "PG" {
			t.Errorf("got %s/%s, want kids/PG", p.ProfileType, p.MaturityRating)
		}
	})

	t.Run("teen profile gets PG-13 rating", func(t *testing.T) {
		p := ts.createProfile(token, "Teen", "teen")
		if p.MaturityRating != "PG-13" {
			t.Errorf("maturity_rating = %q, want PG-13", p.MaturityRating)
		}
	})

	t.Run("invalid type rejected", func(t *testing.T) {
		rec, _ := ts.do(http.MethodPost, "/api/v1/profiles", token, map[string]string{
			"name":         "Bad",
			"profile_type": "toddler",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("per-account limit enforced", func(t *testing.T) {
		limitToken, _ := ts.register("full@example.com", "full1")
		for i := 0; i < maxProfilesPerUser; i++ {
			ts.createProfile(limitToken, fmt.Sprintf("P%d", i), "")
		}
		rec, env := ts.do(http.MethodPost, "/api/v1/profiles", limitToken, map[string]string{"name": "One too many"})
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
		if env.Error == nil || env.Error.Code != ErrCodeConflict {
			t.Errorf("error = %+v, want code %s", env.Error, ErrCodeConflict)
		}
	})
}

func TestListProfiles(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.register("lister@example.com", "lister")
	first := ts.createProfile(token, "First", "")
	second := ts.createProfile(token, "Second", "kids")

	otherToken, _ := ts.register("other@example.com", "other1")
	ts.createProfile(otherToken, "Foreign", "")

	rec, env := ts.do(http.MethodGet, "/api/v1/profiles", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got []models.Profile
	decodeData(t, env, &got)
	if len(got) != 2 {
		t.Fatalf("got %d profiles, want 2", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Errorf("order = [%s %s], want [%s %s]", got[0].Name, got[1].Name, first.Name, second.Name)
	}
}

func TestProfileOwnership(t *testing.T) {
	ts := newTestServer(t)
	ownerToken, _ := ts.register("mine@example.com", "mine12")
	profile := ts.createProfile(ownerToken, "Mine", "")
	strangerToken, _ := ts.register("theirs@example.com", "theirs")

	t.Run("foreign profile is forbidden", func(t *testing.T) {
		rec, env := ts.do(http.MethodGet, "/api/v1/profiles/"+profile.ID, strangerToken, nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		if env.Error == nil || env.Error.Code != ErrCodeForbidden {
			t.Errorf("error = %+v, want code %s", env.Error, ErrCodeForbidden)
		}
	})

	t.Run("unknown profile is not found", func(t *testing.T) {
		rec, _ := ts.do(http.MethodGet, "/api/v1/profiles/"+models.NewID(), ownerToken, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("owner reads own profile", func(t *testing.T) {
		rec, env := ts.do(http.MethodGet, "/api/v1/profiles/"+profile.ID, ownerToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var got models.Profile
		decodeData(t, env, &got)
		if got.ID != profile.ID {
			t.Errorf("id = %s, want %s", got.ID, profile.ID)
		}
	})
}

func TestUpdateProfile(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.register("update@example.com", "update1")
	profile := ts.createProfile(token, "Before", "")

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		rec, env := ts.do(http.MethodPut, "/api/v1/profiles/"+profile.ID, token, map[string]string{
			"name": "After",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var got models.Profile
		decodeData(t, env, &got)
		if got.Name != "After" {
			t.Errorf("name = %q, want After", got.Name)
		}
		if got.ProfileType != models.ProfileAdult || got.MaturityRating != "R" {
			t.Errorf("untouched fields changed: %s/%s", got.ProfileType, got.MaturityRating)
		}
	})

	t.Run("type change refreshes maturity rating", func(t *testing.T) {
		rec, env := ts.do(http.MethodPut, "/api/v1/profiles/"+profile.ID, token, map[string]string{
			"profile_type": "kids",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var got models.Profile
		decodeData(t, env, &got)
		if got.ProfileType != models.ProfileKids || got.MaturityRating != "PG" {
			t.Errorf("got %s/%s, want kids/PG", got.ProfileType, got.MaturityRating)
		}
		if got.Name != "After" {
			t.Errorf("name = %q, want After", got.Name)
		}
	})
}

func TestDeleteProfileCascades(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.register("cascade@example.com", "cascad")
	profile := ts.createProfile(token, "Doomed", "")
	ts.seedCatalogItem("c1", "Something", models.ContentMovie, []int{28}, 4.0, 10)

	now := models.Now()
	ts.mustInsert(store.ColWatchHistory, models.WatchHistory{
		ID: models.NewID(), ProfileID: profile.ID, ContentID: "c1",
		Progress: 50, Status: models.StatusWatching, LastWatched: now, CreatedAt: now,
	})
	ts.mustInsert(store.ColMyList, models.MyList{
		ID: models.NewID(), ProfileID: profile.ID, ContentID: "c1", AddedAt: now,
	})
	ts.mustInsert(store.ColReviews, models.Review{
		ID: models.NewID(), ProfileID: profile.ID, ContentID: "c1",
		Rating: 4, CreatedAt: now, UpdatedAt: now,
	})
	ts.mustInsert(store.ColRecommendations, models.Recommendation{
		ID: models.NewID(), ProfileID: profile.ID, ContentID: "c1",
		Score: 0.9, AlgorithmUsed: models.AlgorithmTrending, CreatedAt: now,
	})

	rec, _ := ts.do(http.MethodDelete, "/api/v1/profiles/"+profile.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	ctx := context.Background()
	for _, collection := range []string{
		store.ColProfiles,
		store.ColWatchHistory,
		store.ColMyList,
		store.ColReviews,
		store.ColRecommendations,
	} {
		filter := store.Filter{"profile_id": profile.ID}
		if collection == store.ColProfiles {
			filter = store.Filter{"id": profile.ID}
		}
		n, err := ts.store.CountDocuments(ctx, collection, filter)
		if err != nil {
			t.Fatalf("count %s: %v", collection, err)
		}
		if n != 0 {
			t.Errorf("%s still holds %d rows after delete", collection, n)
		}
	}
}
