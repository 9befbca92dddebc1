package citadel

import (
	"context"
	"errors"
	"testing"
)

func testEpisodeInput(slug string) EpisodeInput {
	return EpisodeInput{
		Title:       "Episode " + slug,
		Description: "About " + slug,
		VideoURL:    "https://youtube.com/watch?v=" + slug,
		Slug:        slug,
		Notes:       "notes for " + slug,
	}
}

func TestCreateAndGetEpisode(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	in := testEpisodeInput("first-episode")
	created, err := s.CreateEpisode(ctx, in)
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("ID should be assigned")
	}
	if !created.Published {
		t.Error("Published should default to true")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}

	got, err := s.GetEpisodeBySlug(ctx, "first-episode")
	if err != nil {
		t.Fatalf("GetEpisodeBySlug failed: %v", err)
	}
	if got.Title != in.Title {
		t.Errorf("Title = %q, want %q", got.Title, in.Title)
	}
	if got.Description != in.Description {
		t.Errorf("Description = %q, want %q", got.Description, in.Description)
	}
	if got.VideoURL != in.VideoURL {
		t.Errorf("VideoURL = %q, want %q", got.VideoURL, in.VideoURL)
	}
	if got.Notes != in.Notes {
		t.Errorf("Notes = %q, want %q", got.Notes, in.Notes)
	}
}

func TestCreateEpisodeUnpublished(t *testing.T) {
	s := setupTestStore(t)

	in := testEpisodeInput("draft")
	in.Published = ptr(false)
	created, err := s.CreateEpisode(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}
	if created.Published {
		t.Error("Published should be false when explicitly disabled")
	}
}

func TestCreateEpisodeMissingFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	cases := []struct {
		mutate func(*EpisodeInput)
		want   string
	}{
		{func(in *EpisodeInput) { in.Title = "" }, "Missing required field: title"},
		{func(in *EpisodeInput) { in.Description = "" }, "Missing required field: description"},
		{func(in *EpisodeInput) { in.VideoURL = "" }, "Missing required field: video_url"},
		{func(in *EpisodeInput) { in.Slug = "" }, "Missing required field: slug"},
	}
	for _, tc := range cases {
		in := testEpisodeInput("missing")
		tc.mutate(&in)
		_, err := s.CreateEpisode(ctx, in)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if ve.Msg != tc.want {
			t.Errorf("error = %q, want %q", ve.Msg, tc.want)
		}
	}
}

func TestCreateEpisodeDuplicateSlug(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateEpisode(ctx, testEpisodeInput("taken")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := s.CreateEpisode(ctx, testEpisodeInput("taken"))
	if err == nil {
		t.Fatal("expected duplicate slug to fail")
	}
	if !isUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}
}

func TestUpdateEpisodePartial(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.CreateEpisode(ctx, testEpisodeInput("patch-me"))
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}

	updated, err := s.UpdateEpisode(ctx, created.ID, EpisodePatch{
		Title:     ptr("New Title"),
		Published: ptr(false),
	})
	if err != nil {
		t.Fatalf("UpdateEpisode failed: %v", err)
	}
	if updated.Title != "New Title" {
		t.Errorf("Title = %q, want %q", updated.Title, "New Title")
	}
	if updated.Published {
		t.Error("Published should be false after patch")
	}
	// Untouched fields survive the partial update.
	if updated.Description != created.Description {
		t.Errorf("Description changed: %q -> %q", created.Description, updated.Description)
	}
	if updated.Slug != created.Slug {
		t.Errorf("Slug changed: %q -> %q", created.Slug, updated.Slug)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Error("UpdatedAt should not move backwards")
	}
}

func TestUpdateEpisodeEmptyPatch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.CreateEpisode(ctx, testEpisodeInput("no-patch"))
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}

	// An empty patch is a validation failure whether or not the row
	// exists; it is rejected before any lookup.
	for _, id := range []int64{created.ID, 99999} {
		_, err := s.UpdateEpisode(ctx, id, EpisodePatch{})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("id %d: expected ValidationError, got %v", id, err)
		}
		if ve.Msg != "No fields to update" {
			t.Errorf("id %d: error = %q, want %q", id, ve.Msg, "No fields to update")
		}
	}
}

func TestUpdateEpisodeNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.UpdateEpisode(context.Background(), 99999, EpisodePatch{Title: ptr("x")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteEpisode(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.CreateEpisode(ctx, testEpisodeInput("doomed"))
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}

	if err := s.DeleteEpisode(ctx, created.ID); err != nil {
		t.Fatalf("DeleteEpisode failed: %v", err)
	}
	if _, err := s.GetEpisodeBySlug(ctx, "doomed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteEpisode(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListEpisodesPublishedOnly(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateEpisode(ctx, testEpisodeInput("live")); err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}
	draft := testEpisodeInput("hidden")
	draft.Published = ptr(false)
	if _, err := s.CreateEpisode(ctx, draft); err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}

	published, err := s.ListEpisodes(ctx, true)
	if err != nil {
		t.Fatalf("ListEpisodes failed: %v", err)
	}
	if len(published) != 1 || published[0].Slug != "live" {
		t.Errorf("published list = %v, want just live", published)
	}

	all, err := s.ListEpisodes(ctx, false)
	if err != nil {
		t.Fatalf("ListEpisodes failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}
}

func TestListEpisodesOrdering(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	slugs := []string{"old-low", "old-high", "new-high"}
	ids := make(map[string]int64)
	for _, slug := range slugs {
		ep, err := s.CreateEpisode(ctx, testEpisodeInput(slug))
		if err != nil {
			t.Fatalf("CreateEpisode %s failed: %v", slug, err)
		}
		ids[slug] = ep.ID
	}

	// order_index descending first, created_at descending breaks ties.
	fix := func(slug string, orderIndex int, createdAt int64) {
		if _, err := s.db.Exec(
			`UPDATE podcast_episodes SET order_index = ?, created_at = ? WHERE id = ?`,
			orderIndex, createdAt, ids[slug]); err != nil {
			t.Fatalf("fixup %s failed: %v", slug, err)
		}
	}
	fix("old-low", 1, 1000)
	fix("old-high", 3, 2000)
	fix("new-high", 3, 3000)

	got, err := s.ListEpisodes(ctx, false)
	if err != nil {
		t.Fatalf("ListEpisodes failed: %v", err)
	}
	want := []string{"new-high", "old-high", "old-low"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, slug := range want {
		if got[i].Slug != slug {
			t.Errorf("position %d = %q, want %q", i, got[i].Slug, slug)
		}
	}
}

func TestReorderEpisodes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a, err := s.CreateEpisode(ctx, testEpisodeInput("ep-a"))
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}
	b, err := s.CreateEpisode(ctx, testEpisodeInput("ep-b"))
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}

	// A nonexistent id is skipped, not an error for the batch.
	err = s.ReorderEpisodes(ctx, []OrderUpdate{
		{ID: a.ID, OrderIndex: 5},
		{ID: 99999, OrderIndex: 7},
		{ID: b.ID, OrderIndex: 9},
	})
	if err != nil {
		t.Fatalf("ReorderEpisodes failed: %v", err)
	}

	got, err := s.ListEpisodes(ctx, false)
	if err != nil {
		t.Fatalf("ListEpisodes failed: %v", err)
	}
	if got[0].Slug != "ep-b" || got[0].OrderIndex != 9 {
		t.Errorf("first = %q (%d), want ep-b (9)", got[0].Slug, got[0].OrderIndex)
	}
	if got[1].Slug != "ep-a" || got[1].OrderIndex != 5 {
		t.Errorf("second = %q (%d), want ep-a (5)", got[1].Slug, got[1].OrderIndex)
	}
}
