package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
)

func TestRefreshStreaks(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u, p := onboard(t, st)
	svc := NewUserService(st, testLogger())

	today := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	for _, d := range []time.Time{
		today.AddDate(0, 0, -2),
		today.AddDate(0, 0, -1),
		today,
		today.AddDate(0, 0, -10),
	} {
		if _, err := st.Posts().Create(ctx, backdatedPost(p.ID, d, "entry")); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	current, longest, err := svc.RefreshStreaks(ctx, u.ID, today)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if current != 3 || longest != 3 {
		t.Fatalf("streaks = %d/%d, want 3/3", current, longest)
	}

	got, err := st.Users().Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentStreak != 3 || got.LongestStreak != 3 {
		t.Fatalf("stored streaks = %d/%d", got.CurrentStreak, got.LongestStreak)
	}
}

func TestExportAccount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, p := onboard(t, st)
	svc := NewUserService(st, testLogger())

	now := time.Now().UTC()
	post := backdatedPost(p.ID, now.Add(-time.Hour), "exported")
	post.PostType = model.PostTypePhoto
	post.Media = []model.MediaItem{{
		Type:     model.MediaTypePhoto,
		Filename: "sunrise.jpg",
		FileSize: 2048,
	}}
	created, err := st.Posts().Create(ctx, post)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := st.Memories().Create(ctx, &model.Memory{
		Post:        *created,
		Type:        model.RandomThrowback(),
		PresentedAt: now,
	}); err != nil {
		t.Fatalf("seed memory: %v", err)
	}

	export, err := svc.ExportAccount(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.User == nil || export.User.Name != "Ann" {
		t.Fatalf("user missing from export: %+v", export.User)
	}
	if len(export.Personas) != 1 || len(export.Posts) != 1 || len(export.Media) != 1 {
		t.Fatalf("export sizes: personas=%d posts=%d media=%d",
			len(export.Personas), len(export.Posts), len(export.Media))
	}
	if export.Memories == nil || export.Memories.Total != 1 {
		t.Fatalf("memory stats missing: %+v", export.Memories)
	}

	// The snapshot must serialize cleanly; it is the app's backup format.
	if _, err := json.Marshal(export); err != nil {
		t.Fatalf("marshal: %v", err)
	}
}

func TestExportAccountWithoutUser(t *testing.T) {
	st := newTestStore(t)
	svc := NewUserService(st, testLogger())

	if _, err := svc.ExportAccount(context.Background()); !model.IsNotFoundError(err) {
		t.Fatalf("want not-found error, got %v", err)
	}
}

func TestUpdateProfileValidates(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u, _ := onboard(t, st)
	svc := NewUserService(st, testLogger())

	bio := "keeps a journal"
	updated, err := svc.UpdateProfile(ctx, u.ID, "Annette", &bio, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Annette" || updated.Bio == nil || *updated.Bio != bio {
		t.Fatalf("profile not applied: %+v", updated)
	}

	if _, err := svc.UpdateProfile(ctx, u.ID, "A", nil, nil); !model.IsValidationError(err) {
		t.Fatalf("short name should fail validation, got %v", err)
	}
}

func TestDeleteAccountWipesEverything(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u, p := onboard(t, st)
	svc := NewUserService(st, testLogger())

	if _, err := st.Posts().Create(ctx, backdatedPost(p.ID, time.Now().UTC(), "entry")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteAccount(ctx, u.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	has, err := st.Users().HasUser(ctx)
	if err != nil {
		t.Fatalf("has user: %v", err)
	}
	if has {
		t.Fatal("user should be gone")
	}
	posts, err := st.Posts().List(ctx, store.PostFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("%d posts survived account deletion", len(posts))
	}
}
