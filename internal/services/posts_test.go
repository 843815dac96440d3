package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/waybook/waybook/internal/model"
)

func TestCreatePostBumpsCounter(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u, p := onboard(t, st)
	svc := NewPostService(st, testLogger())

	if _, err := svc.Create(ctx, backdatedPost(p.ID, time.Now().UTC(), "first")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, backdatedPost(p.ID, time.Now().UTC(), "second")); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := st.Users().Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.TotalPosts != 2 {
		t.Fatalf("totalPosts = %d, want 2", got.TotalPosts)
	}
}

func TestCreatePostTierCeilings(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, p := onboard(t, st)
	svc := NewPostService(st, testLogger())

	big := backdatedPost(p.ID, time.Now().UTC(), "huge photo")
	big.PostType = model.PostTypePhoto
	big.Media = []model.MediaItem{{
		Type:     model.MediaTypePhoto,
		Filename: "huge.jpg",
		FileSize: 11 << 20, // over the free 10 MiB ceiling
	}}
	_, err := svc.Create(ctx, big)
	if err == nil {
		t.Fatal("oversized media should be rejected on the free tier")
	}
	if !model.IsValidationError(err) {
		t.Fatalf("want validation error, got %v", err)
	}

	long := backdatedPost(p.ID, time.Now().UTC(), "long memo")
	long.PostType = model.PostTypeVoiceMemo
	secs := 61.0
	long.VoiceMemoSeconds = &secs
	if _, err := svc.Create(ctx, long); err == nil {
		t.Fatal("over-length voice memo should be rejected on the free tier")
	}

	// Nothing was persisted and the counter never moved.
	u, err := st.Users().Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if u.TotalPosts != 0 {
		t.Fatalf("totalPosts = %d, want 0", u.TotalPosts)
	}
}

func TestUpdatePostTierCeilings(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, p := onboard(t, st)
	svc := NewPostService(st, testLogger())

	small := backdatedPost(p.ID, time.Now().UTC(), "modest photo")
	small.PostType = model.PostTypePhoto
	small.Media = []model.MediaItem{{
		Type:     model.MediaTypePhoto,
		Filename: "small.jpg",
		FileSize: 1 << 20,
	}}
	created, err := svc.Create(ctx, small)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Swapping in an over-limit item on update must fail like it would on
	// create; update replaces the media set wholesale.
	created.Media = []model.MediaItem{{
		Type:     model.MediaTypePhoto,
		Filename: "huge.jpg",
		FileSize: 11 << 20,
	}}
	if _, err := svc.Update(ctx, created); !model.IsValidationError(err) {
		t.Fatalf("oversized media on update: want validation error, got %v", err)
	}

	created.Media = nil
	secs := 61.0
	created.VoiceMemoSeconds = &secs
	if _, err := svc.Update(ctx, created); !model.IsValidationError(err) {
		t.Fatalf("over-length memo on update: want validation error, got %v", err)
	}

	// The stored record still holds the original media item.
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Media) != 1 || got.Media[0].Filename != "small.jpg" {
		t.Fatalf("stored media changed: %+v", got.Media)
	}
}

func TestDeletePostSweepsMemoriesAndCounter(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u, p := onboard(t, st)
	svc := NewPostService(st, testLogger())

	post, err := svc.Create(ctx, backdatedPost(p.ID, time.Now().UTC().AddDate(-1, 0, 0), "old"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := st.Memories().Create(ctx, &model.Memory{
		Post:        *post,
		Type:        model.OnThisDay(1),
		PresentedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed memory: %v", err)
	}

	if err := svc.Delete(ctx, post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := st.Users().Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.TotalPosts != 0 {
		t.Fatalf("totalPosts = %d, want 0 after delete", got.TotalPosts)
	}
	if n, err := st.Memories().DeleteForPost(ctx, post.ID); err != nil || n != 0 {
		t.Fatalf("memory rows should already be gone, n=%d err=%v", n, err)
	}

	// Deleting again is a no-op; the counter stays put.
	if err := svc.Delete(ctx, post.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	got, _ = st.Users().Get(ctx, u.ID)
	if got.TotalPosts != 0 {
		t.Fatalf("totalPosts = %d after no-op delete", got.TotalPosts)
	}
}

func TestFeedHidesScheduledPosts(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, p := onboard(t, st)
	svc := NewPostService(st, testLogger())

	now := time.Now().UTC()
	visible, err := svc.Create(ctx, backdatedPost(p.ID, now.Add(-time.Hour), "visible"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	future := now.Add(48 * time.Hour)
	scheduled := backdatedPost(p.ID, now.Add(-time.Minute), "scheduled")
	scheduled.ScheduledFor = &future
	if _, err := svc.Create(ctx, scheduled); err != nil {
		t.Fatalf("create scheduled: %v", err)
	}

	feed, err := svc.Feed(ctx, now, 0, 0)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != visible.ID {
		t.Fatalf("feed should hold only the visible post, got %d", len(feed))
	}

	pending, err := svc.ScheduledPosts(ctx, now)
	if err != nil {
		t.Fatalf("scheduled: %v", err)
	}
	if len(pending) != 1 || pending[0].Caption != "scheduled" {
		t.Fatalf("scheduled list wrong: %d", len(pending))
	}
}

func TestCleanupExpiredRants(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, p := onboard(t, st)
	svc := NewPostService(st, testLogger())

	now := time.Now().UTC()
	expired := backdatedPost(p.ID, now.AddDate(0, 0, -3), "expired rant")
	expired.IsRant = true
	past := now.AddDate(0, 0, -1)
	expired.AutoDeleteDate = &past
	if _, err := svc.Create(ctx, expired); err != nil {
		t.Fatalf("create: %v", err)
	}

	fresh := backdatedPost(p.ID, now.Add(-time.Hour), "fresh rant")
	fresh.IsRant = true
	futureDel := now.AddDate(0, 0, 2)
	fresh.AutoDeleteDate = &futureDel
	if _, err := svc.Create(ctx, fresh); err != nil {
		t.Fatalf("create: %v", err)
	}

	keeper := backdatedPost(p.ID, now.AddDate(0, 0, -5), "gratitude")
	keeper.IsGratitude = true
	if _, err := svc.Create(ctx, keeper); err != nil {
		t.Fatalf("create: %v", err)
	}

	n, err := svc.CleanupExpiredRants(ctx, now)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed %d rants, want 1", n)
	}
	remaining, err := svc.SpecialPosts(ctx)
	if err != nil {
		t.Fatalf("special: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("%d special posts remain, want 2", len(remaining))
	}
}

func TestRandomOldPosts(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, p := onboard(t, st)
	svc := NewPostService(st, testLogger())

	now := time.Now().UTC()
	for i := 0; i < 6; i++ {
		if _, err := svc.Create(ctx, backdatedPost(p.ID, now.AddDate(-1, 0, -i), "old")); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, backdatedPost(p.ID, now.Add(-time.Hour), "recent")); err != nil {
		t.Fatalf("create: %v", err)
	}

	cutoff := now.AddDate(0, -6, 0)
	got, err := svc.RandomOldPosts(ctx, cutoff, 4, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatalf("random old posts: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d posts, want 4", len(got))
	}
	for _, g := range got {
		if g.Caption != "old" {
			t.Fatalf("recent post leaked into the old pool: %s", g.Caption)
		}
	}
}
