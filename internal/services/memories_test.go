package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
)

func TestGenerateDailyMemoriesNoDuplicatesSameDay(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, p := onboard(t, st)
	svc := NewMemoryService(st, testLogger())

	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	anniversaries := []time.Time{
		time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC),
		time.Date(2023, 5, 10, 14, 0, 0, 0, time.UTC),
	}
	for _, d := range anniversaries {
		if _, err := st.Posts().Create(ctx, backdatedPost(p.ID, d, "anniversary")); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	first, err := svc.GenerateDailyMemories(ctx, now, rand.New(rand.NewSource(1)), 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// Both posts hit on-this-day and both are old enough to double as
	// throwbacks; categories are not deduplicated against each other.
	if len(first) != 4 {
		t.Fatalf("first run produced %d memories, want 4", len(first))
	}

	second, err := svc.GenerateDailyMemories(ctx, now.Add(2*time.Hour), rand.New(rand.NewSource(2)), 3)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("same-day regeneration produced %d new memories, want 0", len(second))
	}

	day := now
	stored, err := st.Memories().List(ctx, store.MemoryFilter{Day: &day})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 4 {
		t.Fatalf("%d memories stored for the day, want 4", len(stored))
	}
}

func TestGenerateDailyMemoriesFreeCap(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, p := onboard(t, st)
	svc := NewMemoryService(st, testLogger())

	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		d := time.Date(2024, 1, 5+i, 10, 0, 0, 0, time.UTC)
		if _, err := st.Posts().Create(ctx, backdatedPost(p.ID, d, "old")); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	first, err := svc.GenerateDailyMemories(ctx, now, rand.New(rand.NewSource(1)), 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("first batch %d, want 3 throwbacks", len(first))
	}

	second, err := svc.GenerateDailyMemories(ctx, now.Add(time.Hour), rand.New(rand.NewSource(2)), 3)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("second batch %d, want 2 (free cap of 5 per day)", len(second))
	}

	third, err := svc.GenerateDailyMemories(ctx, now.Add(2*time.Hour), rand.New(rand.NewSource(3)), 3)
	if err != nil {
		t.Fatalf("third generate: %v", err)
	}
	if len(third) != 0 {
		t.Fatalf("third batch %d, want 0 at the cap", len(third))
	}
}

func TestGenerateDailyMemoriesPremiumUncapped(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u, p := onboard(t, st)
	if _, err := st.Users().SetPremium(ctx, u.ID, true, nil); err != nil {
		t.Fatalf("set premium: %v", err)
	}
	svc := NewMemoryService(st, testLogger())

	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		d := time.Date(2024, 1, 5+i, 10, 0, 0, 0, time.UTC)
		if _, err := st.Posts().Create(ctx, backdatedPost(p.ID, d, "old")); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	var total int
	for i := 0; i < 3; i++ {
		batch, err := svc.GenerateDailyMemories(ctx, now.Add(time.Duration(i)*time.Hour),
			rand.New(rand.NewSource(int64(i))), 3)
		if err != nil {
			t.Fatalf("generate %d: %v", i, err)
		}
		total += len(batch)
	}
	if total != 9 {
		t.Fatalf("premium generated %d over three runs, want 9", total)
	}
}

func TestMemoryViewAndNoteFlow(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, p := onboard(t, st)
	svc := NewMemoryService(st, testLogger())

	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	post, err := st.Posts().Create(ctx,
		backdatedPost(p.ID, time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC), "anniversary"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	batch, err := svc.GenerateDailyMemories(ctx, now, rand.New(rand.NewSource(1)), 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(batch) == 0 {
		t.Fatal("expected at least one memory")
	}
	m := batch[0]
	if m.Post.ID != post.ID {
		t.Fatalf("memory wraps %s, want %s", m.Post.ID, post.ID)
	}

	if err := svc.MarkViewed(ctx, m.ID); err != nil {
		t.Fatalf("mark viewed: %v", err)
	}
	noted, err := svc.AddNote(ctx, m.ID, "good day")
	if err != nil {
		t.Fatalf("add note: %v", err)
	}
	if !noted.WasViewed || noted.Notes == nil || *noted.Notes != "good day" {
		t.Fatalf("memory state wrong: viewed=%v notes=%v", noted.WasViewed, noted.Notes)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Viewed != 1 || stats.WithNotes != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestMemoryCleanupKeepsUnviewed(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, p := onboard(t, st)
	svc := NewMemoryService(st, testLogger())

	now := time.Now().UTC()
	post, err := st.Posts().Create(ctx, backdatedPost(p.ID, now.AddDate(-2, 0, 0), "old"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stale := now.AddDate(0, 0, -400)
	viewed := &model.Memory{Post: *post, Type: model.RandomThrowback(), PresentedAt: stale, WasViewed: true}
	unviewed := &model.Memory{Post: *post, Type: model.RandomThrowback(), PresentedAt: stale}
	if err := st.Memories().SaveBatch(ctx, []*model.Memory{viewed, unviewed}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, err := svc.Cleanup(ctx, now, 365, true)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed %d, want only the viewed one", n)
	}

	n, err = svc.Cleanup(ctx, now, 365, false)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed %d, want the surviving unviewed one", n)
	}
}
