package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
	"github.com/waybook/waybook/internal/store/storetest"
)

var memDBSeq atomic.Int64

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	db, err := OpenInMemory(fmt.Sprintf("storetest_%d", memDBSeq.Add(1)))
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return NewWithDB(db)
}

func TestCompliance(t *testing.T) {
	storetest.Run(t, newTestStore)
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "waybook.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.HealthPing(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	// Reopening against the same file sees the schema already in place.
	if _, err := s.Users().Create(context.Background(), &model.User{Name: "Ann"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
}

// Timestamps are normalized to UTC microseconds; whatever zone goes in, an
// equal instant comes out.
func TestTimestampNormalization(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.Users().Create(ctx, &model.User{Name: "Ann"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	p, err := s.Personas().Create(ctx, &model.Persona{
		UserID: u.ID, Name: "Journal", Color: model.ColorBlue, Icon: model.IconBook,
	})
	if err != nil {
		t.Fatalf("create persona: %v", err)
	}

	loc := time.FixedZone("UTC+9", 9*3600)
	created := time.Date(2025, 12, 31, 23, 30, 0, 123456789, loc)
	saved, err := s.Posts().Create(ctx, &model.Post{
		PersonaID: p.ID, Caption: "zoned", Mood: 5, PostType: model.PostTypeText, CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	got, err := s.Posts().Get(ctx, saved.ID)
	if err != nil || got == nil {
		t.Fatalf("get: (%v, %v)", got, err)
	}
	want := created.UTC().Truncate(time.Microsecond)
	if !got.CreatedAt.Equal(want) {
		t.Fatalf("createdAt = %v, want %v", got.CreatedAt, want)
	}
	if got.CreatedAt.Location() != time.UTC {
		t.Fatalf("createdAt location = %v, want UTC", got.CreatedAt.Location())
	}

	// In UTC the post lands on Jan 1, not Dec 31.
	onDay, err := s.Posts().ListOnThisDay(ctx, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC))
	if err != nil || len(onDay) != 1 {
		t.Fatalf("listOnThisDay = (%d, %v), want 1", len(onDay), err)
	}
}
