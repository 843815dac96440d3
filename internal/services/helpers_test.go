package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
	"github.com/waybook/waybook/internal/store/sqlite"
)

var testDBSeq atomic.Int64

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	db, err := sqlite.OpenInMemory(fmt.Sprintf("services_%d", testDBSeq.Add(1)))
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return sqlite.NewWithDB(db)
}

func testLogger() zerolog.Logger { return zerolog.Nop() }

// onboard runs the onboarding flow and returns the created user and persona.
func onboard(t *testing.T, s store.Store) (*model.User, *model.Persona) {
	t.Helper()
	u, p, err := NewOnboardingService(s, testLogger()).Onboard(context.Background(), "Ann", "")
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}
	return u, p
}

func backdatedPost(personaID string, createdAt time.Time, caption string) *model.Post {
	return &model.Post{
		PersonaID: personaID,
		Caption:   caption,
		Mood:      7,
		PostType:  model.PostTypeText,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}
