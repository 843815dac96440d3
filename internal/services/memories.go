package services

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/waybook/waybook/internal/memorygen"
	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
	"github.com/waybook/waybook/internal/tier"
)

// MemoryService generates and manages daily memories.
type MemoryService struct {
	store store.Store
	log   zerolog.Logger
}

func NewMemoryService(s store.Store, log zerolog.Logger) *MemoryService {
	return &MemoryService{store: s, log: log}
}

// GenerateDailyMemories builds and persists the day's memory batch. Posts
// already presented today are excluded from the candidate pool, so a second
// call on the same day yields no duplicates. The free tier's daily cap
// applies to the total presented today; premium has none.
func (s *MemoryService) GenerateDailyMemories(ctx context.Context, now time.Time, rng *rand.Rand, maxRandom int) ([]*model.Memory, error) {
	u, err := s.store.Users().Current(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, model.NewNotFoundError("user", "no user exists; run onboarding first")
	}

	day := now
	presentedToday, err := s.store.Memories().Count(ctx, store.MemoryFilter{Day: &day})
	if err != nil {
		return nil, err
	}
	if !tier.WithinDailyMemoryLimit(u.IsPremium, presentedToday) {
		return nil, nil
	}

	presented, err := s.store.Memories().PresentedPostIDs(ctx, day)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(presented))
	for _, id := range presented {
		seen[id] = true
	}

	candidates, err := s.candidatePosts(ctx, now)
	if err != nil {
		return nil, err
	}
	pool := candidates[:0]
	for _, p := range candidates {
		if !seen[p.ID] {
			pool = append(pool, p)
		}
	}

	memories := memorygen.DailyMemories(pool, now, rng, maxRandom)
	if !u.IsPremium {
		room := tier.FreeDailyMemoryLimit - presentedToday
		if len(memories) > room {
			memories = memories[:room]
		}
	}
	if len(memories) == 0 {
		return nil, nil
	}

	for _, m := range memories {
		m.PresentedAt = now
	}
	if err := s.store.Memories().SaveBatch(ctx, memories); err != nil {
		return nil, err
	}
	s.log.Info().Int("count", len(memories)).Msg("daily memories generated")
	return memories, nil
}

// candidatePosts gathers the union of the three generator pools: today's
// anniversaries, last year's week window and anything old enough to be a
// throwback.
func (s *MemoryService) candidatePosts(ctx context.Context, now time.Time) ([]*model.Post, error) {
	onDay, err := s.store.Posts().ListOnThisDay(ctx, now)
	if err != nil {
		return nil, err
	}
	week, err := s.store.Posts().ListWeekAroundLastYear(ctx, now)
	if err != nil {
		return nil, err
	}
	cutoff := now.AddDate(0, -6, 0)
	old, err := s.store.Posts().List(ctx, store.PostFilter{To: &cutoff})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []*model.Post
	for _, batch := range [][]*model.Post{onDay, week, old} {
		for _, p := range batch {
			if !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// TodaysMemories lists the memories presented on the given day.
func (s *MemoryService) TodaysMemories(ctx context.Context, day time.Time) ([]*model.Memory, error) {
	return s.store.Memories().List(ctx, store.MemoryFilter{Day: &day})
}

func (s *MemoryService) MarkViewed(ctx context.Context, ids ...string) error {
	return s.store.Memories().MarkViewed(ctx, ids...)
}

func (s *MemoryService) AddNote(ctx context.Context, id, note string) (*model.Memory, error) {
	return s.store.Memories().UpdateNotes(ctx, id, note)
}

func (s *MemoryService) Stats(ctx context.Context) (*model.MemoryStats, error) {
	return s.store.Memories().Stats(ctx)
}

// Cleanup sweeps memories presented before now minus retentionDays. With
// keepUnviewed set, never-viewed memories survive.
func (s *MemoryService) Cleanup(ctx context.Context, now time.Time, retentionDays int, keepUnviewed bool) (int, error) {
	cutoff := now.AddDate(0, 0, -retentionDays)
	n, err := s.store.Memories().DeleteOlderThan(ctx, cutoff, keepUnviewed)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int("count", n).Msg("stale memories removed")
	}
	return n, nil
}
