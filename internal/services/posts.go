package services

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
	"github.com/waybook/waybook/internal/tier"
)

// PostService wraps the post repository with tier enforcement, counter
// bookkeeping and the named queries the app exposes.
type PostService struct {
	store store.Store
	log   zerolog.Logger
}

func NewPostService(s store.Store, log zerolog.Logger) *PostService {
	return &PostService{store: s, log: log}
}

// Create validates the post, checks every attached media item against the
// owner's tier ceilings and bumps the denormalized post counter on success.
func (s *PostService) Create(ctx context.Context, p *model.Post) (*model.Post, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	u, err := s.store.Users().Current(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, model.NewNotFoundError("user", "no user exists; run onboarding first")
	}
	if err := checkTierCeilings(u, p); err != nil {
		return nil, err
	}

	created, err := s.store.Posts().Create(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.store.Users().IncrementTotalPosts(ctx, u.ID); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	return s.store.Posts().Get(ctx, id)
}

// Update replaces the stored record, including its media set, so the tier
// ceilings apply here the same as on create.
func (s *PostService) Update(ctx context.Context, p *model.Post) (*model.Post, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	u, err := s.store.Users().Current(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, model.NewNotFoundError("user", "no user exists; run onboarding first")
	}
	if err := checkTierCeilings(u, p); err != nil {
		return nil, err
	}
	return s.store.Posts().Update(ctx, p)
}

// checkTierCeilings verifies every attached media item and the voice memo
// against the owner's tier limits.
func checkTierCeilings(u *model.User, p *model.Post) error {
	for _, m := range p.Media {
		if !tier.MediaSizeAllowed(u.IsPremium, m.FileSize) {
			return model.NewValidationError("media", "file exceeds the tier size limit")
		}
		if m.Duration != nil && !tier.MediaDurationAllowed(u.IsPremium, *m.Duration) {
			return model.NewValidationError("media", "clip exceeds the tier duration limit")
		}
	}
	if p.VoiceMemoSeconds != nil && !tier.MediaDurationAllowed(u.IsPremium, *p.VoiceMemoSeconds) {
		return model.NewValidationError("voiceMemo", "memo exceeds the tier duration limit")
	}
	return nil
}

// Delete removes the post, its memory rows and decrements the post counter.
// Deleting an id that does not exist is a no-op and leaves the counter alone.
func (s *PostService) Delete(ctx context.Context, id string) error {
	p, err := s.store.Posts().Get(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}
	if err := s.store.Posts().Delete(ctx, id); err != nil {
		return err
	}
	if _, err := s.store.Memories().DeleteForPost(ctx, id); err != nil {
		return err
	}
	u, err := s.store.Users().Current(ctx)
	if err != nil {
		return err
	}
	if u != nil {
		return s.store.Users().DecrementTotalPosts(ctx, u.ID)
	}
	return nil
}

// Feed lists posts visible at the given instant, newest first. Scheduled
// posts stay hidden until their scheduled time passes.
func (s *PostService) Feed(ctx context.Context, at time.Time, limit, offset int) ([]*model.Post, error) {
	return s.store.Posts().List(ctx, store.PostFilter{VisibleAt: &at, Limit: limit, Offset: offset})
}

// ScheduledPosts lists posts whose scheduled time is still in the future.
func (s *PostService) ScheduledPosts(ctx context.Context, at time.Time) ([]*model.Post, error) {
	all, err := s.store.Posts().List(ctx, store.PostFilter{})
	if err != nil {
		return nil, err
	}
	var out []*model.Post
	for _, p := range all {
		if p.ScheduledFor != nil && p.ScheduledFor.After(at) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PostService) ByPersona(ctx context.Context, personaID string) ([]*model.Post, error) {
	return s.store.Posts().List(ctx, store.PostFilter{PersonaID: &personaID})
}

func (s *PostService) ByDateRange(ctx context.Context, from, to time.Time) ([]*model.Post, error) {
	return s.store.Posts().List(ctx, store.PostFilter{From: &from, To: &to})
}

func (s *PostService) ByMood(ctx context.Context, mood int) ([]*model.Post, error) {
	return s.store.Posts().List(ctx, store.PostFilter{Mood: &mood})
}

func (s *PostService) ByMoodRange(ctx context.Context, min, max int) ([]*model.Post, error) {
	return s.store.Posts().List(ctx, store.PostFilter{MoodMin: &min, MoodMax: &max})
}

// WithAnyTags matches posts carrying at least one of the tags.
func (s *PostService) WithAnyTags(ctx context.Context, tags ...string) ([]*model.Post, error) {
	return s.store.Posts().List(ctx, store.PostFilter{AnyTags: tags})
}

// WithAllTags matches posts carrying every tag.
func (s *PostService) WithAllTags(ctx context.Context, tags ...string) ([]*model.Post, error) {
	return s.store.Posts().List(ctx, store.PostFilter{AllTags: tags})
}

// Mentioning matches posts tagging any of the given people.
func (s *PostService) Mentioning(ctx context.Context, people ...string) ([]*model.Post, error) {
	return s.store.Posts().List(ctx, store.PostFilter{People: people})
}

func (s *PostService) WithMedia(ctx context.Context) ([]*model.Post, error) {
	yes := true
	return s.store.Posts().List(ctx, store.PostFilter{HasMedia: &yes})
}

func (s *PostService) WithoutMedia(ctx context.Context) ([]*model.Post, error) {
	no := false
	return s.store.Posts().List(ctx, store.PostFilter{HasMedia: &no})
}

// SpecialPosts matches gratitude, rant, dream and future-you entries.
func (s *PostService) SpecialPosts(ctx context.Context) ([]*model.Post, error) {
	yes := true
	return s.store.Posts().List(ctx, store.PostFilter{Special: &yes})
}

// SearchCaption is a case-insensitive substring search.
func (s *PostService) SearchCaption(ctx context.Context, q string) ([]*model.Post, error) {
	return s.store.Posts().List(ctx, store.PostFilter{Caption: q})
}

// Search runs an arbitrary multi-criteria filter.
func (s *PostService) Search(ctx context.Context, f store.PostFilter) ([]*model.Post, error) {
	return s.store.Posts().List(ctx, f)
}

// RandomOldPosts returns up to count posts created before olderThan, in a
// random order drawn from rng.
func (s *PostService) RandomOldPosts(ctx context.Context, olderThan time.Time, count int, rng *rand.Rand) ([]*model.Post, error) {
	posts, err := s.store.Posts().List(ctx, store.PostFilter{To: &olderThan})
	if err != nil {
		return nil, err
	}
	rng.Shuffle(len(posts), func(i, j int) { posts[i], posts[j] = posts[j], posts[i] })
	if len(posts) > count {
		posts = posts[:count]
	}
	return posts, nil
}

// CleanupExpiredRants deletes rants whose auto-delete date has passed and
// returns how many were removed. Memory rows for the deleted rants are swept
// with them. Invoked by the caller, never from a background goroutine.
func (s *PostService) CleanupExpiredRants(ctx context.Context, now time.Time) (int, error) {
	yes := true
	rants, err := s.store.Posts().List(ctx, store.PostFilter{Special: &yes})
	if err != nil {
		return 0, err
	}
	var expired []string
	for _, p := range rants {
		if p.IsRant && p.AutoDeleteDate != nil && p.AutoDeleteDate.Before(now) {
			expired = append(expired, p.ID)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}
	n, err := s.store.Posts().DeleteBatch(ctx, expired)
	if err != nil {
		return 0, err
	}
	for _, id := range expired {
		if _, err := s.store.Memories().DeleteForPost(ctx, id); err != nil {
			return n, err
		}
	}
	s.log.Info().Int("count", n).Msg("expired rants removed")
	return n, nil
}

// MoodSummary returns the average mood and the per-score distribution for
// the filtered set.
func (s *PostService) MoodSummary(ctx context.Context, f store.PostFilter) (*float64, map[int]int, error) {
	avg, err := s.store.Posts().AverageMood(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	dist, err := s.store.Posts().MoodDistribution(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return avg, dist, nil
}

func (s *PostService) TopActivityTags(ctx context.Context, limit int) ([]model.TagCount, error) {
	return s.store.Posts().TopActivityTags(ctx, limit)
}

func (s *PostService) TopPeople(ctx context.Context, limit int) ([]model.TagCount, error) {
	return s.store.Posts().TopPeople(ctx, limit)
}
