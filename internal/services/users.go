package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
	"github.com/waybook/waybook/internal/validate"
)

// UserService covers profile updates, streak refresh, export and account
// deletion for the single local user.
type UserService struct {
	store store.Store
	log   zerolog.Logger
}

func NewUserService(s store.Store, log zerolog.Logger) *UserService {
	return &UserService{store: s, log: log}
}

func (s *UserService) Current(ctx context.Context) (*model.User, error) {
	return s.store.Users().Current(ctx)
}

// UpdateProfile validates and stores the profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, id, name string, bio, photo *string) (*model.User, error) {
	if err := validate.UserName(name); err != nil {
		return nil, err
	}
	if err := validate.Bio(bio); err != nil {
		return nil, err
	}
	return s.store.Users().UpdateProfile(ctx, id, name, bio, photo)
}

func (s *UserService) UpdatePreferences(ctx context.Context, id string, prefs model.UserPreferences) (*model.User, error) {
	return s.store.Users().UpdatePreferences(ctx, id, prefs)
}

func (s *UserService) SetPremium(ctx context.Context, id string, premium bool, expiresAt *time.Time) (*model.User, error) {
	return s.store.Users().SetPremium(ctx, id, premium, expiresAt)
}

// RefreshStreaks recomputes the posting streaks from the store's posting
// dates and persists them on the user row. Counters stay explicit; nothing
// else recomputes them.
func (s *UserService) RefreshStreaks(ctx context.Context, id string, today time.Time) (current, longest int, err error) {
	dates, err := s.store.Posts().PostingDates(ctx)
	if err != nil {
		return 0, 0, err
	}
	current, longest = ComputeStreaks(dates, today)
	if err := s.store.Users().SetStreaks(ctx, id, current, longest); err != nil {
		return 0, 0, err
	}
	return current, longest, nil
}

// ExportAccount assembles a full snapshot of the account. The independent
// reads fan out concurrently; the first failure cancels the rest.
func (s *UserService) ExportAccount(ctx context.Context) (*model.AccountExport, error) {
	u, err := s.store.Users().Current(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, model.NewNotFoundError("user", "no user exists")
	}

	export := &model.AccountExport{ExportedAt: time.Now().UTC(), User: u}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		personas, err := s.store.Personas().ListByUser(gctx, u.ID)
		if err != nil {
			return err
		}
		export.Personas = personas
		return nil
	})
	g.Go(func() error {
		posts, err := s.store.Posts().List(gctx, store.PostFilter{})
		if err != nil {
			return err
		}
		export.Posts = posts
		return nil
	})
	g.Go(func() error {
		media, err := s.store.MediaItems().List(gctx, store.MediaFilter{})
		if err != nil {
			return err
		}
		export.Media = media
		return nil
	})
	g.Go(func() error {
		stats, err := s.store.Memories().Stats(gctx)
		if err != nil {
			return err
		}
		export.Memories = stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return export, nil
}

// DeleteAccount wipes the user and everything it owns.
func (s *UserService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.store.Users().DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("userId", id).Msg("account deleted")
	return nil
}
