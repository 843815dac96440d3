// Package services is the use-case layer: it composes the store repositories
// with the pure tier, validate and memorygen packages. Services hold no
// state beyond their dependencies and are safe for concurrent use as long as
// the underlying store is.
package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
	"github.com/waybook/waybook/internal/validate"
)

// OnboardingService drives first-run setup.
type OnboardingService struct {
	store store.Store
	log   zerolog.Logger
}

func NewOnboardingService(s store.Store, log zerolog.Logger) *OnboardingService {
	return &OnboardingService{store: s, log: log}
}

// Onboard creates the installation's user, a default persona, links the two
// and sets the onboarding-complete flag. Email is optional. The steps are
// not transactional: a failure after the user write leaves the user in
// place, and re-running reports the existing-user conflict.
func (s *OnboardingService) Onboard(ctx context.Context, name, email string) (*model.User, *model.Persona, error) {
	email = strings.TrimSpace(email)
	if err := validate.UserName(name); err != nil {
		return nil, nil, err
	}
	if err := validate.Email(email); err != nil {
		return nil, nil, err
	}

	exists, err := s.store.Users().HasUser(ctx)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, model.NewConflictError("user", "a user already exists for this installation")
	}

	u := &model.User{
		Name:        strings.TrimSpace(name),
		Preferences: model.DefaultPreferences(),
	}
	if email != "" {
		u.Email = &email
	}
	u, err = s.store.Users().Create(ctx, u)
	if err != nil {
		return nil, nil, err
	}

	preset := model.PersonaPresets[0]
	desc := preset.Description
	p := &model.Persona{
		UserID:      u.ID,
		Name:        preset.Name,
		Color:       preset.Color,
		Icon:        preset.Icon,
		Description: &desc,
		IsDefault:   true,
	}
	p, err = s.store.Personas().Create(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.Users().AddPersonaID(ctx, u.ID, p.ID); err != nil {
		return nil, nil, err
	}
	if err := s.store.Settings().Set(ctx, store.SettingOnboardingComplete, "true"); err != nil {
		return nil, nil, err
	}

	u.PersonaIDs = append(u.PersonaIDs, p.ID)
	s.log.Info().Str("userId", u.ID).Str("personaId", p.ID).Msg("onboarding complete")
	return u, p, nil
}

// Complete reports whether onboarding has finished.
func (s *OnboardingService) Complete(ctx context.Context) (bool, error) {
	v, err := s.store.Settings().Get(ctx, store.SettingOnboardingComplete)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}
