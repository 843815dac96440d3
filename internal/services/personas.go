package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
	"github.com/waybook/waybook/internal/tier"
)

// PersonaService wraps the persona repository with tier enforcement and the
// user's persona-id bookkeeping.
type PersonaService struct {
	store store.Store
	log   zerolog.Logger
}

func NewPersonaService(s store.Store, log zerolog.Logger) *PersonaService {
	return &PersonaService{store: s, log: log}
}

// Create adds a persona for the current user, enforcing the tier cap and the
// per-user name uniqueness before touching the store.
func (s *PersonaService) Create(ctx context.Context, p *model.Persona) (*model.Persona, error) {
	u, err := s.store.Users().Current(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, model.NewNotFoundError("user", "no user exists; run onboarding first")
	}
	if p.UserID == "" {
		p.UserID = u.ID
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.Personas().ListByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if !tier.CanCreatePersona(u.IsPremium, len(existing)) {
		return nil, model.NewValidationError("personas",
			fmt.Sprintf("tier allows at most %d personas", tier.PersonaLimit(u.IsPremium)))
	}
	used, err := s.store.Personas().NameInUse(ctx, u.ID, p.Name)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, model.NewConflictError("name", fmt.Sprintf("persona %q already exists", p.Name))
	}

	created, err := s.store.Personas().Create(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.store.Users().AddPersonaID(ctx, u.ID, created.ID); err != nil {
		return nil, err
	}
	return created, nil
}

// CreateFromPreset instantiates one of the built-in persona templates.
func (s *PersonaService) CreateFromPreset(ctx context.Context, presetName string) (*model.Persona, error) {
	preset := model.PresetByName(presetName)
	if preset == nil {
		return nil, model.NewValidationError("preset", fmt.Sprintf("unknown preset %q", presetName))
	}
	desc := preset.Description
	return s.Create(ctx, &model.Persona{
		Name:        preset.Name,
		Color:       preset.Color,
		Icon:        preset.Icon,
		Description: &desc,
	})
}

func (s *PersonaService) Get(ctx context.Context, id string) (*model.Persona, error) {
	return s.store.Personas().Get(ctx, id)
}

func (s *PersonaService) List(ctx context.Context) ([]*model.Persona, error) {
	return s.store.Personas().List(ctx)
}

func (s *PersonaService) Update(ctx context.Context, p *model.Persona) (*model.Persona, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.store.Personas().Update(ctx, p)
}

// Delete removes the persona, its posts and their media, and drops the id
// from the user's persona list.
func (s *PersonaService) Delete(ctx context.Context, id string) error {
	p, err := s.store.Personas().Get(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}
	if err := s.store.Personas().Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Users().RemovePersonaID(ctx, p.UserID, id); err != nil {
		return err
	}
	s.log.Info().Str("personaId", id).Msg("persona deleted")
	return nil
}

// SetDefault promotes the persona to the user's default.
func (s *PersonaService) SetDefault(ctx context.Context, userID, personaID string) error {
	return s.store.Personas().SetDefault(ctx, userID, personaID)
}

func (s *PersonaService) Default(ctx context.Context, userID string) (*model.Persona, error) {
	return s.store.Personas().DefaultPersona(ctx, userID)
}

// Usage returns the per-persona post counts for the user.
func (s *PersonaService) Usage(ctx context.Context, userID string) (map[string]int, error) {
	return s.store.Personas().PostCounts(ctx, userID)
}

func (s *PersonaService) MostUsed(ctx context.Context, userID string) (*model.Persona, error) {
	return s.store.Personas().MostUsed(ctx, userID)
}
