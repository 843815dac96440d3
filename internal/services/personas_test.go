package services

import (
	"context"
	"testing"

	"github.com/waybook/waybook/internal/model"
)

func TestCreatePersonaTierCap(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u, _ := onboard(t, st)
	svc := NewPersonaService(st, testLogger())

	// Onboarding already created the single free-tier persona.
	_, err := svc.Create(ctx, &model.Persona{Name: "Work", Color: model.ColorGray, Icon: model.IconBriefcase})
	if err == nil {
		t.Fatal("free tier should be capped at one persona")
	}
	if !model.IsValidationError(err) {
		t.Fatalf("want validation error, got %v", err)
	}

	if _, err := st.Users().SetPremium(ctx, u.ID, true, nil); err != nil {
		t.Fatalf("set premium: %v", err)
	}
	created, err := svc.Create(ctx, &model.Persona{Name: "Work", Color: model.ColorGray, Icon: model.IconBriefcase})
	if err != nil {
		t.Fatalf("premium create: %v", err)
	}

	// The new persona id lands on the user record.
	got, err := st.Users().Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	found := false
	for _, id := range got.PersonaIDs {
		if id == created.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("persona id %s missing from user record %v", created.ID, got.PersonaIDs)
	}
}

func TestCreatePersonaDuplicateName(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u, p := onboard(t, st)
	if _, err := st.Users().SetPremium(ctx, u.ID, true, nil); err != nil {
		t.Fatalf("set premium: %v", err)
	}
	svc := NewPersonaService(st, testLogger())

	_, err := svc.Create(ctx, &model.Persona{Name: p.Name, Color: model.ColorRed, Icon: model.IconStar})
	if err == nil {
		t.Fatal("duplicate persona name should fail")
	}
	if !model.IsConflictError(err) {
		t.Fatalf("want conflict error, got %v", err)
	}
}

func TestCreateFromPreset(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u, _ := onboard(t, st)
	if _, err := st.Users().SetPremium(ctx, u.ID, true, nil); err != nil {
		t.Fatalf("set premium: %v", err)
	}
	svc := NewPersonaService(st, testLogger())

	created, err := svc.CreateFromPreset(ctx, "Travel")
	if err != nil {
		t.Fatalf("create from preset: %v", err)
	}
	if created.Color != model.ColorTeal || created.Icon != model.IconGlobe {
		t.Fatalf("preset fields not applied: %+v", created)
	}

	if _, err := svc.CreateFromPreset(ctx, "Skydiving"); err == nil {
		t.Fatal("unknown preset should fail")
	}
}

func TestDeletePersonaUnlinksUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u, p := onboard(t, st)
	svc := NewPersonaService(st, testLogger())

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := st.Users().Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(got.PersonaIDs) != 0 {
		t.Fatalf("persona ids not cleaned: %v", got.PersonaIDs)
	}

	// Missing id stays a no-op.
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSetDefaultSwitches(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u, first := onboard(t, st)
	if _, err := st.Users().SetPremium(ctx, u.ID, true, nil); err != nil {
		t.Fatalf("set premium: %v", err)
	}
	svc := NewPersonaService(st, testLogger())

	second, err := svc.Create(ctx, &model.Persona{Name: "Work", Color: model.ColorGray, Icon: model.IconBriefcase})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.SetDefault(ctx, u.ID, second.ID); err != nil {
		t.Fatalf("set default: %v", err)
	}

	def, err := svc.Default(ctx, u.ID)
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if def == nil || def.ID != second.ID {
		t.Fatalf("default = %v, want %s", def, second.ID)
	}
	old, err := svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if old.IsDefault {
		t.Fatal("previous default should have been cleared")
	}
}
