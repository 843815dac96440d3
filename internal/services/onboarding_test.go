package services

import (
	"context"
	"testing"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
)

func TestOnboardHappyPath(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewOnboardingService(st, testLogger())

	u, p, err := svc.Onboard(ctx, "  Ann  ", "  ann@example.com  ")
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}
	if u.Name != "Ann" {
		t.Fatalf("name = %q, want trimmed Ann", u.Name)
	}
	if u.Email == nil || *u.Email != "ann@example.com" {
		t.Fatalf("email not stored trimmed: %v", u.Email)
	}
	if !p.IsDefault {
		t.Fatal("onboarding persona should be the default")
	}

	stored, err := st.Users().Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(stored.PersonaIDs) != 1 || stored.PersonaIDs[0] != p.ID {
		t.Fatalf("persona id not linked: %v", stored.PersonaIDs)
	}

	done, err := svc.Complete(ctx)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done {
		t.Fatal("onboarding flag should be set")
	}
}

func TestOnboardValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewOnboardingService(st, testLogger())

	cases := []struct {
		name  string
		email string
	}{
		{"J", ""},
		{"   ", ""},
		{"Ann", "not-an-email"},
	}
	for _, c := range cases {
		_, _, err := svc.Onboard(ctx, c.name, c.email)
		if err == nil {
			t.Fatalf("Onboard(%q, %q) should fail", c.name, c.email)
		}
		if !model.IsValidationError(err) {
			t.Fatalf("Onboard(%q, %q): want validation error, got %v", c.name, c.email, err)
		}
	}

	// Nothing was written by the failed attempts.
	has, err := st.Users().HasUser(ctx)
	if err != nil {
		t.Fatalf("has user: %v", err)
	}
	if has {
		t.Fatal("failed onboarding must not leave a user behind")
	}
}

func TestOnboardTwice(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewOnboardingService(st, testLogger())

	if _, _, err := svc.Onboard(ctx, "Ann", ""); err != nil {
		t.Fatalf("first onboard: %v", err)
	}
	_, _, err := svc.Onboard(ctx, "Ben", "")
	if err == nil {
		t.Fatal("second onboard should fail")
	}
	if !model.IsConflictError(err) {
		t.Fatalf("want conflict error, got %v", err)
	}
}

func TestCompleteBeforeOnboarding(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewOnboardingService(st, testLogger())

	done, err := svc.Complete(ctx)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done {
		t.Fatal("flag should be unset on a fresh store")
	}
	if v, _ := st.Settings().Get(ctx, store.SettingOnboardingComplete); v != "" {
		t.Fatalf("unexpected flag value %q", v)
	}
}
