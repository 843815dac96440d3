package model

import (
	"testing"
	"time"
)

func validPost() *Post {
	return &Post{
		ID:        "p1",
		PersonaID: "pe1",
		Caption:   "a day",
		Mood:      7,
		PostType:  PostTypeText,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestPostValidate_MoodRange(t *testing.T) {
	for _, mood := range []int{0, 11, -3} {
		p := validPost()
		p.Mood = mood
		if err := p.Validate(); !IsValidationError(err) {
			t.Fatalf("mood %d: expected validation error, got %v", mood, err)
		}
	}
	for mood := 1; mood <= 10; mood++ {
		p := validPost()
		p.Mood = mood
		if err := p.Validate(); err != nil {
			t.Fatalf("mood %d: unexpected error %v", mood, err)
		}
	}
}

func TestPostValidate_ExperienceRating(t *testing.T) {
	p := validPost()
	bad := 0
	p.ExperienceRating = &bad
	if err := p.Validate(); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	ok := 10
	p.ExperienceRating = &ok
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostValidate_RequiresPersona(t *testing.T) {
	p := validPost()
	p.PersonaID = ""
	if err := p.Validate(); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPostTags_DuplicateFree(t *testing.T) {
	p := validPost()
	p.AddActivityTag("hiking")
	p.AddActivityTag("hiking")
	p.AddActivityTag("coffee")
	if len(p.ActivityTags) != 2 {
		t.Fatalf("expected 2 tags, got %v", p.ActivityTags)
	}
	p.AddPeopleTag("ann")
	p.AddPeopleTag("ann")
	if len(p.PeopleTags) != 1 {
		t.Fatalf("expected 1 person, got %v", p.PeopleTags)
	}
}

func TestPersonaValidate(t *testing.T) {
	pe := &Persona{ID: "x", UserID: "u1", Name: "Work", Color: ColorGray, Icon: IconBriefcase}
	if err := pe.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pe.Name = ""
	if err := pe.Validate(); !IsValidationError(err) {
		t.Fatalf("empty name: expected validation error, got %v", err)
	}
	pe.Name = "0123456789012345678901234567890" // 31 chars
	if err := pe.Validate(); !IsValidationError(err) {
		t.Fatalf("long name: expected validation error, got %v", err)
	}
	pe.Name = "Work"
	pe.Color = "magenta"
	if err := pe.Validate(); !IsValidationError(err) {
		t.Fatalf("bad color: expected validation error, got %v", err)
	}
}

func TestMemoryType_EncodeParse(t *testing.T) {
	cases := []MemoryType{OnThisDay(1), OnThisDay(12), ThisWeekLastYear(), RandomThrowback()}
	for _, mt := range cases {
		got, err := ParseMemoryType(mt.Encode())
		if err != nil {
			t.Fatalf("parse %q: %v", mt.Encode(), err)
		}
		if got != mt {
			t.Fatalf("round trip %q: got %+v want %+v", mt.Encode(), got, mt)
		}
	}
	if _, err := ParseMemoryType("onThisDay_x"); err == nil {
		t.Fatal("expected error for bad payload")
	}
	if _, err := ParseMemoryType("nostalgia"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestPostSpecialAndMedia(t *testing.T) {
	p := validPost()
	if p.IsSpecial() || p.HasMedia() {
		t.Fatal("fresh post should be neither special nor carry media")
	}
	p.IsRant = true
	if !p.IsSpecial() {
		t.Fatal("rant should be special")
	}
	p.Media = []MediaItem{{ID: "m1", PostID: p.ID, Type: MediaTypePhoto, Filename: "a.jpg"}}
	if !p.HasMedia() {
		t.Fatal("expected HasMedia")
	}
}
