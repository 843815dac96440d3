package validate

import (
	"strings"
	"testing"

	"github.com/waybook/waybook/internal/model"
)

func TestUserName(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"Ann", true},
		{"Jo", true},
		{"  Jo  ", true}, // trimmed before length check
		{"J", false},
		{"   ", false},
		{"", false},
		{"日記", true}, // runes, not bytes
		{strings.Repeat("a", 50), true},
		{strings.Repeat("a", 51), false},
	}
	for _, c := range cases {
		err := UserName(c.in)
		if c.ok && err != nil {
			t.Fatalf("UserName(%q) = %v, want nil", c.in, err)
		}
		if !c.ok {
			if err == nil {
				t.Fatalf("UserName(%q) = nil, want error", c.in)
			}
			if !model.IsValidationError(err) {
				t.Fatalf("UserName(%q) error is not a ValidationError: %v", c.in, err)
			}
		}
	}
}

func TestEmail(t *testing.T) {
	valid := []string{"", "ann@example.com", "a.b+tag@sub.example.org"}
	for _, v := range valid {
		if err := Email(v); err != nil {
			t.Fatalf("Email(%q) = %v, want nil", v, err)
		}
	}
	invalid := []string{"ann", "ann@", "@example.com", "a b@example.com", "ann@example"}
	for _, v := range invalid {
		err := Email(v)
		if err == nil {
			t.Fatalf("Email(%q) = nil, want error", v)
		}
		if !model.IsValidationError(err) {
			t.Fatalf("Email(%q) error is not a ValidationError: %v", v, err)
		}
	}
}

func TestBio(t *testing.T) {
	if err := Bio(nil); err != nil {
		t.Fatalf("nil bio: %v", err)
	}
	short := "likes long walks"
	if err := Bio(&short); err != nil {
		t.Fatalf("short bio: %v", err)
	}
	long := strings.Repeat("x", 501)
	if err := Bio(&long); err == nil {
		t.Fatal("501-rune bio should fail")
	}
}
