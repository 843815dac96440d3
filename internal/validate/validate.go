// Package validate holds input validation for user-entered fields. Entity
// invariants (mood range, persona color set) live on the model types; this
// package covers the free-form strings the onboarding and profile flows
// accept.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/waybook/waybook/internal/model"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	userNameMinRunes = 2
	userNameMaxRunes = 50
	bioMaxRunes      = 500
	emailMaxBytes    = 320
)

// UserName validates a display name after trimming surrounding whitespace.
// The trimmed value must be 2-50 runes.
func UserName(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return model.NewValidationError("name", "name is required")
	}
	n := utf8.RuneCountInString(v)
	if n < userNameMinRunes {
		return model.NewValidationError("name", "name must be at least 2 characters")
	}
	if n > userNameMaxRunes {
		return model.NewValidationError("name", "name exceeds 50 characters")
	}
	return nil
}

// Email validates an address. Empty is allowed; email is optional everywhere
// it appears.
func Email(v string) error {
	if v == "" {
		return nil
	}
	if len(v) > emailMaxBytes || !emailRx.MatchString(v) {
		return model.NewValidationError("email", "invalid email address")
	}
	return nil
}

// Bio validates an optional profile bio.
func Bio(v *string) error {
	if v == nil {
		return nil
	}
	if utf8.RuneCountInString(*v) > bioMaxRunes {
		return model.NewValidationError("bio", "bio exceeds 500 characters")
	}
	return nil
}
