package model

import "strings"

// Validate checks the post invariants: mood in [1,10], rating (if present)
// in [1,10], a persona reference, and a known post type.
func (p *Post) Validate() error {
	if p.Mood < 1 || p.Mood > 10 {
		return NewValidationError("mood", "must be between 1 and 10")
	}
	if p.ExperienceRating != nil && (*p.ExperienceRating < 1 || *p.ExperienceRating > 10) {
		return NewValidationError("experienceRating", "must be between 1 and 10")
	}
	if p.PersonaID == "" {
		return NewValidationError("personaId", "is required")
	}
	switch p.PostType {
	case PostTypeText, PostTypePhoto, PostTypeVideo, PostTypeVoiceMemo, PostTypePhotoVideo:
	default:
		return NewValidationError("postType", "unknown post type")
	}
	return nil
}

// Validate checks persona invariants: name 1-30 chars, known color, user reference.
func (p *Persona) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return NewValidationError("name", "is required")
	}
	if len(name) > 30 {
		return NewValidationError("name", "must be at most 30 characters")
	}
	if p.UserID == "" {
		return NewValidationError("userId", "is required")
	}
	valid := false
	for _, c := range PersonaColors {
		if p.Color == c {
			valid = true
			break
		}
	}
	if !valid {
		return NewValidationError("color", "unknown persona color")
	}
	return nil
}

// Validate checks media invariants: type, filename, non-negative size.
// Tier ceilings are a caller concern, see the tier package.
func (m *MediaItem) Validate() error {
	if m.PostID == "" {
		return NewValidationError("postId", "is required")
	}
	if m.Filename == "" {
		return NewValidationError("filename", "is required")
	}
	if m.FileSize < 0 {
		return NewValidationError("fileSize", "must not be negative")
	}
	switch m.Type {
	case MediaTypePhoto, MediaTypeVideo:
	default:
		return NewValidationError("type", "unknown media type")
	}
	return nil
}
