// Package tier holds the free/premium entitlement predicates. The limits are
// compile-time constants; callers pass the user's premium flag and the
// current usage figure.
package tier

const (
	// FreePersonaLimit and PremiumPersonaLimit cap how many personas an
	// account may hold.
	FreePersonaLimit    = 1
	PremiumPersonaLimit = 5

	// Media upload ceilings per item.
	FreeMediaMaxBytes    = 10 << 20  // 10 MiB
	PremiumMediaMaxBytes = 100 << 20 // 100 MiB

	// Video/voice duration ceilings per item, in seconds.
	FreeMediaMaxSeconds    = 60
	PremiumMediaMaxSeconds = 600

	// FreeDailyMemoryLimit caps memories presented per day on the free
	// tier. Premium has no daily cap.
	FreeDailyMemoryLimit = 5
)

// PersonaLimit returns the persona cap for the tier.
func PersonaLimit(premium bool) int {
	if premium {
		return PremiumPersonaLimit
	}
	return FreePersonaLimit
}

// CanCreatePersona reports whether an account already holding existing
// personas may add one more.
func CanCreatePersona(premium bool, existing int) bool {
	return existing < PersonaLimit(premium)
}

// MediaSizeAllowed reports whether a media item of the given byte size fits
// the tier's upload ceiling.
func MediaSizeAllowed(premium bool, bytes int64) bool {
	if premium {
		return bytes <= PremiumMediaMaxBytes
	}
	return bytes <= FreeMediaMaxBytes
}

// MediaDurationAllowed reports whether a clip of the given duration fits the
// tier's ceiling. Zero or negative durations always pass; stills carry none.
func MediaDurationAllowed(premium bool, seconds float64) bool {
	if seconds <= 0 {
		return true
	}
	if premium {
		return seconds <= PremiumMediaMaxSeconds
	}
	return seconds <= FreeMediaMaxSeconds
}

// WithinDailyMemoryLimit reports whether another memory may be presented
// today given how many already were.
func WithinDailyMemoryLimit(premium bool, presentedToday int) bool {
	if premium {
		return true
	}
	return presentedToday < FreeDailyMemoryLimit
}
