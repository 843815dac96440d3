package tier

import "testing"

func TestCanCreatePersona(t *testing.T) {
	cases := []struct {
		premium  bool
		existing int
		want     bool
	}{
		{false, 0, true},
		{false, 1, false},
		{false, 2, false},
		{true, 0, true},
		{true, 4, true},
		{true, 5, false},
	}
	for _, c := range cases {
		if got := CanCreatePersona(c.premium, c.existing); got != c.want {
			t.Fatalf("CanCreatePersona(premium=%v, existing=%d) = %v, want %v",
				c.premium, c.existing, got, c.want)
		}
	}
}

func TestMediaSizeAllowed(t *testing.T) {
	cases := []struct {
		premium bool
		bytes   int64
		want    bool
	}{
		{false, FreeMediaMaxBytes, true},
		{false, FreeMediaMaxBytes + 1, false},
		{true, FreeMediaMaxBytes + 1, true},
		{true, PremiumMediaMaxBytes, true},
		{true, PremiumMediaMaxBytes + 1, false},
	}
	for _, c := range cases {
		if got := MediaSizeAllowed(c.premium, c.bytes); got != c.want {
			t.Fatalf("MediaSizeAllowed(premium=%v, bytes=%d) = %v, want %v",
				c.premium, c.bytes, got, c.want)
		}
	}
}

func TestMediaDurationAllowed(t *testing.T) {
	cases := []struct {
		premium bool
		seconds float64
		want    bool
	}{
		{false, 0, true}, // stills carry no duration
		{false, 60, true},
		{false, 60.5, false},
		{true, 60.5, true},
		{true, 600, true},
		{true, 600.1, false},
	}
	for _, c := range cases {
		if got := MediaDurationAllowed(c.premium, c.seconds); got != c.want {
			t.Fatalf("MediaDurationAllowed(premium=%v, seconds=%v) = %v, want %v",
				c.premium, c.seconds, got, c.want)
		}
	}
}

func TestWithinDailyMemoryLimit(t *testing.T) {
	if !WithinDailyMemoryLimit(false, FreeDailyMemoryLimit-1) {
		t.Fatal("one below the cap should pass")
	}
	if WithinDailyMemoryLimit(false, FreeDailyMemoryLimit) {
		t.Fatal("at the cap should fail")
	}
	if !WithinDailyMemoryLimit(true, 1000) {
		t.Fatal("premium has no daily cap")
	}
}
