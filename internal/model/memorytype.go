package model

import (
	"fmt"
	"strconv"
	"strings"
)

// MemoryKind names the category a memory was generated under.
type MemoryKind string

const (
	KindOnThisDay        MemoryKind = "onThisDay"
	KindThisWeekLastYear MemoryKind = "thisWeekLastYear"
	KindRandomThrowback  MemoryKind = "randomThrowback"
)

// MemoryType is a tagged variant: onThisDay carries the years-ago payload,
// the other kinds carry none.
type MemoryType struct {
	Kind     MemoryKind `json:"kind"`
	YearsAgo int        `json:"yearsAgo,omitempty"`
}

// OnThisDay returns the on-this-day variant for a post from yearsAgo years back.
func OnThisDay(yearsAgo int) MemoryType {
	return MemoryType{Kind: KindOnThisDay, YearsAgo: yearsAgo}
}

// ThisWeekLastYear returns the this-week-last-year variant.
func ThisWeekLastYear() MemoryType { return MemoryType{Kind: KindThisWeekLastYear} }

// RandomThrowback returns the random-throwback variant.
func RandomThrowback() MemoryType { return MemoryType{Kind: KindRandomThrowback} }

// Encode renders the storage form: "onThisDay_<n>" for the parameterized
// variant, the bare kind otherwise. The encoded string is a storage detail
// and must not leak through the in-memory API.
func (t MemoryType) Encode() string {
	if t.Kind == KindOnThisDay {
		return fmt.Sprintf("%s_%d", KindOnThisDay, t.YearsAgo)
	}
	return string(t.Kind)
}

// ParseMemoryType decodes the storage form produced by Encode.
func ParseMemoryType(s string) (MemoryType, error) {
	switch {
	case s == string(KindThisWeekLastYear):
		return ThisWeekLastYear(), nil
	case s == string(KindRandomThrowback):
		return RandomThrowback(), nil
	case strings.HasPrefix(s, string(KindOnThisDay)+"_"):
		n, err := strconv.Atoi(strings.TrimPrefix(s, string(KindOnThisDay)+"_"))
		if err != nil {
			return MemoryType{}, fmt.Errorf("memory type %q: bad yearsAgo: %w", s, err)
		}
		return OnThisDay(n), nil
	}
	return MemoryType{}, fmt.Errorf("unknown memory type %q", s)
}
