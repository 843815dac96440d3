// Package memorygen derives memory candidates from past posts. Everything
// here is pure: posts in, memories out, with the clock and the randomness
// source supplied by the caller so behavior is reproducible under test.
package memorygen

import (
	"math/rand"
	"time"

	"github.com/waybook/waybook/internal/model"
)

const (
	// DailyCap is the most memories a single day's composite may carry.
	DailyCap = 5
	// DefaultRandomCount is the throwback count when the caller does not
	// specify one.
	DefaultRandomCount = 3
	// throwbackMinMonths is the youngest a post may be, in calendar months,
	// to qualify as a random throwback.
	throwbackMinMonths = 6
	// weekWindowDays is the half-width of the this-week-last-year window.
	weekWindowDays = 7
)

// OnThisDay returns one memory per post created on now's month and day in an
// earlier year. YearsAgo is the calendar-year difference; posts from now's
// own year never qualify.
func OnThisDay(posts []*model.Post, now time.Time) []*model.Memory {
	var out []*model.Memory
	for _, p := range posts {
		if p.CreatedAt.Month() != now.Month() || p.CreatedAt.Day() != now.Day() {
			continue
		}
		years := now.Year() - p.CreatedAt.Year()
		if years <= 0 {
			continue
		}
		out = append(out, &model.Memory{Post: *p, Type: model.OnThisDay(years)})
	}
	return out
}

// ThisWeekLastYear returns a memory per post created within seven days either
// side of now minus one calendar year, inclusive.
func ThisWeekLastYear(posts []*model.Post, now time.Time) []*model.Memory {
	center := now.AddDate(-1, 0, 0)
	from := center.AddDate(0, 0, -weekWindowDays)
	to := center.AddDate(0, 0, weekWindowDays)
	var out []*model.Memory
	for _, p := range posts {
		if p.CreatedAt.Before(from) || p.CreatedAt.After(to) {
			continue
		}
		out = append(out, &model.Memory{Post: *p, Type: model.ThisWeekLastYear()})
	}
	return out
}

// RandomThrowback picks up to count posts older than six months, shuffled
// with rng. count <= 0 means DefaultRandomCount. A post newer than the
// cutoff is never returned.
func RandomThrowback(posts []*model.Post, now time.Time, rng *rand.Rand, count int) []*model.Memory {
	if count <= 0 {
		count = DefaultRandomCount
	}
	cutoff := now.AddDate(0, -throwbackMinMonths, 0)

	var eligible []*model.Post
	for _, p := range posts {
		if p.CreatedAt.Before(cutoff) {
			eligible = append(eligible, p)
		}
	}
	rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if len(eligible) > count {
		eligible = eligible[:count]
	}
	out := make([]*model.Memory, 0, len(eligible))
	for _, p := range eligible {
		out = append(out, &model.Memory{Post: *p, Type: model.RandomThrowback()})
	}
	return out
}

// DailyMemories composes the day's batch: every on-this-day and
// this-week-last-year hit, topped up with random throwbacks only while the
// total stays under DailyCap. Categories are not deduplicated against each
// other; the same post may appear under two kinds.
func DailyMemories(posts []*model.Post, now time.Time, rng *rand.Rand, maxRandom int) []*model.Memory {
	if maxRandom <= 0 {
		maxRandom = DefaultRandomCount
	}
	out := OnThisDay(posts, now)
	out = append(out, ThisWeekLastYear(posts, now)...)

	room := DailyCap - len(out)
	if room <= 0 {
		return out
	}
	if maxRandom < room {
		room = maxRandom
	}
	return append(out, RandomThrowback(posts, now, rng, room)...)
}
