package services

import (
	"sort"
	"time"
)

// ComputeStreaks derives posting streaks from raw posting dates. Days are
// compared by calendar date in UTC; duplicates and ordering in the input do
// not matter. The current streak counts the run of consecutive days ending
// today or yesterday (a streak survives until a full day is missed); the
// longest streak is the best run anywhere in history.
func ComputeStreaks(dates []time.Time, today time.Time) (current, longest int) {
	if len(dates) == 0 {
		return 0, 0
	}

	seen := make(map[int64]bool, len(dates))
	days := make([]int64, 0, len(dates))
	for _, d := range dates {
		k := dayKey(d)
		if !seen[k] {
			seen[k] = true
			days = append(days, k)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	run := 1
	for i := 1; i < len(days); i++ {
		if days[i] == days[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	if longest < 1 {
		longest = 1
	}

	last := days[len(days)-1]
	ref := dayKey(today)
	if last == ref || last == ref-1 {
		current = 1
		for i := len(days) - 2; i >= 0; i-- {
			if days[i] == days[i+1]-1 {
				current++
			} else {
				break
			}
		}
	}
	return current, longest
}

// dayKey collapses an instant to its UTC calendar day, counted in days since
// the epoch.
func dayKey(t time.Time) int64 {
	t = t.UTC()
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return d.Unix() / 86400
}
