package services

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestComputeStreaks(t *testing.T) {
	today := day(2026, 8, 28)

	cases := []struct {
		name    string
		dates   []time.Time
		current int
		longest int
	}{
		{"empty", nil, 0, 0},
		{"single today", []time.Time{today}, 1, 1},
		{"single yesterday", []time.Time{day(2026, 8, 27)}, 1, 1},
		{"single stale", []time.Time{day(2026, 8, 20)}, 0, 1},
		{
			"run ending today",
			[]time.Time{day(2026, 8, 26), day(2026, 8, 27), today},
			3, 3,
		},
		{
			"run ending yesterday survives",
			[]time.Time{day(2026, 8, 25), day(2026, 8, 26), day(2026, 8, 27)},
			3, 3,
		},
		{
			"broken run",
			[]time.Time{day(2026, 8, 20), day(2026, 8, 21), day(2026, 8, 22), today},
			1, 3,
		},
		{
			"longest in the past",
			[]time.Time{
				day(2026, 7, 1), day(2026, 7, 2), day(2026, 7, 3), day(2026, 7, 4),
				day(2026, 8, 27), today,
			},
			2, 4,
		},
		{
			"duplicates on one day collapse",
			[]time.Time{today, today.Add(2 * time.Hour), day(2026, 8, 27)},
			2, 2,
		},
		{
			"unordered input",
			[]time.Time{today, day(2026, 8, 26), day(2026, 8, 27)},
			3, 3,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			current, longest := ComputeStreaks(c.dates, today)
			if current != c.current || longest != c.longest {
				t.Fatalf("got current=%d longest=%d, want %d/%d",
					current, longest, c.current, c.longest)
			}
		})
	}
}

func TestComputeStreaksCrossesMidnightUTC(t *testing.T) {
	// 23:30 and 00:30 the next day are consecutive calendar days.
	dates := []time.Time{
		time.Date(2026, 8, 27, 23, 30, 0, 0, time.UTC),
		time.Date(2026, 8, 28, 0, 30, 0, 0, time.UTC),
	}
	current, longest := ComputeStreaks(dates, day(2026, 8, 28))
	if current != 2 || longest != 2 {
		t.Fatalf("got current=%d longest=%d, want 2/2", current, longest)
	}
}
