package memorygen

import (
	"math/rand"
	"testing"
	"time"

	"github.com/waybook/waybook/internal/model"
)

func post(id string, createdAt time.Time) *model.Post {
	return &model.Post{
		ID:        id,
		PersonaID: "persona-1",
		Caption:   "entry " + id,
		Mood:      7,
		PostType:  model.PostTypeText,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestOnThisDay(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	posts := []*model.Post{
		post("a", time.Date(2025, 3, 15, 22, 30, 0, 0, time.UTC)),
		post("b", time.Date(2023, 3, 15, 8, 0, 0, 0, time.UTC)),
		post("c", time.Date(2026, 3, 15, 7, 0, 0, 0, time.UTC)),  // same year
		post("d", time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)), // wrong day
	}

	got := OnThisDay(posts, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 memories, got %d", len(got))
	}
	if got[0].Post.ID != "a" || got[0].Type.YearsAgo != 1 {
		t.Fatalf("first memory = %s yearsAgo %d, want a/1", got[0].Post.ID, got[0].Type.YearsAgo)
	}
	if got[1].Post.ID != "b" || got[1].Type.YearsAgo != 3 {
		t.Fatalf("second memory = %s yearsAgo %d, want b/3", got[1].Post.ID, got[1].Type.YearsAgo)
	}
	for _, m := range got {
		if m.Type.Kind != model.KindOnThisDay {
			t.Fatalf("kind = %s, want onThisDay", m.Type.Kind)
		}
	}
}

func TestThisWeekLastYearWindow(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	center := now.AddDate(-1, 0, 0)
	posts := []*model.Post{
		post("edge-lo", center.AddDate(0, 0, -7)),
		post("edge-hi", center.AddDate(0, 0, 7)),
		post("center", center),
		post("out-lo", center.AddDate(0, 0, -8)),
		post("out-hi", center.AddDate(0, 0, 8)),
	}

	got := ThisWeekLastYear(posts, now)
	if len(got) != 3 {
		t.Fatalf("expected 3 memories, got %d", len(got))
	}
	want := map[string]bool{"edge-lo": true, "edge-hi": true, "center": true}
	for _, m := range got {
		if !want[m.Post.ID] {
			t.Fatalf("unexpected post %s in window", m.Post.ID)
		}
		if m.Type.Kind != model.KindThisWeekLastYear {
			t.Fatalf("kind = %s, want thisWeekLastYear", m.Type.Kind)
		}
	}
}

func TestRandomThrowbackCutoff(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	posts := []*model.Post{
		post("old-1", now.AddDate(-1, 0, 0)),
		post("old-2", now.AddDate(0, -7, 0)),
		post("young", now.AddDate(0, -5, 0)),
		post("boundary", now.AddDate(0, -6, 0)), // exactly at cutoff, not strictly older
	}

	rng := rand.New(rand.NewSource(1))
	got := RandomThrowback(posts, now, rng, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 eligible posts, got %d", len(got))
	}
	for _, m := range got {
		if m.Post.ID == "young" || m.Post.ID == "boundary" {
			t.Fatalf("post %s should not qualify as throwback", m.Post.ID)
		}
		if m.Type.Kind != model.KindRandomThrowback {
			t.Fatalf("kind = %s, want randomThrowback", m.Type.Kind)
		}
	}
}

func TestRandomThrowbackCount(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var posts []*model.Post
	for i := 0; i < 20; i++ {
		posts = append(posts, post(string(rune('a'+i)), now.AddDate(-2, 0, -i)))
	}

	rng := rand.New(rand.NewSource(42))
	if got := RandomThrowback(posts, now, rng, 4); len(got) != 4 {
		t.Fatalf("count 4: got %d", len(got))
	}
	if got := RandomThrowback(posts, now, rng, 0); len(got) != DefaultRandomCount {
		t.Fatalf("count 0 should fall back to %d, got %d", DefaultRandomCount, len(got))
	}
}

func TestRandomThrowbackDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var posts []*model.Post
	for i := 0; i < 10; i++ {
		posts = append(posts, post(string(rune('a'+i)), now.AddDate(-1, 0, -i)))
	}

	first := RandomThrowback(posts, now, rand.New(rand.NewSource(7)), 3)
	second := RandomThrowback(posts, now, rand.New(rand.NewSource(7)), 3)
	for i := range first {
		if first[i].Post.ID != second[i].Post.ID {
			t.Fatalf("same seed produced different picks at %d: %s vs %s",
				i, first[i].Post.ID, second[i].Post.ID)
		}
	}
}

func TestDailyMemoriesCap(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	// Two on-this-day hits plus one week-window hit leaves room for two
	// randoms even when more are available. The anniversaries sit two and
	// three years back so they stay clear of the last-year week window.
	posts := []*model.Post{
		post("otd-1", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)),
		post("otd-2", time.Date(2023, 3, 15, 10, 0, 0, 0, time.UTC)),
		post("week", now.AddDate(-1, 0, 3)),
	}
	for i := 0; i < 10; i++ {
		posts = append(posts, post("old-"+string(rune('a'+i)),
			time.Date(2022, 7, 1+i, 0, 0, 0, 0, time.UTC)))
	}

	rng := rand.New(rand.NewSource(3))
	got := DailyMemories(posts, now, rng, 10)
	if len(got) != DailyCap {
		t.Fatalf("expected %d memories, got %d", DailyCap, len(got))
	}
	counts := map[model.MemoryKind]int{}
	for _, m := range got {
		counts[m.Type.Kind]++
	}
	if counts[model.KindOnThisDay] != 2 || counts[model.KindThisWeekLastYear] != 1 ||
		counts[model.KindRandomThrowback] != 2 {
		t.Fatalf("kind split = %v", counts)
	}
}

func TestDailyMemoriesMaxRandom(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	var posts []*model.Post
	for i := 0; i < 10; i++ {
		posts = append(posts, post("old-"+string(rune('a'+i)),
			time.Date(2022, 7, 1+i, 0, 0, 0, 0, time.UTC)))
	}

	rng := rand.New(rand.NewSource(9))
	got := DailyMemories(posts, now, rng, 2)
	if len(got) != 2 {
		t.Fatalf("maxRandom 2 with no anniversary hits should yield 2, got %d", len(got))
	}
	for _, m := range got {
		if m.Type.Kind != model.KindRandomThrowback {
			t.Fatalf("kind = %s, want randomThrowback", m.Type.Kind)
		}
	}
}

func TestDailyMemoriesAnniversariesExceedCap(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	var posts []*model.Post
	for y := 2019; y <= 2024; y++ {
		posts = append(posts, post("otd-"+string(rune('0'+y-2019)),
			time.Date(y, 3, 15, 10, 0, 0, 0, time.UTC)))
	}
	// Old enough for throwback, but the anniversaries already fill the day.
	posts = append(posts, post("old", time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC)))

	rng := rand.New(rand.NewSource(5))
	got := DailyMemories(posts, now, rng, 3)
	if len(got) != 6 {
		t.Fatalf("anniversary hits are never truncated, got %d", len(got))
	}
	for _, m := range got {
		if m.Type.Kind == model.KindRandomThrowback {
			t.Fatal("no random top-up expected once the cap is reached")
		}
	}
}
