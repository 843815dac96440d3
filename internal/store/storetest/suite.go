// Package storetest holds the driver-agnostic compliance suite. Every store
// implementation runs the same suite from its own test package, so sqlite and
// postgres cannot drift apart on contract semantics.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
)

// Run executes the full suite. makeStore must return a fresh, empty store per
// call; the suite never shares state between subtests.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"HealthPing", testHealthPing},
		{"UserLifecycle", testUserLifecycle},
		{"SingleUserInvariant", testSingleUserInvariant},
		{"UserCounters", testUserCounters},
		{"UserPersonaIDs", testUserPersonaIDs},
		{"PersonaLifecycle", testPersonaLifecycle},
		{"PersonaDefault", testPersonaDefault},
		{"PersonaCascade", testPersonaCascade},
		{"PersonaUsage", testPersonaUsage},
		{"PostRoundTrip", testPostRoundTrip},
		{"PostDanglingPersona", testPostDanglingPersona},
		{"PostDeleteIdempotent", testPostDeleteIdempotent},
		{"PostUpdate", testPostUpdate},
		{"PostFilters", testPostFilters},
		{"PostPagination", testPostPagination},
		{"PostBatches", testPostBatches},
		{"MoodAggregates", testMoodAggregates},
		{"TopTags", testTopTags},
		{"PostingDates", testPostingDates},
		{"OnThisDay", testOnThisDay},
		{"WeekAroundLastYear", testWeekAroundLastYear},
		{"MediaLifecycle", testMediaLifecycle},
		{"MediaAggregates", testMediaAggregates},
		{"MemoryLifecycle", testMemoryLifecycle},
		{"MemoryDanglingPost", testMemoryDanglingPost},
		{"MemoryFilters", testMemoryFilters},
		{"MemoryStats", testMemoryStats},
		{"MemoryCleanup", testMemoryCleanup},
		{"MemoryPresentation", testMemoryPresentation},
		{"Settings", testSettings},
		{"DeleteAccount", testDeleteAccount},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := makeStore(t)
			tc.fn(t, s)
		})
	}
}

// seedIdentity creates the installation user plus one persona.
func seedIdentity(t *testing.T, s store.Store) (*model.User, *model.Persona) {
	t.Helper()
	ctx := context.Background()
	u, err := s.Users().Create(ctx, &model.User{Name: "Ann", Preferences: model.DefaultPreferences()})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	p, err := s.Personas().Create(ctx, &model.Persona{
		UserID: u.ID, Name: "Journal", Color: model.ColorBlue, Icon: model.IconBook, IsDefault: true,
	})
	if err != nil {
		t.Fatalf("create persona: %v", err)
	}
	return u, p
}

func newPost(personaID string, createdAt time.Time, mood int, caption string) *model.Post {
	return &model.Post{
		PersonaID: personaID,
		Caption:   caption,
		Mood:      mood,
		PostType:  model.PostTypeText,
		CreatedAt: createdAt,
	}
}

func mustCreatePost(t *testing.T, s store.Store, p *model.Post) *model.Post {
	t.Helper()
	saved, err := s.Posts().Create(context.Background(), p)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return saved
}

func strPtr(s string) *string        { return &s }
func intPtr(n int) *int              { return &n }
func f64Ptr(f float64) *float64      { return &f }
func boolPtr(b bool) *bool           { return &b }
func timePtr(t time.Time) *time.Time { return &t }

func testHealthPing(t *testing.T, s store.Store) {
	if err := s.HealthPing(context.Background()); err != nil {
		t.Fatalf("health ping: %v", err)
	}
}

func testUserLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()

	cur, err := s.Users().Current(ctx)
	if err != nil || cur != nil {
		t.Fatalf("current on empty store = (%v, %v), want (nil, nil)", cur, err)
	}
	has, err := s.Users().HasUser(ctx)
	if err != nil || has {
		t.Fatalf("hasUser on empty store = (%v, %v), want (false, nil)", has, err)
	}

	u, err := s.Users().Create(ctx, &model.User{
		Name:        "Ann",
		Bio:         strPtr("journaling since 2020"),
		Email:       strPtr("ann@example.com"),
		Preferences: model.DefaultPreferences(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("create did not assign an id")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Fatal("create did not stamp timestamps")
	}

	got, err := s.Users().Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Name != "Ann" || got.Bio == nil || *got.Bio != "journaling since 2020" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Preferences != model.DefaultPreferences() {
		t.Fatalf("preferences round trip mismatch: %+v", got.Preferences)
	}
	if !got.CreatedAt.Equal(u.CreatedAt) {
		t.Fatalf("createdAt changed across round trip: %v vs %v", got.CreatedAt, u.CreatedAt)
	}

	prefs := got.Preferences
	prefs.HideRants = true
	prefs.DailyReminderHour = 7
	got, err = s.Users().UpdatePreferences(ctx, u.ID, prefs)
	if err != nil {
		t.Fatalf("update preferences: %v", err)
	}
	if !got.Preferences.HideRants || got.Preferences.DailyReminderHour != 7 {
		t.Fatalf("preferences not applied: %+v", got.Preferences)
	}

	expires := time.Now().AddDate(1, 0, 0)
	got, err = s.Users().SetPremium(ctx, u.ID, true, &expires)
	if err != nil {
		t.Fatalf("set premium: %v", err)
	}
	if !got.IsPremium || got.PremiumExpiresAt == nil {
		t.Fatalf("premium not applied: %+v", got)
	}
	got, err = s.Users().SetPremium(ctx, u.ID, false, nil)
	if err != nil {
		t.Fatalf("clear premium: %v", err)
	}
	if got.IsPremium || got.PremiumExpiresAt != nil {
		t.Fatalf("premium not cleared: %+v", got)
	}

	got, err = s.Users().UpdateProfile(ctx, u.ID, "Ann B", strPtr("new bio"), nil)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if got.Name != "Ann B" || got.Bio == nil || *got.Bio != "new bio" || got.ProfilePhoto != nil {
		t.Fatalf("profile not applied: %+v", got)
	}

	if err := s.Users().Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, err := s.Users().Get(ctx, u.ID); err != nil || got != nil {
		t.Fatalf("get after delete = (%v, %v), want (nil, nil)", got, err)
	}
}

func testSingleUserInvariant(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.Users().Create(ctx, &model.User{Name: "Ann"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := s.Users().Create(ctx, &model.User{Name: "Bob"})
	if !model.IsConflictError(err) {
		t.Fatalf("second create = %v, want conflict", err)
	}
}

// Counters are explicit: writing posts must not move them.
func testUserCounters(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, p := seedIdentity(t, s)

	base := time.Now().AddDate(0, 0, -10)
	for i := 0; i < 3; i++ {
		mustCreatePost(t, s, newPost(p.ID, base.AddDate(0, 0, i), 5, fmt.Sprintf("day %d", i)))
	}
	got, err := s.Users().Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalPosts != 0 || got.CurrentStreak != 0 {
		t.Fatalf("counters moved without explicit update: %+v", got)
	}

	for i := 0; i < 2; i++ {
		if err := s.Users().IncrementTotalPosts(ctx, u.ID); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	if err := s.Users().DecrementTotalPosts(ctx, u.ID); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if err := s.Users().SetStreaks(ctx, u.ID, 4, 9); err != nil {
		t.Fatalf("set streaks: %v", err)
	}
	got, _ = s.Users().Get(ctx, u.ID)
	if got.TotalPosts != 1 || got.CurrentStreak != 4 || got.LongestStreak != 9 {
		t.Fatalf("counter state = %+v", got)
	}

	// Decrement floors at zero.
	if err := s.Users().SetStats(ctx, u.ID, 0, 0, 0); err != nil {
		t.Fatalf("set stats: %v", err)
	}
	if err := s.Users().DecrementTotalPosts(ctx, u.ID); err != nil {
		t.Fatalf("decrement at zero: %v", err)
	}
	got, _ = s.Users().Get(ctx, u.ID)
	if got.TotalPosts != 0 {
		t.Fatalf("totalPosts went negative: %d", got.TotalPosts)
	}

	if err := s.Users().IncrementTotalPosts(ctx, "no-such-user"); !model.IsNotFoundError(err) {
		t.Fatalf("increment on missing user = %v, want not found", err)
	}
}

func testUserPersonaIDs(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, p := seedIdentity(t, s)

	if err := s.Users().AddPersonaID(ctx, u.ID, p.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Adding twice keeps the set duplicate-free.
	if err := s.Users().AddPersonaID(ctx, u.ID, p.ID); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	got, _ := s.Users().Get(ctx, u.ID)
	if len(got.PersonaIDs) != 1 || got.PersonaIDs[0] != p.ID {
		t.Fatalf("personaIds = %v", got.PersonaIDs)
	}

	if err := s.Users().RemovePersonaID(ctx, u.ID, p.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, _ = s.Users().Get(ctx, u.ID)
	if len(got.PersonaIDs) != 0 {
		t.Fatalf("personaIds after remove = %v", got.PersonaIDs)
	}
}

func testPersonaLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, first := seedIdentity(t, s)

	_, err := s.Personas().Create(ctx, &model.Persona{
		UserID: u.ID, Name: "Journal", Color: model.ColorRed, Icon: model.IconStar,
	})
	if !model.IsConflictError(err) {
		t.Fatalf("duplicate name = %v, want conflict", err)
	}

	second, err := s.Personas().Create(ctx, &model.Persona{
		UserID: u.ID, Name: "Work", Color: model.ColorGray, Icon: model.IconBriefcase,
		Description: strPtr("office life"),
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	all, err := s.Personas().ListByUser(ctx, u.ID)
	if err != nil || len(all) != 2 {
		t.Fatalf("listByUser = (%d personas, %v), want 2", len(all), err)
	}
	if all[0].ID != first.ID {
		t.Fatalf("listByUser not in creation order: %v", all)
	}

	gray, err := s.Personas().ListByColor(ctx, model.ColorGray)
	if err != nil || len(gray) != 1 || gray[0].ID != second.ID {
		t.Fatalf("listByColor = (%v, %v)", gray, err)
	}

	second.Name = "Office"
	second.Color = model.ColorTeal
	updated, err := s.Personas().Update(ctx, second)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Office" || updated.Color != model.ColorTeal {
		t.Fatalf("update not applied: %+v", updated)
	}

	inUse, err := s.Personas().NameInUse(ctx, u.ID, "Office")
	if err != nil || !inUse {
		t.Fatalf("nameInUse(Office) = (%v, %v), want true", inUse, err)
	}
	inUse, err = s.Personas().NameInUse(ctx, u.ID, "Work")
	if err != nil || inUse {
		t.Fatalf("nameInUse(Work) = (%v, %v), want false", inUse, err)
	}

	missing := &model.Persona{ID: "no-such", UserID: u.ID, Name: "Ghost", Color: model.ColorPink, Icon: model.IconMoon}
	if _, err := s.Personas().Update(ctx, missing); !model.IsNotFoundError(err) {
		t.Fatalf("update missing = %v, want not found", err)
	}
}

func testPersonaDefault(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, first := seedIdentity(t, s)
	second, err := s.Personas().Create(ctx, &model.Persona{
		UserID: u.ID, Name: "Travel", Color: model.ColorGreen, Icon: model.IconGlobe,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	def, err := s.Personas().DefaultPersona(ctx, u.ID)
	if err != nil || def == nil || def.ID != first.ID {
		t.Fatalf("default = (%v, %v), want first persona", def, err)
	}

	if err := s.Personas().SetDefault(ctx, u.ID, second.ID); err != nil {
		t.Fatalf("setDefault: %v", err)
	}
	def, _ = s.Personas().DefaultPersona(ctx, u.ID)
	if def == nil || def.ID != second.ID {
		t.Fatalf("default after switch = %v", def)
	}
	// The previous default must be cleared, never two at once.
	got, _ := s.Personas().Get(ctx, first.ID)
	if got.IsDefault {
		t.Fatal("two defaults observable after switch")
	}

	if err := s.Personas().SetDefault(ctx, u.ID, "no-such"); !model.IsNotFoundError(err) {
		t.Fatalf("setDefault missing = %v, want not found", err)
	}
	if err := s.Personas().SetDefault(ctx, "other-user", second.ID); !model.IsNotFoundError(err) {
		t.Fatalf("setDefault wrong owner = %v, want not found", err)
	}

	if err := s.Personas().ClearDefault(ctx, u.ID); err != nil {
		t.Fatalf("clearDefault: %v", err)
	}
	def, err = s.Personas().DefaultPersona(ctx, u.ID)
	if err != nil || def != nil {
		t.Fatalf("default after clear = (%v, %v), want (nil, nil)", def, err)
	}
}

func testPersonaCascade(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)

	post := newPost(p.ID, time.Now().AddDate(0, 0, -1), 6, "with media")
	post.Media = []model.MediaItem{
		{Type: model.MediaTypePhoto, Filename: "a.jpg", FileSize: 100},
	}
	saved := mustCreatePost(t, s, post)

	if err := s.Personas().Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete persona: %v", err)
	}
	if got, err := s.Personas().Get(ctx, p.ID); err != nil || got != nil {
		t.Fatalf("persona survived delete: (%v, %v)", got, err)
	}
	if got, err := s.Posts().Get(ctx, saved.ID); err != nil || got != nil {
		t.Fatalf("post survived persona delete: (%v, %v)", got, err)
	}
	n, err := s.MediaItems().CountByPost(ctx, saved.ID)
	if err != nil || n != 0 {
		t.Fatalf("media survived persona delete: (%d, %v)", n, err)
	}
}

func testPersonaUsage(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, first := seedIdentity(t, s)
	second, err := s.Personas().Create(ctx, &model.Persona{
		UserID: u.ID, Name: "Travel", Color: model.ColorGreen, Icon: model.IconGlobe,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	base := time.Now().AddDate(0, 0, -30)
	mustCreatePost(t, s, newPost(first.ID, base, 5, "one"))
	mustCreatePost(t, s, newPost(second.ID, base.AddDate(0, 0, 1), 5, "two"))
	mustCreatePost(t, s, newPost(second.ID, base.AddDate(0, 0, 2), 5, "three"))

	counts, err := s.Personas().PostCounts(ctx, u.ID)
	if err != nil {
		t.Fatalf("postCounts: %v", err)
	}
	if counts[first.ID] != 1 || counts[second.ID] != 2 {
		t.Fatalf("postCounts = %v", counts)
	}

	most, err := s.Personas().MostUsed(ctx, u.ID)
	if err != nil || most == nil || most.ID != second.ID {
		t.Fatalf("mostUsed = (%v, %v), want second persona", most, err)
	}

	n, err := s.Posts().DeleteByPersona(ctx, second.ID)
	if err != nil || n != 2 {
		t.Fatalf("deleteByPersona = (%d, %v), want 2", n, err)
	}
}

func testPostRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)

	created := time.Date(2025, 6, 3, 18, 45, 12, 0, time.UTC)
	scheduled := created.AddDate(0, 0, 3)
	in := &model.Post{
		PersonaID:        p.ID,
		Caption:          "Beach day with the crew",
		Mood:             9,
		ExperienceRating: intPtr(8),
		PostType:         model.PostTypePhoto,
		Location:         strPtr("Santa Cruz"),
		ActivityTags:     []string{"beach", "surfing"},
		PeopleTags:       []string{"Maya", "Sam"},
		Media: []model.MediaItem{
			{Type: model.MediaTypePhoto, Filename: "wave.jpg", FileSize: 2048, Width: intPtr(1920), Height: intPtr(1080)},
			{Type: model.MediaTypeVideo, Filename: "wipeout.mp4", FileSize: 9000, Duration: f64Ptr(14.5)},
		},
		IsGratitude:    true,
		ScheduledFor:   &scheduled,
		VoiceMemoFile:  strPtr("memo.m4a"),
		VoiceMemoSeconds: f64Ptr(32.1),
		MemoryNotes:    strPtr("best day of the summer"),
		CreatedAt:      created,
	}

	saved := mustCreatePost(t, s, in)
	if saved.ID == "" {
		t.Fatal("create did not assign an id")
	}

	got, err := s.Posts().Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("get returned nil for a stored post")
	}
	if got.Caption != in.Caption || got.Mood != 9 || got.PostType != model.PostTypePhoto {
		t.Fatalf("scalar fields mismatch: %+v", got)
	}
	if got.ExperienceRating == nil || *got.ExperienceRating != 8 {
		t.Fatalf("experienceRating = %v", got.ExperienceRating)
	}
	if got.Location == nil || *got.Location != "Santa Cruz" {
		t.Fatalf("location = %v", got.Location)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("createdAt = %v, want %v", got.CreatedAt, created)
	}
	if got.ScheduledFor == nil || !got.ScheduledFor.Equal(scheduled) {
		t.Fatalf("scheduledFor = %v, want %v", got.ScheduledFor, scheduled)
	}
	if len(got.ActivityTags) != 2 || got.ActivityTags[0] != "beach" || got.ActivityTags[1] != "surfing" {
		t.Fatalf("activityTags = %v", got.ActivityTags)
	}
	if len(got.PeopleTags) != 2 || got.PeopleTags[0] != "Maya" || got.PeopleTags[1] != "Sam" {
		t.Fatalf("peopleTags = %v", got.PeopleTags)
	}
	if len(got.Media) != 2 {
		t.Fatalf("media count = %d, want 2", len(got.Media))
	}
	if got.Media[0].Filename != "wave.jpg" || got.Media[1].Filename != "wipeout.mp4" {
		t.Fatalf("media order lost: %v, %v", got.Media[0].Filename, got.Media[1].Filename)
	}
	if got.Media[1].Duration == nil || *got.Media[1].Duration != 14.5 {
		t.Fatalf("media duration = %v", got.Media[1].Duration)
	}
	if !got.IsGratitude || got.IsRant {
		t.Fatalf("special flags mismatch: %+v", got)
	}
	if got.VoiceMemoSeconds == nil || *got.VoiceMemoSeconds != 32.1 {
		t.Fatalf("voiceMemoSeconds = %v", got.VoiceMemoSeconds)
	}
}

func testPostDanglingPersona(t *testing.T, s store.Store) {
	seedIdentity(t, s)
	_, err := s.Posts().Create(context.Background(), newPost("no-such-persona", time.Now(), 5, "orphan"))
	if !model.IsNotFoundError(err) {
		t.Fatalf("create against missing persona = %v, want not found", err)
	}
}

func testPostDeleteIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)
	saved := mustCreatePost(t, s, newPost(p.ID, time.Now(), 5, "temp"))

	if err := s.Posts().Delete(ctx, saved.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := s.Posts().Delete(ctx, saved.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if got, err := s.Posts().Get(ctx, saved.ID); err != nil || got != nil {
		t.Fatalf("get after delete = (%v, %v), want (nil, nil)", got, err)
	}
}

func testPostUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)

	post := newPost(p.ID, time.Now().AddDate(0, 0, -2), 4, "draft")
	post.ActivityTags = []string{"cooking"}
	post.Media = []model.MediaItem{{Type: model.MediaTypePhoto, Filename: "old.jpg", FileSize: 50}}
	saved := mustCreatePost(t, s, post)

	saved.Caption = "final"
	saved.Mood = 7
	saved.ActivityTags = []string{"baking", "cooking"}
	saved.Media = []model.MediaItem{{Type: model.MediaTypePhoto, Filename: "new.jpg", FileSize: 75}}
	updated, err := s.Posts().Update(ctx, saved)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Fatalf("updatedAt %v before createdAt %v", updated.UpdatedAt, updated.CreatedAt)
	}

	got, err := s.Posts().Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Caption != "final" || got.Mood != 7 {
		t.Fatalf("update not applied: %+v", got)
	}
	if len(got.ActivityTags) != 2 || got.ActivityTags[0] != "baking" {
		t.Fatalf("tags not replaced: %v", got.ActivityTags)
	}
	if len(got.Media) != 1 || got.Media[0].Filename != "new.jpg" {
		t.Fatalf("media not replaced: %v", got.Media)
	}

	missing := newPost(p.ID, time.Now(), 5, "ghost")
	missing.ID = "no-such-post"
	if _, err := s.Posts().Update(ctx, missing); !model.IsNotFoundError(err) {
		t.Fatalf("update missing = %v, want not found", err)
	}
}

func testPostFilters(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, home := seedIdentity(t, s)
	work, err := s.Personas().Create(ctx, &model.Persona{
		UserID: u.ID, Name: "Work", Color: model.ColorGray, Icon: model.IconBriefcase,
	})
	if err != nil {
		t.Fatalf("create persona: %v", err)
	}

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

	hike := newPost(home.ID, base, 8, "Sunrise hike up the ridge")
	hike.ActivityTags = []string{"hiking", "outdoors"}
	hike.PeopleTags = []string{"Maya"}
	mustCreatePost(t, s, hike)

	launch := newPost(work.ID, base.AddDate(0, 0, 1), 3, "Launch day stress")
	launch.IsRant = true
	launch.ActivityTags = []string{"work"}
	mustCreatePost(t, s, launch)

	picnic := newPost(home.ID, base.AddDate(0, 0, 2), 9, "Picnic by the lake")
	picnic.ActivityTags = []string{"outdoors", "food"}
	picnic.PeopleTags = []string{"Maya", "Sam"}
	picnic.Media = []model.MediaItem{{Type: model.MediaTypePhoto, Filename: "lake.jpg", FileSize: 500}}
	picnic.PostType = model.PostTypePhoto
	mustCreatePost(t, s, picnic)

	future := newPost(home.ID, base.AddDate(0, 0, 3), 6, "Scheduled letter")
	future.ScheduledFor = timePtr(base.AddDate(0, 6, 0))
	mustCreatePost(t, s, future)

	count := func(f store.PostFilter) int {
		t.Helper()
		n, err := s.Posts().Count(ctx, f)
		if err != nil {
			t.Fatalf("count %+v: %v", f, err)
		}
		return n
	}

	if n := count(store.PostFilter{}); n != 4 {
		t.Fatalf("unfiltered count = %d, want 4", n)
	}
	if n := count(store.PostFilter{PersonaID: &home.ID}); n != 3 {
		t.Fatalf("persona count = %d, want 3", n)
	}
	if n := count(store.PostFilter{MoodMin: intPtr(8)}); n != 2 {
		t.Fatalf("moodMin count = %d, want 2", n)
	}
	if n := count(store.PostFilter{Mood: intPtr(3)}); n != 1 {
		t.Fatalf("mood count = %d, want 1", n)
	}
	if n := count(store.PostFilter{AnyTags: []string{"outdoors", "work"}}); n != 3 {
		t.Fatalf("anyTags count = %d, want 3", n)
	}
	if n := count(store.PostFilter{AllTags: []string{"outdoors", "food"}}); n != 1 {
		t.Fatalf("allTags count = %d, want 1", n)
	}
	if n := count(store.PostFilter{People: []string{"Sam"}}); n != 1 {
		t.Fatalf("people count = %d, want 1", n)
	}
	if n := count(store.PostFilter{HasMedia: boolPtr(true)}); n != 1 {
		t.Fatalf("hasMedia count = %d, want 1", n)
	}
	if n := count(store.PostFilter{Special: boolPtr(true)}); n != 1 {
		t.Fatalf("special count = %d, want 1", n)
	}
	if n := count(store.PostFilter{PostType: ptPtr(model.PostTypePhoto)}); n != 1 {
		t.Fatalf("postType count = %d, want 1", n)
	}
	if n := count(store.PostFilter{Caption: "lake"}); n != 1 {
		t.Fatalf("caption count = %d, want 1", n)
	}
	if n := count(store.PostFilter{From: timePtr(base.AddDate(0, 0, 1)), To: timePtr(base.AddDate(0, 0, 2))}); n != 2 {
		t.Fatalf("range count = %d, want 2", n)
	}
	// The scheduled letter is hidden until its visibility instant.
	if n := count(store.PostFilter{VisibleAt: timePtr(base.AddDate(0, 0, 5))}); n != 3 {
		t.Fatalf("visibleAt count = %d, want 3", n)
	}
	if n := count(store.PostFilter{VisibleAt: timePtr(base.AddDate(1, 0, 0))}); n != 4 {
		t.Fatalf("visibleAt after schedule count = %d, want 4", n)
	}

	list, err := s.Posts().List(ctx, store.PostFilter{PersonaID: &home.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Fatalf("list not newest-first at %d", i)
		}
	}
}

func ptPtr(pt model.PostType) *model.PostType { return &pt }

func testPostPagination(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)

	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		mustCreatePost(t, s, newPost(p.ID, base.AddDate(0, 0, i), 5, fmt.Sprintf("entry %d", i)))
	}

	page1, err := s.Posts().List(ctx, store.PostFilter{Limit: 2})
	if err != nil || len(page1) != 2 {
		t.Fatalf("page1 = (%d, %v), want 2", len(page1), err)
	}
	page2, err := s.Posts().List(ctx, store.PostFilter{Limit: 2, Offset: 2})
	if err != nil || len(page2) != 2 {
		t.Fatalf("page2 = (%d, %v), want 2", len(page2), err)
	}
	if page1[0].Caption != "entry 4" || page2[0].Caption != "entry 2" {
		t.Fatalf("pagination order: %q then %q", page1[0].Caption, page2[0].Caption)
	}
	rest, err := s.Posts().List(ctx, store.PostFilter{Offset: 4})
	if err != nil || len(rest) != 1 || rest[0].Caption != "entry 0" {
		t.Fatalf("offset-only page = (%v, %v)", rest, err)
	}
}

func testPostBatches(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)

	base := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	batch := []*model.Post{
		newPost(p.ID, base, 5, "one"),
		newPost(p.ID, base.AddDate(0, 0, 1), 6, "two"),
		newPost(p.ID, base.AddDate(0, 0, 2), 7, "three"),
	}
	if err := s.Posts().CreateBatch(ctx, batch); err != nil {
		t.Fatalf("createBatch: %v", err)
	}
	for i, b := range batch {
		if b.ID == "" {
			t.Fatalf("batch item %d has no id", i)
		}
	}

	n, err := s.Posts().DeleteBatch(ctx, []string{batch[0].ID, batch[1].ID, "no-such"})
	if err != nil || n != 2 {
		t.Fatalf("deleteBatch = (%d, %v), want 2", n, err)
	}

	n, err = s.Posts().DeleteOlderThan(ctx, base.AddDate(0, 0, 30))
	if err != nil || n != 1 {
		t.Fatalf("deleteOlderThan = (%d, %v), want 1", n, err)
	}
	if n, _ := s.Posts().Count(ctx, store.PostFilter{}); n != 0 {
		t.Fatalf("posts left after sweeps: %d", n)
	}

	// A batch with a bad reference writes nothing.
	bad := []*model.Post{
		newPost(p.ID, base, 5, "good"),
		newPost("no-such-persona", base, 5, "bad"),
	}
	if err := s.Posts().CreateBatch(ctx, bad); !model.IsNotFoundError(err) {
		t.Fatalf("bad batch = %v, want not found", err)
	}
	if n, _ := s.Posts().Count(ctx, store.PostFilter{}); n != 0 {
		t.Fatalf("partial batch leaked %d posts", n)
	}
}

func testMoodAggregates(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)

	avg, err := s.Posts().AverageMood(ctx, store.PostFilter{})
	if err != nil {
		t.Fatalf("averageMood empty: %v", err)
	}
	if avg != nil {
		t.Fatalf("averageMood on empty store = %v, want nil", *avg)
	}

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, mood := range []int{8, 7, 9} {
		mustCreatePost(t, s, newPost(p.ID, base.AddDate(0, 0, i), mood, fmt.Sprintf("entry %d", i)))
	}

	avg, err = s.Posts().AverageMood(ctx, store.PostFilter{})
	if err != nil || avg == nil {
		t.Fatalf("averageMood = (%v, %v)", avg, err)
	}
	if *avg != 8.0 {
		t.Fatalf("averageMood = %v, want 8.0", *avg)
	}

	dist, err := s.Posts().MoodDistribution(ctx, store.PostFilter{})
	if err != nil {
		t.Fatalf("moodDistribution: %v", err)
	}
	want := map[int]int{7: 1, 8: 1, 9: 1}
	if len(dist) != len(want) {
		t.Fatalf("distribution = %v, want %v", dist, want)
	}
	sum := 0
	for mood, n := range dist {
		if want[mood] != n {
			t.Fatalf("distribution = %v, want %v", dist, want)
		}
		sum += n
	}
	total, _ := s.Posts().Count(ctx, store.PostFilter{})
	if sum != total {
		t.Fatalf("distribution sums to %d, count is %d", sum, total)
	}
}

func testTopTags(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tagSets := [][]string{
		{"hiking", "outdoors"},
		{"hiking", "food"},
		{"hiking", "outdoors"},
		{"food"},
	}
	for i, tags := range tagSets {
		post := newPost(p.ID, base.AddDate(0, 0, i), 5, fmt.Sprintf("entry %d", i))
		post.ActivityTags = tags
		post.PeopleTags = []string{"Maya"}
		mustCreatePost(t, s, post)
	}

	top, err := s.Posts().TopActivityTags(ctx, 2)
	if err != nil {
		t.Fatalf("topActivityTags: %v", err)
	}
	if len(top) != 2 || top[0].Tag != "hiking" || top[0].Count != 3 {
		t.Fatalf("top tags = %v", top)
	}
	// food and outdoors tie at 2; alphabetical order breaks the tie.
	if top[1].Tag != "food" || top[1].Count != 2 {
		t.Fatalf("tie-break = %v", top[1])
	}

	people, err := s.Posts().TopPeople(ctx, 5)
	if err != nil || len(people) != 1 || people[0].Tag != "Maya" || people[0].Count != 4 {
		t.Fatalf("topPeople = (%v, %v)", people, err)
	}

	none, err := s.Posts().TopActivityTags(ctx, 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("limit 0 = (%v, %v)", none, err)
	}
}

func testPostingDates(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)

	first, err := s.Posts().FirstPostDate(ctx)
	if err != nil || first != nil {
		t.Fatalf("firstPostDate empty = (%v, %v), want (nil, nil)", first, err)
	}

	d1 := time.Date(2024, 11, 2, 8, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 1, 15, 21, 30, 0, 0, time.UTC)
	mustCreatePost(t, s, newPost(p.ID, d2, 5, "later"))
	mustCreatePost(t, s, newPost(p.ID, d1, 5, "earlier"))

	first, err = s.Posts().FirstPostDate(ctx)
	if err != nil || first == nil || !first.Equal(d1) {
		t.Fatalf("firstPostDate = (%v, %v), want %v", first, err, d1)
	}
	last, err := s.Posts().MostRecentPostDate(ctx)
	if err != nil || last == nil || !last.Equal(d2) {
		t.Fatalf("mostRecentPostDate = (%v, %v), want %v", last, err, d2)
	}

	dates, err := s.Posts().PostingDates(ctx)
	if err != nil || len(dates) != 2 {
		t.Fatalf("postingDates = (%v, %v)", dates, err)
	}
	if !dates[0].Equal(d1) || !dates[1].Equal(d2) {
		t.Fatalf("postingDates not ascending: %v", dates)
	}
}

func testOnThisDay(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)

	ref := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	oneYear := mustCreatePost(t, s, newPost(p.ID, time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC), 7, "one year ago"))
	threeYears := mustCreatePost(t, s, newPost(p.ID, time.Date(2023, 3, 15, 22, 0, 0, 0, time.UTC), 6, "three years ago"))
	// Same day in the ref year and an off-by-one day are both excluded.
	mustCreatePost(t, s, newPost(p.ID, time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC), 5, "today"))
	mustCreatePost(t, s, newPost(p.ID, time.Date(2025, 3, 16, 9, 0, 0, 0, time.UTC), 5, "wrong day"))

	got, err := s.Posts().ListOnThisDay(ctx, ref)
	if err != nil {
		t.Fatalf("listOnThisDay: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("listOnThisDay returned %d posts, want 2", len(got))
	}
	if got[0].ID != oneYear.ID || got[1].ID != threeYears.ID {
		t.Fatalf("listOnThisDay order = %q, %q", got[0].Caption, got[1].Caption)
	}
}

func testWeekAroundLastYear(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)

	ref := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)
	center := ref.AddDate(-1, 0, 0)
	mustCreatePost(t, s, newPost(p.ID, center.AddDate(0, 0, -7), 5, "window start"))
	mustCreatePost(t, s, newPost(p.ID, center, 5, "center"))
	mustCreatePost(t, s, newPost(p.ID, center.AddDate(0, 0, 7), 5, "window end"))
	mustCreatePost(t, s, newPost(p.ID, center.AddDate(0, 0, -8), 5, "before window"))
	mustCreatePost(t, s, newPost(p.ID, center.AddDate(0, 0, 8), 5, "after window"))

	got, err := s.Posts().ListWeekAroundLastYear(ctx, ref)
	if err != nil {
		t.Fatalf("listWeekAroundLastYear: %v", err)
	}
	if len(got) != 3 {
		captions := make([]string, len(got))
		for i, g := range got {
			captions[i] = g.Caption
		}
		t.Fatalf("window returned %v, want 3 posts", captions)
	}
}

func testMediaLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)
	post := mustCreatePost(t, s, newPost(p.ID, time.Now().AddDate(0, 0, -1), 5, "host"))

	_, err := s.MediaItems().Create(ctx, &model.MediaItem{
		PostID: "no-such-post", Type: model.MediaTypePhoto, Filename: "x.jpg", FileSize: 10,
	})
	if !model.IsNotFoundError(err) {
		t.Fatalf("create against missing post = %v, want not found", err)
	}

	second, err := s.MediaItems().Create(ctx, &model.MediaItem{
		PostID: post.ID, Type: model.MediaTypeVideo, Filename: "clip.mp4", FileSize: 800, Position: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first, err := s.MediaItems().Create(ctx, &model.MediaItem{
		PostID: post.ID, Type: model.MediaTypePhoto, Filename: "cover.jpg", FileSize: 200, Position: 0,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	items, err := s.MediaItems().ListByPost(ctx, post.ID)
	if err != nil || len(items) != 2 {
		t.Fatalf("listByPost = (%d, %v), want 2", len(items), err)
	}
	if items[0].ID != first.ID || items[1].ID != second.ID {
		t.Fatalf("listByPost not position-ordered: %v, %v", items[0].Filename, items[1].Filename)
	}

	primary, err := s.MediaItems().Primary(ctx, post.ID)
	if err != nil || primary == nil || primary.ID != first.ID {
		t.Fatalf("primary = (%v, %v), want cover.jpg", primary, err)
	}

	n, err := s.MediaItems().CountByPost(ctx, post.ID)
	if err != nil || n != 2 {
		t.Fatalf("countByPost = (%d, %v), want 2", n, err)
	}

	inUse, err := s.MediaItems().FilenameInUse(ctx, "cover.jpg")
	if err != nil || !inUse {
		t.Fatalf("filenameInUse(cover.jpg) = (%v, %v), want true", inUse, err)
	}
	inUse, err = s.MediaItems().FilenameInUse(ctx, "ghost.jpg")
	if err != nil || inUse {
		t.Fatalf("filenameInUse(ghost.jpg) = (%v, %v), want false", inUse, err)
	}

	first.Filename = "cover-v2.jpg"
	if _, err := s.MediaItems().Update(ctx, first); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.MediaItems().Get(ctx, first.ID)
	if err != nil || got == nil || got.Filename != "cover-v2.jpg" {
		t.Fatalf("get after update = (%v, %v)", got, err)
	}

	if err := s.MediaItems().Delete(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, err := s.MediaItems().Get(ctx, second.ID); err != nil || got != nil {
		t.Fatalf("get after delete = (%v, %v), want (nil, nil)", got, err)
	}
}

func testMediaAggregates(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)
	post := mustCreatePost(t, s, newPost(p.ID, time.Now().AddDate(0, 0, -1), 5, "host"))

	sizes := []struct {
		name string
		typ  model.MediaType
		size int64
	}{
		{"a.jpg", model.MediaTypePhoto, 100},
		{"b.jpg", model.MediaTypePhoto, 300},
		{"c.mp4", model.MediaTypeVideo, 5000},
	}
	for i, m := range sizes {
		if _, err := s.MediaItems().Create(ctx, &model.MediaItem{
			PostID: post.ID, Type: m.typ, Filename: m.name, FileSize: m.size, Position: i,
		}); err != nil {
			t.Fatalf("create %s: %v", m.name, err)
		}
	}

	total, err := s.MediaItems().TotalSize(ctx)
	if err != nil || total != 5400 {
		t.Fatalf("totalSize = (%d, %v), want 5400", total, err)
	}

	byType, err := s.MediaItems().SizeByType(ctx)
	if err != nil {
		t.Fatalf("sizeByType: %v", err)
	}
	if byType[model.MediaTypePhoto] != 400 || byType[model.MediaTypeVideo] != 5000 {
		t.Fatalf("sizeByType = %v", byType)
	}

	largest, err := s.MediaItems().Largest(ctx, 2)
	if err != nil || len(largest) != 2 {
		t.Fatalf("largest = (%d, %v), want 2", len(largest), err)
	}
	if largest[0].Filename != "c.mp4" || largest[1].Filename != "b.jpg" {
		t.Fatalf("largest order = %v, %v", largest[0].Filename, largest[1].Filename)
	}

	mt := model.MediaTypePhoto
	n, err := s.MediaItems().Count(ctx, store.MediaFilter{Type: &mt})
	if err != nil || n != 2 {
		t.Fatalf("count photos = (%d, %v), want 2", n, err)
	}

	orphans, err := s.MediaItems().Orphans(ctx)
	if err != nil || len(orphans) != 0 {
		t.Fatalf("orphans on clean store = (%v, %v)", orphans, err)
	}
	if n, err := s.MediaItems().DeleteOrphans(ctx); err != nil || n != 0 {
		t.Fatalf("deleteOrphans on clean store = (%d, %v)", n, err)
	}
}

func seedMemory(t *testing.T, s store.Store, post *model.Post, mt model.MemoryType, presentedAt time.Time) *model.Memory {
	t.Helper()
	m, err := s.Memories().Create(context.Background(), &model.Memory{
		Post: *post, Type: mt, PresentedAt: presentedAt,
	})
	if err != nil {
		t.Fatalf("create memory: %v", err)
	}
	return m
}

func testMemoryLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)
	post := mustCreatePost(t, s, newPost(p.ID, time.Now().AddDate(-1, 0, 0), 8, "a year back"))

	m := seedMemory(t, s, post, model.OnThisDay(1), time.Now())
	if m.ID == "" {
		t.Fatal("create did not assign an id")
	}

	got, err := s.Memories().Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Post.ID != post.ID || got.Post.Caption != "a year back" {
		t.Fatalf("memory does not carry the live post: %+v", got)
	}
	if got.Type.Kind != model.KindOnThisDay || got.Type.YearsAgo != 1 {
		t.Fatalf("type round trip = %+v", got.Type)
	}
	if got.WasViewed {
		t.Fatal("new memory marked viewed")
	}

	if err := s.Memories().MarkViewed(ctx, m.ID); err != nil {
		t.Fatalf("markViewed: %v", err)
	}
	got, _ = s.Memories().Get(ctx, m.ID)
	if !got.WasViewed {
		t.Fatal("markViewed not applied")
	}

	got, err = s.Memories().UpdateNotes(ctx, m.ID, "what a trip")
	if err != nil || got.Notes == nil || *got.Notes != "what a trip" {
		t.Fatalf("updateNotes = (%+v, %v)", got, err)
	}
	if _, err := s.Memories().UpdateNotes(ctx, "no-such", "x"); !model.IsNotFoundError(err) {
		t.Fatalf("updateNotes missing = %v, want not found", err)
	}

	if err := s.Memories().Delete(ctx, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, err := s.Memories().Get(ctx, m.ID); err != nil || got != nil {
		t.Fatalf("get after delete = (%v, %v), want (nil, nil)", got, err)
	}

	// Memories require an existing post.
	ghost := *post
	ghost.ID = "no-such-post"
	if _, err := s.Memories().Create(ctx, &model.Memory{Post: ghost, Type: model.RandomThrowback()}); !model.IsNotFoundError(err) {
		t.Fatalf("create against missing post = %v, want not found", err)
	}
}

func testMemoryDanglingPost(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)
	post := mustCreatePost(t, s, newPost(p.ID, time.Now().AddDate(-1, 0, 0), 8, "doomed"))
	keeper := mustCreatePost(t, s, newPost(p.ID, time.Now().AddDate(-2, 0, 0), 6, "kept"))

	doomed := seedMemory(t, s, post, model.OnThisDay(1), time.Now())
	kept := seedMemory(t, s, keeper, model.OnThisDay(2), time.Now())

	if err := s.Posts().Delete(ctx, post.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}

	// The dangling row is invisible to reads.
	if got, err := s.Memories().Get(ctx, doomed.ID); err != nil || got != nil {
		t.Fatalf("dangling get = (%v, %v), want (nil, nil)", got, err)
	}
	list, err := s.Memories().List(ctx, store.MemoryFilter{})
	if err != nil || len(list) != 1 || list[0].ID != kept.ID {
		t.Fatalf("list with dangling row = (%v, %v), want only the kept memory", list, err)
	}

	// DeleteForPost clears the leftover row.
	n, err := s.Memories().DeleteForPost(ctx, post.ID)
	if err != nil || n != 1 {
		t.Fatalf("deleteForPost = (%d, %v), want 1", n, err)
	}
}

func testMemoryFilters(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)
	postA := mustCreatePost(t, s, newPost(p.ID, time.Now().AddDate(-1, 0, 0), 8, "a"))
	postB := mustCreatePost(t, s, newPost(p.ID, time.Now().AddDate(-2, 0, 0), 6, "b"))

	today := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	m1 := seedMemory(t, s, postA, model.OnThisDay(1), today)
	m2 := seedMemory(t, s, postB, model.ThisWeekLastYear(), today.Add(2*time.Hour))
	m3 := seedMemory(t, s, postA, model.RandomThrowback(), yesterday)
	if err := s.Memories().MarkViewed(ctx, m1.ID, m3.ID); err != nil {
		t.Fatalf("markViewed: %v", err)
	}

	count := func(f store.MemoryFilter) int {
		t.Helper()
		n, err := s.Memories().Count(ctx, f)
		if err != nil {
			t.Fatalf("count %+v: %v", f, err)
		}
		return n
	}

	if n := count(store.MemoryFilter{}); n != 3 {
		t.Fatalf("unfiltered = %d, want 3", n)
	}
	if n := count(store.MemoryFilter{Day: &today}); n != 2 {
		t.Fatalf("day = %d, want 2", n)
	}
	if n := count(store.MemoryFilter{PostID: &postA.ID}); n != 2 {
		t.Fatalf("postId = %d, want 2", n)
	}
	kind := model.KindOnThisDay
	if n := count(store.MemoryFilter{Kind: &kind}); n != 1 {
		t.Fatalf("kind onThisDay = %d, want 1", n)
	}
	kind = model.KindThisWeekLastYear
	if n := count(store.MemoryFilter{Kind: &kind}); n != 1 {
		t.Fatalf("kind thisWeekLastYear = %d, want 1", n)
	}
	if n := count(store.MemoryFilter{Viewed: boolPtr(false)}); n != 1 {
		t.Fatalf("unviewed = %d, want 1", n)
	}

	list, err := s.Memories().List(ctx, store.MemoryFilter{Day: &today})
	if err != nil || len(list) != 2 {
		t.Fatalf("list day = (%d, %v), want 2", len(list), err)
	}
	// Newest presentation first.
	if list[0].ID != m2.ID || list[1].ID != m1.ID {
		t.Fatalf("list order = %v, %v", list[0].ID, list[1].ID)
	}

	n, err := s.Memories().DeleteBatch(ctx, []string{m1.ID, m3.ID})
	if err != nil || n != 2 {
		t.Fatalf("deleteBatch = (%d, %v), want 2", n, err)
	}
}

func testMemoryStats(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)
	post := mustCreatePost(t, s, newPost(p.ID, time.Now().AddDate(-3, 0, 0), 8, "way back"))

	now := time.Now()
	m1 := seedMemory(t, s, post, model.OnThisDay(1), now)
	seedMemory(t, s, post, model.OnThisDay(3), now)
	m3 := seedMemory(t, s, post, model.ThisWeekLastYear(), now)
	seedMemory(t, s, post, model.RandomThrowback(), now)

	if err := s.Memories().MarkViewed(ctx, m1.ID, m3.ID); err != nil {
		t.Fatalf("markViewed: %v", err)
	}
	if _, err := s.Memories().UpdateNotes(ctx, m1.ID, "note"); err != nil {
		t.Fatalf("updateNotes: %v", err)
	}

	stats, err := s.Memories().Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 4 || stats.Viewed != 2 || stats.WithNotes != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.EngagementRate != 0.5 {
		t.Fatalf("engagementRate = %v, want 0.5", stats.EngagementRate)
	}
	if stats.CountsByKind[model.KindOnThisDay] != 2 ||
		stats.CountsByKind[model.KindThisWeekLastYear] != 1 ||
		stats.CountsByKind[model.KindRandomThrowback] != 1 {
		t.Fatalf("countsByKind = %v", stats.CountsByKind)
	}
	if stats.TotalByYearsAgo[1] != 1 || stats.TotalByYearsAgo[3] != 1 {
		t.Fatalf("totalByYearsAgo = %v", stats.TotalByYearsAgo)
	}
	if stats.ViewedByYearsAgo[1] != 1 || stats.ViewedByYearsAgo[3] != 0 {
		t.Fatalf("viewedByYearsAgo = %v", stats.ViewedByYearsAgo)
	}
}

func testMemoryCleanup(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)
	post := mustCreatePost(t, s, newPost(p.ID, time.Now().AddDate(-2, 0, 0), 7, "old"))

	cutoff := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	oldViewed := seedMemory(t, s, post, model.OnThisDay(1), cutoff.AddDate(0, -2, 0))
	oldUnviewed := seedMemory(t, s, post, model.OnThisDay(2), cutoff.AddDate(0, -1, 0))
	fresh := seedMemory(t, s, post, model.RandomThrowback(), cutoff.AddDate(0, 1, 0))
	if err := s.Memories().MarkViewed(ctx, oldViewed.ID); err != nil {
		t.Fatalf("markViewed: %v", err)
	}

	// keepUnviewed spares the stale-but-unseen memory.
	n, err := s.Memories().DeleteOlderThan(ctx, cutoff, true)
	if err != nil || n != 1 {
		t.Fatalf("deleteOlderThan keepUnviewed = (%d, %v), want 1", n, err)
	}
	if got, _ := s.Memories().Get(ctx, oldUnviewed.ID); got == nil {
		t.Fatal("unviewed memory swept despite keepUnviewed")
	}

	n, err = s.Memories().DeleteOlderThan(ctx, cutoff, false)
	if err != nil || n != 1 {
		t.Fatalf("deleteOlderThan = (%d, %v), want 1", n, err)
	}

	n, err = s.Memories().DeleteAll(ctx)
	if err != nil || n != 1 {
		t.Fatalf("deleteAll = (%d, %v), want 1", n, err)
	}
	if got, _ := s.Memories().Get(ctx, fresh.ID); got != nil {
		t.Fatal("deleteAll left a memory behind")
	}
}

func testMemoryPresentation(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, p := seedIdentity(t, s)
	postA := mustCreatePost(t, s, newPost(p.ID, time.Now().AddDate(-1, 0, 0), 8, "a"))
	postB := mustCreatePost(t, s, newPost(p.ID, time.Now().AddDate(-2, 0, 0), 6, "b"))

	today := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	earlier := today.AddDate(0, 0, -40)

	seedMemory(t, s, postA, model.OnThisDay(1), earlier)
	seedMemory(t, s, postA, model.RandomThrowback(), today)

	on, err := s.Memories().PresentedOn(ctx, postA.ID, today)
	if err != nil || !on {
		t.Fatalf("presentedOn(postA, today) = (%v, %v), want true", on, err)
	}
	on, err = s.Memories().PresentedOn(ctx, postB.ID, today)
	if err != nil || on {
		t.Fatalf("presentedOn(postB, today) = (%v, %v), want false", on, err)
	}

	ids, err := s.Memories().PresentedPostIDs(ctx, today)
	if err != nil || len(ids) != 1 || ids[0] != postA.ID {
		t.Fatalf("presentedPostIDs = (%v, %v), want [postA]", ids, err)
	}

	last, err := s.Memories().LastPresentation(ctx, postA.ID)
	if err != nil || last == nil || !last.Equal(today) {
		t.Fatalf("lastPresentation = (%v, %v), want %v", last, err, today)
	}
	last, err = s.Memories().LastPresentation(ctx, postB.ID)
	if err != nil || last != nil {
		t.Fatalf("lastPresentation never shown = (%v, %v), want (nil, nil)", last, err)
	}
}

func testSettings(t *testing.T, s store.Store) {
	ctx := context.Background()

	v, err := s.Settings().Get(ctx, "missing")
	if err != nil || v != "" {
		t.Fatalf(`get missing = (%q, %v), want ("", nil)`, v, err)
	}

	if err := s.Settings().Set(ctx, store.SettingOnboardingComplete, "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err = s.Settings().Get(ctx, store.SettingOnboardingComplete)
	if err != nil || v != "true" {
		t.Fatalf(`get = (%q, %v), want "true"`, v, err)
	}

	if err := s.Settings().Set(ctx, store.SettingOnboardingComplete, "false"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, _ = s.Settings().Get(ctx, store.SettingOnboardingComplete)
	if v != "false" {
		t.Fatalf("overwrite not applied: %q", v)
	}

	if err := s.Settings().Delete(ctx, store.SettingOnboardingComplete); err != nil {
		t.Fatalf("delete: %v", err)
	}
	v, _ = s.Settings().Get(ctx, store.SettingOnboardingComplete)
	if v != "" {
		t.Fatalf("delete not applied: %q", v)
	}
}

func testDeleteAccount(t *testing.T, s store.Store) {
	ctx := context.Background()
	u, p := seedIdentity(t, s)

	post := newPost(p.ID, time.Now().AddDate(-1, 0, 0), 7, "everything")
	post.Media = []model.MediaItem{{Type: model.MediaTypePhoto, Filename: "m.jpg", FileSize: 10}}
	saved := mustCreatePost(t, s, post)
	seedMemory(t, s, saved, model.OnThisDay(1), time.Now())
	if err := s.Settings().Set(ctx, store.SettingOnboardingComplete, "true"); err != nil {
		t.Fatalf("set setting: %v", err)
	}

	if err := s.Users().DeleteAccount(ctx, u.ID); err != nil {
		t.Fatalf("deleteAccount: %v", err)
	}

	if has, _ := s.Users().HasUser(ctx); has {
		t.Fatal("user survived deleteAccount")
	}
	if ps, _ := s.Personas().List(ctx); len(ps) != 0 {
		t.Fatalf("%d personas survived deleteAccount", len(ps))
	}
	if n, _ := s.Posts().Count(ctx, store.PostFilter{}); n != 0 {
		t.Fatalf("%d posts survived deleteAccount", n)
	}
	if n, _ := s.MediaItems().Count(ctx, store.MediaFilter{}); n != 0 {
		t.Fatalf("%d media items survived deleteAccount", n)
	}
	if n, _ := s.Memories().Count(ctx, store.MemoryFilter{}); n != 0 {
		t.Fatalf("%d memories survived deleteAccount", n)
	}
	if v, _ := s.Settings().Get(ctx, store.SettingOnboardingComplete); v != "" {
		t.Fatalf("settings survived deleteAccount: %q", v)
	}
}
