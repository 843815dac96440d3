// Package store defines the persistence contract behind all repositories.
// Implementations live under store/<driver>/ (sqlite, postgres) and are
// exercised by the shared compliance suite in store/storetest.
package store

import (
	"context"
	"time"

	"github.com/waybook/waybook/internal/model"
)

// Store exposes the per-entity repositories.
//
// Point reads on a missing id return (nil, nil); errors are reserved for
// store failures, constraint violations and corrupt records. Deletes of a
// missing id are no-ops. Sequential calls on one store observe their own
// writes; no cross-caller ordering is guaranteed.
type Store interface {
	Posts() Posts
	Users() Users
	Personas() Personas
	MediaItems() MediaItems
	Memories() Memories
	Settings() Settings

	HealthPing(ctx context.Context) error
	Close() error
}

// PostFilter composes the supported post-query dimensions. Zero values mean
// "no constraint". AllTags requires every listed tag; AnyTags at least one.
type PostFilter struct {
	PersonaID *string
	From      *time.Time // createdAt >= From
	To        *time.Time // createdAt <= To
	Mood      *int
	MoodMin   *int
	MoodMax   *int
	AnyTags   []string
	AllTags   []string
	People    []string // posts mentioning any of these people
	HasMedia  *bool
	Special   *bool // posts with at least one special flag set
	PostType  *model.PostType
	// VisibleAt hides posts scheduled after the given instant.
	VisibleAt *time.Time
	// Caption is a case-insensitive substring match on the caption.
	Caption string
	Limit   int
	Offset  int
}

// Posts is the post repository. List results are ordered by createdAt
// descending, id ascending as the tie-break.
type Posts interface {
	Create(ctx context.Context, p *model.Post) (*model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	Update(ctx context.Context, p *model.Post) (*model.Post, error)
	Delete(ctx context.Context, id string) error

	CreateBatch(ctx context.Context, posts []*model.Post) error
	DeleteBatch(ctx context.Context, ids []string) (int, error)
	DeleteByPersona(ctx context.Context, personaID string) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	List(ctx context.Context, f PostFilter) ([]*model.Post, error)
	Count(ctx context.Context, f PostFilter) (int, error)

	// ListOnThisDay returns posts whose creation month/day equal ref's,
	// from any earlier year (the ref year itself is excluded).
	ListOnThisDay(ctx context.Context, ref time.Time) ([]*model.Post, error)
	// ListWeekAroundLastYear returns posts created within seven days either
	// side of ref minus one calendar year, inclusive.
	ListWeekAroundLastYear(ctx context.Context, ref time.Time) ([]*model.Post, error)

	// AverageMood returns nil when no post matches; it never divides by zero.
	AverageMood(ctx context.Context, f PostFilter) (*float64, error)
	MoodDistribution(ctx context.Context, f PostFilter) (map[int]int, error)
	// TopActivityTags and TopPeople order by count descending, then name
	// ascending so results are reproducible.
	TopActivityTags(ctx context.Context, limit int) ([]model.TagCount, error)
	TopPeople(ctx context.Context, limit int) ([]model.TagCount, error)
	PostingDates(ctx context.Context) ([]time.Time, error)
	FirstPostDate(ctx context.Context) (*time.Time, error)
	MostRecentPostDate(ctx context.Context) (*time.Time, error)
}

// Users is the user repository. The store holds at most one user row; Create
// fails with a conflict when one already exists. Counters are explicit:
// nothing here recomputes totals or streaks from posts.
type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	Current(ctx context.Context) (*model.User, error)
	HasUser(ctx context.Context) (bool, error)
	Update(ctx context.Context, u *model.User) (*model.User, error)
	Delete(ctx context.Context, id string) error

	UpdatePreferences(ctx context.Context, id string, prefs model.UserPreferences) (*model.User, error)
	SetPremium(ctx context.Context, id string, premium bool, expiresAt *time.Time) (*model.User, error)
	UpdateProfile(ctx context.Context, id, name string, bio, photo *string) (*model.User, error)

	SetStats(ctx context.Context, id string, totalPosts, currentStreak, longestStreak int) error
	IncrementTotalPosts(ctx context.Context, id string) error
	DecrementTotalPosts(ctx context.Context, id string) error
	SetStreaks(ctx context.Context, id string, current, longest int) error

	AddPersonaID(ctx context.Context, id, personaID string) error
	RemovePersonaID(ctx context.Context, id, personaID string) error

	// DeleteAccount removes the user and everything it owns: personas,
	// posts, media, memories and app settings.
	DeleteAccount(ctx context.Context, id string) error
}

// Personas is the persona repository. Names are unique per user.
type Personas interface {
	Create(ctx context.Context, p *model.Persona) (*model.Persona, error)
	Get(ctx context.Context, id string) (*model.Persona, error)
	List(ctx context.Context) ([]*model.Persona, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Persona, error)
	ListByColor(ctx context.Context, color model.PersonaColor) ([]*model.Persona, error)
	Update(ctx context.Context, p *model.Persona) (*model.Persona, error)
	// Delete cascades to the persona's posts and their media.
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int, error)

	DefaultPersona(ctx context.Context, userID string) (*model.Persona, error)
	// SetDefault clears the previous default and sets the new one in a
	// single transaction, so two defaults are never observable.
	SetDefault(ctx context.Context, userID, personaID string) error
	ClearDefault(ctx context.Context, userID string) error

	NameInUse(ctx context.Context, userID, name string) (bool, error)
	PostCounts(ctx context.Context, userID string) (map[string]int, error)
	MostUsed(ctx context.Context, userID string) (*model.Persona, error)
}

// MediaFilter composes media-item query dimensions.
type MediaFilter struct {
	PostID *string
	Type   *model.MediaType
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// MediaItems is the media repository. ListByPost preserves item order.
type MediaItems interface {
	Create(ctx context.Context, m *model.MediaItem) (*model.MediaItem, error)
	Get(ctx context.Context, id string) (*model.MediaItem, error)
	List(ctx context.Context, f MediaFilter) ([]*model.MediaItem, error)
	Update(ctx context.Context, m *model.MediaItem) (*model.MediaItem, error)
	Delete(ctx context.Context, id string) error

	ListByPost(ctx context.Context, postID string) ([]*model.MediaItem, error)
	Primary(ctx context.Context, postID string) (*model.MediaItem, error)
	CountByPost(ctx context.Context, postID string) (int, error)

	Count(ctx context.Context, f MediaFilter) (int, error)
	TotalSize(ctx context.Context) (int64, error)
	SizeByType(ctx context.Context) (map[model.MediaType]int64, error)
	Largest(ctx context.Context, limit int) ([]*model.MediaItem, error)

	// Orphans are media rows whose post no longer exists.
	Orphans(ctx context.Context) ([]*model.MediaItem, error)
	DeleteOrphans(ctx context.Context) (int, error)
	FilenameInUse(ctx context.Context, filename string) (bool, error)
}

// MemoryFilter composes memory-query dimensions. Day selects memories
// presented on that calendar day (in the day's location).
type MemoryFilter struct {
	Day    *time.Time
	From   *time.Time
	To     *time.Time
	PostID *string
	Kind   *model.MemoryKind
	Viewed *bool
	Limit  int
	Offset int
}

// Memories is the presentation-state repository. Rows hold metadata only;
// the wrapped post is fetched live on every read, and rows whose post has
// been deleted are dropped from results.
type Memories interface {
	Create(ctx context.Context, m *model.Memory) (*model.Memory, error)
	Get(ctx context.Context, id string) (*model.Memory, error)
	Update(ctx context.Context, m *model.Memory) (*model.Memory, error)
	Delete(ctx context.Context, id string) error

	SaveBatch(ctx context.Context, ms []*model.Memory) error
	DeleteBatch(ctx context.Context, ids []string) (int, error)

	List(ctx context.Context, f MemoryFilter) ([]*model.Memory, error)
	Count(ctx context.Context, f MemoryFilter) (int, error)

	MarkViewed(ctx context.Context, ids ...string) error
	UpdateNotes(ctx context.Context, id, notes string) (*model.Memory, error)

	Stats(ctx context.Context) (*model.MemoryStats, error)

	// DeleteOlderThan removes memories presented before cutoff; when
	// keepUnviewed is set, unviewed memories survive the sweep.
	DeleteOlderThan(ctx context.Context, cutoff time.Time, keepUnviewed bool) (int, error)
	DeleteForPost(ctx context.Context, postID string) (int, error)
	DeleteAll(ctx context.Context) (int, error)

	PresentedOn(ctx context.Context, postID string, day time.Time) (bool, error)
	PresentedPostIDs(ctx context.Context, day time.Time) ([]string, error)
	LastPresentation(ctx context.Context, postID string) (*time.Time, error)
}

// Settings is a small key/value table for app state such as the
// onboarding-complete flag. Get returns ("", nil) for a missing key.
type Settings interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SettingOnboardingComplete is the settings key holding "true" once
// onboarding has finished.
const SettingOnboardingComplete = "onboarding_complete"
