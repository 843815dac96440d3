package model

import "time"

// PostType describes the primary content of a post.
type PostType string

const (
	PostTypeText       PostType = "text"
	PostTypePhoto      PostType = "photo"
	PostTypeVideo      PostType = "video"
	PostTypeVoiceMemo  PostType = "voiceMemo"
	PostTypePhotoVideo PostType = "photoVideo"
)

// MediaType distinguishes photos from videos.
type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
)

// PersonaColor is the closed set of colors a persona can carry.
type PersonaColor string

const (
	ColorBlue   PersonaColor = "blue"
	ColorGreen  PersonaColor = "green"
	ColorRed    PersonaColor = "red"
	ColorOrange PersonaColor = "orange"
	ColorYellow PersonaColor = "yellow"
	ColorPurple PersonaColor = "purple"
	ColorPink   PersonaColor = "pink"
	ColorTeal   PersonaColor = "teal"
	ColorGray   PersonaColor = "gray"
	ColorBrown  PersonaColor = "brown"
)

// PersonaColors lists every valid persona color.
var PersonaColors = []PersonaColor{
	ColorBlue, ColorGreen, ColorRed, ColorOrange, ColorYellow,
	ColorPurple, ColorPink, ColorTeal, ColorGray, ColorBrown,
}

// PersonaIcon is the closed set of icons a persona can carry.
type PersonaIcon string

const (
	IconBriefcase PersonaIcon = "briefcase"
	IconHouse     PersonaIcon = "house"
	IconHeart     PersonaIcon = "heart"
	IconStar      PersonaIcon = "star"
	IconBook      PersonaIcon = "book"
	IconLeaf      PersonaIcon = "leaf"
	IconMoon      PersonaIcon = "moon"
	IconCamera    PersonaIcon = "camera"
	IconMusic     PersonaIcon = "music"
	IconGlobe     PersonaIcon = "globe"
)

// Post is a single dated journal entry under a persona.
type Post struct {
	ID               string      `json:"id"`
	PersonaID        string      `json:"personaId"`
	Caption          string      `json:"caption"`
	Mood             int         `json:"mood"`
	ExperienceRating *int        `json:"experienceRating,omitempty"`
	PostType         PostType    `json:"postType"`
	Location         *string     `json:"location,omitempty"`
	ActivityTags     []string    `json:"activityTags,omitempty"`
	PeopleTags       []string    `json:"peopleTags,omitempty"`
	Media            []MediaItem `json:"media,omitempty"`
	IsGratitude      bool        `json:"isGratitude"`
	IsRant           bool        `json:"isRant"`
	IsDream          bool        `json:"isDream"`
	IsFutureYou      bool        `json:"isFutureYou"`
	ScheduledFor     *time.Time  `json:"scheduledFor,omitempty"`
	AutoDeleteDate   *time.Time  `json:"autoDeleteDate,omitempty"`
	VoiceMemoFile    *string     `json:"voiceMemoFile,omitempty"`
	VoiceMemoSeconds *float64    `json:"voiceMemoSeconds,omitempty"`
	MemoryNotes      *string     `json:"memoryNotes,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// HasMedia reports whether the post owns at least one media item.
func (p *Post) HasMedia() bool { return len(p.Media) > 0 }

// IsSpecial reports whether any of the special-post flags is set.
func (p *Post) IsSpecial() bool {
	return p.IsGratitude || p.IsRant || p.IsDream || p.IsFutureYou
}

// AddActivityTag inserts a tag, keeping the set duplicate-free.
func (p *Post) AddActivityTag(tag string) {
	p.ActivityTags = appendUnique(p.ActivityTags, tag)
}

// AddPeopleTag inserts a person mention, keeping the set duplicate-free.
func (p *Post) AddPeopleTag(person string) {
	p.PeopleTags = appendUnique(p.PeopleTags, person)
}

func appendUnique(set []string, v string) []string {
	for _, s := range set {
		if s == v {
			return set
		}
	}
	return append(set, v)
}

// UserPreferences is the nested settings value carried by the user record.
type UserPreferences struct {
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	DailyReminderHour    int    `json:"dailyReminderHour"`
	AppLockEnabled       bool   `json:"appLockEnabled"`
	HideRants            bool   `json:"hideRants"`
	Theme                string `json:"theme"`
}

// DefaultPreferences returns the preferences a fresh user starts with.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		NotificationsEnabled: true,
		DailyReminderHour:    20,
		Theme:                "system",
	}
}

// User is the single owner of all data in an installation.
// TotalPosts, CurrentStreak and LongestStreak are denormalized counters
// maintained by explicit calls; they are never recomputed automatically.
type User struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Bio              *string         `json:"bio,omitempty"`
	Email            *string         `json:"email,omitempty"`
	ProfilePhoto     *string         `json:"profilePhoto,omitempty"`
	Preferences      UserPreferences `json:"preferences"`
	IsPremium        bool            `json:"isPremium"`
	PremiumExpiresAt *time.Time      `json:"premiumExpiresAt,omitempty"`
	TotalPosts       int             `json:"totalPosts"`
	CurrentStreak    int             `json:"currentStreak"`
	LongestStreak    int             `json:"longestStreak"`
	PersonaIDs       []string        `json:"personaIds,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Persona is a named context bucket that scopes a subset of posts.
type Persona struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Name        string       `json:"name"`
	Color       PersonaColor `json:"color"`
	Icon        PersonaIcon  `json:"icon"`
	Description *string      `json:"description,omitempty"`
	IsDefault   bool         `json:"isDefault"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// MediaItem is a photo or video attached to a post. Position preserves the
// order of items under their post.
type MediaItem struct {
	ID            string    `json:"id"`
	PostID        string    `json:"postId"`
	Type          MediaType `json:"type"`
	Filename      string    `json:"filename"`
	ThumbnailFile *string   `json:"thumbnailFile,omitempty"`
	FileSize      int64     `json:"fileSize"`
	Width         *int      `json:"width,omitempty"`
	Height        *int      `json:"height,omitempty"`
	Duration      *float64  `json:"duration,omitempty"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Memory wraps a past post for re-presentation. The embedded post is fetched
// live at read time; only the presentation metadata is persisted.
type Memory struct {
	ID          string     `json:"id"`
	Post        Post       `json:"post"`
	Type        MemoryType `json:"type"`
	PresentedAt time.Time  `json:"presentedAt"`
	WasViewed   bool       `json:"wasViewed"`
	Notes       *string    `json:"notes,omitempty"`
}

// MemoryStats aggregates engagement over stored memories.
type MemoryStats struct {
	Total            int                `json:"total"`
	Viewed           int                `json:"viewed"`
	WithNotes        int                `json:"withNotes"`
	EngagementRate   float64            `json:"engagementRate"`
	CountsByKind     map[MemoryKind]int `json:"countsByKind"`
	ViewedByYearsAgo map[int]int        `json:"viewedByYearsAgo"`
	TotalByYearsAgo  map[int]int        `json:"totalByYearsAgo"`
}

// TagCount pairs a tag (or person) with its usage count.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// AccountExport is the JSON-serializable snapshot returned by account export.
type AccountExport struct {
	ExportedAt time.Time    `json:"exportedAt"`
	User       *User        `json:"user"`
	Personas   []*Persona   `json:"personas"`
	Posts      []*Post      `json:"posts"`
	Media      []*MediaItem `json:"media"`
	Memories   *MemoryStats `json:"memoryStats,omitempty"`
}
