package domain

import "time"

// TimeOfDay is the optional feed facet, carried by the referenced mood record.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

func IsValidTimeOfDay(v string) bool {
	switch TimeOfDay(v) {
	case TimeMorning, TimeAfternoon, TimeEvening, TimeNight:
		return true
	}
	return false
}

type SortBy string

const (
	SortNewest        SortBy = "newest"
	SortMostReactions SortBy = "most_reactions"
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// FeedFilters is the caller-facing feed query. ShareType is required,
// everything else optional.
type FeedFilters struct {
	ShareType ShareType
	TimeOfDay TimeOfDay
	SortBy    SortBy
	Limit     int
	Offset    int
}

// Normalize applies defaults and clamps the window to [1,MaxFeedLimit].
func (f FeedFilters) Normalize() FeedFilters {
	if f.SortBy == "" {
		f.SortBy = SortNewest
	}
	if f.Limit <= 0 {
		f.Limit = DefaultFeedLimit
	}
	if f.Limit > MaxFeedLimit {
		f.Limit = MaxFeedLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// FeedQuery is the store-level form of a feed read: normalized filters plus
// the instant at which visibility is evaluated.
type FeedQuery struct {
	ShareType ShareType
	TimeOfDay TimeOfDay
	SortBy    SortBy
	Limit     int
	Offset    int
	Now       time.Time
}

// Author is the pseudonymous display profile joined into a feed row.
type Author struct {
	Nickname string `bson:"nickname" json:"nickname"`
	AvatarID string `bson:"avatar_id" json:"avatar_id"`
}

type Reactions struct {
	Count         int  `json:"count"`
	ViewerReacted bool `json:"viewer_reacted"`
}

// FeedPost is the composed read view over a share. It is built per query and
// never persisted. User is nil when profile resolution failed or the profile
// is gone; the row still renders.
type FeedPost struct {
	Share     Share     `json:"share"`
	User      *Author   `json:"user,omitempty"`
	Reactions Reactions `json:"reactions"`
}
