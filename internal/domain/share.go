package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShareType is the category of an ephemeral share post.
type ShareType string

const (
	ShareSupportNeeded ShareType = "support_needed"
	ShareJoy           ShareType = "joy_share"
	ShareAchievement   ShareType = "achievement"
)

// ShareTTL is the fixed visibility window of a share. expires_at is always
// created_at + ShareTTL, set server-side; client input is never trusted.
const ShareTTL = 24 * time.Hour

// MaxMessageRunes limits the optional message, counted in Unicode code points.
const MaxMessageRunes = 10

// ShareTypeFeelings maps each share type to its fixed feeling vocabulary.
var ShareTypeFeelings = map[ShareType][]string{
	ShareSupportNeeded: {"とても辛い", "疲れた", "不安", "モヤモヤする"},
	ShareJoy:           {"すごく嬉しい!", "良いことがあった", "幸せ", "充実してる"},
	ShareAchievement:   {"やり切った!", "勉強頑張った", "体動かした", "目標達成"},
}

// Share is an ephemeral post derived from a private mood record.
// Field names are the persisted contract; other services read these.
type Share struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	MoodRecordID  primitive.ObjectID `bson:"mood_record_id" json:"mood_record_id"`
	ShareType     ShareType          `bson:"share_type" json:"share_type"`
	Feeling       string             `bson:"feeling" json:"feeling"`
	Message       string             `bson:"message,omitempty" json:"message,omitempty"`
	ReactionCount int                `bson:"reaction_count" json:"reaction_count"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt     time.Time          `bson:"expires_at" json:"expires_at"`
}

// Visible reports whether the share may appear in a feed at the given
// instant. Visibility is derived from time on every read, never stored.
func (s Share) Visible(now time.Time) bool { return now.Before(s.ExpiresAt) }

func IsValidShareType(v string) bool {
	switch ShareType(v) {
	case ShareSupportNeeded, ShareJoy, ShareAchievement:
		return true
	}
	return false
}

// IsValidFeeling checks that the feeling belongs to the share type's vocabulary.
func IsValidFeeling(feeling string, st ShareType) bool {
	for _, f := range ShareTypeFeelings[st] {
		if f == feeling {
			return true
		}
	}
	return false
}

var (
	ErrInvalidShareType = errors.New("invalid share type")
	ErrInvalidFeeling   = errors.New("feeling does not match share type")

	// ErrNotFound covers both a missing share and a delete by a non-owner;
	// callers must not be able to tell the two apart.
	ErrNotFound = errors.New("share not found")

	// ErrStoreFailure is the single error kind for write-path store errors.
	ErrStoreFailure = errors.New("store operation failed")

	// ErrInvalidFilters is the single error kind for feed-read failures.
	ErrInvalidFilters = errors.New("invalid filters")
)

// MessageTooLongError carries the limit so the caller can surface it.
type MessageTooLongError struct {
	Max int
}

func (e MessageTooLongError) Error() string {
	return fmt.Sprintf("message exceeds %d characters", e.Max)
}
