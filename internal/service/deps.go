package service

import (
	"context"
	"time"

	"github.com/Saba3939/mood-harbor/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShareStore is the slice of the store the share subsystem needs. repo.Store
// satisfies it; tests use an in-memory fake.
type ShareStore interface {
	InsertShare(ctx context.Context, sh *domain.Share) error
	FindShareByID(ctx context.Context, id primitive.ObjectID) (*domain.Share, error)
	DeleteShareByOwner(ctx context.Context, id, owner primitive.ObjectID) (bool, error)
	FindExpired(ctx context.Context, now time.Time) ([]domain.Share, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	FeedQuery(ctx context.Context, q domain.FeedQuery) ([]domain.Share, error)
}

// Directory resolves author display data and per-viewer reaction state.
type Directory interface {
	AuthorByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Author, error)
	ViewerReacted(ctx context.Context, shareID, userID primitive.ObjectID) (bool, error)
}

// Prefs is the external notification-preference lookup.
type Prefs interface {
	ReactionNotificationMode(ctx context.Context, userID primitive.ObjectID) (domain.NotificationMode, error)
}
