package repo

import (
	"context"

	"github.com/Saba3939/mood-harbor/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Read-only lookups against collections owned by other services: profiles,
// share_reactions and notification_settings.

// AuthorByUserID resolves the pseudonymous display profile for a share row.
// Returns (nil, nil) when the profile is gone; the feed degrades that row
// instead of failing the page.
func (s *Store) AuthorByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Author, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var a domain.Author
	err := s.colProfiles.FindOne(ctx, bson.M{"user_id": userID}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ViewerReacted(ctx context.Context, shareID, userID primitive.ObjectID) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := s.colReactions.CountDocuments(ctx, bson.M{"share_id": shareID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReactionNotificationMode defaults to off when the user never saved
// settings, matching the reaper's "no settings, no notice" behavior.
func (s *Store) ReactionNotificationMode(ctx context.Context, userID primitive.ObjectID) (domain.NotificationMode, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var ns domain.NotificationSettings
	err := s.colNotifPrefs.FindOne(ctx, bson.M{"user_id": userID}).Decode(&ns)
	if err == mongo.ErrNoDocuments {
		return domain.NotifyOff, nil
	}
	if err != nil {
		return "", err
	}
	return ns.ReactionNotificationMode, nil
}
