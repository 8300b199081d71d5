package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// opTimeout bounds every store call; a timeout surfaces as a plain store
// error, callers never special-case it.
const opTimeout = 5 * time.Second

type Store struct {
	Client *mongo.Client
	DB     *mongo.Database

	colShares      *mongo.Collection
	colProfiles    *mongo.Collection
	colMoodRecords *mongo.Collection
	colReactions   *mongo.Collection
	colNotifPrefs  *mongo.Collection
}

func NewStore(ctx context.Context, uri, dbname string) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetRetryWrites(true).
		SetMaxPoolSize(50),
	)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := cli.Database(dbname)
	return &Store{
		Client:         cli,
		DB:             db,
		colShares:      db.Collection("shares"),
		colProfiles:    db.Collection("profiles"),
		colMoodRecords: db.Collection("mood_records"),
		colReactions:   db.Collection("share_reactions"),
		colNotifPrefs:  db.Collection("notification_settings"),
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error { return s.Client.Disconnect(ctx) }

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

// EnsureIndexes covers both feed sort orders and the reaper scan.
// The TTL index is a backstop only: it fires 72h after expiry so the hourly
// sweep always gets to notify owners first. Read-path visibility never
// depends on it.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.colShares.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "share_type", Value: 1}, {Key: "expires_at", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("type_visible_created"),
		},
		{
			Keys:    bson.D{{Key: "share_type", Value: 1}, {Key: "reaction_count", Value: -1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("type_reactions"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("owner"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(72 * 3600).SetName("ttl_backstop"),
		},
	})
	if err != nil {
		return err
	}

	_, err = s.colReactions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "share_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_share_user"),
		},
	})
	return err
}
