package repo

import (
	"context"
	"time"

	"github.com/Saba3939/mood-harbor/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) InsertShare(ctx context.Context, sh *domain.Share) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.colShares.InsertOne(ctx, sh)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		sh.ID = oid
	}
	return nil
}

// FindShareByID returns (nil, nil) when the share does not exist.
func (s *Store) FindShareByID(ctx context.Context, id primitive.ObjectID) (*domain.Share, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var sh domain.Share
	err := s.colShares.FindOne(ctx, bson.M{"_id": id}).Decode(&sh)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// DeleteShareByOwner deletes only when the requester owns the share. The
// ownership check lives inside the delete predicate so there is no window
// between a read and the delete.
func (s *Store) DeleteShareByOwner(ctx context.Context, id, owner primitive.ObjectID) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.colShares.DeleteOne(ctx, bson.M{"_id": id, "user_id": owner})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

// FindExpired returns every share past its expiry with no upper bound, so a
// missed sweep still catches up.
func (s *Store) FindExpired(ctx context.Context, now time.Time) ([]domain.Share, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := s.colShares.Find(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Share
	for cur.Next(ctx) {
		var sh domain.Share
		if err := cur.Decode(&sh); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, cur.Err()
}

// DeleteExpired re-evaluates the expiry predicate at delete time instead of
// reusing a scanned id list; overlapping sweeps then delete zero or few rows
// instead of erroring.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.colShares.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func feedSort(by domain.SortBy) bson.D {
	// both orders tie-break on created_at then _id for a stable window
	if by == domain.SortMostReactions {
		return bson.D{
			{Key: "reaction_count", Value: -1},
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		}
	}
	return bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	}
}

// FeedQuery runs the visibility-filtered, sorted, windowed feed read.
// The time_of_day facet needs a join against mood_records, so that path goes
// through an aggregation pipeline; the plain path is a simple Find.
func (s *Store) FeedQuery(ctx context.Context, q domain.FeedQuery) ([]domain.Share, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	match := bson.M{
		"share_type": q.ShareType,
		"expires_at": bson.M{"$gt": q.Now},
	}

	if q.TimeOfDay == "" {
		cur, err := s.colShares.Find(ctx, match,
			options.Find().
				SetSort(feedSort(q.SortBy)).
				SetSkip(int64(q.Offset)).
				SetLimit(int64(q.Limit)),
		)
		if err != nil {
			return nil, err
		}
		defer cur.Close(ctx)
		return decodeShares(ctx, cur)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "mood_records",
			"localField":   "mood_record_id",
			"foreignField": "_id",
			"as":           "mood_record",
		}}},
		{{Key: "$match", Value: bson.M{"mood_record.time_of_day": q.TimeOfDay}}},
		{{Key: "$sort", Value: feedSort(q.SortBy)}},
		{{Key: "$skip", Value: int64(q.Offset)}},
		{{Key: "$limit", Value: int64(q.Limit)}},
	}
	cur, err := s.colShares.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeShares(ctx, cur)
}

func decodeShares(ctx context.Context, cur *mongo.Cursor) ([]domain.Share, error) {
	var out []domain.Share
	for cur.Next(ctx) {
		var sh domain.Share
		if err := cur.Decode(&sh); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, cur.Err()
}
