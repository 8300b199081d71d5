package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Saba3939/mood-harbor/internal/clock"
	"github.com/Saba3939/mood-harbor/internal/domain"
	"github.com/Saba3939/mood-harbor/internal/log"
	"github.com/Saba3939/mood-harbor/internal/realtime"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const resolveTimeout = 5 * time.Second

// HarborService is the read side of the harbor feed: filtered, sorted,
// paginated queries over currently-visible shares, plus the advisory
// realtime subscription.
type HarborService struct {
	Shares ShareStore
	Dir    Directory
	Bus    realtime.Bus
	Clock  clock.Clock
}

func NewHarborService(shares ShareStore, dir Directory, bus realtime.Bus, clk clock.Clock) *HarborService {
	return &HarborService{Shares: shares, Dir: dir, Bus: bus, Clock: clk}
}

// GetFeed returns visible shares of one type as composed feed posts. Every
// read failure collapses to ErrInvalidFilters; the UI only ever shows
// "failed to load".
func (h *HarborService) GetFeed(ctx context.Context, viewerID primitive.ObjectID, f domain.FeedFilters) ([]domain.FeedPost, error) {
	if !domain.IsValidShareType(string(f.ShareType)) {
		return nil, domain.ErrInvalidFilters
	}
	if f.TimeOfDay != "" && !domain.IsValidTimeOfDay(string(f.TimeOfDay)) {
		return nil, domain.ErrInvalidFilters
	}
	f = f.Normalize()

	rows, err := h.Shares.FeedQuery(ctx, domain.FeedQuery{
		ShareType: f.ShareType,
		TimeOfDay: f.TimeOfDay,
		SortBy:    f.SortBy,
		Limit:     f.Limit,
		Offset:    f.Offset,
		Now:       h.Clock.Now().UTC(),
	})
	if err != nil {
		log.L().Error("feed query failed", zap.String("share_type", string(f.ShareType)), zap.Error(err))
		return nil, domain.ErrInvalidFilters
	}

	posts := make([]domain.FeedPost, 0, len(rows))
	for _, sh := range rows {
		posts = append(posts, h.composePost(ctx, sh, viewerID))
	}
	return posts, nil
}

// composePost joins author display data and viewer reaction state onto a
// share row. Resolution failures degrade the row, they never fail the page.
func (h *HarborService) composePost(ctx context.Context, sh domain.Share, viewerID primitive.ObjectID) domain.FeedPost {
	post := domain.FeedPost{
		Share:     sh,
		Reactions: domain.Reactions{Count: sh.ReactionCount},
	}

	author, err := h.Dir.AuthorByUserID(ctx, sh.UserID)
	if err != nil {
		log.L().Warn("author resolution failed", zap.String("share_id", sh.ID.Hex()), zap.Error(err))
	} else {
		post.User = author
	}

	if !viewerID.IsZero() {
		reacted, err := h.Dir.ViewerReacted(ctx, sh.ID, viewerID)
		if err != nil {
			log.L().Warn("reaction lookup failed", zap.String("share_id", sh.ID.Hex()), zap.Error(err))
		} else {
			post.Reactions.ViewerReacted = reacted
		}
	}
	return post
}

// ResolvePost fetches and composes a single share, shared by the realtime
// path. An already-expired share resolves to ErrNotFound so the push channel
// can never resurrect hidden content.
func (h *HarborService) ResolvePost(ctx context.Context, shareID, viewerID primitive.ObjectID) (*domain.FeedPost, error) {
	sh, err := h.Shares.FindShareByID(ctx, shareID)
	if err != nil {
		return nil, domain.ErrInvalidFilters
	}
	if sh == nil || !sh.Visible(h.Clock.Now().UTC()) {
		return nil, domain.ErrNotFound
	}
	post := h.composePost(ctx, *sh, viewerID)
	return &post, nil
}

// SubscribeToFeed registers interest in one share type's created and
// reaction events. On each matching event the single share is re-resolved
// and handed to cb. Purely advisory: a subscriber that misses every event
// still converges on its next GetFeed call. The returned cancel stops
// further callbacks and releases the channel registration.
func (h *HarborService) SubscribeToFeed(shareType domain.ShareType, viewerID primitive.ObjectID, cb func(domain.FeedPost)) (cancel func()) {
	events := []string{
		realtime.EventShareCreated,
		realtime.EventReactionAdded,
		realtime.EventReactionRemoved,
	}
	return h.Bus.Subscribe(events, func(ev realtime.Event) {
		shareID, ok := h.eventShareID(ev, shareType)
		if !ok {
			return
		}
		oid, err := primitive.ObjectIDFromHex(shareID)
		if err != nil {
			return
		}

		ctx, done := context.WithTimeout(context.Background(), resolveTimeout)
		defer done()
		post, err := h.ResolvePost(ctx, oid, viewerID)
		if err != nil {
			return
		}
		// reaction events carry no share type; filter after resolution
		if post.Share.ShareType != shareType {
			return
		}
		cb(*post)
	})
}

func (h *HarborService) eventShareID(ev realtime.Event, shareType domain.ShareType) (string, bool) {
	switch ev.Event {
	case realtime.EventShareCreated:
		var p realtime.ShareCreated
		if json.Unmarshal(ev.Payload, &p) != nil {
			return "", false
		}
		if p.ShareType != string(shareType) {
			return "", false
		}
		return p.ShareID, true
	case realtime.EventReactionAdded:
		var p realtime.ReactionAdded
		if json.Unmarshal(ev.Payload, &p) != nil {
			return "", false
		}
		return p.ShareID, true
	case realtime.EventReactionRemoved:
		var p realtime.ReactionRemoved
		if json.Unmarshal(ev.Payload, &p) != nil {
			return "", false
		}
		return p.ShareID, true
	}
	return "", false
}
