package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Saba3939/mood-harbor/internal/domain"
	"github.com/Saba3939/mood-harbor/internal/realtime"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is an in-memory ShareStore mirroring the Mongo repo's contracts:
// nil,nil on missing ids, predicate-based expiry, repo sort order.
type fakeStore struct {
	mu        sync.Mutex
	shares    map[primitive.ObjectID]domain.Share
	timeOfDay map[primitive.ObjectID]domain.TimeOfDay

	insertErr error
	findErr   error
	deleteErr error
	feedErr   error
	scanErr   error
	purgeErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		shares:    make(map[primitive.ObjectID]domain.Share),
		timeOfDay: make(map[primitive.ObjectID]domain.TimeOfDay),
	}
}

func (f *fakeStore) InsertShare(_ context.Context, sh *domain.Share) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if sh.ID.IsZero() {
		sh.ID = primitive.NewObjectID()
	}
	f.shares[sh.ID] = *sh
	return nil
}

func (f *fakeStore) FindShareByID(_ context.Context, id primitive.ObjectID) (*domain.Share, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.shares[id]
	if !ok {
		return nil, nil
	}
	return &sh, nil
}

func (f *fakeStore) DeleteShareByOwner(_ context.Context, id, owner primitive.ObjectID) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.shares[id]
	if !ok || sh.UserID != owner {
		return false, nil
	}
	delete(f.shares, id)
	return true, nil
}

func (f *fakeStore) FindExpired(_ context.Context, now time.Time) ([]domain.Share, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Share
	for _, sh := range f.shares {
		if sh.ExpiresAt.Before(now) {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, sh := range f.shares {
		if sh.ExpiresAt.Before(now) {
			delete(f.shares, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) FeedQuery(_ context.Context, q domain.FeedQuery) ([]domain.Share, error) {
	if f.feedErr != nil {
		return nil, f.feedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []domain.Share
	for _, sh := range f.shares {
		if sh.ShareType != q.ShareType || !sh.Visible(q.Now) {
			continue
		}
		if q.TimeOfDay != "" && f.timeOfDay[sh.MoodRecordID] != q.TimeOfDay {
			continue
		}
		rows = append(rows, sh)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if q.SortBy == domain.SortMostReactions && a.ReactionCount != b.ReactionCount {
			return a.ReactionCount > b.ReactionCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.Hex() > b.ID.Hex()
	})
	if q.Offset >= len(rows) {
		return nil, nil
	}
	rows = rows[q.Offset:]
	if len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

type fakeDir struct {
	mu        sync.Mutex
	authors   map[primitive.ObjectID]*domain.Author
	reacted   map[primitive.ObjectID]map[primitive.ObjectID]bool
	authorErr error
}

func newFakeDir() *fakeDir {
	return &fakeDir{
		authors: make(map[primitive.ObjectID]*domain.Author),
		reacted: make(map[primitive.ObjectID]map[primitive.ObjectID]bool),
	}
}

func (f *fakeDir) AuthorByUserID(_ context.Context, userID primitive.ObjectID) (*domain.Author, error) {
	if f.authorErr != nil {
		return nil, f.authorErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authors[userID], nil
}

func (f *fakeDir) ViewerReacted(_ context.Context, shareID, userID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reacted[shareID][userID], nil
}

type fakePrefs struct {
	mu    sync.Mutex
	modes map[primitive.ObjectID]domain.NotificationMode
	err   error
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{modes: make(map[primitive.ObjectID]domain.NotificationMode)}
}

func (f *fakePrefs) ReactionNotificationMode(_ context.Context, userID primitive.ObjectID) (domain.NotificationMode, error) {
	if f.err != nil {
		return domain.NotifyOff, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.modes[userID]
	if !ok {
		return domain.NotifyOff, nil
	}
	return m, nil
}

// fakeBus dispatches synchronously so tests see every delivery deterministically.
type fakeBus struct {
	mu       sync.Mutex
	events   []realtime.Event
	handlers map[int]struct {
		events []string
		h      realtime.Handler
	}
	next int
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[int]struct {
		events []string
		h      realtime.Handler
	})}
}

func (f *fakeBus) Publish(_ context.Context, ev realtime.Event) {
	f.mu.Lock()
	f.events = append(f.events, ev)
	var targets []realtime.Handler
	for _, s := range f.handlers {
		for _, e := range s.events {
			if e == ev.Event {
				targets = append(targets, s.h)
				break
			}
		}
	}
	f.mu.Unlock()
	for _, h := range targets {
		h(ev)
	}
}

func (f *fakeBus) Subscribe(events []string, h realtime.Handler) (cancel func()) {
	f.mu.Lock()
	id := f.next
	f.next++
	f.handlers[id] = struct {
		events []string
		h      realtime.Handler
	}{events, h}
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.handlers, id)
		f.mu.Unlock()
	}
}

func (f *fakeBus) published(kind string) []realtime.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []realtime.Event
	for _, ev := range f.events {
		if ev.Event == kind {
			out = append(out, ev)
		}
	}
	return out
}

type sentNotice struct {
	Exchange string
	Key      string
	Event    any
}

type fakePub struct {
	mu   sync.Mutex
	sent []sentNotice
	err  error
}

func (f *fakePub) Publish(_ context.Context, exchange, key string, event any, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotice{exchange, key, event})
	return nil
}

func (f *fakePub) Close() error { return nil }
