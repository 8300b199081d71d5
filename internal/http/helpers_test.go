package http_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Saba3939/mood-harbor/internal/clock"
	"github.com/Saba3939/mood-harbor/internal/domain"
	api "github.com/Saba3939/mood-harbor/internal/http"
	"github.com/Saba3939/mood-harbor/internal/queue"
	"github.com/Saba3939/mood-harbor/internal/realtime"
	"github.com/Saba3939/mood-harbor/internal/security"
	"github.com/Saba3939/mood-harbor/internal/service"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	testJWTSecret  = "test-jwt-secret"
	testCronSecret = "test-cron-secret"
)

// memStore is the in-memory ShareStore backing the handler tests.
type memStore struct {
	mu     sync.Mutex
	shares map[primitive.ObjectID]domain.Share
}

func (m *memStore) InsertShare(_ context.Context, sh *domain.Share) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sh.ID.IsZero() {
		sh.ID = primitive.NewObjectID()
	}
	m.shares[sh.ID] = *sh
	return nil
}

func (m *memStore) FindShareByID(_ context.Context, id primitive.ObjectID) (*domain.Share, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sh, ok := m.shares[id]
	if !ok {
		return nil, nil
	}
	return &sh, nil
}

func (m *memStore) DeleteShareByOwner(_ context.Context, id, owner primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sh, ok := m.shares[id]
	if !ok || sh.UserID != owner {
		return false, nil
	}
	delete(m.shares, id)
	return true, nil
}

func (m *memStore) FindExpired(_ context.Context, now time.Time) ([]domain.Share, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Share
	for _, sh := range m.shares {
		if sh.ExpiresAt.Before(now) {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (m *memStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, sh := range m.shares {
		if sh.ExpiresAt.Before(now) {
			delete(m.shares, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) FeedQuery(_ context.Context, q domain.FeedQuery) ([]domain.Share, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []domain.Share
	for _, sh := range m.shares {
		if sh.ShareType == q.ShareType && sh.Visible(q.Now) {
			rows = append(rows, sh)
		}
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

type memDir struct{}

func (memDir) AuthorByUserID(context.Context, primitive.ObjectID) (*domain.Author, error) {
	return &domain.Author{Nickname: "anon", AvatarID: "a1"}, nil
}

func (memDir) ViewerReacted(context.Context, primitive.ObjectID, primitive.ObjectID) (bool, error) {
	return false, nil
}

type memPrefs struct{}

func (memPrefs) ReactionNotificationMode(context.Context, primitive.ObjectID) (domain.NotificationMode, error) {
	return domain.NotifyRealtime, nil
}

type testEnv struct {
	Router *gin.Engine
	Store  *memStore
	Clock  *clock.Fake
	UID    primitive.ObjectID
	Token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &memStore{shares: make(map[primitive.ObjectID]domain.Share)}
	bus := realtime.NewMemoryBus()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	shares := service.NewShareService(store, bus, clk)
	harbor := service.NewHarborService(store, memDir{}, bus, clk)
	reaper := service.NewReaper(store, memPrefs{}, queue.NewNoop(), bus, clk, "harbor.events")

	h := api.NewHandler(shares, harbor, reaper, nil, testCronSecret)
	router := api.NewRouter(h, testJWTSecret, 0)

	uid := primitive.NewObjectID()
	tok, err := security.MakeAccess(testJWTSecret, uid.Hex(), "u@example.com", time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	return &testEnv{Router: router, Store: store, Clock: clk, UID: uid, Token: tok}
}
