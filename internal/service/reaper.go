package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Saba3939/mood-harbor/internal/clock"
	"github.com/Saba3939/mood-harbor/internal/domain"
	"github.com/Saba3939/mood-harbor/internal/log"
	"github.com/Saba3939/mood-harbor/internal/metrics"
	"github.com/Saba3939/mood-harbor/internal/queue"
	"github.com/Saba3939/mood-harbor/internal/realtime"
	"go.uber.org/zap"
)

// Reaper is the scheduled sweep that notifies owners of expiring shares and
// then purges the rows. Invocations are serialized in-process so overlapping
// cron triggers cannot double-notify the same share.
type Reaper struct {
	mu sync.Mutex

	Shares   ShareStore
	Prefs    Prefs
	Notifier queue.Publisher
	Bus      realtime.Bus
	Clock    clock.Clock
	Exchange string
}

func NewReaper(shares ShareStore, prefs Prefs, notifier queue.Publisher, bus realtime.Bus, clk clock.Clock, exchange string) *Reaper {
	return &Reaper{Shares: shares, Prefs: prefs, Notifier: notifier, Bus: bus, Clock: clk, Exchange: exchange}
}

type SweepResult struct {
	Deleted  int64 `json:"deleted_count"`
	Notified int64 `json:"notified_count"`
}

// Sweep runs one notify-then-delete pass over all expired shares.
// Per-owner notification failures are logged and swallowed; only a scan or
// delete failure fails the invocation.
func (r *Reaper) Sweep(ctx context.Context) (SweepResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expired, err := r.Shares.FindExpired(ctx, r.Clock.Now().UTC())
	if err != nil {
		return SweepResult{}, fmt.Errorf("scan expired shares: %w", err)
	}
	if len(expired) == 0 {
		return SweepResult{}, nil
	}

	var notified int64
	var wg sync.WaitGroup
	for _, sh := range expired {
		wg.Add(1)
		go func(sh domain.Share) {
			defer wg.Done()
			if r.notifyOwner(ctx, sh) {
				atomic.AddInt64(&notified, 1)
			}
		}(sh)
	}
	wg.Wait()

	// fresh predicate at delete time, not the scanned id list
	deleted, err := r.Shares.DeleteExpired(ctx, r.Clock.Now().UTC())
	if err != nil {
		return SweepResult{Notified: notified}, fmt.Errorf("delete expired shares: %w", err)
	}

	// announce after the delete commits; one event per swept id
	for _, sh := range expired {
		r.Bus.Publish(ctx, realtime.NewEvent(realtime.EventShareDeleted, realtime.ShareDeleted{
			ShareID: sh.ID.Hex(),
		}))
	}

	metrics.SharesReaped.Add(float64(deleted))
	log.L().Info("reaper sweep finished",
		zap.Int64("deleted", deleted),
		zap.Int64("notified", notified),
	)
	return SweepResult{Deleted: deleted, Notified: notified}, nil
}

// notifyOwner hands one expiry notice to the delivery queue, gated on the
// owner's notification preference. Returns whether a notice went out.
func (r *Reaper) notifyOwner(ctx context.Context, sh domain.Share) bool {
	mode, err := r.Prefs.ReactionNotificationMode(ctx, sh.UserID)
	if err != nil {
		log.L().Warn("notification preference lookup failed",
			zap.String("share_id", sh.ID.Hex()), zap.Error(err))
		return false
	}
	if mode == domain.NotifyOff {
		return false
	}

	ev := queue.ShareExpired{
		ShareID:       sh.ID.Hex(),
		UserID:        sh.UserID.Hex(),
		ReactionCount: sh.ReactionCount,
		Message:       expiryMessage(sh.ReactionCount),
	}
	if err := r.Notifier.Publish(ctx, r.Exchange, queue.RoutingKeyShareExpired, ev, ""); err != nil {
		log.L().Warn("expiry notice publish failed",
			zap.String("share_id", sh.ID.Hex()), zap.Error(err))
		return false
	}
	metrics.ExpiryNotices.Inc()
	return true
}

func expiryMessage(reactions int) string {
	if reactions > 0 {
		return fmt.Sprintf("あなたの投稿は%d人に応援されました", reactions)
	}
	return "あなたの投稿が24時間経過したため削除されました"
}
