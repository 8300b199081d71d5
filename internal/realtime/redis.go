package realtime

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/Saba3939/mood-harbor/internal/log"
	"github.com/Saba3939/mood-harbor/internal/metrics"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisBus broadcasts over a Redis pub/sub channel so every API instance
// sees events regardless of which instance performed the mutation.
type RedisBus struct {
	rdb     *redis.Client
	channel string
}

func NewRedisBus(addr string) *RedisBus {
	return &RedisBus{
		rdb:     redis.NewClient(&redis.Options{Addr: addr}),
		channel: Channel,
	}
}

func (b *RedisBus) Ping(ctx context.Context) error { return b.rdb.Ping(ctx).Err() }
func (b *RedisBus) Close() error                   { return b.rdb.Close() }

func (b *RedisBus) Publish(ctx context.Context, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		log.L().Error("realtime envelope marshal failed", zap.String("event", ev.Event), zap.Error(err))
		return
	}
	if err := b.rdb.Publish(ctx, b.channel, body).Err(); err != nil {
		// best-effort: the mutation already committed, subscribers
		// converge on their next feed read
		log.L().Warn("realtime publish failed", zap.String("event", ev.Event), zap.Error(err))
		return
	}
	metrics.EventsPublished.WithLabelValues(ev.Event).Inc()
}

func (b *RedisBus) Subscribe(events []string, h Handler) (cancel func()) {
	sub := b.rdb.Subscribe(context.Background(), b.channel)
	var stopped atomic.Bool

	go func() {
		for msg := range sub.Channel() {
			if stopped.Load() {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.L().Warn("realtime envelope decode failed", zap.Error(err))
				continue
			}
			if matches(events, ev.Event) {
				h(ev)
			}
		}
	}()

	return func() {
		stopped.Store(true)
		_ = sub.Close()
	}
}
