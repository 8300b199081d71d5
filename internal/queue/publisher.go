package queue

import "context"

// Publisher hands notification events to the delivery transport. The reaper
// treats every publish as best-effort; a failed publish never blocks a sweep.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, event any, reqID string) error
	Close() error
}

type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	return nil
}
func (NoopPub) Close() error { return nil }
