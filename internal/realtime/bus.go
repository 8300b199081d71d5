package realtime

import (
	"context"
	"encoding/json"

	"github.com/Saba3939/mood-harbor/internal/log"
	"go.uber.org/zap"
)

// Channel is the broadcast channel carrying all harbor feed events.
const Channel = "harbor"

const (
	EventShareCreated    = "share:created"
	EventShareDeleted    = "share:deleted"
	EventReactionAdded   = "reaction:added"
	EventReactionRemoved = "reaction:removed"
)

// Event is the wire envelope on the harbor channel.
type Event struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type ShareCreated struct {
	ShareID   string `json:"share_id"`
	UserID    string `json:"user_id"`
	ShareType string `json:"share_type"`
}

type ShareDeleted struct {
	ShareID string `json:"share_id"`
}

type ReactionAdded struct {
	ReactionID string `json:"reaction_id"`
	ShareID    string `json:"share_id"`
	UserID     string `json:"user_id"`
}

type ReactionRemoved struct {
	ReactionID string `json:"reaction_id"`
	ShareID    string `json:"share_id"`
}

// NewEvent wraps a payload into an envelope. A payload that fails to marshal
// is a programming error; the envelope goes out empty and gets logged.
func NewEvent(kind string, payload any) Event {
	b, err := json.Marshal(payload)
	if err != nil {
		log.L().Error("realtime payload marshal failed", zap.String("event", kind), zap.Error(err))
	}
	return Event{Event: kind, Payload: b}
}

type Handler func(Event)

// Bus is a best-effort broadcast channel. Publish never blocks on subscriber
// delivery and never reports failure to the caller: the feed query is the
// source of truth, events are only a latency hint. Subscribe returns a cancel
// handle that stops further handler invocations and releases the
// registration.
type Bus interface {
	Publish(ctx context.Context, ev Event)
	Subscribe(events []string, h Handler) (cancel func())
}

func matches(events []string, kind string) bool {
	for _, e := range events {
		if e == kind {
			return true
		}
	}
	return false
}
