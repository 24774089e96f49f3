// Package notify propagates collection-changed events between station
// processes (portal and mirror kiosk windows) sharing the same store. The
// channel carries no authoritative data; receivers re-read the store.
package notify

import (
	"context"
	"encoding/json"
)

// Message is the minimal change notification carried on a channel.
type Message struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Refresh is the message most collections broadcast after a write.
var Refresh = Message{Type: "refresh"}

// Notifier is the capability-gated broadcast interface. Publish is
// fire-and-forget; Subscribe returns a stop function that must be called on
// teardown to release the channel resource.
type Notifier interface {
	Publish(ctx context.Context, channel string, msg Message) error
	Subscribe(ctx context.Context, channel string, fn func(Message)) (func(), error)
}

// Noop is used when no broadcast primitive is available. Cross-process sync
// is a convenience, not a correctness requirement: every process still sees
// its own writes through direct store reads.
type Noop struct{}

func (Noop) Publish(context.Context, string, Message) error { return nil }

func (Noop) Subscribe(context.Context, string, func(Message)) (func(), error) {
	return func() {}, nil
}
