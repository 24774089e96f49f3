package notify

import (
	"context"
	"sync"
)

// Bus is the in-process notifier. It backs single-process deployments and
// tests; subscriptions on the same channel all fire, including the
// publisher's own, which is harmless because handlers only re-read the store.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func(Message)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]func(Message))}
}

func (b *Bus) Publish(_ context.Context, channel string, msg Message) error {
	b.mu.Lock()
	fns := make([]func(Message), 0, len(b.subs[channel]))
	for _, fn := range b.subs[channel] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(msg)
	}
	return nil
}

func (b *Bus) Subscribe(_ context.Context, channel string, fn func(Message)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int]func(Message))
	}
	id := b.next
	b.next++
	b.subs[channel][id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[channel], id)
	}, nil
}
