package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"wiselib/internal/notify"
)

// Collection is a typed view over one storage key holding a JSON array.
// Every mutation re-serializes the full array; there is no partial write and
// no cross-process locking, so two processes mutating the same collection can
// race with last-write-wins.
type Collection[T any] struct {
	backend  Backend
	key      string
	keyOf    func(T) string
	cap      int
	prepend  bool
	critical bool
	notifier notify.Notifier
	channel  string
	lg       *zap.SugaredLogger
}

type CollectionConfig[T any] struct {
	// KeyOf extracts the record id used for uniqueness and lookups.
	KeyOf func(T) string
	// Cap bounds the collection size; the oldest records are evicted first.
	Cap int
	// Prepend inserts new records at the head (newest-first collections).
	Prepend bool
	// Critical collections propagate write failures; cosmetic ones log and
	// carry on.
	Critical bool
	Notifier notify.Notifier
	Channel  string
	Logger   *zap.SugaredLogger
}

func NewCollection[T any](b Backend, key string, cfg CollectionConfig[T]) *Collection[T] {
	n := cfg.Notifier
	if n == nil {
		n = notify.Noop{}
	}
	lg := cfg.Logger
	if lg == nil {
		lg = zap.NewNop().Sugar()
	}
	return &Collection[T]{
		backend:  b,
		key:      key,
		keyOf:    cfg.KeyOf,
		cap:      cfg.Cap,
		prepend:  cfg.Prepend,
		critical: cfg.Critical,
		notifier: n,
		channel:  cfg.Channel,
		lg:       lg,
	}
}

// List returns the full collection. Absent, unparsable, or non-array data
// reads as empty; corrupt state is treated as no state.
func (c *Collection[T]) List() []T {
	raw, ok, err := c.backend.Get(c.key)
	if err != nil || !ok {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.lg.Debugw("collection unreadable, treating as empty", "key", c.key, "error", err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// Get returns the record with the given id, if present.
func (c *Collection[T]) Get(id string) (T, bool) {
	for _, it := range c.List() {
		if c.keyOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Create appends rec after enforcing id uniqueness.
func (c *Collection[T]) Create(rec T) error {
	items := c.List()
	if c.keyOf != nil {
		id := c.keyOf(rec)
		for _, it := range items {
			if c.keyOf(it) == id {
				return fmt.Errorf("%w: %s", ErrDuplicateKey, id)
			}
		}
	}
	if c.prepend {
		items = append([]T{rec}, items...)
	} else {
		items = append(items, rec)
	}
	items = c.trim(items)
	return c.persist(items)
}

// Update applies mutate to the record with the given id.
func (c *Collection[T]) Update(id string, mutate func(*T)) error {
	items := c.List()
	for i := range items {
		if c.keyOf(items[i]) == id {
			mutate(&items[i])
			return c.persist(items)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Remove filters the record out. Removing an absent id is a no-op.
func (c *Collection[T]) Remove(id string) error {
	items := c.List()
	kept := items[:0:0]
	for _, it := range items {
		if c.keyOf(it) != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return c.persist(kept)
}

// Replace overwrites the whole collection. Used for schema-level operations
// such as back-filling a new catalog column onto every record.
func (c *Collection[T]) Replace(items []T) error {
	return c.persist(c.trim(items))
}

func (c *Collection[T]) trim(items []T) []T {
	if c.cap <= 0 || len(items) <= c.cap {
		return items
	}
	if c.prepend {
		return items[:c.cap]
	}
	return items[len(items)-c.cap:]
}

func (c *Collection[T]) persist(items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := c.backend.Set(c.key, raw); err != nil {
		if c.critical {
			return fmt.Errorf("%w: %s: %v", ErrWriteFailed, c.key, err)
		}
		c.lg.Warnw("write dropped", "key", c.key, "error", err)
		return nil
	}
	if c.channel != "" {
		if err := c.notifier.Publish(context.Background(), c.channel, notify.Refresh); err != nil {
			c.lg.Debugw("notify failed", "channel", c.channel, "error", err)
		}
	}
	return nil
}
