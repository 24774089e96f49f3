// Package activity keeps the portal's user activity log: a capped,
// append-only collection read newest-first.
package activity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"wiselib/internal/models"
	"wiselib/internal/notify"
	"wiselib/internal/storage"
)

const (
	Key     = "jrmsu_activity_log"
	Channel = "jrmsu_activity_channel"
	Cap     = 1000
)

type Service struct {
	col      *storage.Collection[models.ActivityRecord]
	notifier notify.Notifier
}

// New builds the service. Activity is cosmetic: write failures are logged by
// the collection and never surface to callers.
func New(b storage.Backend, n notify.Notifier, lg *zap.SugaredLogger) *Service {
	if n == nil {
		n = notify.Noop{}
	}
	col := storage.NewCollection(b, Key, storage.CollectionConfig[models.ActivityRecord]{
		Cap:      Cap,
		Notifier: n,
		Channel:  Channel,
		Logger:   lg,
	})
	return &Service{col: col, notifier: n}
}

// Log appends one record and returns it. Ids are ACT-<epoch-ms>; entries are
// not unique-checked, the log is append-only.
func (s *Service) Log(userID string, action models.ActivityAction, details string) models.ActivityRecord {
	now := time.Now()
	rec := models.ActivityRecord{
		ID:        fmt.Sprintf("ACT-%d", now.UnixMilli()),
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	_ = s.col.Create(rec)
	return rec
}

// List returns records newest first, optionally filtered to one user.
func (s *Service) List(userID string) []models.ActivityRecord {
	all := s.col.List()
	out := all[:0:0]
	for _, r := range all {
		if userID == "" || r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}

// Subscribe invokes fn whenever another process appends to the log. The
// returned stop function must be called on teardown.
func (s *Service) Subscribe(ctx context.Context, fn func()) (func(), error) {
	return s.notifier.Subscribe(ctx, Channel, func(notify.Message) { fn() })
}
