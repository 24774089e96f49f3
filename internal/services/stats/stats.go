// Package stats derives the dashboard's live numbers from the catalog and
// the lending ledger and broadcasts them at an interval.
package stats

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"wiselib/internal/models"
	"wiselib/internal/notify"
	"wiselib/internal/services/books"
	"wiselib/internal/services/borrow"
)

const Channel = "jrmsu_stats_channel"

type Live struct {
	TotalBooks      int `json:"totalBooks"`
	ActiveBorrowers int `json:"activeBorrowers"`
	BorrowedToday   int `json:"borrowedToday"`
	Overdue         int `json:"overdue"`
}

type Service struct {
	books    *books.Service
	borrow   *borrow.Service
	notifier notify.Notifier
	lg       *zap.SugaredLogger
}

func New(bookSvc *books.Service, borrowSvc *borrow.Service, n notify.Notifier, lg *zap.SugaredLogger) *Service {
	if n == nil {
		n = notify.Noop{}
	}
	if lg == nil {
		lg = zap.NewNop().Sugar()
	}
	return &Service{books: bookSvc, borrow: borrowSvc, notifier: n, lg: lg}
}

// Compute recalculates the numbers from current store state.
func (s *Service) Compute() Live {
	records := s.borrow.List()
	today := time.Now().Format("2006-01-02")
	borrowers := map[string]struct{}{}
	var live Live
	live.TotalBooks = len(s.books.List())
	for _, r := range records {
		if r.Status != models.BorrowReturned {
			borrowers[r.StudentID] = struct{}{}
		}
		if r.BorrowDate == today {
			live.BorrowedToday++
		}
		if r.Status == models.BorrowOverdue {
			live.Overdue++
		}
	}
	live.ActiveBorrowers = len(borrowers)
	return live
}

// Start broadcasts fresh numbers immediately and then every interval until
// the returned stop function is called.
func (s *Service) Start(ctx context.Context, interval time.Duration) func() {
	done := make(chan struct{})
	s.broadcast(ctx)
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.broadcast(ctx)
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (s *Service) broadcast(ctx context.Context) {
	val, err := json.Marshal(s.Compute())
	if err != nil {
		return
	}
	if err := s.notifier.Publish(ctx, Channel, notify.Message{Type: "stats", Value: val}); err != nil {
		s.lg.Debugw("stats notify failed", "error", err)
	}
}

// Subscribe delivers broadcast numbers to fn, firing once immediately with
// locally computed state.
func (s *Service) Subscribe(ctx context.Context, fn func(Live)) (func(), error) {
	fn(s.Compute())
	return s.notifier.Subscribe(ctx, Channel, func(m notify.Message) {
		if m.Type != "stats" {
			return
		}
		var live Live
		if err := json.Unmarshal(m.Value, &live); err != nil {
			return
		}
		fn(live)
	})
}
