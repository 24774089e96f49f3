package stats

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiselib/internal/models"
	"wiselib/internal/notify"
	"wiselib/internal/services/books"
	"wiselib/internal/services/borrow"
	"wiselib/internal/storage"
)

func newService(t *testing.T, n notify.Notifier) *Service {
	t.Helper()
	b := storage.NewMemory()
	bookSvc := books.New(b, nil)
	for _, id := range []string{"B1", "B2", "B3"} {
		require.NoError(t, bookSvc.Create(models.BookRecord{
			ID: id, Title: "T " + id, Author: "A", Category: "CS",
			Copies: 2, Available: 2, Status: models.BookAvailable,
		}))
	}

	today := time.Now().Format("2006-01-02")
	records := []models.BorrowRecord{
		{ID: "BR-1", BookID: "B1", StudentID: "KC-23-A-00243", BorrowDate: today, Status: models.BorrowActive},
		{ID: "BR-2", BookID: "B2", StudentID: "KC-23-A-00243", BorrowDate: "2026-08-01", Status: models.BorrowOverdue},
		{ID: "BR-3", BookID: "B3", StudentID: "KC-23-A-00999", BorrowDate: "2026-08-01", Status: models.BorrowReturned},
	}
	raw, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, b.Set(borrow.Key, raw))

	return New(bookSvc, borrow.New(b, bookSvc, nil), n, nil)
}

func TestComputeCountsLedger(t *testing.T) {
	svc := newService(t, nil)
	live := svc.Compute()
	assert.Equal(t, 3, live.TotalBooks)
	// Returned records drop out; the two open ones share a borrower.
	assert.Equal(t, 1, live.ActiveBorrowers)
	assert.Equal(t, 1, live.BorrowedToday)
	assert.Equal(t, 1, live.Overdue)
}

func TestStartBroadcastsOnBus(t *testing.T) {
	bus := notify.NewBus()
	svc := newService(t, bus)

	got := make(chan Live, 1)
	cancel, err := bus.Subscribe(context.Background(), Channel, func(m notify.Message) {
		var live Live
		if json.Unmarshal(m.Value, &live) == nil {
			select {
			case got <- live:
			default:
			}
		}
	})
	require.NoError(t, err)
	defer cancel()

	stop := svc.Start(context.Background(), time.Hour)
	select {
	case live := <-got:
		assert.Equal(t, 3, live.TotalBooks)
	case <-time.After(time.Second):
		t.Fatal("no broadcast received")
	}
	stop()
}

func TestStopIsSafeToCallTwice(t *testing.T) {
	svc := newService(t, notify.NewBus())
	stop := svc.Start(context.Background(), time.Hour)
	assert.NotPanics(t, func() {
		stop()
		stop()
	})
}
