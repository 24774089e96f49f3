package activity

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiselib/internal/models"
	"wiselib/internal/notify"
	"wiselib/internal/storage"
)

func TestLogAndList(t *testing.T) {
	svc := New(storage.NewMemory(), nil, nil)

	rec := svc.Log("KC-1", models.ActionLogin, "")
	assert.Contains(t, rec.ID, "ACT-")
	assert.NotEmpty(t, rec.Timestamp)

	svc.Log("KC-2", models.ActionLogout, "")

	assert.Len(t, svc.List(""), 2)
	mine := svc.List("KC-1")
	require.Len(t, mine, 1)
	assert.Equal(t, models.ActionLogin, mine[0].Action)
}

func TestListNewestFirst(t *testing.T) {
	b := storage.NewMemory()
	svc := New(b, nil, nil)

	// Seed with explicit timestamps so ordering does not depend on the clock.
	col := []models.ActivityRecord{
		{ID: "ACT-1", UserID: "KC-1", Action: models.ActionLogin, Timestamp: "2026-08-01T10:00:00Z"},
		{ID: "ACT-2", UserID: "KC-1", Action: models.ActionLogout, Timestamp: "2026-08-02T10:00:00Z"},
	}
	require.NoError(t, storage.PutJSON(b, Key, col))

	got := svc.List("")
	require.Len(t, got, 2)
	assert.Equal(t, "ACT-2", got[0].ID)
}

func TestLogEvictsBeyondCap(t *testing.T) {
	b := storage.NewMemory()
	svc := New(b, nil, nil)

	seed := make([]models.ActivityRecord, Cap)
	for i := range seed {
		seed[i] = models.ActivityRecord{ID: fmt.Sprintf("ACT-%d", i), UserID: "KC-1",
			Action: models.ActionLogin, Timestamp: fmt.Sprintf("2026-01-01T00:00:%02dZ", i%60)}
	}
	require.NoError(t, storage.PutJSON(b, Key, seed))

	svc.Log("KC-1", models.ActionLogout, "")

	raw, _ := storage.GetJSON[[]models.ActivityRecord](b, Key)
	require.Len(t, raw, Cap)
	// Oldest entry fell off the front.
	assert.Equal(t, "ACT-1", raw[0].ID)
	assert.Equal(t, models.ActionLogout, raw[Cap-1].Action)
}

func TestLogPublishesRefresh(t *testing.T) {
	bus := notify.NewBus()
	svc := New(storage.NewMemory(), bus, nil)

	var got []notify.Message
	stop, err := bus.Subscribe(context.Background(), Channel, func(m notify.Message) {
		got = append(got, m)
	})
	require.NoError(t, err)
	defer stop()

	svc.Log("KC-1", models.ActionLogin, "")
	require.Len(t, got, 1)
	assert.Equal(t, notify.Refresh.Type, got[0].Type)
}

func TestSubscribeFiresOnAppend(t *testing.T) {
	bus := notify.NewBus()
	svc := New(storage.NewMemory(), bus, nil)

	fired := 0
	stop, err := svc.Subscribe(context.Background(), func() { fired++ })
	require.NoError(t, err)
	defer stop()

	svc.Log("KC-1", models.ActionLogin, "")
	svc.Log("KC-1", models.ActionLogout, "")
	assert.Equal(t, 2, fired)
}

func TestCorruptLogReadsEmpty(t *testing.T) {
	b := storage.NewMemory()
	require.NoError(t, b.Set(Key, []byte("garbage")))
	svc := New(b, nil, nil)
	assert.Empty(t, svc.List(""))
}
