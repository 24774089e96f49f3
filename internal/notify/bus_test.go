package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishReachesSubscribers(t *testing.T) {
	b := NewBus()
	ctx := context.Background()

	var got []Message
	stop, err := b.Subscribe(ctx, "ch", func(m Message) { got = append(got, m) })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, b.Publish(ctx, "ch", Refresh))
	require.Len(t, got, 1)
	assert.Equal(t, "refresh", got[0].Type)
}

func TestBusChannelsAreIsolated(t *testing.T) {
	b := NewBus()
	ctx := context.Background()

	fired := false
	stop, err := b.Subscribe(ctx, "other", func(Message) { fired = true })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, b.Publish(ctx, "ch", Refresh))
	assert.False(t, fired)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()
	ctx := context.Background()

	count := 0
	stop, err := b.Subscribe(ctx, "ch", func(Message) { count++ })
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "ch", Refresh))
	stop()
	require.NoError(t, b.Publish(ctx, "ch", Refresh))
	assert.Equal(t, 1, count)
}

func TestBusMultipleSubscribers(t *testing.T) {
	b := NewBus()
	ctx := context.Background()

	a, c := 0, 0
	stopA, _ := b.Subscribe(ctx, "ch", func(Message) { a++ })
	defer stopA()
	stopC, _ := b.Subscribe(ctx, "ch", func(Message) { c++ })
	defer stopC()

	require.NoError(t, b.Publish(ctx, "ch", Refresh))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, c)
}

func TestMessageCarriesValue(t *testing.T) {
	b := NewBus()
	ctx := context.Background()

	var got Message
	stop, _ := b.Subscribe(ctx, "ch", func(m Message) { got = m })
	defer stop()

	val, _ := json.Marshal("KC-1")
	require.NoError(t, b.Publish(ctx, "ch", Message{Type: "prefs", Value: val}))

	var userID string
	require.NoError(t, json.Unmarshal(got.Value, &userID))
	assert.Equal(t, "KC-1", userID)
}

func TestNoop(t *testing.T) {
	var n Noop
	assert.NoError(t, n.Publish(context.Background(), "ch", Refresh))
	stop, err := n.Subscribe(context.Background(), "ch", func(Message) {})
	require.NoError(t, err)
	stop()
}
