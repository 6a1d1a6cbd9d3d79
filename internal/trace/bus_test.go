package trace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBusPublishFanOut(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	count := 0
	sub := SubscriberFunc(func(_ context.Context, _ Event) error {
		count++
		return nil
	})
	_, err := bus.Register(sub)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, NewEvent("task1", EventTurnStarted)))
	require.NoError(t, bus.Publish(ctx, NewEvent("task1", EventRunTerminal)))
	require.Equal(t, 2, count)
}

func TestBusRegisterNil(t *testing.T) {
	bus := NewBus()
	_, err := bus.Register(nil)
	require.Error(t, err)
}

func TestBusStopsAtFirstError(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var calledSecond bool
	failing := SubscriberFunc(func(_ context.Context, _ Event) error {
		return errors.New("boom")
	})
	second := SubscriberFunc(func(_ context.Context, _ Event) error {
		calledSecond = true
		return nil
	})
	_, err := bus.Register(failing)
	require.NoError(t, err)
	_, err = bus.Register(second)
	require.NoError(t, err)

	err = bus.Publish(ctx, NewEvent("task1", EventTurnStarted))
	require.Error(t, err)
	require.False(t, calledSecond)
}

func TestSubscriptionClose(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()
	count := 0
	sub := SubscriberFunc(func(_ context.Context, _ Event) error {
		count++
		return nil
	})
	subscription, err := bus.Register(sub)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, NewEvent("task1", EventTurnStarted)))
	require.NoError(t, subscription.Close())
	require.NoError(t, bus.Publish(ctx, NewEvent("task1", EventRunTerminal)))
	require.Equal(t, 1, count)
}

func TestStoreSubscriberAccumulatesRecord(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()
	store := NewMemStore()
	_, err := bus.Register(NewStoreSubscriber(store))
	require.NoError(t, err)

	esc := NewEvent("task1", EventModelEscalated)
	esc.ToModel = "code"
	require.NoError(t, bus.Publish(ctx, esc))

	tool := NewEvent("task1", EventToolDispatched)
	tool.ToolName = "lucy_slack_post_message"
	require.NoError(t, bus.Publish(ctx, tool))

	term := NewEvent("task1", EventRunTerminal)
	term.PromptTokens = 100
	term.CompletionTokens = 50
	require.NoError(t, bus.Publish(ctx, term))

	rec, ok := store.Get("task1")
	require.True(t, ok)
	require.Equal(t, []string{"code"}, rec.ModelChain)
	require.Equal(t, []string{"lucy_slack_post_message"}, rec.ToolCalls)
	require.Equal(t, 100, rec.PromptTokens)
	require.Equal(t, 50, rec.CompletionTokens)
}
