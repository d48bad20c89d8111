package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_EmitDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	received := make(chan WarningIssuedEvent, 2)

	for i := 0; i < 2; i++ {
		bus.Subscribe(EventTypeWarningIssued, func(ctx context.Context, event Event) {
			warning, ok := event.(WarningIssuedEvent)
			assert.True(t, ok, "expected WarningIssuedEvent, got %T", event)
			received <- warning
		})
	}
	bus.Subscribe(EventTypeLevelUp, func(ctx context.Context, event Event) {
		t.Errorf("level up handler must not receive %T", event)
	})

	bus.Emit(context.Background(), WarningIssuedEvent{GuildID: 1, UserID: 2, Reason: "spam", Total: 1})
	bus.Wait()

	require.Len(t, received, 2)
	first := <-received
	assert.Equal(t, int64(2), first.UserID)
	assert.Equal(t, "spam", first.Reason)
}

func TestBus_EmitSurvivesPanickingHandler(t *testing.T) {
	bus := NewBus()
	var calls atomic.Int32

	bus.Subscribe(EventTypeCommandUsed, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeCommandUsed, func(ctx context.Context, event Event) {
		calls.Add(1)
	})

	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), CommandUsedEvent{Command: "config"})
		bus.Wait()
	})
	assert.Equal(t, int32(1), calls.Load())
}

func TestBus_HandlersOutliveCanceledContext(t *testing.T) {
	bus := NewBus()
	errs := make(chan error, 1)

	bus.Subscribe(EventTypeMemberJoined, func(ctx context.Context, event Event) {
		time.Sleep(10 * time.Millisecond)
		errs <- ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	bus.Emit(ctx, MemberJoinedEvent{GuildID: 1, UserID: 2})
	cancel()
	bus.Wait()

	assert.NoError(t, <-errs)
}

func TestTransactionalBus_FlushAndDiscard(t *testing.T) {
	bus := NewBus()
	var delivered atomic.Int32
	bus.Subscribe(EventTypeBalanceChanged, func(ctx context.Context, event Event) {
		delivered.Add(1)
	})

	tx := NewTransactionalBus(bus)
	tx.Publish(BalanceChangedEvent{UserID: 1, Amount: -50})
	tx.Discard()
	tx.Flush(context.Background())
	bus.Wait()
	assert.Equal(t, int32(0), delivered.Load(), "discarded events must not be delivered")

	tx.Publish(BalanceChangedEvent{UserID: 1, Amount: -50})
	tx.Publish(BalanceChangedEvent{UserID: 2, Amount: 50})
	tx.Flush(context.Background())
	bus.Wait()
	assert.Equal(t, int32(2), delivered.Load())

	// Flushing twice does not redeliver
	tx.Flush(context.Background())
	bus.Wait()
	assert.Equal(t, int32(2), delivered.Load())
}
