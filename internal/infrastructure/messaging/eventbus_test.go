package messaging

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

func TestInMemoryEventBus_Sync(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{EnableMetrics: true})

	var got []string
	require.NoError(t, bus.Subscribe(shared.EventPlannedCourseAdded, func(e shared.Event) error {
		got = append(got, e.AggregateID())
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventPlannedCourseAdded, func(shared.Event) error {
		return errors.New("boom")
	}))
	require.NoError(t, bus.Subscribe(shared.EventPlannedCourseAdded, func(shared.Event) error {
		panic("handler bug")
	}))

	require.NoError(t, bus.Publish(shared.NewPlannedCourseAddedEvent("PLAN01", "pc-1", "MATH 2250", "planned")))
	require.NoError(t, bus.Publish(shared.NewGroupAutoAssignedEvent("PLAN01", "pc-1", "g", "r")))

	assert.Equal(t, []string{"PLAN01"}, got)

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(2), snap.TotalPublished)
	assert.Equal(t, int64(3), snap.TotalHandlerExecs)
	assert.Equal(t, int64(2), snap.HandlerFailures)
}

func TestInMemoryEventBus_AsyncClose(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 2})

	var count atomic.Int32
	var wg sync.WaitGroup
	wg.Add(5)
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		defer wg.Done()
		count.Add(1)
		return nil
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(shared.NewPlannedCourseAddedEvent("PLAN01", "pc", "BIOS 3010", "planned")))
	}
	wg.Wait()
	require.NoError(t, bus.Close())
	assert.Equal(t, int32(5), count.Load())

	assert.ErrorIs(t, bus.Publish(shared.NewPlannedCourseAddedEvent("PLAN01", "pc", "BIOS 3010", "planned")), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventPlannedCourseAdded, func(shared.Event) error { return nil }), ErrEventBusClosed)
	assert.NoError(t, bus.Close())
}
