package aggregation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	v1 "github.com/socialdesk-lab/socialdesk/internal/api/v1"
	"github.com/socialdesk-lab/socialdesk/internal/core/window"
	"github.com/socialdesk-lab/socialdesk/internal/delivery"
)

// captureDeliverer records delivered snapshots; block, when set, holds each
// delivery until released so tests can force cycle overlap.
type captureDeliverer struct {
	mu        sync.Mutex
	delivered []delivered
	result    delivery.Result
	block     chan struct{}
}

type delivered struct {
	window   window.Window
	totals   v1.Totals
	topPosts []v1.TopPost
}

func (d *captureDeliverer) Deliver(_ context.Context, w window.Window, totals v1.Totals, topPosts []v1.TopPost) delivery.Result {
	if d.block != nil {
		<-d.block
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, delivered{window: w, totals: totals, topPosts: topPosts})
	return d.result
}

func (d *captureDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.delivered)
}

func newTestScheduler(store *InMemoryEngagementStore, deliverer Deliverer) *Scheduler {
	s := NewScheduler(time.Hour, time.Hour, NewAggregator(store, 10), deliverer)
	s.now = func() time.Time {
		return time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestRunCycleDelivers(t *testing.T) {
	now := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	store := &InMemoryEngagementStore{
		PostCreations: []time.Time{now.Add(-30 * time.Minute)},
		LikeEvents:    []time.Time{now.Add(-30 * time.Minute), now.Add(-20 * time.Minute)},
	}
	deliverer := &captureDeliverer{result: delivery.Result{OK: true, StatusCode: 200}}

	s := newTestScheduler(store, deliverer)
	require.NoError(t, s.RunCycle(context.Background()))

	require.Equal(t, 1, deliverer.count())
	got := deliverer.delivered[0]
	require.Equal(t, now.Add(-time.Hour), got.window.Start)
	require.Equal(t, now, got.window.End)
	require.Equal(t, int64(1), got.totals.TotalPosts)
	require.Equal(t, int64(2), got.totals.TotalLikes)
}

func TestRunCycleDeliveryFailure(t *testing.T) {
	store := &InMemoryEngagementStore{}
	deliverer := &captureDeliverer{result: delivery.Result{
		OK:         false,
		StatusCode: 500,
		Body:       `{"error":"Failed to store stats"}`,
		Err:        errors.New("desk rejected stats: status 500"),
	}}

	s := newTestScheduler(store, deliverer)
	err := s.RunCycle(context.Background())

	require.Error(t, err)
	require.ErrorContains(t, err, "delivery failed")
	// No retry: exactly one delivery attempt per cycle.
	require.Equal(t, 1, deliverer.count())
}

func TestRunCycleSingleFlight(t *testing.T) {
	store := &InMemoryEngagementStore{}
	deliverer := &captureDeliverer{
		result: delivery.Result{OK: true, StatusCode: 200},
		block:  make(chan struct{}),
	}

	s := newTestScheduler(store, deliverer)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- s.RunCycle(context.Background())
	}()

	// Wait for the first cycle to reach the blocked deliverer.
	require.Eventually(t, func() bool {
		if s.mu.TryLock() {
			s.mu.Unlock()
			return false
		}
		return true
	}, time.Second, time.Millisecond)

	// Overlapping cycle is skipped, not queued.
	err := s.RunCycle(context.Background())
	require.ErrorIs(t, err, ErrCycleInProgress)

	close(deliverer.block)
	require.NoError(t, <-firstDone)
	require.Equal(t, 1, deliverer.count())
}

func TestStartRunsStartupTickAndStops(t *testing.T) {
	store := &InMemoryEngagementStore{}
	deliverer := &captureDeliverer{result: delivery.Result{OK: true, StatusCode: 200}}

	s := newTestScheduler(store, deliverer)
	s.startupDelay = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return deliverer.count() == 1
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
