package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	v1 "github.com/socialdesk-lab/socialdesk/internal/api/v1"
	"github.com/socialdesk-lab/socialdesk/internal/core/window"
	"github.com/socialdesk-lab/socialdesk/internal/delivery"
	"github.com/socialdesk-lab/socialdesk/internal/metrics"
)

// startupDelay is how long after process start the first report runs, so the
// desk hears from a freshly deployed platform without waiting a full interval.
const startupDelay = 5 * time.Second

// ErrCycleInProgress marks a tick or manual trigger that lost the
// single-flight race to a still-running cycle.
var ErrCycleInProgress = errors.New("report cycle already in progress")

// Deliverer sends one aggregated snapshot to the desk.
// Satisfied by *delivery.Client.
type Deliverer interface {
	Deliver(ctx context.Context, w window.Window, totals v1.Totals, topPosts []v1.TopPost) delivery.Result
}

// Scheduler drives the aggregate-and-deliver cycle on a fixed cadence plus
// once shortly after startup. Cycles are single-flight: if a tick fires while
// the previous cycle is still running, the tick is skipped and logged rather
// than queued.
type Scheduler struct {
	interval   time.Duration
	windowSize time.Duration
	aggregator *Aggregator
	deliverer  Deliverer

	// mu guards the cycle; TryLock failure means a cycle is in flight.
	mu sync.Mutex

	// startupDelay and now are swappable for tests.
	startupDelay time.Duration
	now          func() time.Time
}

// NewScheduler creates a reporting scheduler.
func NewScheduler(interval, windowSize time.Duration, aggregator *Aggregator, deliverer Deliverer) *Scheduler {
	if aggregator == nil {
		panic("aggregation: aggregator must not be nil")
	}
	if deliverer == nil {
		panic("aggregation: deliverer must not be nil")
	}
	return &Scheduler{
		interval:     interval,
		windowSize:   windowSize,
		aggregator:   aggregator,
		deliverer:    deliverer,
		startupDelay: startupDelay,
		now:          time.Now,
	}
}

// Start begins periodic reporting. Runs until context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[Scheduler] Starting stats reporting scheduler",
		"interval", s.interval,
		"window_size", s.windowSize,
		"startup_delay", s.startupDelay,
	)

	// Initial report shortly after startup.
	startup := time.NewTimer(s.startupDelay)
	defer startup.Stop()

	for {
		select {
		case <-startup.C:
			s.tick(ctx)
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)")
			return nil
		}
	}
}

// tick runs one cycle, skipping if the previous one is still in flight.
func (s *Scheduler) tick(ctx context.Context) {
	if err := s.RunCycle(ctx); err != nil {
		slog.Error("[Scheduler] Report cycle failed", "error", err)
	}
}

// RunCycle aggregates the trailing window and delivers it to the desk.
// Also invoked by the manual trigger endpoint. Returns an error if a cycle
// is already in progress; delivery failures are reported, never retried
// mid-cycle — the next tick reports a fresh window.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	if !s.mu.TryLock() {
		metrics.ReportCycles.WithLabelValues("skipped").Inc()
		slog.Warn("[Scheduler] Previous cycle still in flight, skipping tick")
		return ErrCycleInProgress
	}
	defer s.mu.Unlock()

	w := window.Trailing(s.now().UTC(), s.windowSize)

	slog.Info("[Scheduler] Aggregating stats", "window", w.String())

	totals, topPosts, err := s.aggregator.Aggregate(ctx, w)
	if err != nil {
		metrics.ReportCycles.WithLabelValues("aggregation_failed").Inc()
		return fmt.Errorf("aggregation failed for %s: %w", w, err)
	}

	slog.Info("[Scheduler] Aggregated stats",
		"window", w.String(),
		"total_posts", totals.TotalPosts,
		"total_likes", totals.TotalLikes,
		"total_views", totals.TotalViews,
		"total_comments", totals.TotalComments,
		"top_posts", len(topPosts),
	)

	res := s.deliverer.Deliver(ctx, w, totals, topPosts)
	if !res.OK {
		metrics.ReportCycles.WithLabelValues("delivery_failed").Inc()
		slog.Error("[Scheduler] Delivery failed",
			"window", w.String(),
			"status", res.StatusCode,
			"body", res.Body,
			"error", res.Err,
		)
		return fmt.Errorf("delivery failed for %s: %w", w, res.Err)
	}

	metrics.ReportCycles.WithLabelValues("delivered").Inc()
	slog.Info("[Scheduler] Stats delivered to desk",
		"window", w.String(),
		"status", res.StatusCode,
	)
	return nil
}
