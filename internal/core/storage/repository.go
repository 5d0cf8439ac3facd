package storage

import (
	"context"
	"time"

	v1 "github.com/socialdesk-lab/socialdesk/internal/api/v1"
	"github.com/socialdesk-lab/socialdesk/internal/core/window"
)

// EngagementStore is the platform-side view of the live event store.
// The social feed's CRUD routes own these tables; this subsystem only reads.
type EngagementStore interface {
	// CountPosts returns the number of posts created inside w.
	CountPosts(ctx context.Context, w window.Window) (int64, error)

	// CountLikes returns the number of like events inside w.
	CountLikes(ctx context.Context, w window.Window) (int64, error)

	// CountViews returns the number of view events inside w.
	CountViews(ctx context.Context, w window.Window) (int64, error)

	// CountComments returns the number of comment events inside w.
	CountComments(ctx context.Context, w window.Window) (int64, error)

	// PostsCreatedBefore returns the engagement counters of every post
	// created strictly before end, in retrieval order. Ranking and
	// truncation to top-K belong to the aggregator, not the store.
	PostsCreatedBefore(ctx context.Context, end time.Time) ([]v1.TopPost, error)
}

// IngestedStats is one row of the desk's append-only ledger. Created exactly
// once per successful ingestion call, never updated, never deleted.
type IngestedStats struct {
	ID                string
	Platform          string
	PeriodStart       time.Time
	PeriodEnd         time.Time
	Totals            v1.Totals
	SignatureVerified bool
	ReceivedAt        time.Time
}

// TopPostRecord is one persisted top-content entry, tagged with the platform
// that reported it.
type TopPostRecord struct {
	Platform   string
	PostID     string
	Views      int64
	Likes      int64
	Comments   int64
	ReceivedAt time.Time
}

// StatsLedger is the desk-side persistence layer. Inserts are append-only:
// duplicate submissions for the same window create independent rows.
type StatsLedger interface {
	// InsertPlatformStats appends one ledger row.
	InsertPlatformStats(ctx context.Context, rec *IngestedStats) error

	// InsertTopPosts appends the top-content entries attached to a submission.
	InsertTopPosts(ctx context.Context, records []TopPostRecord) error

	// StatsSince returns ledger rows with period_start >= since, newest first.
	// Read path for the dashboard summary.
	StatsSince(ctx context.Context, since time.Time) ([]*IngestedStats, error)

	// TopPosts returns the persisted top-content entries ranked by views
	// descending, bounded to limit.
	TopPosts(ctx context.Context, limit int) ([]TopPostRecord, error)
}
