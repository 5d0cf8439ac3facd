// Package dashboard serves the two read-only endpoints the dashboard UI
// consumes. It only ever reads the ledger; writes belong to ingestion.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/socialdesk-lab/socialdesk/internal/core/storage"
)

const (
	defaultTopPostsLimit = 10
	maxTopPostsLimit     = 100
)

type Service struct {
	ledger storage.StatsLedger

	// now is swappable for tests.
	now func() time.Time
}

func NewService(ledger storage.StatsLedger) *Service {
	if ledger == nil {
		panic("dashboard: ledger must not be nil")
	}
	return &Service{
		ledger: ledger,
		now:    time.Now,
	}
}

// Summary aggregates the trailing 30 days of ledger rows into totals,
// 7-day growth ratios and the overview chart series.
func (s *Service) Summary(ctx context.Context) (SummaryResponse, error) {
	now := s.now().UTC()
	since := now.AddDate(0, 0, -summaryDays)

	stats, err := s.ledger.StatsSince(ctx, since)
	if err != nil {
		return SummaryResponse{}, fmt.Errorf("failed to load recent stats: %w", err)
	}

	return buildSummary(stats, now), nil
}

// TopPosts returns the persisted top-content entries, views descending,
// bounded to limit (default 10, capped at 100).
func (s *Service) TopPosts(ctx context.Context, limit int) (TopPostsResponse, error) {
	if limit <= 0 {
		limit = defaultTopPostsLimit
	}
	if limit > maxTopPostsLimit {
		limit = maxTopPostsLimit
	}

	records, err := s.ledger.TopPosts(ctx, limit)
	if err != nil {
		return TopPostsResponse{}, fmt.Errorf("failed to load top posts: %w", err)
	}

	posts := make([]TopPostView, 0, len(records))
	for _, rec := range records {
		posts = append(posts, TopPostView{
			Platform:   rec.Platform,
			PostID:     rec.PostID,
			Views:      rec.Views,
			Likes:      rec.Likes,
			Comments:   rec.Comments,
			ReceivedAt: rec.ReceivedAt,
		})
	}

	return TopPostsResponse{Posts: posts}, nil
}
