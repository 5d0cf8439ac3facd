package aggregation

import (
	"context"
	"fmt"
	"sort"

	v1 "github.com/socialdesk-lab/socialdesk/internal/api/v1"
	"github.com/socialdesk-lab/socialdesk/internal/core/storage"
	"github.com/socialdesk-lab/socialdesk/internal/core/window"
)

// DefaultTopK bounds the ranked top-content list.
const DefaultTopK = 10

// Aggregator computes one window's engagement snapshot from the platform's
// live event store. Read-only: it never mutates the feed tables.
type Aggregator struct {
	store storage.EngagementStore
	topK  int
}

// NewAggregator creates an aggregator over the given event store.
// topK <= 0 falls back to DefaultTopK.
func NewAggregator(store storage.EngagementStore, topK int) *Aggregator {
	if store == nil {
		panic("aggregation: store must not be nil")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Aggregator{store: store, topK: topK}
}

// Aggregate sums the engagement counters for w and ranks the top-K posts by
// view count. The window is half-open: events at w.End belong to the next
// window.
//
// Ranking is a full stable sort over all posts created before w.End; post
// volume per platform is small enough that a bounded heap isn't worth the
// complexity yet.
func (a *Aggregator) Aggregate(ctx context.Context, w window.Window) (v1.Totals, []v1.TopPost, error) {
	if err := w.Validate(); err != nil {
		return v1.Totals{}, nil, fmt.Errorf("invalid aggregation window: %w", err)
	}

	var totals v1.Totals
	var err error

	if totals.TotalPosts, err = a.store.CountPosts(ctx, w); err != nil {
		return v1.Totals{}, nil, fmt.Errorf("failed to count posts: %w", err)
	}
	if totals.TotalLikes, err = a.store.CountLikes(ctx, w); err != nil {
		return v1.Totals{}, nil, fmt.Errorf("failed to count likes: %w", err)
	}
	if totals.TotalViews, err = a.store.CountViews(ctx, w); err != nil {
		return v1.Totals{}, nil, fmt.Errorf("failed to count views: %w", err)
	}
	if totals.TotalComments, err = a.store.CountComments(ctx, w); err != nil {
		return v1.Totals{}, nil, fmt.Errorf("failed to count comments: %w", err)
	}

	posts, err := a.store.PostsCreatedBefore(ctx, w.End)
	if err != nil {
		return v1.Totals{}, nil, fmt.Errorf("failed to load posts for ranking: %w", err)
	}

	topPosts := rankTopPosts(posts, a.topK)

	return totals, topPosts, nil
}

// rankTopPosts sorts posts by views descending and truncates to k.
// The sort is stable: ties keep their original retrieval order.
func rankTopPosts(posts []v1.TopPost, k int) []v1.TopPost {
	ranked := make([]v1.TopPost, len(posts))
	copy(ranked, posts)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Views > ranked[j].Views
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
