package v1

import (
	"fmt"
	"time"
)

// StatsPayload is the wire body every dupe platform POSTs to the desk.
// It separates the reporting window (period_start/period_end, half-open)
// from the measured values (totals, top_k_posts).
type StatsPayload struct {
	// Platform identifies the reporting source, e.g. "tw-dupe", "fb-dupe".
	// This field is REQUIRED and has no default value.
	Platform string `json:"platform"`

	// PeriodStart / PeriodEnd bound the aggregation window [start, end).
	// The end is exclusive so consecutive windows never double-count.
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	// Totals are the summed engagement counters for the window.
	Totals Totals `json:"totals"`

	// TopKPosts is the ranked top content for the window, views descending,
	// bounded to K entries by the sender. May be empty.
	TopKPosts []TopPost `json:"top_k_posts,omitempty"`
}

// Totals are per-window engagement counters. Produced once per window,
// never mutated after creation.
type Totals struct {
	TotalPosts    int64 `json:"total_posts"`
	TotalLikes    int64 `json:"total_likes"`
	TotalViews    int64 `json:"total_views"`
	TotalComments int64 `json:"total_comments"`
}

// TopPost is one entry of the ranked top content list.
type TopPost struct {
	PostID string `json:"post_id"`
	Views  int64  `json:"views"`
	Likes  int64  `json:"likes"`

	// Comments is optional on the wire and defaults to 0.
	Comments int64 `json:"comments,omitempty"`
}

// Validate ensures the payload carries all required fields and a sane window.
func (p *StatsPayload) Validate() error {
	if p.Platform == "" {
		return fmt.Errorf("platform is required")
	}

	if p.PeriodStart.IsZero() {
		return fmt.Errorf("period_start is required")
	}

	if p.PeriodEnd.IsZero() {
		return fmt.Errorf("period_end is required")
	}

	if !p.PeriodStart.Before(p.PeriodEnd) {
		return fmt.Errorf("period_start must be before period_end")
	}

	if p.Totals.TotalPosts < 0 || p.Totals.TotalLikes < 0 ||
		p.Totals.TotalViews < 0 || p.Totals.TotalComments < 0 {
		return fmt.Errorf("totals must be non-negative")
	}

	for i, post := range p.TopKPosts {
		if post.PostID == "" {
			return fmt.Errorf("top_k_posts[%d].post_id is required", i)
		}
		if post.Views < 0 || post.Likes < 0 || post.Comments < 0 {
			return fmt.Errorf("top_k_posts[%d] counters must be non-negative", i)
		}
	}

	return nil
}
