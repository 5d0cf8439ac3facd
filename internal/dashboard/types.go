package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryTotals are the engagement counters summed over the trailing 30 days.
type SummaryTotals struct {
	Likes    int64 `json:"likes"`
	Views    int64 `json:"views"`
	Comments int64 `json:"comments"`
	Posts    int64 `json:"posts"`
}

// SummaryGrowth is the share of the 30-day totals contributed by the last
// 7 days. 0 when the 30-day total is zero.
type SummaryGrowth struct {
	Likes    decimal.Decimal `json:"likes"`
	Views    decimal.Decimal `json:"views"`
	Comments decimal.Decimal `json:"comments"`
	Posts    decimal.Decimal `json:"posts"`
}

// ChartSeries are parallel per-window series for the overview chart,
// oldest first, at most chartPoints entries each.
type ChartSeries struct {
	Likes    []int64 `json:"likes"`
	Views    []int64 `json:"views"`
	Comments []int64 `json:"comments"`
	Posts    []int64 `json:"posts"`
}

// SummaryResponse is the body of GET /v1/dashboard/summary.
type SummaryResponse struct {
	Totals SummaryTotals `json:"totals"`
	Growth SummaryGrowth `json:"growth"`
	Charts ChartSeries   `json:"charts"`
}

// TopPostView is one entry of GET /v1/dashboard/top-posts.
type TopPostView struct {
	Platform   string    `json:"platform"`
	PostID     string    `json:"post_id"`
	Views      int64     `json:"views"`
	Likes      int64     `json:"likes"`
	Comments   int64     `json:"comments"`
	ReceivedAt time.Time `json:"received_at"`
}

// TopPostsResponse is the body of GET /v1/dashboard/top-posts.
type TopPostsResponse struct {
	Posts []TopPostView `json:"posts"`
}
