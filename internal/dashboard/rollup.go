package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/socialdesk-lab/socialdesk/internal/core/storage"
)

const (
	summaryDays = 30
	growthDays  = 7
	chartPoints = 7

	growthPrecision = 4
)

// buildSummary rolls ledger rows up into the dashboard summary.
// stats must be ordered newest first (period_start descending), which is the
// order StatsSince returns.
func buildSummary(stats []*storage.IngestedStats, now time.Time) SummaryResponse {
	sevenDaysAgo := now.AddDate(0, 0, -growthDays)

	var totals, recent SummaryTotals
	for _, stat := range stats {
		totals.Likes += stat.Totals.TotalLikes
		totals.Views += stat.Totals.TotalViews
		totals.Comments += stat.Totals.TotalComments
		totals.Posts += stat.Totals.TotalPosts

		if !stat.PeriodStart.Before(sevenDaysAgo) {
			recent.Likes += stat.Totals.TotalLikes
			recent.Views += stat.Totals.TotalViews
			recent.Comments += stat.Totals.TotalComments
			recent.Posts += stat.Totals.TotalPosts
		}
	}

	growth := SummaryGrowth{
		Likes:    growthRatio(recent.Likes, totals.Likes),
		Views:    growthRatio(recent.Views, totals.Views),
		Comments: growthRatio(recent.Comments, totals.Comments),
		Posts:    growthRatio(recent.Posts, totals.Posts),
	}

	return SummaryResponse{
		Totals: totals,
		Growth: growth,
		Charts: buildCharts(stats),
	}
}

// growthRatio computes recent/total, 0 when the denominator is zero.
func growthRatio(recent, total int64) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(recent).
		Div(decimal.NewFromInt(total)).
		Round(growthPrecision)
}

// buildCharts takes the chartPoints newest rows and reverses them so the
// chart reads oldest to newest.
func buildCharts(stats []*storage.IngestedStats) ChartSeries {
	n := len(stats)
	if n > chartPoints {
		n = chartPoints
	}

	charts := ChartSeries{
		Likes:    make([]int64, 0, n),
		Views:    make([]int64, 0, n),
		Comments: make([]int64, 0, n),
		Posts:    make([]int64, 0, n),
	}

	for i := n - 1; i >= 0; i-- {
		stat := stats[i]
		charts.Likes = append(charts.Likes, stat.Totals.TotalLikes)
		charts.Views = append(charts.Views, stat.Totals.TotalViews)
		charts.Comments = append(charts.Comments, stat.Totals.TotalComments)
		charts.Posts = append(charts.Posts, stat.Totals.TotalPosts)
	}

	return charts
}
