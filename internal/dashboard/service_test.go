package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	v1 "github.com/socialdesk-lab/socialdesk/internal/api/v1"
	"github.com/socialdesk-lab/socialdesk/internal/core/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memLedger serves canned ledger rows for dashboard tests.
type memLedger struct {
	stats    []*storage.IngestedStats
	topPosts []storage.TopPostRecord

	err error

	// lastLimit records the limit passed to TopPosts.
	lastLimit int
}

func (l *memLedger) InsertPlatformStats(context.Context, *storage.IngestedStats) error {
	return errors.New("read-only ledger")
}

func (l *memLedger) InsertTopPosts(context.Context, []storage.TopPostRecord) error {
	return errors.New("read-only ledger")
}

func (l *memLedger) StatsSince(_ context.Context, since time.Time) ([]*storage.IngestedStats, error) {
	if l.err != nil {
		return nil, l.err
	}
	var out []*storage.IngestedStats
	for _, rec := range l.stats {
		if !rec.PeriodStart.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (l *memLedger) TopPosts(_ context.Context, limit int) ([]storage.TopPostRecord, error) {
	l.lastLimit = limit
	if l.err != nil {
		return nil, l.err
	}
	if limit > len(l.topPosts) {
		limit = len(l.topPosts)
	}
	return l.topPosts[:limit], nil
}

func statRow(periodStart time.Time, likes, views, comments, posts int64) *storage.IngestedStats {
	return &storage.IngestedStats{
		ID:          "row-" + periodStart.Format("20060102T150405"),
		Platform:    "tw-dupe",
		PeriodStart: periodStart,
		PeriodEnd:   periodStart.Add(time.Hour),
		Totals: v1.Totals{
			TotalLikes:    likes,
			TotalViews:    views,
			TotalComments: comments,
			TotalPosts:    posts,
		},
		SignatureVerified: true,
		ReceivedAt:        periodStart.Add(time.Hour),
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
}

func newTestService(ledger storage.StatsLedger) *Service {
	s := NewService(ledger)
	s.now = fixedNow
	return s
}

func TestSummaryTotalsAndGrowth(t *testing.T) {
	now := fixedNow()
	ledger := &memLedger{
		// Newest first, matching StatsSince ordering. The first two rows fall
		// inside the 7-day growth window, the third does not.
		stats: []*storage.IngestedStats{
			statRow(now.Add(-2*time.Hour), 100, 1000, 10, 5),
			statRow(now.AddDate(0, 0, -3), 100, 1000, 10, 5),
			statRow(now.AddDate(0, 0, -20), 200, 2000, 20, 10),
		},
	}

	resp, err := newTestService(ledger).Summary(context.Background())
	require.NoError(t, err)

	require.Equal(t, SummaryTotals{Likes: 400, Views: 4000, Comments: 40, Posts: 20}, resp.Totals)

	// Last 7 days contributed half of every counter.
	half := decimal.NewFromFloat(0.5)
	require.True(t, resp.Growth.Likes.Equal(half), "likes growth = %s", resp.Growth.Likes)
	require.True(t, resp.Growth.Views.Equal(half))
	require.True(t, resp.Growth.Comments.Equal(half))
	require.True(t, resp.Growth.Posts.Equal(half))
}

func TestSummaryGrowthZeroDenominator(t *testing.T) {
	ledger := &memLedger{}

	resp, err := newTestService(ledger).Summary(context.Background())
	require.NoError(t, err)

	require.Equal(t, SummaryTotals{}, resp.Totals)
	require.True(t, resp.Growth.Likes.Equal(decimal.Zero))
	require.True(t, resp.Growth.Views.Equal(decimal.Zero))
}

func TestSummaryGrowthRounding(t *testing.T) {
	now := fixedNow()
	ledger := &memLedger{
		stats: []*storage.IngestedStats{
			statRow(now.Add(-time.Hour), 1, 1, 1, 1),
			statRow(now.AddDate(0, 0, -10), 2, 2, 2, 2),
		},
	}

	resp, err := newTestService(ledger).Summary(context.Background())
	require.NoError(t, err)

	// 1/3 rounded to 4 decimal places.
	require.True(t, resp.Growth.Likes.Equal(decimal.RequireFromString("0.3333")),
		"likes growth = %s", resp.Growth.Likes)
}

func TestSummaryChartsOldestFirstCapped(t *testing.T) {
	now := fixedNow()
	ledger := &memLedger{}
	// Ten rows, newest first, views 10, 9, ..., 1.
	for i := 0; i < 10; i++ {
		ledger.stats = append(ledger.stats,
			statRow(now.Add(-time.Duration(i+1)*time.Hour), 0, int64(10-i), 0, 0))
	}

	resp, err := newTestService(ledger).Summary(context.Background())
	require.NoError(t, err)

	// Charts keep the 7 newest windows, reversed to read oldest first.
	require.Equal(t, []int64{4, 5, 6, 7, 8, 9, 10}, resp.Charts.Views)
	require.Len(t, resp.Charts.Likes, 7)
}

func TestTopPostsMapsRecords(t *testing.T) {
	receivedAt := fixedNow()
	ledger := &memLedger{
		topPosts: []storage.TopPostRecord{
			{Platform: "tw-dupe", PostID: "p1", Views: 5000, Likes: 250, Comments: 35, ReceivedAt: receivedAt},
			{Platform: "tw-dupe", PostID: "p2", Views: 4200, Likes: 210, Comments: 28, ReceivedAt: receivedAt},
		},
	}

	resp, err := newTestService(ledger).TopPosts(context.Background(), 5)
	require.NoError(t, err)

	require.Len(t, resp.Posts, 2)
	require.Equal(t, "p1", resp.Posts[0].PostID)
	require.Equal(t, int64(5000), resp.Posts[0].Views)
	require.Equal(t, "tw-dupe", resp.Posts[0].Platform)
}

func TestTopPostsLimitDefaultsAndCaps(t *testing.T) {
	ledger := &memLedger{}
	svc := newTestService(ledger)

	_, err := svc.TopPosts(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, defaultTopPostsLimit, ledger.lastLimit)

	_, err = svc.TopPosts(context.Background(), 500)
	require.NoError(t, err)
	require.Equal(t, maxTopPostsLimit, ledger.lastLimit)
}

func newTestRouter(ledger storage.StatsLedger) *gin.Engine {
	router := gin.New()
	newTestService(ledger).RegisterRoutes(router)
	return router
}

func TestHandleSummary(t *testing.T) {
	now := fixedNow()
	ledger := &memLedger{
		stats: []*storage.IngestedStats{statRow(now.Add(-time.Hour), 100, 1000, 10, 5)},
	}
	router := newTestRouter(ledger)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/dashboard/summary", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(1000), resp.Totals.Views)
}

func TestHandleSummaryLedgerError(t *testing.T) {
	router := newTestRouter(&memLedger{err: errors.New("connection refused")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/dashboard/summary", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleTopPostsLimitValidation(t *testing.T) {
	router := newTestRouter(&memLedger{})

	tests := []struct {
		name     string
		url      string
		wantCode int
	}{
		{name: "default", url: "/v1/dashboard/top-posts", wantCode: http.StatusOK},
		{name: "explicit limit", url: "/v1/dashboard/top-posts?limit=5", wantCode: http.StatusOK},
		{name: "not a number", url: "/v1/dashboard/top-posts?limit=abc", wantCode: http.StatusBadRequest},
		{name: "zero", url: "/v1/dashboard/top-posts?limit=0", wantCode: http.StatusBadRequest},
		{name: "negative", url: "/v1/dashboard/top-posts?limit=-3", wantCode: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.url, nil))
			require.Equal(t, tc.wantCode, w.Code)
		})
	}
}
