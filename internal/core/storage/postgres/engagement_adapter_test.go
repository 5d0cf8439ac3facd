package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/socialdesk-lab/socialdesk/internal/core/window"
)

func newMockEngagementAdapter(t *testing.T) (*EngagementAdapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	adapter := &EngagementAdapter{
		db:                db,
		stmtCountPosts:    mustPrepareStmt(t, db, mock, queryCountPosts),
		stmtCountLikes:    mustPrepareStmt(t, db, mock, queryCountLikes),
		stmtCountViews:    mustPrepareStmt(t, db, mock, queryCountViews),
		stmtCountComments: mustPrepareStmt(t, db, mock, queryCountComments),
		stmtPostsBefore:   mustPrepareStmt(t, db, mock, queryPostsCreatedBefore),
	}

	return adapter, mock, db
}

func engagementWindow() window.Window {
	return window.Window{
		Start: time.Date(2026, 2, 8, 11, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC),
	}
}

func TestEngagementAdapter_Counts(t *testing.T) {
	w := engagementWindow()

	tests := []struct {
		name  string
		query string
		count func(a *EngagementAdapter) (int64, error)
	}{
		{name: "posts", query: queryCountPosts, count: func(a *EngagementAdapter) (int64, error) {
			return a.CountPosts(context.Background(), w)
		}},
		{name: "likes", query: queryCountLikes, count: func(a *EngagementAdapter) (int64, error) {
			return a.CountLikes(context.Background(), w)
		}},
		{name: "views", query: queryCountViews, count: func(a *EngagementAdapter) (int64, error) {
			return a.CountViews(context.Background(), w)
		}},
		{name: "comments", query: queryCountComments, count: func(a *EngagementAdapter) (int64, error) {
			return a.CountComments(context.Background(), w)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter, mock, db := newMockEngagementAdapter(t)
			defer db.Close()

			mock.ExpectQuery(regexp.QuoteMeta(tc.query)).
				WithArgs(w.Start, w.End).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

			n, err := tc.count(adapter)
			require.NoError(t, err)
			require.Equal(t, int64(42), n)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEngagementAdapter_CountError(t *testing.T) {
	adapter, mock, db := newMockEngagementAdapter(t)
	defer db.Close()

	w := engagementWindow()

	mock.ExpectQuery(regexp.QuoteMeta(queryCountPosts)).
		WillReturnError(errors.New("connection reset"))

	_, err := adapter.CountPosts(context.Background(), w)
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to count posts")
}

func TestEngagementAdapter_PostsCreatedBefore(t *testing.T) {
	adapter, mock, db := newMockEngagementAdapter(t)
	defer db.Close()

	end := engagementWindow().End

	rows := sqlmock.NewRows([]string{"id", "views_count", "likes_count", "comments_count"}).
		AddRow("p1", int64(5000), int64(250), int64(35)).
		AddRow("p2", int64(4200), int64(210), int64(28))

	mock.ExpectQuery(regexp.QuoteMeta(queryPostsCreatedBefore)).
		WithArgs(end).
		WillReturnRows(rows)

	posts, err := adapter.PostsCreatedBefore(context.Background(), end)
	require.NoError(t, err)

	require.Len(t, posts, 2)
	require.Equal(t, "p1", posts[0].PostID)
	require.Equal(t, int64(5000), posts[0].Views)
	require.Equal(t, int64(28), posts[1].Comments)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementAdapter_PostsCreatedBeforeEmpty(t *testing.T) {
	adapter, mock, db := newMockEngagementAdapter(t)
	defer db.Close()

	end := engagementWindow().End

	mock.ExpectQuery(regexp.QuoteMeta(queryPostsCreatedBefore)).
		WithArgs(end).
		WillReturnRows(sqlmock.NewRows([]string{"id", "views_count", "likes_count", "comments_count"}))

	posts, err := adapter.PostsCreatedBefore(context.Background(), end)
	require.NoError(t, err)
	require.Empty(t, posts)
}

func TestValidateEngagementSchemaMissingTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("posts").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err = validateEngagementSchema(db)
	require.Error(t, err)
	require.ErrorContains(t, err, "posts table does not exist")
}
