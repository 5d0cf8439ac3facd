package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/socialdesk-lab/socialdesk/internal/api/v1"
	"github.com/socialdesk-lab/socialdesk/internal/core/window"
	_ "github.com/lib/pq" // Register postgres driver
)

// EngagementAdapter implements storage.EngagementStore for PostgreSQL.
// It reads the feed service's posts/likes/comments/post_views tables and
// never writes to them; those tables belong to the CRUD routes upstream.
type EngagementAdapter struct {
	db                *sql.DB
	stmtCountPosts    *sql.Stmt
	stmtCountLikes    *sql.Stmt
	stmtCountViews    *sql.Stmt
	stmtCountComments *sql.Stmt
	stmtPostsBefore   *sql.Stmt
}

// NewEngagementAdapter creates the platform-side read adapter.
// The engagement tables are owned and migrated by the feed service, so this
// adapter only verifies they exist rather than creating them.
func NewEngagementAdapter(dsn string, maxOpenConns, maxIdleConns int) (*EngagementAdapter, error) {
	db, err := openAndPing(dsn, maxOpenConns, maxIdleConns)
	if err != nil {
		return nil, err
	}

	if err := validateEngagementSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("engagement schema validation failed - is the feed database migrated?: %w", err)
	}

	a := &EngagementAdapter{db: db}
	for name, prep := range map[string]struct {
		query string
		dest  **sql.Stmt
	}{
		"countPosts":         {queryCountPosts, &a.stmtCountPosts},
		"countLikes":         {queryCountLikes, &a.stmtCountLikes},
		"countViews":         {queryCountViews, &a.stmtCountViews},
		"countComments":      {queryCountComments, &a.stmtCountComments},
		"postsCreatedBefore": {queryPostsCreatedBefore, &a.stmtPostsBefore},
	} {
		stmt, err := db.Prepare(prep.query)
		if err != nil {
			a.closeStatements()
			db.Close()
			return nil, fmt.Errorf("failed to prepare %s statement: %w", name, err)
		}
		*prep.dest = stmt
	}

	slog.Info("[Postgres] Engagement adapter initialized with prepared statements")
	return a, nil
}

// validateEngagementSchema checks that the event tables this adapter reads
// are present.
func validateEngagementSchema(db *sql.DB) error {
	for _, table := range []string{"posts", "likes", "comments", "post_views"} {
		var exists bool
		query := `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_name = $1
			)
		`
		if err := db.QueryRow(query, table).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check schema: %w", err)
		}
		if !exists {
			return fmt.Errorf("%s table does not exist", table)
		}
	}
	return nil
}

// CountPosts returns the number of posts created inside w.
func (a *EngagementAdapter) CountPosts(ctx context.Context, w window.Window) (int64, error) {
	return a.count(ctx, a.stmtCountPosts, "posts", w)
}

// CountLikes returns the number of like events inside w.
func (a *EngagementAdapter) CountLikes(ctx context.Context, w window.Window) (int64, error) {
	return a.count(ctx, a.stmtCountLikes, "likes", w)
}

// CountViews returns the number of view events inside w.
func (a *EngagementAdapter) CountViews(ctx context.Context, w window.Window) (int64, error) {
	return a.count(ctx, a.stmtCountViews, "views", w)
}

// CountComments returns the number of comment events inside w.
func (a *EngagementAdapter) CountComments(ctx context.Context, w window.Window) (int64, error) {
	return a.count(ctx, a.stmtCountComments, "comments", w)
}

func (a *EngagementAdapter) count(ctx context.Context, stmt *sql.Stmt, kind string, w window.Window) (int64, error) {
	var n int64
	if err := stmt.QueryRowContext(ctx, w.Start, w.End).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s in %s: %w", kind, w, err)
	}
	return n, nil
}

// PostsCreatedBefore returns the per-post engagement counters of every post
// created strictly before end, in retrieval order.
func (a *EngagementAdapter) PostsCreatedBefore(ctx context.Context, end time.Time) ([]v1.TopPost, error) {
	rows, err := a.stmtPostsBefore.QueryContext(ctx, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []v1.TopPost
	for rows.Next() {
		var p v1.TopPost
		if err := rows.Scan(&p.PostID, &p.Views, &p.Likes, &p.Comments); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

// DB returns the underlying *sql.DB for health checks.
func (a *EngagementAdapter) DB() *sql.DB {
	return a.db
}

func (a *EngagementAdapter) closeStatements() error {
	var firstErr error
	for name, stmt := range map[string]*sql.Stmt{
		"countPosts":         a.stmtCountPosts,
		"countLikes":         a.stmtCountLikes,
		"countViews":         a.stmtCountViews,
		"countComments":      a.stmtCountComments,
		"postsCreatedBefore": a.stmtPostsBefore,
	} {
		if stmt == nil {
			continue
		}
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close %s statement: %w", name, err)
		}
	}
	return firstErr
}

// Close closes the database connection and all prepared statements.
func (a *EngagementAdapter) Close() error {
	firstErr := a.closeStatements()

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close database: %w", err)
	}

	if firstErr != nil {
		return firstErr
	}

	slog.Info("[Postgres] Engagement adapter closed gracefully")
	return nil
}
