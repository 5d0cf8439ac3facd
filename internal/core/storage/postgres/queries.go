package postgres

// SQL queries for the stats ledger (desk side) and the engagement event
// tables (platform side, read-only).

const (
	// queryInsertPlatformStats appends one row to the ledger.
	// No ON CONFLICT clause: duplicate submissions are kept as independent
	// rows, the ledger is append-only.
	queryInsertPlatformStats = `
		INSERT INTO platform_stats (
			id, platform, period_start, period_end,
			total_posts, total_likes, total_views, total_comments,
			signature_verified, received_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	// queryInsertTopPost appends one top-content entry tagged with the
	// reporting platform.
	queryInsertTopPost = `
		INSERT INTO top_posts (
			platform, post_id, views, likes, comments, received_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	// queryStatsSince feeds the dashboard summary. Newest first so the
	// chart tail is a simple prefix slice.
	queryStatsSince = `
		SELECT
			id, platform, period_start, period_end,
			total_posts, total_likes, total_views, total_comments,
			signature_verified, received_at
		FROM platform_stats
		WHERE period_start >= $1
		ORDER BY period_start DESC
	`

	// queryTopPosts feeds the dashboard top-posts endpoint.
	queryTopPosts = `
		SELECT platform, post_id, views, likes, comments, received_at
		FROM top_posts
		ORDER BY views DESC
		LIMIT $1
	`

	// Platform-side counting queries. All windows are half-open
	// [start, end): inclusive start, exclusive end.
	queryCountPosts = `
		SELECT COUNT(*) FROM posts
		WHERE created_at >= $1 AND created_at < $2
	`

	queryCountLikes = `
		SELECT COUNT(*) FROM likes
		WHERE created_at >= $1 AND created_at < $2
	`

	queryCountViews = `
		SELECT COUNT(*) FROM post_views
		WHERE viewed_at >= $1 AND viewed_at < $2
	`

	queryCountComments = `
		SELECT COUNT(*) FROM comments
		WHERE created_at >= $1 AND created_at < $2
	`

	// queryPostsCreatedBefore returns the raw per-post counters; the
	// aggregator ranks them. COALESCE guards the counter columns, which the
	// feed service leaves NULL until the first engagement lands.
	queryPostsCreatedBefore = `
		SELECT
			id,
			COALESCE(views_count, 0),
			COALESCE(likes_count, 0),
			COALESCE(comments_count, 0)
		FROM posts
		WHERE created_at < $1
	`
)
