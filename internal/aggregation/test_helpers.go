package aggregation

import (
	"context"
	"time"

	v1 "github.com/socialdesk-lab/socialdesk/internal/api/v1"
	"github.com/socialdesk-lab/socialdesk/internal/core/window"
)

// InMemoryEngagementStore is a test helper that implements
// storage.EngagementStore over synthetic event timestamps.
type InMemoryEngagementStore struct {
	// PostCreations etc. are raw event timestamps; counts are derived by
	// window membership.
	PostCreations []time.Time
	LikeEvents    []time.Time
	ViewEvents    []time.Time
	CommentEvents []time.Time

	// Posts holds per-post counters with their creation time, in the order
	// the store would return them.
	Posts []TimedPost

	// Err, when set, is returned by every method.
	Err error
}

// TimedPost pairs a post's counters with its creation timestamp.
type TimedPost struct {
	Post      v1.TopPost
	CreatedAt time.Time
}

func countInWindow(events []time.Time, w window.Window) int64 {
	var n int64
	for _, ts := range events {
		if w.Contains(ts) {
			n++
		}
	}
	return n
}

func (s *InMemoryEngagementStore) CountPosts(_ context.Context, w window.Window) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return countInWindow(s.PostCreations, w), nil
}

func (s *InMemoryEngagementStore) CountLikes(_ context.Context, w window.Window) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return countInWindow(s.LikeEvents, w), nil
}

func (s *InMemoryEngagementStore) CountViews(_ context.Context, w window.Window) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return countInWindow(s.ViewEvents, w), nil
}

func (s *InMemoryEngagementStore) CountComments(_ context.Context, w window.Window) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return countInWindow(s.CommentEvents, w), nil
}

func (s *InMemoryEngagementStore) PostsCreatedBefore(_ context.Context, end time.Time) ([]v1.TopPost, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var posts []v1.TopPost
	for _, tp := range s.Posts {
		if tp.CreatedAt.Before(end) {
			posts = append(posts, tp.Post)
		}
	}
	return posts, nil
}
