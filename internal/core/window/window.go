package window

import (
	"fmt"
	"time"
)

// Window is a half-open time interval [Start, End) over which engagement
// events are aggregated. The exclusive end guarantees that an event landing
// exactly on a boundary is counted by exactly one window.
type Window struct {
	Start time.Time
	End   time.Time
}

// Trailing returns the window covering the `size` interval ending at now.
// Example: Trailing(12:00, 1h) → [11:00, 12:00)
func Trailing(now time.Time, size time.Duration) Window {
	return Window{Start: now.Add(-size), End: now}
}

// Contains reports whether t falls inside the window.
// The start is inclusive, the end exclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Validate ensures the window is non-empty.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("window bounds must be set")
	}
	if !w.Start.Before(w.End) {
		return fmt.Errorf("window start %s must be before end %s",
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// ParseSize parses a reporting window size string.
// Supports Go duration syntax (e.g., "10m", "1h") plus "Xd" for days.
func ParseSize(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("window size must not be empty")
	}

	// Handle "d" suffix (days) — not supported by time.ParseDuration.
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err != nil {
			return 0, fmt.Errorf("invalid window size %q: %w", s, err)
		}
		if days <= 0 {
			return 0, fmt.Errorf("window size must be positive, got %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid window size %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("window size must be positive, got %q", s)
	}
	return d, nil
}
