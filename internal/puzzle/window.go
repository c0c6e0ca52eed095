package puzzle

import (
	"fmt"
	"time"

	"github.com/puzzle-scoreboard/internal/domain"
)

// Checker reports whether an ISO-8601 timestamp falls inside the day's
// acceptance window. An unparseable timestamp is a hard error for that
// message, never a silent skip.
type Checker func(isoTimestamp string) (bool, error)

// NewWindowChecker builds the shared window predicate used by every
// timestamp-anchored matcher: [start, start+window) where start is the
// reference date at hoursAfterMidnight in loc. Timestamps are converted
// into loc before comparison.
func NewWindowChecker(ref time.Time, loc *time.Location, hoursAfterMidnight, windowHours int) Checker {
	start := time.Date(ref.Year(), ref.Month(), ref.Day(), hoursAfterMidnight, 0, 0, 0, loc)
	end := start.Add(time.Duration(windowHours) * time.Hour)

	return func(isoTimestamp string) (bool, error) {
		ts, err := time.Parse(time.RFC3339, isoTimestamp)
		if err != nil {
			return false, fmt.Errorf("%w: %q", domain.ErrInvalidTimestamp, isoTimestamp)
		}
		ts = ts.In(loc)
		return !ts.Before(start) && ts.Before(end), nil
	}
}
