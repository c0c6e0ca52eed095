package puzzle

import (
	"fmt"
	"time"

	"github.com/puzzle-scoreboard/internal/domain"
)

// Context carries the day's puzzle identifiers and per-game totals for a
// single run. It is built once per run from the reference date; the only
// mutation is SetTotal, which folds in a denominator observed in a share
// text during classification.
type Context struct {
	Reference time.Time
	// MonthDay is the "June 5" label date-identified games stamp their
	// share text with. It must byte-match what the game's bot posts.
	MonthDay string
	// SlashDate is Chronophoto's "6/5/2025" variant.
	SlashDate string
	// Numbers holds sequential puzzle numbers by game key.
	Numbers map[string]int

	totals map[string]int
}

// Compute derives every game's puzzle identifier for a reference date.
// Sequential games get floor(days since epoch) + 1.
func Compute(ref time.Time) *Context {
	ctx := &Context{
		Reference: ref,
		MonthDay:  fmt.Sprintf("%s %d", ref.Month(), ref.Day()),
		SlashDate: fmt.Sprintf("%d/%d/%d", int(ref.Month()), ref.Day(), ref.Year()),
		Numbers:   make(map[string]int),
		totals:    make(map[string]int),
	}
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	for _, g := range domain.Games() {
		if g.Numbering == domain.NumberingSequential {
			ctx.Numbers[g.Key] = int(day.Sub(g.Epoch).Hours()/24) + 1
		}
		if g.Total > 0 {
			ctx.totals[g.Key] = g.Total
		}
	}
	return ctx
}

// Total returns the day's denominator for a game, 0 when it has none.
func (c *Context) Total(gameKey string) int {
	return c.totals[gameKey]
}

// SetTotal overrides a game's denominator for the rest of the run.
func (c *Context) SetTotal(gameKey string, total int) {
	if total > 0 {
		c.totals[gameKey] = total
	}
}

// ReferenceDate returns the puzzle day for a wall-clock instant: midnight
// of the current day in loc, rolled back one day when the instant falls
// before the hours-after-midnight cutoff.
func ReferenceDate(now time.Time, loc *time.Location, hoursAfterMidnight int) time.Time {
	n := now.In(loc)
	if n.Hour() < hoursAfterMidnight {
		n = n.AddDate(0, 0, -1)
	}
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
}

// PreviousDay returns the reference date for the daily report, which
// covers the prior calendar day's puzzles.
func PreviousDay(now time.Time, loc *time.Location, hoursAfterMidnight int) time.Time {
	return ReferenceDate(now, loc, hoursAfterMidnight).AddDate(0, 0, -1)
}
