// Package render turns ranked results into chat-ready report text. Both
// renderers are pure functions of their inputs: no I/O, no shared state,
// so output is fully determined by (results, reference date, context).
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/puzzle-scoreboard/internal/domain"
	"github.com/puzzle-scoreboard/internal/puzzle"
	"github.com/puzzle-scoreboard/internal/rank"
)

var medals = []string{"👑", "🥈", "🥉"}

const (
	failMark = "💩"
	vertMark = "VERT 🧗"
	// datePlaceholder stands in for puzzle ids that aren't numeric.
	datePlaceholder = "#67"
)

// Scoreboard renders the full board. Games are ordered by descending
// participant count, stable over declared game order. Games with fewer
// than minPlayers participants are listed on a compact footer line
// instead of a full section, so every configured game is referenced
// somewhere in the output. Empty results render an explicit no-results
// report, never an empty string.
func Scoreboard(results *domain.ResultSet, ref time.Time, pctx *puzzle.Context, title string, minPlayers int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧮 **%s**", title)

	if results == nil || results.Empty() {
		b.WriteString("\n\nNo results found!")
		return b.String()
	}

	fmt.Fprintf(&b, " - %s\n\n", ref.Format("January 02, 2006"))

	games := domain.Games()
	sort.SliceStable(games, func(i, j int) bool {
		return results.Participants(games[i].Key) > results.Participants(games[j].Key)
	})

	footerStarted := false
	renderedAny := false
	for _, g := range games {
		gr := results.Game(g.Key)
		if gr == nil || gr.Len() < minPlayers {
			if !footerStarted {
				if renderedAny {
					b.WriteString("\n")
				}
				b.WriteString("-# Other games:\t")
				footerStarted = true
			}
			fmt.Fprintf(&b, "%s [%s](%s)\t", g.Emoji, g.Title, g.Link)
			continue
		}

		renderedAny = true
		writeGame(&b, g, rank.Rank(g.Metric, gr.Entries()), pctx)
	}

	return b.String()
}

func writeGame(b *strings.Builder, g domain.Game, rows []domain.RankedRow, pctx *puzzle.Context) {
	fmt.Fprintf(b, "**[%s](%s) %s %s**\n", g.Title, g.Link, g.Emoji, puzzleTag(g, pctx))

	for _, row := range rows {
		medal := ""
		if row.Rank <= len(medals) {
			medal = medals[row.Rank-1] + " "
		}
		scoreStr, failed := FormatScore(g, row.Score, pctx)
		if failed {
			medal = failMark
		}

		// Tied authors display in reverse of their grouped order.
		mentions := make([]string, 0, len(row.Authors))
		for i := len(row.Authors) - 1; i >= 0; i-- {
			mentions = append(mentions, "<@"+row.Authors[i]+">")
		}

		fmt.Fprintf(b, "%s%s: %s\n", medal, strings.Join(mentions, " "), scoreStr)
	}

	b.WriteString("\n")
}

// puzzleTag formats the header's puzzle identifier. Only sequential games
// have a numeric id; date-identified games fall back to the placeholder.
func puzzleTag(g domain.Game, pctx *puzzle.Context) string {
	if g.Numbering == domain.NumberingSequential {
		return fmt.Sprintf("#%d", pctx.Numbers[g.Key])
	}
	return datePlaceholder
}

// FormatScore renders one score the way its metric displays. The bool
// reports whether the row is a failure: a grid at maximum mistakes with
// nothing solved, or a guess count past the day's total, which displays
// as a fail marker rather than the numeric count.
func FormatScore(g domain.Game, s domain.Score, pctx *puzzle.Context) (string, bool) {
	total := pctx.Total(g.Key)

	switch g.Metric {
	case domain.MetricTime:
		return fmt.Sprintf("%d:%02d", s.Value/60, s.Value%60), false

	case domain.MetricGrid:
		switch {
		case s.Value == domain.VerticalSolve:
			return vertMark, false
		case s.Value == total:
			return fmt.Sprintf("%d/%d mistakes (%d solved)", s.Value, total, s.Solved), s.Solved == 0
		default:
			return fmt.Sprintf("%d/%d mistakes", s.Value, total), false
		}

	case domain.MetricPoints:
		if total > 0 {
			return fmt.Sprintf("%d/%d", s.Value, total), false
		}
		return fmt.Sprintf("%d", s.Value), false

	default: // guesses
		if total == 0 {
			return fmt.Sprintf("%d %s", s.Value, g.Metric), false
		}
		if s.Value > total {
			return fmt.Sprintf("X/%d %s", total, g.Metric), true
		}
		return fmt.Sprintf("%d/%d %s", s.Value, total, g.Metric), false
	}
}
