// Package rank orders per-game scores into tie-aware board rows.
package rank

import (
	"sort"

	"github.com/puzzle-scoreboard/internal/domain"
)

// Less reports whether a beats b under the metric's comparison rule.
// Grid scores compare ascending by (mistakes, -solved): fewer mistakes
// wins, and among equal mistakes more partial progress ranks better; the
// vertical-solve sentinel (-1 mistakes) naturally sorts best. Points
// sort descending, everything else ascending.
func Less(metric domain.Metric, a, b domain.Score) bool {
	switch metric {
	case domain.MetricGrid:
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		return a.Solved > b.Solved
	case domain.MetricPoints:
		return a.Value > b.Value
	default:
		return a.Value < b.Value
	}
}

// Rank sorts one game's entries by the metric's comparison rule, groups
// equal scores into single rows, and assigns competition ranks: ties
// share a rank and the next distinct score's rank equals its 1-based
// position among all entries. The sort is stable over the entries'
// first-seen order, so identical input ordering always yields an
// identical board.
func Rank(metric domain.Metric, entries []domain.Entry) []domain.RankedRow {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]domain.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Less(metric, sorted[i].Score, sorted[j].Score)
	})

	var rows []domain.RankedRow
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j].Score == sorted[i].Score {
			j++
		}
		authors := make([]string, 0, j-i)
		for k := i; k < j; k++ {
			authors = append(authors, sorted[k].AuthorID)
		}
		rows = append(rows, domain.RankedRow{
			Rank:    i + 1,
			Authors: authors,
			Score:   sorted[i].Score,
		})
		i = j
	}
	return rows
}

// All ranks every game that has results, keyed by game.
func All(results *domain.ResultSet) map[string][]domain.RankedRow {
	rankings := make(map[string][]domain.RankedRow)
	for _, g := range domain.Games() {
		gr := results.Game(g.Key)
		if gr == nil || gr.Len() == 0 {
			continue
		}
		rankings[g.Key] = Rank(g.Metric, gr.Entries())
	}
	return rankings
}
