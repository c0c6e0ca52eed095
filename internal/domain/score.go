package domain

// Grid score sentinels.
const (
	// VerticalSolve marks a grid where no row matched but all four
	// columns were uniform with four distinct glyphs.
	VerticalSolve = -1
	// UnparseableGrid marks a grid whose glyph count was not a multiple
	// of four. It still ranks, dead last.
	UnparseableGrid = 69
)

// Score is one player's outcome for one game. For grid games Value holds
// the mistake count and Solved the solved group count; for every other
// metric Solved is zero and Value carries guesses, seconds or points.
type Score struct {
	Value  int `json:"value"`
	Solved int `json:"solved,omitempty"`
}

// GridScore builds a grid-metric score.
func GridScore(mistakes, solved int) Score {
	return Score{Value: mistakes, Solved: solved}
}

// RankedRow is one line of a ranked board: a rank shared by one or more
// tied authors. Competition ranking: the next distinct score's rank is
// its 1-based position among all entries ("1,1,3", never "1,1,2").
type RankedRow struct {
	Rank    int      `json:"rank"`
	Authors []string `json:"authors"`
	Score   Score    `json:"score"`
}

// Entry is a single (author, score) pair in first-seen order.
type Entry struct {
	AuthorID string `json:"author_id"`
	Score    Score  `json:"score"`
}
