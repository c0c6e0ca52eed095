package matcher

import "github.com/puzzle-scoreboard/internal/domain"

// gridGlyphs are the recognized colored squares: four colors, each with
// two visually-equivalent glyph variants. Variants are distinct glyphs
// for matching purposes; a row mixing 🟨 and 🟡 does not count as solved.
var gridGlyphs = map[rune]bool{
	'🟨': true, '🟩': true, '🟦': true, '🟪': true,
	'🟡': true, '🟢': true, '🔵': true, '🟣': true,
}

// ParseGrid scores a colored-square share grid. Glyphs are taken in
// appearance order and partitioned into rows of four; a row counts as
// solved when all four glyphs are identical, and mistakes are the
// remaining rows. A grid whose glyph count is not a multiple of four is
// unparseable and scores the worst-ranked sentinel instead of erroring.
func ParseGrid(content string) domain.Score {
	var squares []rune
	for _, r := range content {
		if gridGlyphs[r] {
			squares = append(squares, r)
		}
	}
	if len(squares)%4 != 0 {
		return domain.GridScore(domain.UnparseableGrid, 0)
	}

	rows := len(squares) / 4
	solved := 0
	for i := 0; i < rows; i++ {
		row := squares[i*4 : i*4+4]
		if row[0] == row[1] && row[1] == row[2] && row[2] == row[3] {
			solved++
		}
	}

	if rows == 4 && solved == 0 && isVerticalSolve(squares) {
		return domain.GridScore(domain.VerticalSolve, 0)
	}
	return domain.GridScore(rows-solved, solved)
}

// isVerticalSolve reports whether all four columns of a 4x4 grid are
// internally uniform with four distinct glyphs: the alternate solving
// pattern scored specially.
func isVerticalSolve(squares []rune) bool {
	distinct := make(map[rune]bool, 4)
	for col := 0; col < 4; col++ {
		glyph := squares[col]
		for row := 1; row < 4; row++ {
			if squares[row*4+col] != glyph {
				return false
			}
		}
		distinct[glyph] = true
	}
	return len(distinct) == 4
}
