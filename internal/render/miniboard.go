package render

import (
	"fmt"
	"strings"

	"github.com/puzzle-scoreboard/internal/domain"
	"github.com/puzzle-scoreboard/internal/puzzle"
)

// MiniBoard renders a single game's board, used for reply messages when
// a new result arrives. Pure, like Scoreboard.
func MiniBoard(g domain.Game, rows []domain.RankedRow, pctx *puzzle.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s **[%s](%s) Leaderboard:**", g.Emoji, g.Title, g.Link)

	for _, row := range rows {
		medal := ""
		if row.Rank <= len(medals) {
			medal = medals[row.Rank-1]
		}
		scoreStr, _ := FormatScore(g, row.Score, pctx)
		for _, authorID := range row.Authors {
			fmt.Fprintf(&b, "\n%s <@%s>: %s", medal, authorID, scoreStr)
		}
	}

	return b.String()
}
