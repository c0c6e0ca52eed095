package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/puzzle-scoreboard/internal/domain"
)

func TestParseGridPerfect(t *testing.T) {
	content := "🟨🟨🟨🟨\n🟩🟩🟩🟩\n🟦🟦🟦🟦\n🟪🟪🟪🟪"
	assert.Equal(t, domain.GridScore(0, 4), ParseGrid(content))
}

func TestParseGridWithMistakes(t *testing.T) {
	// Two mixed rows before solving all four groups: 2 mistakes, 4 solved.
	content := "🟨🟩🟨🟨\n🟨🟦🟨🟨\n🟨🟨🟨🟨\n🟩🟩🟩🟩\n🟦🟦🟦🟦\n🟪🟪🟪🟪"
	assert.Equal(t, domain.GridScore(2, 4), ParseGrid(content))
}

func TestParseGridFailed(t *testing.T) {
	// Four mixed rows and nothing solved.
	content := "🟨🟩🟦🟪\n🟩🟨🟪🟦\n🟦🟪🟨🟩\n🟪🟦🟩🟨"
	assert.Equal(t, domain.GridScore(4, 0), ParseGrid(content))
}

func TestParseGridPartialFail(t *testing.T) {
	// Ran out of guesses after solving two groups: 4 mistakes, 2 solved.
	content := "🟨🟨🟨🟨\n🟩🟩🟩🟩\n🟦🟪🟦🟦\n🟪🟦🟪🟪\n🟦🟦🟪🟦\n🟪🟪🟦🟪"
	assert.Equal(t, domain.GridScore(4, 2), ParseGrid(content))
}

func TestParseGridVerticalSolve(t *testing.T) {
	// Every column uniform, four distinct colors, no solved row.
	row := "🟨🟩🟦🟪\n"
	content := row + row + row + row
	assert.Equal(t, domain.GridScore(domain.VerticalSolve, 0), ParseGrid(content))
}

func TestParseGridVerticalNeedsDistinctColumns(t *testing.T) {
	// Uniform columns but only two distinct colors is not a vertical solve.
	row := "🟨🟨🟩🟩\n"
	content := row + row + row + row
	assert.Equal(t, domain.GridScore(4, 0), ParseGrid(content))
}

func TestParseGridCircleVariants(t *testing.T) {
	// Circle glyphs count as squares but never match their square twins.
	content := "🟡🟡🟡🟡\n🟢🟢🟢🟢\n🔵🔵🔵🔵\n🟣🟣🟣🟣"
	assert.Equal(t, domain.GridScore(0, 4), ParseGrid(content))

	mixed := "🟨🟡🟨🟨\n🟩🟩🟩🟩\n🟦🟦🟦🟦\n🟪🟪🟪🟪\n🟨🟨🟨🟨"
	assert.Equal(t, domain.GridScore(1, 4), ParseGrid(mixed))
}

func TestParseGridUnparseable(t *testing.T) {
	// Glyph count not divisible by four scores the sentinel.
	content := "🟨🟨🟨🟨🟩"
	assert.Equal(t, domain.GridScore(domain.UnparseableGrid, 0), ParseGrid(content))

	// No glyphs at all parses as zero rows, not the sentinel.
	assert.Equal(t, domain.GridScore(0, 0), ParseGrid("no squares here"))
}
