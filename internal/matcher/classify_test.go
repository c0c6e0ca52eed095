package matcher

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puzzle-scoreboard/internal/domain"
	"github.com/puzzle-scoreboard/internal/puzzle"
)

var testRef = time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)

func testSetup(t *testing.T) (*puzzle.Context, []Matcher, puzzle.Checker) {
	t.Helper()
	pctx := puzzle.Compute(testRef)
	return pctx, Build(pctx), puzzle.NewWindowChecker(testRef, time.UTC, 0, 24)
}

func msg(id, author, content, ts string) domain.Message {
	return domain.Message{ID: id, AuthorID: author, Content: content, Timestamp: ts}
}

const inWindow = "2025-06-05T12:00:00Z"

func TestClassifyConnections(t *testing.T) {
	pctx, matchers, check := testSetup(t)
	content := fmt.Sprintf(
		"Connections\nPuzzle #%d\n🟨🟨🟨🟨\n🟩🟩🟩🟩\n🟦🟦🟦🟦\n🟪🟪🟪🟪",
		pctx.Numbers["connections"],
	)

	match, err := Classify(content, inWindow, matchers, check)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "connections", match.Key)
	assert.Equal(t, domain.GridScore(0, 4), match.Score)
}

func TestClassifyWrongPuzzleNumber(t *testing.T) {
	pctx, matchers, check := testSetup(t)
	content := fmt.Sprintf("Connections\nPuzzle #%d\n🟨🟨🟨🟨", pctx.Numbers["connections"]+1)

	match, err := Classify(content, inWindow, matchers, check)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestClassifyBandle(t *testing.T) {
	pctx, matchers, check := testSetup(t)

	match, err := Classify(fmt.Sprintf("Bandle #%d 3/6", pctx.Numbers["bandle"]), inWindow, matchers, check)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "bandle", match.Key)
	assert.Equal(t, 3, match.Score.Value)
	assert.Equal(t, 6, match.TotalOverride)
}

func TestClassifyBandleFail(t *testing.T) {
	pctx, matchers, check := testSetup(t)

	// The fail token scores one worse than the maximum.
	match, err := Classify(fmt.Sprintf("Bandle #%d x/6", pctx.Numbers["bandle"]), inWindow, matchers, check)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, 7, match.Score.Value)
	assert.Equal(t, 6, match.TotalOverride)
}

func TestClassifyBandleCapturedTotal(t *testing.T) {
	pctx, matchers, check := testSetup(t)

	// A special-event denominator in the share text overrides the default.
	match, err := Classify(fmt.Sprintf("Bandle #%d 2/9", pctx.Numbers["bandle"]), inWindow, matchers, check)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, 2, match.Score.Value)
	assert.Equal(t, 9, match.TotalOverride)
}

func TestClassifyPipsClock(t *testing.T) {
	pctx, matchers, check := testSetup(t)
	content := fmt.Sprintf("Pips #%d Hard 🎲\nSolved in 3:07", pctx.Numbers["pips"])

	match, err := Classify(content, inWindow, matchers, check)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "pips", match.Key)
	assert.Equal(t, 187, match.Score.Value)
}

func TestClassifyPipsMissingClock(t *testing.T) {
	pctx, matchers, check := testSetup(t)
	content := fmt.Sprintf("Pips #%d Hard", pctx.Numbers["pips"])

	_, err := Classify(content, inWindow, matchers, check)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingScore))
}

func TestClassifyMapTap(t *testing.T) {
	_, matchers, check := testSetup(t)
	content := "MapTap 🎯 June 5\nFinal Score: 4478"

	match, err := Classify(content, inWindow, matchers, check)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "maptap", match.Key)
	assert.Equal(t, 4478, match.Score.Value)
}

func TestClassifyChronophoto(t *testing.T) {
	_, matchers, check := testSetup(t)
	content := "I got a score of 3605 on today's Chronophoto: 6/5/2025"

	match, err := Classify(content, inWindow, matchers, check)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "chronophoto", match.Key)
	assert.Equal(t, 3605, match.Score.Value)
}

func TestClassifyGlobleWindow(t *testing.T) {
	_, matchers, check := testSetup(t)
	content := "🌎 I guessed today's Globle in 7 tries"

	match, err := Classify(content, inWindow, matchers, check)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "globle", match.Key)
	assert.Equal(t, 7, match.Score.Value)

	// The same text outside the window does not match.
	match, err = Classify(content, "2025-06-04T12:00:00Z", matchers, check)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestClassifyCurlyApostrophe(t *testing.T) {
	_, matchers, check := testSetup(t)
	content := "🌎 I guessed today’s Globle in 2 tries"

	match, err := Classify(content, inWindow, matchers, check)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "globle", match.Key)
}

func TestClassifyWheredle(t *testing.T) {
	_, matchers, check := testSetup(t)

	match, err := Classify("#Wheredle 🛣️\n🟨🟨🟩", inWindow, matchers, check)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "wheredle", match.Key)
	assert.Equal(t, 3, match.Score.Value)
}

func TestClassifyWheredleDNF(t *testing.T) {
	_, matchers, check := testSetup(t)

	// No success glyph means did-not-finish, one worse than the total.
	match, err := Classify("#Wheredle 🛣️\n🟨🟨🟨", inWindow, matchers, check)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, 8, match.Score.Value)
}

func TestClassifyQuizl(t *testing.T) {
	pctx, matchers, check := testSetup(t)
	content := fmt.Sprintf("Quizl#%d\n🟩🟩🟥🟩🟥", pctx.Numbers["quizl"])

	match, err := Classify(content, inWindow, matchers, check)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "quizl", match.Key)
	assert.Equal(t, 3, match.Score.Value)
}

func TestClassifyPriorityOrder(t *testing.T) {
	pctx, matchers, check := testSetup(t)

	// A message matching two games attributes to the higher-priority one.
	content := fmt.Sprintf(
		"Connections\nPuzzle #%d\n🟨🟨🟨🟨\n🟩🟩🟩🟩\n🟦🟦🟦🟦\n🟪🟪🟪🟪\nalso Bandle #%d 3/6",
		pctx.Numbers["connections"], pctx.Numbers["bandle"],
	)
	match, err := Classify(content, inWindow, matchers, check)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "connections", match.Key)
}

func TestClassifyInvalidTimestamp(t *testing.T) {
	_, matchers, check := testSetup(t)

	_, err := Classify("I guessed today's Globle in 4 tries", "garbage", matchers, check)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTimestamp))
}

func TestClassifyNoMatch(t *testing.T) {
	_, matchers, check := testSetup(t)

	match, err := Classify("just chatting about lunch", inWindow, matchers, check)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestClassifyBatch(t *testing.T) {
	pctx, matchers, check := testSetup(t)
	bandle := pctx.Numbers["bandle"]

	messages := []domain.Message{
		msg("1", "alice", fmt.Sprintf("Bandle #%d 3/6", bandle), inWindow),
		msg("2", "bob", fmt.Sprintf("Bandle #%d x/6", bandle), inWindow),
		msg("3", "carol", "nothing to see", inWindow),
		msg("4", "dave", "I guessed today's Globle in 5 tries", "garbage"),
	}

	results, hits := ClassifyBatch(messages, matchers, pctx, check, nil)
	require.Len(t, hits, 2)
	assert.Equal(t, 2, results.Participants("bandle"))

	score, ok := results.Game("bandle").Get("bob")
	require.True(t, ok)
	assert.Equal(t, 7, score.Value)
}

func TestClassifyBatchLastWriteWins(t *testing.T) {
	pctx, matchers, check := testSetup(t)
	bandle := pctx.Numbers["bandle"]

	messages := []domain.Message{
		msg("1", "alice", fmt.Sprintf("Bandle #%d 5/6", bandle), inWindow),
		msg("2", "alice", fmt.Sprintf("Bandle #%d 2/6", bandle), inWindow),
	}

	results, hits := ClassifyBatch(messages, matchers, pctx, check, nil)
	require.Len(t, hits, 2)
	assert.Equal(t, 1, results.Participants("bandle"))

	score, _ := results.Game("bandle").Get("alice")
	assert.Equal(t, 2, score.Value)
}

func TestClassifyBatchIdempotent(t *testing.T) {
	pctx, matchers, check := testSetup(t)
	messages := []domain.Message{
		msg("1", "alice", fmt.Sprintf("Bandle #%d 3/6", pctx.Numbers["bandle"]), inWindow),
		msg("2", "bob", "I guessed today's Globle in 4 tries", inWindow),
	}

	first, _ := ClassifyBatch(messages, matchers, pctx, check, nil)
	second, _ := ClassifyBatch(messages, matchers, pctx, check, nil)
	assert.Equal(t, first.ToMap(), second.ToMap())
}

func TestClassifyBatchTotalOverride(t *testing.T) {
	pctx, matchers, check := testSetup(t)
	messages := []domain.Message{
		msg("1", "alice", fmt.Sprintf("Bandle #%d 2/9", pctx.Numbers["bandle"]), inWindow),
	}

	ClassifyBatch(messages, matchers, pctx, check, nil)
	assert.Equal(t, 9, pctx.Total("bandle"))
}
