package matcher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/puzzle-scoreboard/internal/domain"
	"github.com/puzzle-scoreboard/internal/puzzle"
)

// extractFunc turns a pattern hit into a score. groups is the submatch
// slice from the matcher's pattern. The int return is a per-day total
// discovered in the share text itself (0 when the game has none); the
// caller folds it into the puzzle context before rendering.
type extractFunc func(content string, groups []string) (domain.Score, int, error)

// Matcher ties one game's share-text pattern to its score extraction
// rule. Patterns are parameterized by the day's puzzle identifier so only
// messages about today's puzzle match; games whose share text carries no
// daily identifier set NeedsTimestamp and are gated by the acceptance
// window instead.
type Matcher struct {
	Key            string
	NeedsTimestamp bool

	pattern *regexp.Regexp
	search  *regexp.Regexp // optional cheap pre-check before pattern
	extract extractFunc
}

// Match is a classified message.
type Match struct {
	Key   string
	Score domain.Score
	// TotalOverride is a denominator captured from the share text that
	// replaces the game's default for the rest of the run, 0 when absent.
	TotalOverride int
}

var (
	clockRe      = regexp.MustCompile(`(\d+):(\d+)`)
	finalScoreRe = regexp.MustCompile(`(?i)Final Score: (\d+)`)
)

// Build constructs the day's matchers in classifier priority order,
// closing over the puzzle context for identifier-anchored patterns and
// per-day totals.
func Build(pctx *puzzle.Context) []Matcher {
	n := pctx.Numbers
	return []Matcher{
		{
			Key:     "connections",
			pattern: regexp.MustCompile(fmt.Sprintf(`(?is)Connections.*?Puzzle #%d`, n["connections"])),
			extract: extractGrid,
		},
		{
			Key:     "bandle",
			pattern: regexp.MustCompile(fmt.Sprintf(`(?i)Bandle #%d (\d+|x)/(\d+)`, n["bandle"])),
			extract: extractBandle,
		},
		{
			Key:     "sports",
			pattern: regexp.MustCompile(fmt.Sprintf(`(?is)Connections: Sports Edition.*?puzzle #%d`, n["sports"])),
			extract: extractGrid,
		},
		{
			Key:     "pips",
			pattern: regexp.MustCompile(fmt.Sprintf(`(?i)Pips #%d Hard`, n["pips"])),
			extract: extractClock,
		},
		{
			Key:     "maptap",
			pattern: regexp.MustCompile(fmt.Sprintf(`(?i)(.*)MapTap(.*)%s`, regexp.QuoteMeta(pctx.MonthDay))),
			extract: extractFinalScore,
		},
		{
			Key:     "chronophoto",
			search:  regexp.MustCompile(`(?i)` + regexp.QuoteMeta(pctx.SlashDate)),
			pattern: regexp.MustCompile(fmt.Sprintf(`(?i)I got a score of (\d+) on today's Chronophoto: %s`, regexp.QuoteMeta(pctx.SlashDate))),
			extract: extractCaptured,
		},
		{
			Key:            "globle",
			NeedsTimestamp: true,
			pattern:        regexp.MustCompile(`(?i)I guessed today['’]s Globle in (\d+) tr`),
			extract:        extractCaptured,
		},
		{
			Key:            "worldle",
			NeedsTimestamp: true,
			pattern:        regexp.MustCompile(`(?i)I guessed today['’]s Worldle in (\d+) tr`),
			extract:        extractCaptured,
		},
		{
			Key:            "flagle",
			NeedsTimestamp: true,
			pattern:        regexp.MustCompile(`(?i)I guessed today['’]s Flag in (\d+) tr`),
			extract:        extractCaptured,
		},
		{
			Key:            "wheredle",
			NeedsTimestamp: true,
			pattern:        regexp.MustCompile(`(?i)#Wheredle`),
			extract:        extractWheredle(pctx),
		},
		{
			Key:     "quizl",
			pattern: regexp.MustCompile(fmt.Sprintf(`(?i)Quizl#%d`, n["quizl"])),
			extract: extractQuizl,
		},
	}
}

func extractGrid(content string, _ []string) (domain.Score, int, error) {
	return ParseGrid(content), 0, nil
}

// extractBandle reads "N/total" or the fail token "x/total". A fail maps
// to total+1, one worse than the maximum allowed guesses. The captured
// denominator overrides the game's default for the rest of the run.
func extractBandle(_ string, groups []string) (domain.Score, int, error) {
	total, err := strconv.Atoi(groups[2])
	if err != nil {
		return domain.Score{}, 0, fmt.Errorf("%w: bandle total %q", domain.ErrMissingScore, groups[2])
	}
	if strings.EqualFold(groups[1], "x") {
		return domain.Score{Value: total + 1}, total, nil
	}
	guesses, err := strconv.Atoi(groups[1])
	if err != nil {
		return domain.Score{}, 0, fmt.Errorf("%w: bandle guesses %q", domain.ErrMissingScore, groups[1])
	}
	return domain.Score{Value: guesses}, total, nil
}

// extractClock reads the first m:ss token anywhere in the body. A header
// hit without one is a defect in the share text, surfaced instead of
// silently defaulting.
func extractClock(content string, _ []string) (domain.Score, int, error) {
	m := clockRe.FindStringSubmatch(content)
	if m == nil {
		return domain.Score{}, 0, fmt.Errorf("%w: no m:ss token", domain.ErrMissingScore)
	}
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	return domain.Score{Value: minutes*60 + seconds}, 0, nil
}

func extractFinalScore(content string, _ []string) (domain.Score, int, error) {
	m := finalScoreRe.FindStringSubmatch(content)
	if m == nil {
		return domain.Score{}, 0, fmt.Errorf("%w: no final score token", domain.ErrMissingScore)
	}
	points, _ := strconv.Atoi(m[1])
	return domain.Score{Value: points}, 0, nil
}

func extractCaptured(_ string, groups []string) (domain.Score, int, error) {
	value, err := strconv.Atoi(groups[1])
	if err != nil {
		return domain.Score{}, 0, fmt.Errorf("%w: capture %q", domain.ErrMissingScore, groups[1])
	}
	return domain.Score{Value: value}, 0, nil
}

// extractWheredle counts progress squares; a share with no success glyph
// at all is a did-not-finish, one worse than the day's total.
func extractWheredle(pctx *puzzle.Context) extractFunc {
	return func(content string, _ []string) (domain.Score, int, error) {
		yellows := strings.Count(content, "🟨")
		greens := strings.Count(content, "🟩")
		if greens == 0 {
			return domain.Score{Value: pctx.Total("wheredle") + 1}, 0, nil
		}
		return domain.Score{Value: yellows + greens}, 0, nil
	}
}

// extractQuizl counts success glyphs; the share text has no numeric score.
func extractQuizl(content string, _ []string) (domain.Score, int, error) {
	return domain.Score{Value: strings.Count(content, "🟩")}, 0, nil
}
