package matcher

import (
	"fmt"
	"log/slog"

	"github.com/puzzle-scoreboard/internal/domain"
	"github.com/puzzle-scoreboard/internal/puzzle"
)

// Classify runs a single message through the matchers in priority order
// and returns the first hit, nil when nothing matches. One game
// attribution per message: scanning stops at the first match even if the
// text coincidentally matches a later pattern. A timestamp-anchored
// matcher whose window check fails moves on to the next matcher, but an
// unparseable timestamp fails the whole message.
func Classify(content, timestamp string, matchers []Matcher, check puzzle.Checker) (*Match, error) {
	for i := range matchers {
		m := &matchers[i]

		if m.search != nil && !m.search.MatchString(content) {
			continue
		}
		groups := m.pattern.FindStringSubmatch(content)
		if groups == nil {
			continue
		}

		if m.NeedsTimestamp {
			inWindow, err := check(timestamp)
			if err != nil {
				return nil, err
			}
			if !inWindow {
				continue
			}
		}

		score, total, err := m.extract(content, groups)
		if err != nil {
			return nil, fmt.Errorf("extracting %s score: %w", m.Key, err)
		}
		return &Match{Key: m.Key, Score: score, TotalOverride: total}, nil
	}
	return nil, nil
}

// Hit pairs a matched message with the game it was attributed to.
type Hit struct {
	Message domain.Message
	Key     string
}

// ClassifyBatch scans an already-fetched batch of messages in order and
// builds the run's result set. A later message for the same (game,
// author) pair overwrites the earlier score. Per-message classification
// errors are logged and skip only that message. Totals discovered during
// extraction are folded into the puzzle context as they appear, so
// rendering sees the final denominators. Reclassifying an overlapping
// batch yields the same results; the scan is idempotent.
func ClassifyBatch(
	messages []domain.Message,
	matchers []Matcher,
	pctx *puzzle.Context,
	check puzzle.Checker,
	logger *slog.Logger,
) (*domain.ResultSet, []Hit) {
	if logger == nil {
		logger = slog.Default()
	}

	results := domain.NewResultSet()
	var hits []Hit

	for _, msg := range messages {
		match, err := Classify(msg.Content, msg.Timestamp, matchers, check)
		if err != nil {
			logger.Error("skipping message: classification failed",
				"message_id", msg.ID,
				"author_id", msg.AuthorID,
				"error", err,
			)
			continue
		}
		if match == nil {
			continue
		}

		results.Put(match.Key, msg.AuthorID, match.Score)
		if match.TotalOverride > 0 {
			pctx.SetTotal(match.Key, match.TotalOverride)
		}
		hits = append(hits, Hit{Message: msg, Key: match.Key})
	}

	return results, hits
}
