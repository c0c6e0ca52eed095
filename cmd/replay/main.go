// Command replay renders a scoreboard from a JSON dump of chat messages
// without touching any chat API. Useful for checking how a day's board
// would have looked, or for debugging a share text that failed to match.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/puzzle-scoreboard/internal/domain"
	"github.com/puzzle-scoreboard/internal/matcher"
	"github.com/puzzle-scoreboard/internal/puzzle"
	"github.com/puzzle-scoreboard/internal/render"
)

func main() {
	file := flag.String("file", "", "Path to a JSON array of messages")
	date := flag.String("date", "", "Board date (YYYY-MM-DD, default today)")
	tz := flag.String("tz", "UTC", "Board timezone")
	title := flag.String("title", "Daily Game Scoreboard", "Board title")
	minPlayers := flag.Int("min-players", 1, "Minimum players for a full game section")
	windowHours := flag.Int("window", 24, "Submission window length in hours")
	hoursAfterMidnight := flag.Int("cutoff", 0, "Hours after midnight before the day rolls over")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -file messages.json [-date YYYY-MM-DD]")
		os.Exit(2)
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid timezone %q: %v\n", *tz, err)
		os.Exit(1)
	}

	ref := puzzle.ReferenceDate(time.Now(), loc, *hoursAfterMidnight)
	if *date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *date, loc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid date %q: %v\n", *date, err)
			os.Exit(1)
		}
		ref = parsed
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading messages: %v\n", err)
		os.Exit(1)
	}

	var messages []domain.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		fmt.Fprintf(os.Stderr, "parsing messages: %v\n", err)
		os.Exit(1)
	}

	pctx := puzzle.Compute(ref)
	matchers := matcher.Build(pctx)
	check := puzzle.NewWindowChecker(ref, loc, *hoursAfterMidnight, *windowHours)

	results, hits := matcher.ClassifyBatch(messages, matchers, pctx, check, logger)
	board := render.Scoreboard(results, ref, pctx, *title, *minPlayers)

	fmt.Println(board)
	fmt.Fprintf(os.Stderr, "matched %d of %d messages\n", len(hits), len(messages))
}
