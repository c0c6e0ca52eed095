package domain

import "time"

// Metric identifies how a game's scores compare and render.
type Metric string

const (
	// MetricGrid scores are (mistakes, solved groups); fewer mistakes wins.
	MetricGrid Metric = "grid"
	// MetricGuesses and MetricTime sort ascending (lower is better).
	MetricGuesses Metric = "guesses"
	MetricTime    Metric = "time"
	// MetricPoints sorts descending (higher is better).
	MetricPoints Metric = "points"
)

// Numbering identifies how a game labels its daily puzzle.
type Numbering string

const (
	// NumberingSequential games count days since a fixed epoch.
	NumberingSequential Numbering = "sequential"
	// NumberingMonthDay games stamp their share text with "June 5".
	NumberingMonthDay Numbering = "month_day"
	// NumberingSlashDate games stamp their share text with "6/5/2025".
	NumberingSlashDate Numbering = "slash_date"
)

// Game describes one supported puzzle game.
type Game struct {
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Emoji     string    `json:"emoji"`
	Link      string    `json:"link"`
	Metric    Metric    `json:"metric"`
	Total     int       `json:"total"` // pass/fail denominator, 0 = no fixed total
	Numbering Numbering `json:"numbering"`
	Epoch     time.Time `json:"-"` // first puzzle day, sequential games only
}

func epoch(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// games lists every supported game in classifier priority order. The
// order matters: a message is attributed to the first game that matches.
var games = []Game{
	{
		Key:       "connections",
		Title:     "Connections",
		Emoji:     "🔗",
		Link:      "https://www.nytimes.com/games/connections",
		Metric:    MetricGrid,
		Total:     4,
		Numbering: NumberingSequential,
		Epoch:     epoch(2023, time.June, 12),
	},
	{
		Key:       "bandle",
		Title:     "Bandle",
		Emoji:     "🎵",
		Link:      "https://bandle.app/daily",
		Metric:    MetricGuesses,
		Total:     6,
		Numbering: NumberingSequential,
		Epoch:     epoch(2022, time.August, 18),
	},
	{
		Key:       "sports",
		Title:     "Sports Connections",
		Emoji:     "🏈",
		Link:      "https://www.nytimes.com/athletic/connections-sports-edition",
		Metric:    MetricGrid,
		Total:     4,
		Numbering: NumberingSequential,
		Epoch:     epoch(2024, time.September, 24),
	},
	{
		Key:       "pips",
		Title:     "Pips",
		Emoji:     "🎲",
		Link:      "https://www.nytimes.com/games/pips",
		Metric:    MetricTime,
		Numbering: NumberingSequential,
		Epoch:     epoch(2025, time.August, 18),
	},
	{
		Key:       "maptap",
		Title:     "MapTap",
		Emoji:     "🎯",
		Link:      "https://maptap.gg",
		Metric:    MetricPoints,
		Numbering: NumberingSequential,
		Epoch:     epoch(2024, time.June, 22),
	},
	{
		Key:       "chronophoto",
		Title:     "Chronophoto",
		Emoji:     "📷",
		Link:      "https://www.chronophoto.app/daily.html",
		Metric:    MetricPoints,
		Numbering: NumberingSlashDate,
	},
	{
		Key:       "globle",
		Title:     "Globle",
		Emoji:     "🌍",
		Link:      "https://globle.org",
		Metric:    MetricGuesses,
		Numbering: NumberingMonthDay,
	},
	{
		Key:       "worldle",
		Title:     "Worldle",
		Emoji:     "🗺️",
		Link:      "https://worldlegame.io",
		Metric:    MetricGuesses,
		Numbering: NumberingMonthDay,
	},
	{
		Key:       "flagle",
		Title:     "Flagle",
		Emoji:     "🏁",
		Link:      "https://flagle.org",
		Metric:    MetricGuesses,
		Numbering: NumberingMonthDay,
	},
	{
		Key:       "wheredle",
		Title:     "Wheredle",
		Emoji:     "🛣️",
		Link:      "https://wheredle.xyz",
		Metric:    MetricGuesses,
		Total:     7,
		Numbering: NumberingMonthDay,
	},
	{
		Key:       "quizl",
		Title:     "Quizl",
		Emoji:     "⁉️",
		Link:      "https://quizl.io",
		Metric:    MetricPoints,
		Total:     5,
		Numbering: NumberingSequential,
		Epoch:     epoch(2022, time.March, 16),
	},
}

// Games returns every supported game in classifier priority order.
func Games() []Game {
	out := make([]Game, len(games))
	copy(out, games)
	return out
}

// GameByKey looks up a game descriptor by its key.
func GameByKey(key string) (Game, bool) {
	for _, g := range games {
		if g.Key == key {
			return g, true
		}
	}
	return Game{}, false
}
