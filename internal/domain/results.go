package domain

// GameResults holds one game's scores keyed by author. Authors are kept
// in first-seen order so ranking stays deterministic across runs given
// identical input ordering; a later Put for the same author overwrites
// the score but keeps the original position.
type GameResults struct {
	scores map[string]Score
	order  []string
}

// NewGameResults creates an empty per-game result map.
func NewGameResults() *GameResults {
	return &GameResults{scores: make(map[string]Score)}
}

// Put records a score for an author. Last write wins.
func (g *GameResults) Put(authorID string, s Score) {
	if _, ok := g.scores[authorID]; !ok {
		g.order = append(g.order, authorID)
	}
	g.scores[authorID] = s
}

// Get returns an author's score.
func (g *GameResults) Get(authorID string) (Score, bool) {
	s, ok := g.scores[authorID]
	return s, ok
}

// Len returns the participant count.
func (g *GameResults) Len() int {
	return len(g.order)
}

// Entries returns (author, score) pairs in first-seen order.
func (g *GameResults) Entries() []Entry {
	entries := make([]Entry, 0, len(g.order))
	for _, authorID := range g.order {
		entries = append(entries, Entry{AuthorID: authorID, Score: g.scores[authorID]})
	}
	return entries
}

// ResultSet maps game keys to per-author scores for a single run.
type ResultSet struct {
	games map[string]*GameResults
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{games: make(map[string]*GameResults)}
}

// Put records a score for (game, author). Last write wins per author.
func (r *ResultSet) Put(gameKey, authorID string, s Score) {
	gr, ok := r.games[gameKey]
	if !ok {
		gr = NewGameResults()
		r.games[gameKey] = gr
	}
	gr.Put(authorID, s)
}

// Game returns one game's results, or nil if nobody played it.
func (r *ResultSet) Game(gameKey string) *GameResults {
	return r.games[gameKey]
}

// Participants returns how many authors submitted a result for a game.
func (r *ResultSet) Participants(gameKey string) int {
	if gr, ok := r.games[gameKey]; ok {
		return gr.Len()
	}
	return 0
}

// Empty reports whether no game has any result.
func (r *ResultSet) Empty() bool {
	for _, gr := range r.games {
		if gr.Len() > 0 {
			return false
		}
	}
	return true
}

// ToMap flattens the set into plain maps for JSON responses.
func (r *ResultSet) ToMap() map[string]map[string]Score {
	out := make(map[string]map[string]Score, len(r.games))
	for key, gr := range r.games {
		scores := make(map[string]Score, gr.Len())
		for _, e := range gr.Entries() {
			scores[e.AuthorID] = e.Score
		}
		out[key] = scores
	}
	return out
}
