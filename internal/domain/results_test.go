package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameResultsLastWriteWinsKeepsPosition(t *testing.T) {
	gr := NewGameResults()
	gr.Put("alice", Score{Value: 5})
	gr.Put("bob", Score{Value: 3})
	gr.Put("alice", Score{Value: 2})

	entries := gr.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].AuthorID)
	assert.Equal(t, 2, entries[0].Score.Value)
	assert.Equal(t, "bob", entries[1].AuthorID)
}

func TestResultSetEmpty(t *testing.T) {
	rs := NewResultSet()
	assert.True(t, rs.Empty())
	assert.Equal(t, 0, rs.Participants("bandle"))
	assert.Nil(t, rs.Game("bandle"))

	rs.Put("bandle", "alice", Score{Value: 3})
	assert.False(t, rs.Empty())
	assert.Equal(t, 1, rs.Participants("bandle"))
}

func TestHasOwnReaction(t *testing.T) {
	m := Message{Reactions: []Reaction{
		{Name: "✅", Me: false},
		{Name: "🎉", Me: true},
	}}
	assert.False(t, m.HasOwnReaction("✅"))
	assert.True(t, m.HasOwnReaction("🎉"))
}

func TestGamesPriorityOrderStable(t *testing.T) {
	games := Games()
	require.NotEmpty(t, games)
	assert.Equal(t, "connections", games[0].Key)
	assert.Equal(t, "quizl", games[len(games)-1].Key)

	// Callers get a copy, not the shared slice.
	games[0].Key = "mutated"
	fresh := Games()
	assert.Equal(t, "connections", fresh[0].Key)
}
