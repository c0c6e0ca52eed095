package domain

// Message is a chat message as fetched from the channel, stripped down to
// what classification needs.
type Message struct {
	ID        string     `json:"id"`
	AuthorID  string     `json:"author_id"`
	Content   string     `json:"content"`
	Timestamp string     `json:"timestamp"` // ISO-8601, as delivered by the API
	Reactions []Reaction `json:"reactions,omitempty"`
}

// Reaction is a single emoji reaction on a message.
type Reaction struct {
	Name string `json:"name"`
	Me   bool   `json:"me"` // true when the bot itself reacted
}

// HasOwnReaction reports whether the bot already reacted with the given
// emoji, which marks a message as processed.
func (m Message) HasOwnReaction(name string) bool {
	for _, r := range m.Reactions {
		if r.Me && r.Name == name {
			return true
		}
	}
	return false
}
