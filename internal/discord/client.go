// Package discord is the chat API collaborator: paginated message
// fetches and the post/edit/pin/react calls the scoreboard run needs.
// The core never talks to it directly; it only sees []domain.Message.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/puzzle-scoreboard/internal/config"
	"github.com/puzzle-scoreboard/internal/domain"
)

const pageSize = 100 // Discord API maximum per request

// Client is a minimal Discord REST client
type Client struct {
	http   *http.Client
	base   string
	token  string
	logger *slog.Logger
}

// NewClient creates a new Discord REST client
func NewClient(cfg *config.DiscordConfig, logger *slog.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		base:   cfg.APIBase,
		token:  cfg.Token,
		logger: logger,
	}
}

// apiMessage is the wire shape of a channel message
type apiMessage struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Author    struct {
		ID string `json:"id"`
	} `json:"author"`
	Reactions []struct {
		Me    bool `json:"me"`
		Emoji struct {
			Name string `json:"name"`
		} `json:"emoji"`
	} `json:"reactions"`
}

func (m apiMessage) toDomain() domain.Message {
	msg := domain.Message{
		ID:        m.ID,
		AuthorID:  m.Author.ID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	for _, r := range m.Reactions {
		msg.Reactions = append(msg.Reactions, domain.Reaction{Name: r.Emoji.Name, Me: r.Me})
	}
	return msg
}

// GetMessages fetches up to limit messages from a channel, newest first,
// paginating with before=<last id>.
func (c *Client) GetMessages(ctx context.Context, channelID string, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	before := ""

	for len(messages) < limit {
		remaining := limit - len(messages)
		if remaining > pageSize {
			remaining = pageSize
		}

		path := fmt.Sprintf("/channels/%s/messages?limit=%d", channelID, remaining)
		if before != "" {
			path += "&before=" + before
		}

		var page []apiMessage
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, fmt.Errorf("fetching messages: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, m := range page {
			messages = append(messages, m.toDomain())
		}
		before = page[len(page)-1].ID
	}

	return messages, nil
}

// SendOptions control how a message is posted
type SendOptions struct {
	ReplyTo          string
	SuppressMentions bool
}

type allowedMentions struct {
	Parse []string `json:"parse"`
}

type messageReference struct {
	MessageID string `json:"message_id"`
}

type sendPayload struct {
	Content          string            `json:"content"`
	AllowedMentions  allowedMentions   `json:"allowed_mentions"`
	Flags            int               `json:"flags"`
	MessageReference *messageReference `json:"message_reference,omitempty"`
}

// SendMessage posts a message and returns its id. User mentions are
// allowed unless suppressed; flags 4 suppresses link embeds.
func (c *Client) SendMessage(ctx context.Context, channelID, content string, opts SendOptions) (string, error) {
	payload := sendPayload{
		Content:         content,
		AllowedMentions: allowedMentions{Parse: []string{"users"}},
		Flags:           4,
	}
	if opts.SuppressMentions {
		payload.AllowedMentions.Parse = []string{}
	}
	if opts.ReplyTo != "" {
		payload.MessageReference = &messageReference{MessageID: opts.ReplyTo}
	}

	var created struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	if err := c.do(ctx, http.MethodPost, path, payload, &created); err != nil {
		return "", fmt.Errorf("sending message: %w", err)
	}
	return created.ID, nil
}

// EditMessage replaces the content of an existing message
func (c *Client) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	payload := sendPayload{
		Content:         content,
		AllowedMentions: allowedMentions{Parse: []string{"users"}},
		Flags:           4,
	}
	path := fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID)
	if err := c.do(ctx, http.MethodPatch, path, payload, nil); err != nil {
		return fmt.Errorf("editing message: %w", err)
	}
	return nil
}

// PinMessage pins a message in its channel
func (c *Client) PinMessage(ctx context.Context, channelID, messageID string) error {
	path := fmt.Sprintf("/channels/%s/messages/pins/%s", channelID, messageID)
	if err := c.do(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("pinning message: %w", err)
	}
	return nil
}

// AddReaction reacts to a message as the bot
func (c *Client) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	path := fmt.Sprintf("/channels/%s/messages/%s/reactions/%s/@me",
		channelID, messageID, url.PathEscape(emoji))
	if err := c.do(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("adding reaction: %w", err)
	}
	return nil
}

// do executes one API request and decodes the response into out when
// out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("discord api %s %s: status %d: %s", method, path, resp.StatusCode, data)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
