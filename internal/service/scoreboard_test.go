package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puzzle-scoreboard/internal/config"
	"github.com/puzzle-scoreboard/internal/discord"
	"github.com/puzzle-scoreboard/internal/domain"
	"github.com/puzzle-scoreboard/internal/puzzle"
)

// fakeChat is an in-memory ChatClient. Sent messages are appended to
// their channel with the bot's author id, newest first, like the real
// API returns them.
type fakeChat struct {
	mu       sync.Mutex
	botID    string
	channels map[string][]domain.Message
	nextID   int

	sent      []sentMessage
	edits     []sentMessage
	pins      []string
	reactions []string
}

type sentMessage struct {
	ChannelID string
	MessageID string
	Content   string
	Opts      discord.SendOptions
}

func newFakeChat(botID string) *fakeChat {
	return &fakeChat{botID: botID, channels: make(map[string][]domain.Message)}
}

func (f *fakeChat) addMessage(channelID string, m domain.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[channelID] = append([]domain.Message{m}, f.channels[channelID]...)
}

func (f *fakeChat) GetMessages(_ context.Context, channelID string, limit int) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.channels[channelID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (f *fakeChat) SendMessage(_ context.Context, channelID, content string, opts discord.SendOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("sent-%d", f.nextID)
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, MessageID: id, Content: content, Opts: opts})
	f.channels[channelID] = append([]domain.Message{{
		ID:       id,
		AuthorID: f.botID,
		Content:  content,
	}}, f.channels[channelID]...)
	return id, nil
}

func (f *fakeChat) EditMessage(_ context.Context, channelID, messageID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sentMessage{ChannelID: channelID, MessageID: messageID, Content: content})
	for i, m := range f.channels[channelID] {
		if m.ID == messageID {
			f.channels[channelID][i].Content = content
		}
	}
	return nil
}

func (f *fakeChat) PinMessage(_ context.Context, _, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pins = append(f.pins, messageID)
	return nil
}

func (f *fakeChat) AddReaction(_ context.Context, _, messageID, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, messageID+":"+emoji)
	return nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Discord.BotID = "bot"
	cfg.Discord.InputChannelID = "input"
	cfg.Discord.OutputChannelID = "output"
	cfg.Discord.TestChannelID = "testchan"
	return cfg
}

func newTestService(chat *fakeChat, now time.Time) *Service {
	svc := New(chat, testConfig(), time.UTC, slog.Default())
	svc.now = func() time.Time { return now }
	return svc
}

// testNow is the morning after the board date used throughout.
var testNow = time.Date(2025, time.June, 6, 8, 0, 0, 0, time.UTC)

func bandleShare(ref time.Time, result string) string {
	pctx := puzzle.Compute(ref)
	return fmt.Sprintf("Bandle #%d %s", pctx.Numbers["bandle"], result)
}

func TestRunDailyPostsAndPins(t *testing.T) {
	chat := newFakeChat("bot")
	yesterday := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	chat.addMessage("input", domain.Message{
		ID: "m1", AuthorID: "alice",
		Content:   bandleShare(yesterday, "3/6"),
		Timestamp: "2025-06-05T12:00:00Z",
	})

	svc := newTestService(chat, testNow)
	run, err := svc.RunDaily(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, yesterday, run.Reference)
	assert.Contains(t, run.Board, "👑 <@alice>: 3/6 guesses")

	require.Len(t, chat.sent, 1)
	assert.Equal(t, "output", chat.sent[0].ChannelID)
	assert.Equal(t, run.Board, chat.sent[0].Content)
	assert.Equal(t, []string{chat.sent[0].MessageID}, chat.pins)

	assert.Same(t, run, svc.LastRun())
}

func TestRunDailyTestMode(t *testing.T) {
	chat := newFakeChat("bot")
	yesterday := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	chat.addMessage("input", domain.Message{
		ID: "m1", AuthorID: "alice",
		Content:   bandleShare(yesterday, "3/6"),
		Timestamp: "2025-06-05T12:00:00Z",
	})

	svc := newTestService(chat, testNow)
	_, err := svc.RunDaily(context.Background(), true)
	require.NoError(t, err)

	require.Len(t, chat.sent, 1)
	assert.Equal(t, "testchan", chat.sent[0].ChannelID)
	assert.Empty(t, chat.pins)
}

func TestRunDailyEmptyChannel(t *testing.T) {
	svc := newTestService(newFakeChat("bot"), testNow)
	_, err := svc.RunDaily(context.Background(), false)
	assert.ErrorIs(t, err, domain.ErrNoMessages)
}

func TestRunDailyDoubleTriggerGuard(t *testing.T) {
	chat := newFakeChat("bot")
	yesterday := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	chat.addMessage("input", domain.Message{
		ID: "m1", AuthorID: "alice",
		Content:   bandleShare(yesterday, "3/6"),
		Timestamp: "2025-06-05T12:00:00Z",
	})
	// The newest input message is the bot's own board from a prior run.
	chat.addMessage("input", domain.Message{
		ID: "m2", AuthorID: "bot", Content: "🧮 **Daily Game Scoreboard**",
	})

	svc := newTestService(chat, testNow)
	_, err := svc.RunDaily(context.Background(), false)
	assert.ErrorIs(t, err, domain.ErrAlreadyPosted)
	assert.Empty(t, chat.sent)
}

func TestPollOnceReactsAndReplies(t *testing.T) {
	chat := newFakeChat("bot")
	today := time.Date(2025, time.June, 6, 0, 0, 0, 0, time.UTC)
	chat.addMessage("input", domain.Message{
		ID: "m1", AuthorID: "alice",
		Content:   bandleShare(today, "4/6"),
		Timestamp: "2025-06-06T07:00:00Z",
	})

	svc := newTestService(chat, testNow)
	require.NoError(t, svc.PollOnce(context.Background()))

	assert.Equal(t, []string{"m1:" + Checkmark}, chat.reactions)

	// First send is the mini-board reply, second the live board.
	require.Len(t, chat.sent, 2)
	reply := chat.sent[0]
	assert.Equal(t, "input", reply.ChannelID)
	assert.Equal(t, "m1", reply.Opts.ReplyTo)
	assert.True(t, reply.Opts.SuppressMentions)
	assert.Contains(t, reply.Content, "**[Bandle](https://bandle.app/daily) Leaderboard:**")
	assert.Contains(t, reply.Content, "👑 <@alice>: 4/6 guesses")

	live := chat.sent[1]
	assert.Equal(t, "output", live.ChannelID)
	assert.Contains(t, live.Content, "**Live Scoreboard**")
	assert.Equal(t, []string{live.MessageID}, chat.pins)
}

func TestPollOnceSkipsSeenMessages(t *testing.T) {
	chat := newFakeChat("bot")
	today := time.Date(2025, time.June, 6, 0, 0, 0, 0, time.UTC)
	chat.addMessage("input", domain.Message{
		ID: "m1", AuthorID: "alice",
		Content:   bandleShare(today, "4/6"),
		Timestamp: "2025-06-06T07:00:00Z",
	})

	svc := newTestService(chat, testNow)
	require.NoError(t, svc.PollOnce(context.Background()))
	require.NoError(t, svc.PollOnce(context.Background()))

	// The second pass found nothing new: no extra reactions or sends.
	assert.Len(t, chat.reactions, 1)
	assert.Len(t, chat.sent, 2)
}

func TestPollOnceSkipsAlreadyReacted(t *testing.T) {
	chat := newFakeChat("bot")
	today := time.Date(2025, time.June, 6, 0, 0, 0, 0, time.UTC)
	chat.addMessage("input", domain.Message{
		ID: "m1", AuthorID: "alice",
		Content:   bandleShare(today, "4/6"),
		Timestamp: "2025-06-06T07:00:00Z",
		Reactions: []domain.Reaction{{Name: Checkmark, Me: true}},
	})

	svc := newTestService(chat, testNow)
	require.NoError(t, svc.PollOnce(context.Background()))

	assert.Empty(t, chat.reactions)
	assert.Empty(t, chat.sent)
}

func TestPollOnceEditsExistingLiveBoard(t *testing.T) {
	chat := newFakeChat("bot")
	today := time.Date(2025, time.June, 6, 0, 0, 0, 0, time.UTC)
	chat.addMessage("input", domain.Message{
		ID: "m1", AuthorID: "alice",
		Content:   bandleShare(today, "4/6"),
		Timestamp: "2025-06-06T07:00:00Z",
	})

	svc := newTestService(chat, testNow)
	require.NoError(t, svc.PollOnce(context.Background()))

	// A later result from another player updates the same pinned board.
	chat.addMessage("input", domain.Message{
		ID: "m2", AuthorID: "bob",
		Content:   bandleShare(today, "2/6"),
		Timestamp: "2025-06-06T07:30:00Z",
	})
	require.NoError(t, svc.PollOnce(context.Background()))

	require.Len(t, chat.edits, 1)
	assert.Contains(t, chat.edits[0].Content, "<@bob>")
	assert.Len(t, chat.pins, 1)
}

func TestSnapshotHasNoSideEffects(t *testing.T) {
	chat := newFakeChat("bot")
	today := time.Date(2025, time.June, 6, 0, 0, 0, 0, time.UTC)
	chat.addMessage("input", domain.Message{
		ID: "m1", AuthorID: "alice",
		Content:   bandleShare(today, "4/6"),
		Timestamp: "2025-06-06T07:00:00Z",
	})

	svc := newTestService(chat, testNow)
	run, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, today, run.Reference)
	assert.Contains(t, run.Board, "**Live Scoreboard**")
	assert.Len(t, run.Rankings["bandle"], 1)

	assert.Empty(t, chat.sent)
	assert.Empty(t, chat.reactions)
	assert.Empty(t, chat.pins)
}
