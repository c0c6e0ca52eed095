package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzzle-scoreboard/internal/config"
	"github.com/puzzle-scoreboard/internal/discord"
	"github.com/puzzle-scoreboard/internal/domain"
	"github.com/puzzle-scoreboard/internal/matcher"
	"github.com/puzzle-scoreboard/internal/puzzle"
	"github.com/puzzle-scoreboard/internal/rank"
	"github.com/puzzle-scoreboard/internal/render"
	"github.com/puzzle-scoreboard/internal/websocket"
)

// Checkmark marks a message as processed once the bot reacts with it.
const Checkmark = "✅"

// ChatClient is the chat API surface the service needs; *discord.Client
// satisfies it.
type ChatClient interface {
	GetMessages(ctx context.Context, channelID string, limit int) ([]domain.Message, error)
	SendMessage(ctx context.Context, channelID, content string, opts discord.SendOptions) (string, error)
	EditMessage(ctx context.Context, channelID, messageID, content string) error
	PinMessage(ctx context.Context, channelID, messageID string) error
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
}

// EventPublisher emits classified results to a downstream stream
type EventPublisher interface {
	PublishResults(ctx context.Context, runID string, ref time.Time, results *domain.ResultSet) error
}

// StateStore keeps bot state across restarts
type StateStore interface {
	IsProcessed(ctx context.Context, day, messageID string) (bool, error)
	MarkProcessed(ctx context.Context, day string, messageIDs []string) error
	LiveMessageID(ctx context.Context, day string) (string, error)
	SetLiveMessageID(ctx context.Context, day, messageID string) error
}

// Archive records each run's ranked results
type Archive interface {
	RecordRun(ctx context.Context, runID string, ref time.Time, rankings map[string][]domain.RankedRow) error
}

// RunResult is the outcome of one classification pass: the structured
// results and the rendered board, consumable by the HTTP API or by the
// caller for posting.
type RunResult struct {
	RunID     string                             `json:"run_id"`
	Reference time.Time                          `json:"reference"`
	Board     string                             `json:"board"`
	Results   map[string]map[string]domain.Score `json:"results"`
	Rankings  map[string][]domain.RankedRow      `json:"rankings"`
}

// Service orchestrates the scoreboard runs around the pure
// classify/rank/render core.
type Service struct {
	chat      ChatClient
	cfg       *config.Config
	loc       *time.Location
	logger    *slog.Logger
	hub       *websocket.Hub
	publisher EventPublisher
	state     StateStore
	archive   Archive
	now       func() time.Time

	mu      sync.Mutex
	seenDay string
	seen    map[string]bool
	lastRun *RunResult
}

// New creates a new scoreboard service
func New(chat ChatClient, cfg *config.Config, loc *time.Location, logger *slog.Logger) *Service {
	return &Service{
		chat:   chat,
		cfg:    cfg,
		loc:    loc,
		logger: logger,
		now:    time.Now,
		seen:   make(map[string]bool),
	}
}

// SetHub attaches the WebSocket hub for broadcasting board updates
func (s *Service) SetHub(hub *websocket.Hub) {
	s.hub = hub
}

// SetPublisher attaches the score event publisher
func (s *Service) SetPublisher(p EventPublisher) {
	s.publisher = p
}

// SetState attaches the cross-restart state store
func (s *Service) SetState(state StateStore) {
	s.state = state
}

// SetArchive attaches the results archive
func (s *Service) SetArchive(a Archive) {
	s.archive = a
}

// window is one classified pass over the fetched batch
type window struct {
	ref      time.Time
	pctx     *puzzle.Context
	messages []domain.Message
	results  *domain.ResultSet
	hits     []matcher.Hit
}

// classifyWindow fetches the input channel and runs the pure core over
// it. No side effects beyond logging.
func (s *Service) classifyWindow(ctx context.Context, ref time.Time) (*window, error) {
	messages, err := s.chat.GetMessages(ctx, s.cfg.Discord.InputChannelID, s.cfg.Discord.FetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching input channel: %w", err)
	}
	if len(messages) == 0 {
		return nil, domain.ErrNoMessages
	}

	pctx := puzzle.Compute(ref)
	matchers := matcher.Build(pctx)
	check := puzzle.NewWindowChecker(ref, s.loc, s.cfg.Board.HoursAfterMidnight, s.cfg.Board.WindowHours)

	results, hits := matcher.ClassifyBatch(messages, matchers, pctx, check, s.logger)
	return &window{
		ref:      ref,
		pctx:     pctx,
		messages: messages,
		results:  results,
		hits:     hits,
	}, nil
}

func (s *Service) buildRun(w *window, title string) *RunResult {
	rankings := rank.All(w.results)
	return &RunResult{
		RunID:     uuid.New().String(),
		Reference: w.ref,
		Board:     render.Scoreboard(w.results, w.ref, w.pctx, title, s.cfg.Board.MinimumPlayers),
		Results:   w.results.ToMap(),
		Rankings:  rankings,
	}
}

// Snapshot classifies the current window and renders the live board
// without posting anything.
func (s *Service) Snapshot(ctx context.Context) (*RunResult, error) {
	ref := puzzle.ReferenceDate(s.now(), s.loc, s.cfg.Board.HoursAfterMidnight)
	w, err := s.classifyWindow(ctx, ref)
	if err != nil {
		return nil, err
	}
	run := s.buildRun(w, s.cfg.Board.LiveTitle)
	s.cacheRun(run)
	return run, nil
}

// LastRun returns the most recent run result, nil before the first pass
func (s *Service) LastRun() *RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func (s *Service) cacheRun(run *RunResult) {
	s.mu.Lock()
	s.lastRun = run
	s.mu.Unlock()
}

// RunDaily posts yesterday's board to the output channel and pins it.
// In test mode the board goes to the test channel and is not pinned.
func (s *Service) RunDaily(ctx context.Context, test bool) (*RunResult, error) {
	ref := puzzle.PreviousDay(s.now(), s.loc, s.cfg.Board.HoursAfterMidnight)
	w, err := s.classifyWindow(ctx, ref)
	if err != nil {
		return nil, err
	}

	// A scheduler hiccup can trigger the run twice; if the newest input
	// message is our own board, the work is already done.
	if !test && s.cfg.Discord.BotID != "" && w.messages[0].AuthorID == s.cfg.Discord.BotID {
		return nil, domain.ErrAlreadyPosted
	}

	run := s.buildRun(w, s.cfg.Board.Title)

	channelID := s.cfg.Discord.OutputChannelID
	if test {
		channelID = s.cfg.Discord.TestChannelID
	}

	messageID, err := s.chat.SendMessage(ctx, channelID, run.Board, discord.SendOptions{})
	if err != nil {
		return nil, fmt.Errorf("posting scoreboard: %w", err)
	}
	if !test {
		if err := s.chat.PinMessage(ctx, channelID, messageID); err != nil {
			s.logger.Warn("failed to pin scoreboard", "error", err)
		}
	}

	s.recordRun(ctx, run, w.results)
	s.cacheRun(run)

	s.logger.Info("daily scoreboard posted",
		"run_id", run.RunID,
		"board_date", ref.Format("2006-01-02"),
		"games", len(run.Rankings),
	)
	return run, nil
}

// recordRun fans a run out to the optional side channels. Side-channel
// failures never fail the run.
func (s *Service) recordRun(ctx context.Context, run *RunResult, results *domain.ResultSet) {
	if s.archive != nil {
		if err := s.archive.RecordRun(ctx, run.RunID, run.Reference, run.Rankings); err != nil {
			s.logger.Warn("failed to archive run", "run_id", run.RunID, "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishResults(ctx, run.RunID, run.Reference, results); err != nil {
			s.logger.Warn("failed to publish score events", "run_id", run.RunID, "error", err)
		}
	}
	if s.hub != nil {
		s.hub.BroadcastBoard(websocket.BoardUpdate{
			Date:  run.Reference.Format("2006-01-02"),
			Board: run.Board,
			Games: run.Rankings,
		})
	}
}

// PollOnce runs one realtime pass: classify the whole window, react to
// and reply under newly seen results, and keep the pinned live board
// current. Safe to call on overlapping windows; already-processed
// messages are recognized by the bot's own reaction, the in-memory seen
// set and the optional state store.
func (s *Service) PollOnce(ctx context.Context) error {
	ref := puzzle.ReferenceDate(s.now(), s.loc, s.cfg.Board.HoursAfterMidnight)
	day := ref.Format("2006-01-02")
	s.resetSeen(day)

	w, err := s.classifyWindow(ctx, ref)
	if err != nil {
		return err
	}

	run := s.buildRun(w, s.cfg.Board.LiveTitle)

	newHits := s.filterNew(ctx, day, w.hits)
	if len(newHits) == 0 {
		s.cacheRun(run)
		return nil
	}

	for _, hit := range newHits {
		if err := s.chat.AddReaction(ctx, s.cfg.Discord.InputChannelID, hit.Message.ID, Checkmark); err != nil {
			s.logger.Warn("failed to react to message", "message_id", hit.Message.ID, "error", err)
		}

		g, ok := domain.GameByKey(hit.Key)
		if !ok {
			continue
		}
		mini := render.MiniBoard(g, run.Rankings[hit.Key], w.pctx)
		_, err := s.chat.SendMessage(ctx, s.cfg.Discord.InputChannelID, mini, discord.SendOptions{
			ReplyTo:          hit.Message.ID,
			SuppressMentions: true,
		})
		if err != nil {
			s.logger.Warn("failed to reply with mini board", "message_id", hit.Message.ID, "error", err)
		}

		if s.hub != nil {
			s.hub.BroadcastGame(hit.Key, run.Rankings[hit.Key])
		}
	}

	if err := s.updateLiveBoard(ctx, day, run.Board); err != nil {
		s.logger.Warn("failed to update live scoreboard", "error", err)
	}

	s.markProcessed(ctx, day, newHits)
	s.publishNew(ctx, run, w, newHits)
	s.cacheRun(run)

	s.logger.Info("poll pass completed", "board_date", day, "new_results", len(newHits))
	return nil
}

// resetSeen drops the in-memory seen set when the puzzle day rolls over
func (s *Service) resetSeen(day string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seenDay != day {
		s.seenDay = day
		s.seen = make(map[string]bool)
	}
}

// filterNew keeps only hits that were not handled before
func (s *Service) filterNew(ctx context.Context, day string, hits []matcher.Hit) []matcher.Hit {
	var fresh []matcher.Hit
	for _, hit := range hits {
		if hit.Message.HasOwnReaction(Checkmark) {
			continue
		}
		s.mu.Lock()
		seen := s.seen[hit.Message.ID]
		s.mu.Unlock()
		if seen {
			continue
		}
		if s.state != nil {
			processed, err := s.state.IsProcessed(ctx, day, hit.Message.ID)
			if err != nil {
				s.logger.Warn("failed to check processed state", "message_id", hit.Message.ID, "error", err)
			} else if processed {
				continue
			}
		}
		fresh = append(fresh, hit)
	}
	return fresh
}

func (s *Service) markProcessed(ctx context.Context, day string, hits []matcher.Hit) {
	ids := make([]string, 0, len(hits))
	s.mu.Lock()
	for _, hit := range hits {
		s.seen[hit.Message.ID] = true
		ids = append(ids, hit.Message.ID)
	}
	s.mu.Unlock()

	if s.state != nil {
		if err := s.state.MarkProcessed(ctx, day, ids); err != nil {
			s.logger.Warn("failed to persist processed ids", "error", err)
		}
	}
}

// publishNew emits score events for the newly seen results only, so
// repeated polls don't replay the whole board downstream.
func (s *Service) publishNew(ctx context.Context, run *RunResult, w *window, hits []matcher.Hit) {
	if s.publisher == nil {
		return
	}
	fresh := domain.NewResultSet()
	for _, hit := range hits {
		if gr := w.results.Game(hit.Key); gr != nil {
			if score, ok := gr.Get(hit.Message.AuthorID); ok {
				fresh.Put(hit.Key, hit.Message.AuthorID, score)
			}
		}
	}
	if fresh.Empty() {
		return
	}
	if err := s.publisher.PublishResults(ctx, run.RunID, run.Reference, fresh); err != nil {
		s.logger.Warn("failed to publish score events", "run_id", run.RunID, "error", err)
	}
}

// updateLiveBoard edits the day's pinned live board, creating and
// pinning it on the first result of the day.
func (s *Service) updateLiveBoard(ctx context.Context, day, board string) error {
	channelID := s.cfg.Discord.OutputChannelID

	liveID := ""
	if s.state != nil {
		id, err := s.state.LiveMessageID(ctx, day)
		if err != nil {
			s.logger.Warn("failed to read live message id", "error", err)
		} else {
			liveID = id
		}
	}
	if liveID == "" {
		id, err := s.findLiveBoard(ctx, channelID)
		if err != nil {
			return err
		}
		liveID = id
	}

	if liveID != "" {
		if err := s.chat.EditMessage(ctx, channelID, liveID, board); err != nil {
			return fmt.Errorf("editing live board: %w", err)
		}
	} else {
		id, err := s.chat.SendMessage(ctx, channelID, board, discord.SendOptions{})
		if err != nil {
			return fmt.Errorf("posting live board: %w", err)
		}
		if err := s.chat.PinMessage(ctx, channelID, id); err != nil {
			s.logger.Warn("failed to pin live board", "error", err)
		}
		liveID = id
	}

	if s.state != nil {
		if err := s.state.SetLiveMessageID(ctx, day, liveID); err != nil {
			s.logger.Warn("failed to persist live message id", "error", err)
		}
	}
	return nil
}

// findLiveBoard scans the output channel for today's live board message
func (s *Service) findLiveBoard(ctx context.Context, channelID string) (string, error) {
	messages, err := s.chat.GetMessages(ctx, channelID, 50)
	if err != nil {
		return "", fmt.Errorf("scanning output channel: %w", err)
	}
	marker := "**" + s.cfg.Board.LiveTitle + "**"
	for _, msg := range messages {
		if msg.AuthorID == s.cfg.Discord.BotID && strings.Contains(msg.Content, marker) {
			return msg.ID, nil
		}
	}
	return "", nil
}
