package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/puzzle-scoreboard/internal/config"
	"github.com/puzzle-scoreboard/internal/domain"
)

// ScoreEvent is published for every classified result so downstream
// consumers (stats, streaks, season-long standings) can build on the
// same data without re-parsing chat messages.
type ScoreEvent struct {
	RunID     string    `json:"run_id"`
	GameKey   string    `json:"game_key"`
	PlayerID  string    `json:"player_id"`
	Value     int       `json:"value"`
	Solved    int       `json:"solved,omitempty"`
	PuzzleDay string    `json:"puzzle_day"`
	Timestamp time.Time `json:"timestamp"`
}

// Producer publishes score events to Kafka
type Producer struct {
	producer sarama.AsyncProducer
	topic    string
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewProducer creates a new score event producer
func NewProducer(cfg *config.KafkaConfig, logger *slog.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Flush.Frequency = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = false
	saramaConfig.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("creating producer: %w", err)
	}

	p := &Producer{
		producer: producer,
		topic:    cfg.Topic,
		logger:   logger,
	}

	// Drain delivery errors so the producer never blocks the run
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for err := range producer.Errors() {
			p.logger.Error("failed to deliver score event", "error", err)
		}
	}()

	return p, nil
}

// PublishResults emits one event per (game, player) result in the set.
func (p *Producer) PublishResults(ctx context.Context, runID string, ref time.Time, results *domain.ResultSet) error {
	day := ref.Format("2006-01-02")
	now := time.Now()
	count := 0

	for _, g := range domain.Games() {
		gr := results.Game(g.Key)
		if gr == nil {
			continue
		}
		for _, e := range gr.Entries() {
			event := ScoreEvent{
				RunID:     runID,
				GameKey:   g.Key,
				PlayerID:  e.AuthorID,
				Value:     e.Score.Value,
				Solved:    e.Score.Solved,
				PuzzleDay: day,
				Timestamp: now,
			}
			data, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("marshaling score event: %w", err)
			}

			msg := &sarama.ProducerMessage{
				Topic: p.topic,
				Key:   sarama.StringEncoder(e.AuthorID),
				Value: sarama.ByteEncoder(data),
			}

			select {
			case p.producer.Input() <- msg:
				count++
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	p.logger.Debug("published score events", "run_id", runID, "count", count)
	return nil
}

// Close shuts the producer down, flushing buffered events
func (p *Producer) Close() error {
	p.producer.AsyncClose()
	p.wg.Wait()
	return nil
}
