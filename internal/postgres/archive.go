// Package postgres archives each run's ranked results. The archive is a
// derived-data sink: the engine never reads it back during a run, and
// raw chat messages are never written to it.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/puzzle-scoreboard/internal/config"
	"github.com/puzzle-scoreboard/internal/domain"
)

// Archive provides PostgreSQL-based result storage
type Archive struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewArchive creates a new PostgreSQL archive
func NewArchive(cfg *config.PostgresConfig, logger *slog.Logger) (*Archive, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Archive{pool: pool, logger: logger}, nil
}

// Close closes the database connection pool
func (a *Archive) Close() {
	a.pool.Close()
}

// RunMigrations executes database migrations
func (a *Archive) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id VARCHAR(36) PRIMARY KEY,
			board_date DATE NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS daily_results (
			id BIGSERIAL PRIMARY KEY,
			run_id VARCHAR(36) NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			board_date DATE NOT NULL,
			game_key VARCHAR(32) NOT NULL,
			player_id VARCHAR(64) NOT NULL,
			value INT NOT NULL,
			solved INT NOT NULL DEFAULT 0,
			rank INT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(board_date, game_key, player_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_results_day ON daily_results(board_date, game_key)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_results_player ON daily_results(player_id, board_date DESC)`,
	}

	for _, migration := range migrations {
		if _, err := a.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	a.logger.Info("database migrations completed")
	return nil
}

// RecordRun stores a run and its ranked rows. Re-recording the same day
// overwrites the previous rows, so re-polls stay idempotent.
func (a *Archive) RecordRun(ctx context.Context, runID string, ref time.Time, rankings map[string][]domain.RankedRow) error {
	day := ref.Format("2006-01-02")

	if _, err := a.pool.Exec(ctx,
		`INSERT INTO runs (id, board_date) VALUES ($1, $2)`,
		runID, day,
	); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO daily_results (run_id, board_date, game_key, player_id, value, solved, rank)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (board_date, game_key, player_id)
		DO UPDATE SET run_id = $1, value = $5, solved = $6, rank = $7
	`

	queued := 0
	for gameKey, rows := range rankings {
		for _, row := range rows {
			for _, authorID := range row.Authors {
				batch.Queue(query, runID, day, gameKey, authorID, row.Score.Value, row.Score.Solved, row.Rank)
				queued++
			}
		}
	}
	if queued == 0 {
		return nil
	}

	br := a.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("archiving result rows: %w", err)
		}
	}

	a.logger.Debug("archived run", "run_id", runID, "board_date", day, "rows", queued)
	return nil
}

// ResultRow is one archived result
type ResultRow struct {
	GameKey  string `json:"game_key"`
	PlayerID string `json:"player_id"`
	Value    int    `json:"value"`
	Solved   int    `json:"solved"`
	Rank     int    `json:"rank"`
}

// DayResults returns the archived rows for a board date
func (a *Archive) DayResults(ctx context.Context, day time.Time) ([]ResultRow, error) {
	query := `
		SELECT game_key, player_id, value, solved, rank
		FROM daily_results
		WHERE board_date = $1
		ORDER BY game_key, rank
	`
	rows, err := a.pool.Query(ctx, query, day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("querying day results: %w", err)
	}
	defer rows.Close()

	var results []ResultRow
	for rows.Next() {
		var r ResultRow
		if err := rows.Scan(&r.GameKey, &r.PlayerID, &r.Value, &r.Solved, &r.Rank); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		results = append(results, r)
	}
	return results, nil
}
