package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/puzzle-scoreboard/internal/config"
	"github.com/puzzle-scoreboard/internal/discord"
	"github.com/puzzle-scoreboard/internal/domain"
	"github.com/puzzle-scoreboard/internal/handler"
	"github.com/puzzle-scoreboard/internal/kafka"
	"github.com/puzzle-scoreboard/internal/postgres"
	"github.com/puzzle-scoreboard/internal/redis"
	"github.com/puzzle-scoreboard/internal/service"
	"github.com/puzzle-scoreboard/internal/websocket"
	"github.com/puzzle-scoreboard/internal/worker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	once := flag.Bool("once", false, "Post the daily scoreboard once and exit")
	test := flag.Bool("test", false, "With -once, post to the test channel and skip pinning")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	loc, err := cfg.Board.Location()
	if err != nil {
		logger.Error("invalid board timezone", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Chat client and the pure scoring service
	chat := discord.NewClient(&cfg.Discord, logger)
	svc := service.New(chat, cfg, loc, logger)

	// One-shot mode: classify yesterday's window, post, exit
	if *once {
		run, err := svc.RunDaily(ctx, *test)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyPosted) {
				logger.Warn("scoreboard already posted")
				return
			}
			logger.Error("daily run failed", "error", err)
			os.Exit(1)
		}
		logger.Info("scoreboard posted", "run_id", run.RunID)
		return
	}

	// Initialize Redis state store
	var stateStore *redis.StateStore
	if cfg.Redis.Enabled {
		logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
		stateStore, err = redis.NewStateStore(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("failed to connect to Redis, continuing without state store", "error", err)
		} else {
			defer stateStore.Close()
			svc.SetState(stateStore)
			logger.Info("connected to Redis")
		}
	}

	// Initialize PostgreSQL archive
	var archive *postgres.Archive
	if cfg.Postgres.Enabled {
		logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		archive, err = postgres.NewArchive(&cfg.Postgres, logger)
		if err != nil {
			logger.Warn("failed to connect to PostgreSQL, continuing without archive", "error", err)
		} else {
			defer archive.Close()
			if err := archive.RunMigrations(ctx); err != nil {
				logger.Error("failed to run migrations", "error", err)
				os.Exit(1)
			}
			svc.SetArchive(archive)
			logger.Info("connected to PostgreSQL")
		}
	}

	// Initialize Kafka score event producer
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka producer",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		producer, err = kafka.NewProducer(&cfg.Kafka, logger)
		if err != nil {
			logger.Warn("failed to create Kafka producer, continuing without Kafka", "error", err)
		} else {
			svc.SetPublisher(producer)
			logger.Info("Kafka producer started")
		}
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()
	svc.SetHub(wsHub)
	logger.Info("WebSocket hub initialized")

	// Start realtime poll worker
	var pollWorker *worker.PollWorker
	if cfg.Poll.Enabled {
		pollWorker = worker.NewPollWorker(svc, cfg.Poll.Interval, logger)
		pollWorker.Start(ctx)
	}

	// Start daily scheduler
	var scheduler *worker.DailyScheduler
	if cfg.Daily.Enabled {
		scheduler = worker.NewDailyScheduler(svc, cfg.Daily.Schedule, loc, logger)
		if err := scheduler.Start(ctx); err != nil {
			logger.Error("failed to start daily scheduler", "error", err)
			os.Exit(1)
		}
	}

	// Initialize HTTP handler with WebSocket hub
	httpHandler := handler.NewHandler(svc, wsHub, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		logger.Info("WebSocket endpoint available at /ws")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop workers before the side channels they publish to
	if scheduler != nil {
		scheduler.Stop()
	}
	if pollWorker != nil {
		pollWorker.Stop()
	}

	// Stop WebSocket hub
	wsHub.Stop()

	// Flush and close the Kafka producer
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("failed to close Kafka producer", "error", err)
		}
	}

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("bot stopped")
}
