// Package worker runs the background loops: the realtime poll pass and
// the cron-scheduled daily post.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/puzzle-scoreboard/internal/domain"
	"github.com/puzzle-scoreboard/internal/service"
)

// PollWorker periodically scans the input channel for new results
type PollWorker struct {
	svc      *service.Service
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewPollWorker creates a new poll worker
func NewPollWorker(svc *service.Service, interval time.Duration, logger *slog.Logger) *PollWorker {
	return &PollWorker{
		svc:      svc,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the poll loop
func (w *PollWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
	w.logger.Info("poll worker started", "interval", w.interval)
}

// Stop gracefully stops the poll worker
func (w *PollWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.logger.Info("poll worker stopped")
}

func (w *PollWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.poll(ctx)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *PollWorker) poll(ctx context.Context) {
	if err := w.svc.PollOnce(ctx); err != nil {
		// An empty window just means nobody has played yet today
		if errors.Is(err, domain.ErrNoMessages) {
			return
		}
		w.logger.Error("poll pass failed", "error", err)
	}
}
