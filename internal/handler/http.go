package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/puzzle-scoreboard/internal/domain"
	"github.com/puzzle-scoreboard/internal/service"
	"github.com/puzzle-scoreboard/internal/websocket"
)

// Handler provides HTTP handlers for the scoreboard API
type Handler struct {
	service *service.Service
	hub     *websocket.Hub
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(service *service.Service, hub *websocket.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		logger:  logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/games", h.ListGames)

		r.Get("/scoreboard", h.GetScoreboard)
		r.Get("/scoreboard/{gameKey}", h.GetGameBoard)
		r.Get("/results", h.GetResults)

		r.Post("/runs", h.TriggerRun)
		r.Get("/runs/last", h.GetLastRun)

		// WebSocket info endpoint
		r.Get("/ws/stats", h.GetWebSocketStats)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]interface{}{
		"total_connections": h.hub.GetTotalConnections(),
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}

// gameInfo is the wire shape for the game catalog
type gameInfo struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Emoji  string `json:"emoji"`
	Link   string `json:"link"`
	Metric string `json:"metric"`
	Total  int    `json:"total,omitempty"`
}

// ListGames returns the supported game catalog
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games := domain.Games()
	infos := make([]gameInfo, 0, len(games))
	for _, g := range games {
		infos = append(infos, gameInfo{
			Key:    g.Key,
			Title:  g.Title,
			Emoji:  g.Emoji,
			Link:   g.Link,
			Metric: string(g.Metric),
			Total:  g.Total,
		})
	}
	h.writeSuccess(w, infos)
}

// GetScoreboard classifies the current window and returns the rendered
// live board plus the structured rankings.
func (h *Handler) GetScoreboard(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoMessages) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to build scoreboard", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, run)
}

// GetResults returns the current structured results without the
// rendered board text.
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoMessages) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to build results", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, map[string]interface{}{
		"date":     run.Reference.Format("2006-01-02"),
		"results":  run.Results,
		"rankings": run.Rankings,
	})
}

// GetGameBoard returns the current rankings for a single game
func (h *Handler) GetGameBoard(w http.ResponseWriter, r *http.Request) {
	gameKey := chi.URLParam(r, "gameKey")
	if _, ok := domain.GameByKey(gameKey); !ok {
		h.writeError(w, http.StatusNotFound, domain.ErrUnknownGame)
		return
	}

	run, err := h.service.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoMessages) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to build scoreboard", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	rows := run.Rankings[gameKey]
	if rows == nil {
		rows = []domain.RankedRow{}
	}
	h.writeSuccess(w, map[string]interface{}{
		"game_key": gameKey,
		"date":     run.Reference.Format("2006-01-02"),
		"rows":     rows,
	})
}

// triggerRequest is the body for manually triggering a daily run
type triggerRequest struct {
	Test bool `json:"test"`
}

// TriggerRun posts the previous day's board on demand, mirroring the
// scheduled daily run. With test=true the board goes to the test
// channel and is not pinned.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
			return
		}
	}

	run, err := h.service.RunDaily(r.Context(), req.Test)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyPosted):
			h.writeError(w, http.StatusConflict, err)
		case errors.Is(err, domain.ErrNoMessages):
			h.writeError(w, http.StatusNotFound, err)
		default:
			h.logger.Error("failed to run daily scoreboard", "error", err)
			h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    run,
	})
}

// GetLastRun returns the most recent run result without re-fetching
func (h *Handler) GetLastRun(w http.ResponseWriter, r *http.Request) {
	run := h.service.LastRun()
	if run == nil {
		h.writeError(w, http.StatusNotFound, errors.New("no run completed yet"))
		return
	}
	h.writeSuccess(w, run)
}
