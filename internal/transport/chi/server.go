// Package chi is the HTTP surface of mindrecall.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mindrecall/internal/domain"
	"github.com/kailas-cloud/mindrecall/internal/metrics"
	healthuc "github.com/kailas-cloud/mindrecall/internal/usecase/health"
	"github.com/kailas-cloud/mindrecall/internal/usecase/retrieval"
)

const maxBodyBytes = 1 << 20

// MoodService stores and lists mood entries.
type MoodService interface {
	Log(ctx context.Context, userID, level, note string) (domain.Record, error)
	List(ctx context.Context, userID string, limit int) ([]domain.Record, error)
}

// Retriever builds the context bundle for a query.
type Retriever interface {
	Retrieve(ctx context.Context, userID, query string) retrieval.Bundle
}

// ChatService answers chat messages.
type ChatService interface {
	Reply(ctx context.Context, userID, message string) (string, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	moods         MoodService
	retriever     Retriever
	chat          ChatService
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(moods MoodService, retriever Retriever, chat ChatService, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		moods:         moods,
		retriever:     retriever,
		chat:          chat,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Router returns the full handler: middleware chain plus routes.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1/users/{userID}", func(r chi.Router) {
		r.Post("/moods", s.LogMood)
		r.Get("/moods", s.ListMoods)
		r.Post("/context", s.RetrieveContext)
		r.Post("/chat", s.Chat)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// LogMood handles POST /v1/users/{userID}/moods.
func (s *Server) LogMood(w http.ResponseWriter, r *http.Request) {
	var req LogMoodRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec, err := s.moods.Log(r.Context(), chi.URLParam(r, "userID"), req.Level, req.Note)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, LogMoodResponse{ID: rec.ID, CreatedAt: rec.CreatedAt})
}

// ListMoods handles GET /v1/users/{userID}/moods.
func (s *Server) ListMoods(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.moods.List(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]Mood, len(records))
	for i, rec := range records {
		items[i] = moodToDTO(rec)
	}
	writeJSON(w, http.StatusOK, MoodListResponse{Items: items})
}

// RetrieveContext handles POST /v1/users/{userID}/context.
func (s *Server) RetrieveContext(w http.ResponseWriter, r *http.Request) {
	var req ContextRequest
	if !decodeBody(w, r, &req) {
		return
	}

	b := s.retriever.Retrieve(r.Context(), chi.URLParam(r, "userID"), req.Query)

	branches := make([]BranchReport, 0, 3)
	for _, br := range b.Branches() {
		branches = append(branches, branchToDTO(br))
	}
	passages := b.Passages
	if passages == nil {
		passages = []string{}
	}
	writeJSON(w, http.StatusOK, ContextResponse{Passages: passages, Branches: branches})
}

// Chat handles POST /v1/users/{userID}/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reply, err := s.chat.Reply(r.Context(), chi.URLParam(r, "userID"), req.Message)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Response: reply})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
