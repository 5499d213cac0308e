package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"casebot/internal/bootstrap/config"
	"casebot/internal/bootstrap/logging"
	"casebot/internal/errs"
	"casebot/internal/usecase/qa"
)

type askRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the HTTP face of the pipeline. Handlers only translate between
// JSON and the qa service; every pipeline failure already arrives as a
// user-displayable string.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

func NewServer(svc *qa.Service, cfg config.HTTPConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewRouter(svc),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// NewRouter builds the route tree; exposed separately so tests can drive the
// handlers without binding a socket.
func NewRouter(svc *qa.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)
	r.Get("/v1/greeting", handleGreeting(svc))
	r.Post("/v1/ask", handleAsk(svc))

	return r
}

// ListenAndServe blocks until the server stops; a closed listener after
// Shutdown is a clean exit, not an error.
func (s *Server) ListenAndServe(ctx context.Context) error {
	logging.Info(ctx, "http server listening", slog.String("addr", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errs.Wrap(err, "serve http")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errs.Wrap(err, "shutdown http server")
	}
	return nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleGreeting(svc *qa.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, answerResponse{Answer: svc.Greeting()})
	}
}

func handleAsk(svc *qa.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		question := strings.TrimSpace(req.Question)
		if question == "" {
			writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "question is required"})
			return
		}

		answer := svc.Answer(r.Context(), question)
		writeJSON(r.Context(), w, http.StatusOK, answerResponse{Answer: answer})
	}
}

// requestID tags every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)

		ctx := logging.WithAttrs(r.Context(), slog.String("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warn(ctx, "write response failed", slog.Any("err", errs.Loggable(err)))
	}
}
