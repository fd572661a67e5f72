package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/observability"
	"token-risk-agent/internal/storage"
)

// Version is reported by /status and the agent card.
const Version = "1.0.0"

const maxRequestBytes = 64 << 10

// Server exposes the agent over HTTP and WebSocket.
type Server struct {
	router   *chi.Mux
	executor *Executor
	tasks    storage.TaskStore
	card     AgentCard
	logger   *zap.Logger
	upgrader websocket.Upgrader
	started  time.Time

	mu        sync.Mutex
	inFlight  int
	lastError string
}

// NewServer wires routes for executor and card.
func NewServer(executor *Executor, tasks storage.TaskStore, card AgentCard, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:   chi.NewRouter(),
		executor: executor,
		tasks:    tasks,
		card:     card,
		logger:   logger.Named("http"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		started: time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/.well-known/agent.json", s.handleCard)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", observability.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/message:send", s.handleSend)
		r.Get("/message:stream", s.handleStream)
		r.Route("/tasks/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetTask)
			r.Post("/cancel", s.handleCancel)
		})
	})
}

// ServeHTTP lets Server be used as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.card)
}

// SendResponse is the body returned by message:send.
type SendResponse struct {
	Task   *domain.Task       `json:"task"`
	Events []domain.TaskEvent `json:"events"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}

	var events []domain.TaskEvent
	task, err := s.execute(r.Context(), req, func(f Frame) error {
		if f.Event != nil {
			events = append(events, *f.Event)
		}
		return nil
	})
	if err != nil {
		s.writeExecError(w, task, err)
		return
	}
	writeJSON(w, http.StatusOK, SendResponse{Task: task, Events: events})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	observability.StreamOpened()
	defer observability.StreamClosed()

	var req SendRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.logger.Warn("read stream request", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// A client that goes away cancels the run.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	_, err = s.execute(ctx, req, func(f Frame) error {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(f)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			_ = conn.WriteJSON(errorBody("invalid_request", err.Error()))
		}
		s.logger.Warn("stream ended with error", zap.Error(err))
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.executor.Task(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	err := s.executor.Cancel(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrUnsupportedOperation) {
		writeError(w, http.StatusNotImplemented, "unsupported_operation", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatusResponse is the JSON response for /status.
type StatusResponse struct {
	Status      string    `json:"status"`
	Version     string    `json:"version"`
	Started     time.Time `json:"started"`
	Uptime      string    `json:"uptime"`
	TasksServed int       `json:"tasks_served"`
	InFlight    int       `json:"in_flight"`
	LastError   string    `json:"last_error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	served, err := s.tasks.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	s.mu.Lock()
	resp := StatusResponse{
		Status:      "running",
		Version:     Version,
		Started:     s.started,
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		TasksServed: served,
		InFlight:    s.inFlight,
		LastError:   s.lastError,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) execute(ctx context.Context, req SendRequest, emit func(Frame) error) (*domain.Task, error) {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()

	task, err := s.executor.Execute(ctx, req, emit)

	s.mu.Lock()
	s.inFlight--
	if err != nil && !errors.Is(err, ErrInvalidRequest) {
		s.lastError = err.Error()
	}
	s.mu.Unlock()
	return task, err
}

func (s *Server) writeExecError(w http.ResponseWriter, task *domain.Task, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client is gone; the task is already stored as failed.
		s.logger.Info("request abandoned", zap.Error(err))
	default:
		if task != nil {
			writeJSON(w, http.StatusInternalServerError, SendResponse{Task: task})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(code, msg string) map[string]errorDetail {
	return map[string]errorDetail{"error": {Code: code, Message: msg}}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody(code, msg))
}
