// Package webhook exposes the HTTP trigger that queues submission processing.
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// TokenHeader carries the shared secret when one is configured
const TokenHeader = "X-Webhook-Token"

// Trigger is one submission event: a row of the form responses table, or the latest row
type Trigger struct {
	Row    int  `json:"row,omitempty"`
	Latest bool `json:"latest,omitempty"`
}

func (t Trigger) valid() bool {
	return t.Latest != (t.Row >= 2)
}

// ProcessFunc runs the pipeline for one trigger
type ProcessFunc func(ctx context.Context, t Trigger) error

// Server queues triggers and processes them one at a time
type Server struct {
	process ProcessFunc
	logger  *zap.Logger
	token   string
	queue   chan Trigger
}

// Option is a functional option for configuring Server
type Option func(*Server)

// WithToken requires requests to carry the shared secret in TokenHeader
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithQueueSize sets how many triggers may wait for processing
func WithQueueSize(n int) Option {
	return func(s *Server) {
		s.queue = make(chan Trigger, n)
	}
}

// New creates a webhook server
func New(process ProcessFunc, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		process: process,
		logger:  logger,
		queue:   make(chan Trigger, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns a chi.Router with the webhook endpoints
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/submissions", s.handleSubmission)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	if s.token != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(TokenHeader)), []byte(s.token)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		return
	}

	var t Trigger
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if !t.valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "give either row (>= 2) or latest"})
		return
	}

	select {
	case s.queue <- t:
	default:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "queue full"})
		return
	}

	s.logger.Info("submission queued",
		zap.Int("row", t.Row),
		zap.Bool("latest", t.Latest),
		zap.String("request_id", middleware.GetReqID(r.Context())))
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "queued", "row": t.Row, "latest": t.Latest})
}

// Serve processes queued triggers and serves HTTP on ln until ctx is cancelled.
// In-flight processing finishes before Serve returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.work(context.WithoutCancel(ctx), done)
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	if err == nil {
		err = <-errCh
	}

	close(done)
	wg.Wait()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ListenAndServe listens on addr and calls Serve
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("webhook listening", zap.String("addr", ln.Addr().String()))
	return s.Serve(ctx, ln)
}

func (s *Server) work(ctx context.Context, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case t := <-s.queue:
			if err := s.process(ctx, t); err != nil {
				s.logger.Error("submission processing failed",
					zap.Int("row", t.Row),
					zap.Bool("latest", t.Latest),
					zap.Error(err))
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
