package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"sigil/internal/services/signing"
	"sigil/internal/store"
)

// maxBodyBytes bounds request bodies; an envelope for a 2048-bit key is
// well under 4 KiB.
const maxBodyBytes = 64 << 10

// Server serves the identity and action endpoints.
type Server struct {
	cfg      *Config
	db       *store.SQLite
	verifier *signing.Service
	tokens   *tokenIssuer
	limiter  *keyLimiter
	metrics  *metrics
	logger   *slog.Logger
	now      func() time.Time
}

// New returns a Server over db. cfg must already be valid.
func New(cfg *Config, db *store.SQLite, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		db:       db,
		verifier: signing.New(),
		limiter:  newKeyLimiter(cfg.RateLimit, cfg.Burst),
		metrics:  newMetrics(),
		logger:   logger,
		now:      time.Now,
	}
	s.tokens = &tokenIssuer{
		secret: []byte(cfg.TokenSecret),
		ttl:    cfg.TokenTTL,
		now:    func() time.Time { return s.now() },
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/join", s.handleJoin)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/rekey", s.handleRekey)
	mux.HandleFunc("POST /api/vote", s.handleVote)
	mux.HandleFunc("POST /api/rumor", s.handleRumor)
	mux.HandleFunc("GET /api/generate-invite/{id}", s.handleInvite)
	mux.HandleFunc("GET /api/rumors/{id}/tally", s.handleTally)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.handler())
	return s.logRequests(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("sigild listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", s.now().Sub(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
