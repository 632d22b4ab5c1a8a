// Package server is the thin HTTP layer in front of the generation
// service: three endpoints and permissive CORS, nothing else.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"caseforge/internal/config"
	"caseforge/internal/generator"
	"caseforge/internal/parser"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Server exposes the generation service over HTTP.
type Server struct {
	svc    *generator.Service
	logger *zap.Logger
	addr   string
}

// New creates a server for the given service.
func New(cfg config.ServerConfig, svc *generator.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		svc:    svc,
		logger: logger,
		addr:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/generate", s.handleGenerate)
	return s.withCORS(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// withCORS allows any origin. The service carries no credentials and no
// state, so a permissive policy is acceptable here.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "caseforge test case generator",
		"version": Version,
		"status":  "running",
		"endpoints": map[string]string{
			"generate": "/generate",
			"health":   "/health",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	ready, msg := s.svc.Ready()
	status := "healthy"
	code := http.StatusOK
	if !ready {
		status = "degraded"
	}
	writeJSON(w, code, map[string]string{
		"status":  status,
		"message": msg,
	})
}

type generateRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reqID := uuid.NewString()
	w.Header().Set("X-Request-ID", reqID)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start := time.Now()
	result, err := s.svc.Generate(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, parser.ErrEmptyInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Generation failed",
			zap.String("request_id", reqID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "generation failed")
		return
	}

	s.logger.Info("Generation request served",
		zap.String("request_id", reqID),
		zap.Int("test_cases", result.Count),
		zap.Int("failures", len(result.Failures)),
		zap.Duration("elapsed", time.Since(start)))
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}
