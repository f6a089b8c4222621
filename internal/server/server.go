// Package server provides the HTTP intake API: job registration, résumé
// upload, and status and score reads. All processing happens asynchronously
// in workers; handlers only persist and enqueue.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/austenknu/TalentTriage/internal/blob"
	"github.com/austenknu/TalentTriage/internal/queue"
	"github.com/austenknu/TalentTriage/internal/types"
)

// Store is the persistence surface the handlers consume.
type Store interface {
	CreateJob(ctx context.Context, j *types.JobDescription) error
	GetJob(ctx context.Context, id uuid.UUID) (*types.JobDescription, error)
	CreateUpload(ctx context.Context, u *types.Upload) error
	GetUpload(ctx context.Context, id uuid.UUID) (*types.Upload, error)
	ListUploadsByJob(ctx context.Context, jobID uuid.UUID) ([]types.Upload, error)
	ListRankedCandidates(ctx context.Context, jobID uuid.UUID) ([]types.RankedCandidate, error)
}

// TaskPublisher enqueues pipeline tasks.
type TaskPublisher interface {
	Publish(ctx context.Context, task queue.Task) error
}

// Server is the HTTP intake server.
type Server struct {
	httpServer *http.Server
	store      Store
	blobs      blob.Store
	tasks      TaskPublisher
	validate   *validator.Validate
	log        *zap.Logger
}

// New creates a server listening on the given port.
func New(port int, store Store, blobs blob.Store, tasks TaskPublisher, log *zap.Logger) *Server {
	s := &Server{
		store:    store,
		blobs:    blobs,
		tasks:    tasks,
		validate: validator.New(),
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /jobs", s.handleCreateJob)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("POST /jobs/{job_id}/uploads", s.handleUpload)
	mux.HandleFunc("GET /jobs/{id}/uploads", s.handleListUploads)
	mux.HandleFunc("GET /jobs/{id}/scores", s.handleListScores)
	mux.HandleFunc("GET /uploads/{id}", s.handleGetUpload)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.withLogging(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	s.log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// pathUUID parses the named path segment as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue(name))
}
