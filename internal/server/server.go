// Package server provides the HTTP API over persisted pipeline runs.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daniela/corpus-insights/internal/config"
	"github.com/daniela/corpus-insights/internal/db"
	"github.com/daniela/corpus-insights/internal/server/middleware"
)

// Config holds server configuration.
type Config struct {
	Port        int
	DatabaseURL string
}

// Server is the HTTP API server. All routes except /health and /auth/login
// require a JWT bearer token obtained from the login endpoint.
type Server struct {
	httpServer *http.Server
	store      RunStore
	jwtService *JWTService
	passwords  *config.PasswordConfig
	closeDB    func()
}

// New creates a server connected to the database named by cfg.DatabaseURL.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	srv, err := NewWithStore(cfg, database)
	if err != nil {
		database.Close()
		return nil, err
	}
	srv.closeDB = database.Close
	return srv, nil
}

// NewWithStore creates a server over an existing store. The caller owns the
// store's lifecycle.
func NewWithStore(cfg Config, store RunStore) (*Server, error) {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, err
	}
	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:      store,
		jwtService: NewJWTService(jwtConfig),
		passwords:  passwords,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	requireAuth := middleware.RequireAuth(s.jwtService)
	mux.Handle("GET /runs", requireAuth(http.HandlerFunc(s.handleListRuns)))
	mux.Handle("GET /runs/{id}", requireAuth(http.HandlerFunc(s.handleGetRun)))
	mux.Handle("DELETE /runs/{id}", requireAuth(http.HandlerFunc(s.handleDeleteRun)))
	mux.Handle("GET /runs/{id}/artifacts", requireAuth(http.HandlerFunc(s.handleListRunArtifacts)))
	mux.Handle("GET /artifacts/{id}", requireAuth(http.HandlerFunc(s.handleGetArtifact)))

	return withLogging(withCORS(mux))
}

// Handler exposes the full middleware-wrapped handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("API server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if s.closeDB != nil {
		s.closeDB()
	}
	return nil
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	message := err.Error()
	if status == 500 {
		log.Printf("internal error: %v", err)
		message = "internal server error"
	}
	jsonResponse(w, status, map[string]string{"error": message})
}
