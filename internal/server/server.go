package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ddscanner/internal/domain"
	"ddscanner/internal/ports"
)

// Server exposes the persisted signal log as a read-only JSON listing.
// Every line of the log is loaded into memory once, at construction.
type Server struct {
	addr    string
	records []domain.Record
	logger  *slog.Logger
}

// New loads the full log through the store and wires the listing server.
func New(addr string, store ports.RecordStore, logger *slog.Logger) (*Server, error) {
	records, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	if records == nil {
		records = []domain.Record{}
	}

	return &Server{addr: addr, records: records, logger: logger}, nil
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts", s.handlePosts)
	return withCORS(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	if s.logger != nil {
		s.logger.Info("listing server started", "addr", s.addr, "records", len(s.records))
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.records); err != nil && s.logger != nil {
		s.logger.Warn("encode listing failed", "error", err)
	}
}

// withCORS allows any origin; the listing is public and read-only.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
