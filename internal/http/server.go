// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/deciofranchini-oss/objetivo/internal/cache"
	"github.com/deciofranchini-oss/objetivo/internal/core"
	"github.com/deciofranchini-oss/objetivo/internal/ledger"
	applog "github.com/deciofranchini-oss/objetivo/internal/log"
)

type Server struct {
	http.Server
	service     *ledger.Service
	rateLimiter *rateLimiter
	logger      *applog.Logger

	// Aggregations are recomputed from the full row set, so both
	// caches are purged on every write.
	summaryCache *cache.LRUCache[core.Summary]
	reportCache  *cache.LRUCache[core.Report]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, service *ledger.Service, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		service:      service,
		rateLimiter:  newRateLimiter(),
		logger:       logger.WithComponent(applog.ComponentHTTP),
		summaryCache: cache.NewLRUCache[core.Summary](16, 5*time.Minute),
		reportCache:  cache.NewLRUCache[core.Report](16, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.withMiddleware(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withMiddleware(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("GET /api/report", s.withMiddleware(s.handleReport))

	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withMiddleware(s.handleSaveCategory))
	mux.HandleFunc("DELETE /api/categories/{key}", s.withMiddleware(s.handleDeleteCategory))
	mux.HandleFunc("GET /api/parties", s.withMiddleware(s.handleListParties))
	mux.HandleFunc("POST /api/parties", s.withMiddleware(s.handleSaveParty))
	mux.HandleFunc("DELETE /api/parties/{key}", s.withMiddleware(s.handleDeleteParty))

	mux.HandleFunc("GET /api/export/csv", s.withMiddleware(s.handleExportCSV))
	mux.HandleFunc("GET /api/backup", s.withMiddleware(s.handleBackup))
	mux.HandleFunc("POST /api/restore", s.withMiddleware(s.handleRestore))
	mux.HandleFunc("POST /api/reset", s.withMiddleware(s.handleReset))
	mux.HandleFunc("POST /api/documents", s.withMiddleware(s.handleSubmitDocument))

	// request-scoped logger; handlers pick it up through applog.FromContext
	s.Server.Handler = applog.Middleware(s.logger)(mux)

	return s
}

// invalidateAggregations drops the cached summaries and reports after
// any write.
func (s *Server) invalidateAggregations() {
	s.summaryCache.Purge()
	s.reportCache.Purge()
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks that the database answers before reporting ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.service.ListCategories(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
