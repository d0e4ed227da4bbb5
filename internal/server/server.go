package server

import (
	"context"
	"net/http"
	"time"

	"athletics-cms/internal/metrics"
	"athletics-cms/internal/repo"
	"athletics-cms/internal/scrape"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server exposes the article and lesson-status repositories as a JSON API.
// The site's pages are static and served elsewhere; everything here is
// /api plus the operational endpoints.
type Server struct {
	articles *repo.ArticleRepo
	status   *repo.StatusRepo
	scraper  scrape.Scraper
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	router   *mux.Router
	server   *http.Server
}

func NewServer(articles *repo.ArticleRepo, status *repo.StatusRepo, logger *zap.Logger, m *metrics.Metrics) *Server {
	s := &Server{
		articles: articles,
		status:   status,
		scraper:  &scrape.DefaultScraper{},
		logger:   logger,
		metrics:  m,
		now:      time.Now,
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.recoverMiddleware, s.observeMiddleware)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/articles", s.handleListArticles).Methods(http.MethodGet)
	api.HandleFunc("/articles", s.handleCreateArticle).Methods(http.MethodPost)
	// PUT/DELETE without an id are client mistakes, not routing misses.
	api.HandleFunc("/articles", s.handleMissingID).Methods(http.MethodPut, http.MethodDelete)
	api.HandleFunc("/articles/import", s.handleImportArticle).Methods(http.MethodPost)
	api.HandleFunc("/articles/{id}", s.handleGetArticle).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id}", s.handleUpdateArticle).Methods(http.MethodPut)
	api.HandleFunc("/articles/{id}", s.handleDeleteArticle).Methods(http.MethodDelete)

	api.HandleFunc("/status", s.handleGetStatus).Methods(http.MethodGet)
	api.HandleFunc("/status/banner", s.handleGetBanner).Methods(http.MethodGet)
	api.HandleFunc("/status", s.handlePostStatus).Methods(http.MethodPost)
	api.HandleFunc("/status", s.handlePutStatus).Methods(http.MethodPut)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start launches the HTTP server
func (s *Server) Start(port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("API server listening", zap.String("addr", port))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errBody("Method not allowed", ""))
}

func (s *Server) handleMissingID(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusBadRequest, errBody("Article ID is required", ""))
}
