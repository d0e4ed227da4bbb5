package server

import (
	"encoding/json"
	"net/http"
	"time"

	"athletics-cms/internal/model"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const scrapeTimeout = 30 * time.Second

// articleWithContent merges the index entry with its body for single-article
// responses.
type articleWithContent struct {
	model.Article
	Content string `json:"content"`
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.articles.ListAll(r.Context())
	if err != nil {
		s.writeError(w, err, "Article not found")
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	article, content, err := s.articles.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "Article not found")
		return
	}
	writeJSON(w, http.StatusOK, articleWithContent{Article: article, Content: content})
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var draft model.ArticleDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("Invalid JSON payload", err.Error()))
		return
	}

	article, err := s.articles.Create(r.Context(), draft)
	if err != nil {
		s.writeError(w, err, "Article not found")
		return
	}
	if s.metrics != nil {
		s.metrics.ArticleWrites.Inc()
	}
	writeJSON(w, http.StatusCreated, articleWithContent{Article: article, Content: draft.Content})
}

func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch model.ArticlePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("Invalid JSON payload", err.Error()))
		return
	}

	article, err := s.articles.Update(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, err, "Article not found")
		return
	}
	if s.metrics != nil {
		s.metrics.ArticleWrites.Inc()
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.articles.Delete(r.Context(), id); err != nil {
		s.writeError(w, err, "Article not found")
		return
	}
	if s.metrics != nil {
		s.metrics.ArticleWrites.Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

type importRequest struct {
	URL string `json:"url"`
}

// handleImportArticle drafts an article from an external page. The scrape
// result lands as a draft so an editor can rework it before publishing.
func (s *Server) handleImportArticle(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("Invalid JSON payload", err.Error()))
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errBody("URL is required", ""))
		return
	}

	parsed, err := s.scraper.Scrape(req.URL, scrapeTimeout)
	if err != nil {
		s.logger.Warn("Import scrape failed", zap.String("url", req.URL), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errBody("Failed to fetch article", err.Error()))
		return
	}

	draft := model.ArticleDraft{
		Title:        parsed.Title,
		Content:      parsed.Content,
		Date:         s.now().Format("2006-01-02"),
		Category:     "news",
		CategoryName: "お知らせ",
		Excerpt:      parsed.Excerpt,
		Status:       string(model.StatusDraft),
	}
	if draft.Excerpt == "" {
		draft.Excerpt = draft.Title
	}

	article, err := s.articles.Create(r.Context(), draft)
	if err != nil {
		s.writeError(w, err, "Article not found")
		return
	}
	if s.metrics != nil {
		s.metrics.ArticleWrites.Inc()
	}
	writeJSON(w, http.StatusCreated, articleWithContent{Article: article, Content: draft.Content})
}
