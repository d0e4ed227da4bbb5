package server

import (
	"encoding/json"
	"net/http"

	"athletics-cms/internal/model"
)

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.status.Get(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, err, "Status not found")
		return
	}
	if r.URL.Query().Get("format") == "legacy" {
		writeJSON(w, http.StatusOK, model.ToLegacy(status))
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// bannerResponse is what the pages poll: the record plus everything the
// banner needs pre-computed, including whether to render it at all.
type bannerResponse struct {
	Status   model.LessonStatus             `json:"status"`
	IsNormal bool                           `json:"isNormal"`
	Display  model.StatusDisplay            `json:"display"`
	Courses  map[string]model.StatusDisplay `json:"courseDisplays"`
}

func (s *Server) handleGetBanner(w http.ResponseWriter, r *http.Request) {
	status, err := s.status.Get(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, err, "Status not found")
		return
	}

	courses := make(map[string]model.StatusDisplay, len(status.Courses))
	for slot, cs := range status.Courses {
		courses[slot] = model.DisplayFor(cs.Status)
	}
	writeJSON(w, http.StatusOK, bannerResponse{
		Status:   status,
		IsNormal: status.IsNormal(),
		Display:  model.DisplayFor(status.GlobalStatus),
		Courses:  courses,
	})
}

// handlePostStatus accepts the flat legacy shape the admin dashboard posts
// and stores the canonical record.
func (s *Server) handlePostStatus(w http.ResponseWriter, r *http.Request) {
	var legacy model.LegacyStatus
	if err := json.NewDecoder(r.Body).Decode(&legacy); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("無効なデータ形式です", err.Error()))
		return
	}
	// The contract wants overallStatus present and lessons to be an array;
	// a null/absent lessons field decodes to a nil slice.
	if legacy.OverallStatus == "" || legacy.Lessons == nil {
		writeJSON(w, http.StatusBadRequest, errBody("無効なデータ形式です", ""))
		return
	}

	saved, err := s.status.Save(r.Context(), model.FromLegacy(legacy, s.status.CourseTable()), r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, err, "Status not found")
		return
	}
	if s.metrics != nil {
		s.metrics.StatusWrites.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "ステータスを更新しました",
		"data":    saved,
	})
}

// handlePutStatus accepts the canonical courses-keyed shape directly.
func (s *Server) handlePutStatus(w http.ResponseWriter, r *http.Request) {
	var status model.LessonStatus
	if err := json.NewDecoder(r.Body).Decode(&status); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("Invalid JSON payload", err.Error()))
		return
	}

	saved, err := s.status.Save(r.Context(), status, r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, err, "Status not found")
		return
	}
	if s.metrics != nil {
		s.metrics.StatusWrites.Inc()
	}
	writeJSON(w, http.StatusOK, saved)
}
