package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"athletics-cms/internal/repo"

	"go.uber.org/zap"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func errBody(msg, details string) errorBody {
	return errorBody{Error: msg, Details: details}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError is the single place repository errors become HTTP responses.
// notFoundMsg lets handlers keep their resource-specific 404 wording.
func (s *Server) writeError(w http.ResponseWriter, err error, notFoundMsg string) {
	var ve *repo.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errBody("Missing required fields", ve.Error()))
	case errors.Is(err, repo.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errBody(notFoundMsg, ""))
	default:
		s.logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errBody("Storage failure", err.Error()))
	}
}
