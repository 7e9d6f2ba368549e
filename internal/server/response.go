package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"siegemap/internal/domain"
	domainerrors "siegemap/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, domain.ErrorResponse{Error: message})
}

// writeDomainError answers with the status of a coded error. Anything else
// is logged and reported as a 500 without detail.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		writeError(w, domainErr.HTTPStatus(), domainErr.Message)
		return
	}
	s.logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON reads a bounded JSON body into dst and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domainerrors.Validation("invalid JSON body")
	}
	return s.validator.Validate(dst)
}
