package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"siegemap/internal/collab"
	"siegemap/internal/domain"
	domainerrors "siegemap/internal/errors"
	"siegemap/internal/store"
)

// storeFetcher lets the collab resolver read straight from the store.
type storeFetcher struct {
	st *store.Store
}

func (f storeFetcher) GetDefense(ctx context.Context, id string) (domain.Defense, error) {
	d, err := f.st.GetDefense(ctx, id)
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		return domain.Defense{}, collab.ErrNotFound
	}
	return d, err
}

func (f storeFetcher) ListUsers(ctx context.Context) ([]domain.User, error) {
	return f.st.ListUsers(ctx)
}

func (s *Server) handleGetDefense(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.GetDefense(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListEligibleAssignments(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.AssignmentsResponse{Assignments: entries})
}

func (s *Server) handleCreateDefense(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDefenseRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	d, err := s.store.CreateDefense(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	u, err := s.store.CreateUser(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleSetEligibility(w http.ResponseWriter, r *http.Request) {
	var req domain.EligibilityRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.store.SetEligibleUsers(r.Context(), chi.URLParam(r, "defenseId"), req.UserIDs); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
