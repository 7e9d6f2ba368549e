package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"siegemap/internal/domain"
)

func (s *Server) handleListTowers(w http.ResponseWriter, r *http.Request) {
	towers, err := s.store.ListTowers(r.Context(), r.URL.Query().Get("mapName"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, towers)
}

func (s *Server) handleGetTower(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTower(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCreateTower(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTowerRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	t, err := s.store.CreateTower(r.Context(), req, actorFromContext(r.Context()))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.logger.Info("tower created", slog.String("tower_id", t.ID), slog.String("map", t.MapName))
	s.hub.Publish(t.MapName, Event{Type: EventTowerUpdated, TowerID: t.ID, Tower: &t})
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTower(w http.ResponseWriter, r *http.Request) {
	var req domain.TowerUpdate
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	t, err := s.store.UpdateTower(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.hub.Publish(t.MapName, Event{Type: EventTowerUpdated, TowerID: t.ID, Tower: &t})
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateGeometry(w http.ResponseWriter, r *http.Request) {
	var req domain.GeometryUpdate
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	t, err := s.store.UpdateGeometry(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.hub.Publish(t.MapName, Event{Type: EventTowerUpdated, TowerID: t.ID, Tower: &t})
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTower(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	towerID := chi.URLParam(r, "id")
	t, err := s.store.GetTower(ctx, towerID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.store.DeleteTower(ctx, towerID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.logger.Info("tower deleted", slog.String("tower_id", towerID), slog.String("map", t.MapName))
	s.hub.Publish(t.MapName, Event{Type: EventTowerDeleted, TowerID: towerID})
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
