package server

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"siegemap/internal/domain"
)

// EventType names a tower change pushed to map subscribers.
type EventType string

const (
	EventTowerUpdated EventType = "TowerUpdated"
	EventTowerDeleted EventType = "TowerDeleted"
)

// Event is one server-sent event on a map stream.
type Event struct {
	Type    EventType     `json:"type"`
	TowerID string        `json:"towerId"`
	Tower   *domain.Tower `json:"tower,omitempty"`
}

const keepaliveInterval = 30 * time.Second

// MapHub broadcasts tower changes to the streaming clients of each map.
// Slow clients miss events rather than block writers.
type MapHub struct {
	mu   sync.Mutex
	maps map[string]map[string]chan Event
}

// NewMapHub creates an empty hub.
func NewMapHub() *MapHub {
	return &MapHub{maps: make(map[string]map[string]chan Event)}
}

func (h *MapHub) subscribe(mapName string) (string, chan Event, func()) {
	id := uuid.NewString()
	ch := make(chan Event, 8)
	h.mu.Lock()
	if h.maps[mapName] == nil {
		h.maps[mapName] = make(map[string]chan Event)
	}
	h.maps[mapName][id] = ch
	h.mu.Unlock()
	return id, ch, func() {
		h.mu.Lock()
		delete(h.maps[mapName], id)
		if len(h.maps[mapName]) == 0 {
			delete(h.maps, mapName)
		}
		close(ch)
		h.mu.Unlock()
	}
}

// Publish sends ev to every subscriber of mapName.
func (h *MapHub) Publish(mapName string, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.maps[mapName] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers returns the number of open streams on mapName.
func (h *MapHub) Subscribers(mapName string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.maps[mapName])
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	mapName := chi.URLParam(r, "mapName")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	id, ch, cleanup := s.hub.subscribe(mapName)
	defer cleanup()
	s.logger.Debug("event stream opened", slog.String("map", mapName), slog.String("subscriber_id", id))

	buf := bufio.NewWriter(w)
	buf.WriteString(": connected\n\n")
	buf.Flush()
	flusher.Flush()

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case ev := <-ch:
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			buf.WriteString("event: " + string(ev.Type) + "\n")
			buf.WriteString("data: ")
			buf.Write(payload)
			buf.WriteString("\n\n")
			buf.Flush()
			flusher.Flush()
		case <-ticker.C:
			buf.WriteString(": keepalive\n\n")
			buf.Flush()
			flusher.Flush()
		case <-r.Context().Done():
			s.logger.Debug("event stream closed", slog.String("map", mapName), slog.String("subscriber_id", id))
			return
		}
	}
}
