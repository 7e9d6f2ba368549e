// Package editor is the write surface for one tower's non-geometric fields:
// number, stars, color and the assignment list.
package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"siegemap/internal/assignment"
	"siegemap/internal/collab"
	"siegemap/internal/domain"
	domainerrors "siegemap/internal/errors"
	"siegemap/internal/logger"
	"siegemap/internal/render"
)

// GenericAlert is shown when a failed save or delete carries no server message.
const GenericAlert = "Une erreur est survenue"

var (
	// ErrBusy is returned while a save or delete of the same session is pending.
	ErrBusy = errors.New("editor: request already in flight")
	// ErrClosed is returned once the session has saved or deleted its tower.
	ErrClosed = errors.New("editor: session closed")
)

// TowerAPI is the write side of the collaborator API.
type TowerAPI interface {
	UpdateTower(ctx context.Context, id string, update domain.TowerUpdate) (domain.Tower, error)
	DeleteTower(ctx context.Context, id string) error
}

// Deps are the collaborators a session needs.
type Deps struct {
	API      TowerAPI
	Resolver *collab.Resolver
	Registry *collab.Registry
	Catalog  *render.Catalog
	Logger   *slog.Logger
}

// Session is the edit state of one tower. The map's tower collection is
// captured when the session opens; edits made elsewhere afterwards are not
// seen until a new session is opened.
type Session struct {
	id    string
	deps  Deps
	index *assignment.Index

	mu       sync.Mutex
	tower    domain.Tower
	number   string
	stars    int
	color    domain.Color
	list     []assignment.Assignment
	resolved render.Resolved
	busy     bool
	closed   bool
}

// Open starts editing tower. allTowers is the map's collection, tower
// included. Referenced defenses and users are resolved before Open returns;
// records that cannot be fetched are left out.
func Open(ctx context.Context, tower domain.Tower, allTowers []domain.Tower, deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	s := &Session{
		id:     uuid.NewString(),
		deps:   deps,
		index:  assignment.NewIndex(allTowers),
		tower:  tower,
		number: tower.TowerNumber,
		stars:  tower.Stars,
		color:  tower.Color.OrDefault(),
		list:   assignment.Parse(tower.DefenseIDs),
	}
	if deps.Resolver != nil {
		s.resolved = deps.Resolver.Resolve(ctx, s.list)
	}
	deps.Logger.Debug("tower editor opened",
		slog.String("session_id", s.id),
		slog.String("tower_id", tower.ID),
		slog.Int("assignments", len(s.list)))
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// TowerID is the id of the tower under edit.
func (s *Session) TowerID() string { return s.tower.ID }

// Update returns the pending body of the save request.
func (s *Session) Update() domain.TowerUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked()
}

func (s *Session) updateLocked() domain.TowerUpdate {
	return domain.TowerUpdate{
		TowerNumber: s.number,
		Stars:       s.stars,
		Color:       s.color,
		DefenseIDs:  assignment.Encode(s.list),
	}
}

// SetTowerNumber accepts "QG" or "1".."12".
func (s *Session) SetTowerNumber(n string) error {
	if !domain.ValidTowerNumber(n) {
		return domainerrors.Validation("numéro de tour invalide")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.number = n
	return nil
}

// SetStars accepts 4 or 5.
func (s *Session) SetStars(stars int) error {
	if !domain.ValidStars(stars) {
		return domainerrors.Validation("nombre d'étoiles invalide")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.stars = stars
	return nil
}

// SetColor accepts blue, red or yellow.
func (s *Session) SetColor(c domain.Color) error {
	if !c.Valid() {
		return domainerrors.Validation("couleur invalide")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.color = c
	return nil
}

// Assignments returns a copy of the pending list.
func (s *Session) Assignments() []assignment.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]assignment.Assignment(nil), s.list...)
}

// Resolved returns the defenses and users known to the session.
func (s *Session) Resolved() render.Resolved {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := render.Resolved{
		Defenses: make(map[string]domain.Defense, len(s.resolved.Defenses)),
		Users:    make(map[string]domain.User, len(s.resolved.Users)),
	}
	for k, v := range s.resolved.Defenses {
		out.Defenses[k] = v
	}
	for k, v := range s.resolved.Users {
		out.Users[k] = v
	}
	return out
}

// Add appends a pair unless the tower is full, the pair is already pending
// here, or another tower holds it. Rejections leave the list unchanged.
// A closed session returns ErrClosed.
func (s *Session) Add(pair assignment.Assignment) (assignment.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	next, outcome := s.index.Add(s.list, pair, s.tower.ID)
	if outcome == assignment.Added && pair.HasUser() && assignment.Contains(s.list, pair) {
		outcome = assignment.RejectedDuplicate
	}
	if outcome == assignment.Added {
		s.list = next
	}
	s.logOutcome(pair, outcome)
	return outcome, nil
}

func (s *Session) logOutcome(pair assignment.Assignment, outcome assignment.Outcome) {
	s.deps.Logger.Debug("assignment add",
		slog.String("session_id", s.id),
		slog.String("defense_id", pair.DefenseID),
		slog.String("user_id", pair.UserID),
		slog.String("outcome", outcome.String()))
}

// Remove drops the entry at index. Other entries keep their order.
func (s *Session) Remove(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.list = assignment.Remove(s.list, index)
	return nil
}

// Busy reports whether a save or delete is pending.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Closed reports whether the session ended with a successful save or delete.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

// Save sends number, stars, color and the encoded list in one request. On
// success the session closes and the server's record is returned; on failure
// the local edits are kept so the caller can retry.
func (s *Session) Save(ctx context.Context) (domain.Tower, error) {
	if err := s.begin(); err != nil {
		return domain.Tower{}, err
	}
	update := s.Update()

	saved, err := s.deps.API.UpdateTower(ctx, s.tower.ID, update)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.deps.Logger.Warn("save tower",
			slog.String("session_id", s.id),
			slog.String("tower_id", s.tower.ID),
			slog.String("error", err.Error()))
		return domain.Tower{}, err
	}
	s.tower = saved
	s.closed = true
	return saved, nil
}

// Delete removes the tower once confirm returns true. deleted is false when
// the user declined.
func (s *Session) Delete(ctx context.Context, confirm func() bool) (deleted bool, err error) {
	if confirm == nil || !confirm() {
		return false, nil
	}
	if err := s.begin(); err != nil {
		return false, err
	}

	err = s.deps.API.DeleteTower(ctx, s.tower.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.deps.Logger.Warn("delete tower",
			slog.String("session_id", s.id),
			slog.String("tower_id", s.tower.ID),
			slog.String("error", err.Error()))
		return false, err
	}
	s.closed = true
	return true, nil
}

// AlertMessage is the text shown to the user for a failed save or delete.
func AlertMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := collab.Message(err); msg != "" {
		return msg
	}
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return GenericAlert
}
