package editor

import (
	"context"
	"strings"

	"siegemap/internal/assignment"
	"siegemap/internal/domain"
	"siegemap/internal/render"
)

// Selector is the add-assignment subflow of a session: pick a defense, then
// one of its eligible users.
type Selector struct {
	s *Session
}

// Selector returns the add flow bound to s.
func (s *Session) Selector() *Selector {
	return &Selector{s: s}
}

// SearchDefenses returns the registry's defenses whose monster display
// names contain query, ignoring case and accents. An empty query matches all.
func (sel *Selector) SearchDefenses(ctx context.Context, query string) ([]domain.Defense, error) {
	all, err := sel.s.deps.Registry.Defenses(ctx)
	if err != nil {
		return nil, err
	}
	q := render.Fold(query)
	if q == "" {
		return all, nil
	}
	out := make([]domain.Defense, 0, len(all))
	for _, d := range all {
		if strings.Contains(sel.haystack(d), q) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (sel *Selector) haystack(d domain.Defense) string {
	monsters := d.Monsters()
	names := make([]string, 0, len(monsters))
	for _, m := range monsters {
		names = append(names, sel.s.deps.Catalog.DisplayName(m))
	}
	return render.Fold(strings.Join(names, " "))
}

// EligibleUsers lists the users that can still be paired with defenseID:
// eligible for it, not holding it on another tower, and not already pending
// on this one.
func (sel *Selector) EligibleUsers(ctx context.Context, defenseID string) ([]domain.User, error) {
	users, err := sel.s.deps.Registry.EligibleUsers(ctx, defenseID)
	if err != nil {
		return nil, err
	}
	taken := sel.s.index.UsersTakenElsewhere(defenseID, sel.s.tower.ID)
	pending := sel.s.Assignments()

	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if _, ok := taken[u.ID]; ok {
			continue
		}
		if assignment.Contains(pending, assignment.Assignment{DefenseID: defenseID, UserID: u.ID}) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// Choose adds (defense, user) to the session. The records are remembered so
// the new row renders without another fetch.
func (sel *Selector) Choose(defense domain.Defense, user domain.User) (assignment.Outcome, error) {
	outcome, err := sel.s.Add(assignment.Assignment{DefenseID: defense.ID, UserID: user.ID})
	if err != nil || outcome != assignment.Added {
		return outcome, err
	}

	s := sel.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved.Defenses == nil {
		s.resolved.Defenses = make(map[string]domain.Defense)
	}
	s.resolved.Defenses[defense.ID] = defense
	if user.ID != "" {
		if s.resolved.Users == nil {
			s.resolved.Users = make(map[string]domain.User)
		}
		s.resolved.Users[user.ID] = user
	}
	return outcome, nil
}
