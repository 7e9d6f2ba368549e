package collab

import (
	"context"
	"sync"

	"siegemap/internal/domain"
)

// AssignmentSource lists which users are eligible for which defense.
type AssignmentSource interface {
	ListAssignments(ctx context.Context) ([]domain.EligibleAssignment, error)
}

// Registry is a read cache of eligible assignments for one view. The first
// successful load is kept for the registry's lifetime; a failed load is
// retried on the next call.
type Registry struct {
	source AssignmentSource

	mu      sync.Mutex
	loaded  bool
	entries []domain.EligibleAssignment
	byID    map[string]int
}

// NewRegistry creates an empty registry over source.
func NewRegistry(source AssignmentSource) *Registry {
	return &Registry{source: source}
}

func (r *Registry) load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}
	entries, err := r.source.ListAssignments(ctx)
	if err != nil {
		return err
	}
	r.entries = entries
	r.byID = make(map[string]int, len(entries))
	for i, e := range entries {
		r.byID[e.DefenseID] = i
	}
	r.loaded = true
	return nil
}

// All returns every eligible assignment in server order.
func (r *Registry) All(ctx context.Context) ([]domain.EligibleAssignment, error) {
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.EligibleAssignment(nil), r.entries...), nil
}

// Defenses returns the defenses that have an eligibility entry.
func (r *Registry) Defenses(ctx context.Context) ([]domain.Defense, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Defense, 0, len(all))
	for _, e := range all {
		d := e.Defense
		if d.ID == "" {
			d.ID = e.DefenseID
		}
		out = append(out, d)
	}
	return out, nil
}

// EligibleUsers returns the users allowed on defenseID, or nil when the
// defense has no entry.
func (r *Registry) EligibleUsers(ctx context.Context, defenseID string) ([]domain.User, error) {
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[defenseID]
	if !ok {
		return nil, nil
	}
	return append([]domain.User(nil), r.entries[i].Users...), nil
}
