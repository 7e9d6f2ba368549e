package collab

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"siegemap/internal/assignment"
	"siegemap/internal/domain"
	"siegemap/internal/render"
)

// maxInFlight bounds concurrent defense lookups for one resolution.
const maxInFlight = 8

// Fetcher is the read side of the collaborator API used for resolution.
type Fetcher interface {
	GetDefense(ctx context.Context, id string) (domain.Defense, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// Resolver fetches the defenses and users referenced by assignment lists.
// Lookups run concurrently and never fail as a whole: a defense that 404s is
// dropped silently, any other failure is logged and dropped.
type Resolver struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewResolver creates a resolver over f.
func NewResolver(f Fetcher, logger *slog.Logger) *Resolver {
	return &Resolver{fetcher: f, logger: logger}
}

// Defenses resolves ids in order, omitting the ones that could not be
// fetched. Duplicate ids are fetched once and returned once.
func (r *Resolver) Defenses(ctx context.Context, ids []string) []domain.Defense {
	ids = unique(ids)
	found := make([]*domain.Defense, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)
	for i, id := range ids {
		g.Go(func() error {
			d, err := r.fetcher.GetDefense(gctx, id)
			switch {
			case errors.Is(err, ErrNotFound):
				r.logger.Debug("defense not found", slog.String("defense_id", id))
			case err != nil:
				r.logger.Warn("resolve defense", slog.String("defense_id", id), slog.String("error", err.Error()))
			default:
				found[i] = &d
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.Defense, 0, len(ids))
	for _, d := range found {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out
}

// Users resolves ids against the user list. Unknown ids are omitted.
func (r *Resolver) Users(ctx context.Context, ids []string) map[string]domain.User {
	out := make(map[string]domain.User)
	if len(ids) == 0 {
		return out
	}
	users, err := r.fetcher.ListUsers(ctx)
	if err != nil {
		r.logger.Warn("resolve users", slog.String("error", err.Error()))
		return out
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	for _, u := range users {
		if _, ok := wanted[u.ID]; ok {
			out[u.ID] = u
		}
	}
	return out
}

// Resolve fetches everything referenced by lists, defenses and users in
// parallel.
func (r *Resolver) Resolve(ctx context.Context, lists ...[]assignment.Assignment) render.Resolved {
	var defenseIDs, userIDs []string
	for _, list := range lists {
		for _, a := range list {
			defenseIDs = append(defenseIDs, a.DefenseID)
			if a.HasUser() {
				userIDs = append(userIDs, a.UserID)
			}
		}
	}

	var (
		defenses []domain.Defense
		users    map[string]domain.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defenses = r.Defenses(gctx, defenseIDs)
		return nil
	})
	g.Go(func() error {
		users = r.Users(gctx, unique(userIDs))
		return nil
	})
	_ = g.Wait()

	res := render.Resolved{
		Defenses: make(map[string]domain.Defense, len(defenses)),
		Users:    users,
	}
	for _, d := range defenses {
		res.Defenses[d.ID] = d
	}
	return res
}

// ResolveTowers resolves every assignment of towers.
func (r *Resolver) ResolveTowers(ctx context.Context, towers []domain.Tower) render.Resolved {
	lists := make([][]assignment.Assignment, 0, len(towers))
	for _, t := range towers {
		lists = append(lists, assignment.Parse(t.DefenseIDs))
	}
	return r.Resolve(ctx, lists...)
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
