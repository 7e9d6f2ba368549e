package assignment

import "siegemap/internal/domain"

// Index is an immutable snapshot of which towers hold which pairs. It is
// built once per editing session or render pass; later edits to other
// towers are not observed until a new Index is built.
type Index struct {
	order   []string
	byTower map[string][]Assignment
	holders map[Assignment][]string
}

// NewIndex parses every tower's list. Towers keep the order they are given in,
// which decides ownership of duplicated pairs.
func NewIndex(towers []domain.Tower) *Index {
	idx := &Index{
		order:   make([]string, 0, len(towers)),
		byTower: make(map[string][]Assignment, len(towers)),
		holders: make(map[Assignment][]string),
	}
	for _, t := range towers {
		list := Parse(t.DefenseIDs)
		idx.order = append(idx.order, t.ID)
		idx.byTower[t.ID] = list
		for _, a := range list {
			if !a.HasUser() {
				continue
			}
			holders := idx.holders[a]
			if len(holders) > 0 && holders[len(holders)-1] == t.ID {
				continue
			}
			idx.holders[a] = append(holders, t.ID)
		}
	}
	return idx
}

// Assignments returns the parsed list of a tower in the snapshot.
func (idx *Index) Assignments(towerID string) []Assignment {
	return idx.byTower[towerID]
}

// TakenElsewhere reports whether a tower other than selfTowerID holds pair.
// Pairs without a user are never considered taken.
func (idx *Index) TakenElsewhere(pair Assignment, selfTowerID string) bool {
	if !pair.HasUser() {
		return false
	}
	for _, holder := range idx.holders[pair] {
		if holder != selfTowerID {
			return true
		}
	}
	return false
}

// UsersTakenElsewhere returns the users already assigned to defenseID on
// towers other than selfTowerID.
func (idx *Index) UsersTakenElsewhere(defenseID, selfTowerID string) map[string]struct{} {
	taken := make(map[string]struct{})
	for pair, holders := range idx.holders {
		if pair.DefenseID != defenseID {
			continue
		}
		for _, holder := range holders {
			if holder != selfTowerID {
				taken[pair.UserID] = struct{}{}
				break
			}
		}
	}
	return taken
}

// Add is the snapshot form of the package-level Add.
func (idx *Index) Add(current []Assignment, candidate Assignment, selfTowerID string) ([]Assignment, Outcome) {
	if len(current) >= MaxPerTower {
		return current, RejectedCapacity
	}
	if idx.TakenElsewhere(candidate, selfTowerID) {
		return current, RejectedDuplicate
	}
	out := make([]Assignment, 0, len(current)+1)
	out = append(out, current...)
	return append(out, candidate), Added
}

// Visible filters list, held by towerID, down to the entries that tower
// should display. A pair also held by another tower is displayed only by the
// first holder in snapshot order, so stale duplicates never show twice.
func (idx *Index) Visible(towerID string, list []Assignment) []Assignment {
	out := make([]Assignment, 0, len(list))
	for _, a := range list {
		if a.HasUser() && !idx.owns(towerID, a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (idx *Index) owns(towerID string, pair Assignment) bool {
	holders := idx.holders[pair]
	return len(holders) == 0 || holders[0] == towerID
}
