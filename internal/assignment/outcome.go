package assignment

import "siegemap/internal/domain"

// Outcome is the result of an attempted add. Rejections are soft: the caller
// keeps its list and shows nothing unless it chooses to.
type Outcome int

const (
	Added Outcome = iota
	RejectedCapacity
	RejectedDuplicate
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case RejectedCapacity:
		return "rejected_capacity"
	case RejectedDuplicate:
		return "rejected_duplicate"
	default:
		return "unknown"
	}
}

// Add appends candidate to current unless the tower is full or the pair,
// when it names a user, is already held by a tower other than selfTowerID.
// On rejection current is returned untouched.
func Add(current []Assignment, candidate Assignment, towers []domain.Tower, selfTowerID string) ([]Assignment, Outcome) {
	return NewIndex(towers).Add(current, candidate, selfTowerID)
}
