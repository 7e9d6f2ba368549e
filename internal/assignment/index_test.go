package assignment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"siegemap/internal/domain"
)

func TestIndex_UsersTakenElsewhere(t *testing.T) {
	idx := NewIndex([]domain.Tower{
		tower("A", `[{"defenseId":"X","userId":"U1"},{"defenseId":"Y","userId":"U2"}]`),
		tower("B", `[{"defenseId":"X","userId":"U3"},{"defenseId":"X","userId":""}]`),
	})

	assert.Equal(t, map[string]struct{}{"U1": {}, "U3": {}}, idx.UsersTakenElsewhere("X", "C"))
	assert.Equal(t, map[string]struct{}{"U3": {}}, idx.UsersTakenElsewhere("X", "A"))
	assert.Empty(t, idx.UsersTakenElsewhere("Z", "A"))
}

func TestIndex_VisibleRendersDuplicatesOnce(t *testing.T) {
	towers := []domain.Tower{
		tower("A", `[{"defenseId":"X","userId":"U"}]`),
		tower("B", `[{"defenseId":"X","userId":"U"},{"defenseId":"X","userId":""},{"defenseId":"Y","userId":"V"}]`),
	}
	idx := NewIndex(towers)

	assert.Equal(t, []Assignment{{DefenseID: "X", UserID: "U"}}, idx.Visible("A", idx.Assignments("A")))
	assert.Equal(t,
		[]Assignment{{DefenseID: "X"}, {DefenseID: "Y", UserID: "V"}},
		idx.Visible("B", idx.Assignments("B")),
	)
}

func TestIndex_VisibleForPendingList(t *testing.T) {
	idx := NewIndex([]domain.Tower{
		tower("A", `[{"defenseId":"X","userId":"U"}]`),
		tower("B", `[]`),
	})

	pending := []Assignment{{DefenseID: "X", UserID: "U"}, {DefenseID: "Z", UserID: "W"}}
	assert.Equal(t, []Assignment{{DefenseID: "Z", UserID: "W"}}, idx.Visible("B", pending))
}
