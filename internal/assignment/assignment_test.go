package assignment

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siegemap/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Assignment
	}{
		{
			name: "legacy strings",
			raw:  `["d1","d2"]`,
			want: []Assignment{{DefenseID: "d1"}, {DefenseID: "d2"}},
		},
		{
			name: "current objects",
			raw:  `[{"defenseId":"d1","userId":"u1"},{"defenseId":"d2","userId":""}]`,
			want: []Assignment{{DefenseID: "d1", UserID: "u1"}, {DefenseID: "d2"}},
		},
		{
			name: "objects without defenseId are dropped",
			raw:  `[{"defenseId":"","userId":"u1"},{"userId":"u2"},{"defenseId":"d3","userId":null},{"defenseId":7}]`,
			want: []Assignment{{DefenseID: "d3"}},
		},
		{
			name: "legacy decided by first element",
			raw:  `["d1",{"defenseId":"d2","userId":"u2"},""]`,
			want: []Assignment{{DefenseID: "d1"}, {}},
		},
		{
			name: "legacy keeps empty strings",
			raw:  `["d1",""]`,
			want: []Assignment{{DefenseID: "d1"}, {}},
		},
		{name: "empty string", raw: "", want: []Assignment{}},
		{name: "empty array", raw: "[]", want: []Assignment{}},
		{name: "malformed", raw: `[{"defenseId":`, want: []Assignment{}},
		{name: "not an array", raw: `{"defenseId":"d1"}`, want: []Assignment{}},
		{name: "null", raw: "null", want: []Assignment{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestEncodeAlwaysWritesCurrentFormat(t *testing.T) {
	legacy := Parse(`["d1","d2"]`)
	assert.Equal(t, `[{"defenseId":"d1","userId":""},{"defenseId":"d2","userId":""}]`, Encode(legacy))
	assert.Equal(t, "[]", Encode(nil))

	current := `[{"defenseId":"d1","userId":"u1"},{"defenseId":"d2","userId":""}]`
	assert.Equal(t, current, Encode(Parse(current)))
}

func tower(id, raw string) domain.Tower {
	return domain.Tower{ID: id, DefenseIDs: raw}
}

func TestAdd_CrossTowerUniqueness(t *testing.T) {
	towers := []domain.Tower{
		tower("A", `[{"defenseId":"X","userId":"U"}]`),
		tower("B", `[]`),
	}

	current := []Assignment{}
	got, outcome := Add(current, Assignment{DefenseID: "X", UserID: "U"}, towers, "B")
	assert.Equal(t, RejectedDuplicate, outcome)
	assert.Empty(t, got)

	got, outcome = Add(current, Assignment{DefenseID: "X"}, towers, "B")
	assert.Equal(t, Added, outcome)
	assert.Equal(t, []Assignment{{DefenseID: "X"}}, got)

	got, outcome = Add(current, Assignment{DefenseID: "X", UserID: "V"}, towers, "B")
	assert.Equal(t, Added, outcome)
	assert.Len(t, got, 1)
}

func TestAdd_OwnTowerDoesNotConflict(t *testing.T) {
	towers := []domain.Tower{tower("A", `[{"defenseId":"X","userId":"U"}]`)}

	_, outcome := Add(Parse(towers[0].DefenseIDs), Assignment{DefenseID: "X", UserID: "U"}, towers, "A")
	assert.Equal(t, Added, outcome)
}

func TestAdd_Capacity(t *testing.T) {
	current := []Assignment{}
	var outcome Outcome
	for i := 0; i < MaxPerTower; i++ {
		current, outcome = Add(current, Assignment{DefenseID: "d"}, nil, "A")
		require.Equal(t, Added, outcome)
	}

	full := current
	got, outcome := Add(full, Assignment{DefenseID: "d6", UserID: "u6"}, nil, "A")
	assert.Equal(t, RejectedCapacity, outcome)
	assert.Len(t, got, MaxPerTower)
	assert.Equal(t, full, got)
}

func TestAdd_DoesNotAliasInput(t *testing.T) {
	current := make([]Assignment, 1, 4)
	current[0] = Assignment{DefenseID: "d1"}

	got, _ := Add(current, Assignment{DefenseID: "d2"}, nil, "A")
	got[0].DefenseID = "changed"
	assert.Equal(t, "d1", current[0].DefenseID)
}

func TestRemove(t *testing.T) {
	list := []Assignment{{DefenseID: "a"}, {DefenseID: "b"}, {DefenseID: "c"}}

	assert.Equal(t, []Assignment{{DefenseID: "a"}, {DefenseID: "c"}}, Remove(list, 1))
	assert.Equal(t, list, Remove(list, 3))
	assert.Equal(t, list, Remove(list, -1))
	assert.Len(t, list, 3)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "rejected_capacity", RejectedCapacity.String())
	assert.Equal(t, "rejected_duplicate", RejectedDuplicate.String())
}
