package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siegemap/internal/domain"
	domainerrors "siegemap/internal/errors"
	"siegemap/internal/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTower(t *testing.T, s *Store, mapName, number string) domain.Tower {
	t.Helper()
	tower, err := s.CreateTower(context.Background(), domain.CreateTowerRequest{
		MapName: mapName, TowerNumber: number, Stars: 4, X: 10, Y: 20, Height: 300,
	}, "admin")
	require.NoError(t, err)
	return tower
}

func TestOpen_EnablesForeignKeys(t *testing.T) {
	s := newTestStore(t)

	var fk int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
	assert.NoError(t, s.Ping())
}

func TestCreateTower_DerivesWidth(t *testing.T) {
	s := newTestStore(t)

	tower := createTower(t, s, "nord", "QG")
	assert.Equal(t, 148.0, tower.Width)
	assert.Equal(t, domain.ColorBlue, tower.Color)
	assert.Equal(t, "[]", tower.DefenseIDs)

	got, err := s.GetTower(context.Background(), tower.ID)
	require.NoError(t, err)
	assert.Equal(t, tower.ID, got.ID)
	assert.Equal(t, 148.0, got.Width)
	assert.Equal(t, "admin", got.CreatedBy)
}

func TestListTowers_CreationOrderPerMap(t *testing.T) {
	s := newTestStore(t)
	a := createTower(t, s, "nord", "3")
	b := createTower(t, s, "nord", "1")
	createTower(t, s, "sud", "2")

	towers, err := s.ListTowers(context.Background(), "nord")
	require.NoError(t, err)
	require.Len(t, towers, 2)
	assert.Equal(t, a.ID, towers[0].ID)
	assert.Equal(t, b.ID, towers[1].ID)

	all, err := s.ListTowers(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateTower(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := createTower(t, s, "nord", "1")
	b := createTower(t, s, "nord", "2")
	other := createTower(t, s, "sud", "1")

	saved, err := s.UpdateTower(ctx, a.ID, domain.TowerUpdate{
		TowerNumber: "QG", Stars: 5, Color: domain.ColorRed, DefenseIDs: `["d1"]`,
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"defenseId":"d1","userId":""}]`, saved.DefenseIDs, "legacy input is stored in the current format")
	assert.Equal(t, domain.ColorRed, saved.Color)

	_, err = s.UpdateTower(ctx, a.ID, domain.TowerUpdate{
		TowerNumber: "QG", Stars: 5, DefenseIDs: `[{"defenseId":"d1","userId":"u1"}]`,
	})
	require.NoError(t, err)

	t.Run("pair held by another tower of the map", func(t *testing.T) {
		_, err := s.UpdateTower(ctx, b.ID, domain.TowerUpdate{
			TowerNumber: "2", Stars: 4, DefenseIDs: `[{"defenseId":"d1","userId":"u1"}]`,
		})
		assert.ErrorIs(t, err, domainerrors.ErrConflict)
	})

	t.Run("same pair on another map", func(t *testing.T) {
		_, err := s.UpdateTower(ctx, other.ID, domain.TowerUpdate{
			TowerNumber: "1", Stars: 4, DefenseIDs: `[{"defenseId":"d1","userId":"u1"}]`,
		})
		assert.NoError(t, err)
	})

	t.Run("userless pair is never a conflict", func(t *testing.T) {
		_, err := s.UpdateTower(ctx, b.ID, domain.TowerUpdate{
			TowerNumber: "2", Stars: 4, DefenseIDs: `[{"defenseId":"d1","userId":""}]`,
		})
		assert.NoError(t, err)
	})

	t.Run("more than five", func(t *testing.T) {
		_, err := s.UpdateTower(ctx, b.ID, domain.TowerUpdate{
			TowerNumber: "2", Stars: 4, DefenseIDs: `["a","b","c","d","e","f"]`,
		})
		assert.ErrorIs(t, err, domainerrors.ErrValidation)
	})

	t.Run("malformed list", func(t *testing.T) {
		_, err := s.UpdateTower(ctx, b.ID, domain.TowerUpdate{TowerNumber: "2", Stars: 4, DefenseIDs: `{"x":1}`})
		assert.ErrorIs(t, err, domainerrors.ErrValidation)
	})

	t.Run("missing list leaves assignments alone", func(t *testing.T) {
		_, err := s.UpdateTower(ctx, a.ID, domain.TowerUpdate{TowerNumber: "QG", Stars: 5})
		assert.ErrorIs(t, err, domainerrors.ErrValidation)

		kept, err := s.GetTower(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, `[{"defenseId":"d1","userId":"u1"}]`, kept.DefenseIDs)
	})

	t.Run("explicit empty list clears", func(t *testing.T) {
		saved, err := s.UpdateTower(ctx, other.ID, domain.TowerUpdate{TowerNumber: "1", Stars: 4, DefenseIDs: "[]"})
		require.NoError(t, err)
		assert.Equal(t, "[]", saved.DefenseIDs)
	})

	t.Run("unknown tower", func(t *testing.T) {
		_, err := s.UpdateTower(ctx, "twr_missing", domain.TowerUpdate{TowerNumber: "2", Stars: 4, DefenseIDs: "[]"})
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})
}

func TestUpdateGeometry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tower := createTower(t, s, "nord", "1")

	x, y := 150.0, 120.0
	moved, err := s.UpdateGeometry(ctx, tower.ID, domain.GeometryUpdate{X: &x, Y: &y})
	require.NoError(t, err)
	assert.Equal(t, 150.0, moved.X)
	assert.Equal(t, 120.0, moved.Y)
	assert.Equal(t, 300.0, moved.Height)

	h := 60.0
	resized, err := s.UpdateGeometry(ctx, tower.ID, domain.GeometryUpdate{Height: &h})
	require.NoError(t, err)
	assert.Equal(t, 76.0, resized.Width)
	assert.Equal(t, 150.0, resized.X)
}

func TestDeleteTower(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tower := createTower(t, s, "nord", "1")

	require.NoError(t, s.DeleteTower(ctx, tower.ID))
	assert.ErrorIs(t, s.DeleteTower(ctx, tower.ID), domainerrors.ErrNotFound)
	_, err := s.GetTower(ctx, tower.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDefensesUsersAndEligibility(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	d1, err := s.CreateDefense(ctx, domain.CreateDefenseRequest{LeaderMonster: "Lushen", Monster2: "Lushen", Monster3: "Chasun"})
	require.NoError(t, err)
	d2, err := s.CreateDefense(ctx, domain.CreateDefenseRequest{LeaderMonster: "Véromos", Monster2: "Chasun", Monster3: "Bastet", Tags: []string{"speed"}})
	require.NoError(t, err)

	name := "Alice"
	alice, err := s.CreateUser(ctx, domain.CreateUserRequest{Name: &name, Identifier: "alice#1"})
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, domain.CreateUserRequest{Identifier: "bob#2"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, domain.CreateUserRequest{Identifier: "bob#2"})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	got, err := s.GetDefense(ctx, d2.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"speed"}, got.Tags)

	_, err = s.GetDefense(ctx, "def_missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].DisplayName())
	assert.Nil(t, users[1].Name)

	require.NoError(t, s.SetEligibleUsers(ctx, d1.ID, []string{alice.ID, bob.ID}))
	require.NoError(t, s.SetEligibleUsers(ctx, d2.ID, []string{bob.ID}))
	require.NoError(t, s.SetEligibleUsers(ctx, d1.ID, []string{alice.ID}))

	assert.ErrorIs(t, s.SetEligibleUsers(ctx, d1.ID, []string{"usr_missing"}), domainerrors.ErrValidation)
	assert.ErrorIs(t, s.SetEligibleUsers(ctx, "def_missing", nil), domainerrors.ErrNotFound)

	entries, err := s.ListEligibleAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, d1.ID, entries[0].DefenseID)
	require.Len(t, entries[0].Users, 1)
	assert.Equal(t, alice.ID, entries[0].Users[0].ID)
	assert.Equal(t, bob.ID, entries[1].Users[0].ID)
}
