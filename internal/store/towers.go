package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"siegemap/internal/assignment"
	"siegemap/internal/domain"
	domainerrors "siegemap/internal/errors"
	"siegemap/internal/geometry"
	"siegemap/internal/id"
)

const towerColumns = `id, map_name, tower_number, stars, color, x, y, width, height, defense_ids, created_by, created_at, updated_at`

func scanTower(row scanner) (domain.Tower, error) {
	var (
		t                    domain.Tower
		createdAt, updatedAt string
	)
	err := row.Scan(&t.ID, &t.MapName, &t.TowerNumber, &t.Stars, &t.Color, &t.X, &t.Y,
		&t.Width, &t.Height, &t.DefenseIDs, &t.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return domain.Tower{}, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Tower{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Tower{}, err
	}
	return t, nil
}

// CreateTower inserts a tower with an empty assignment list. Width is
// derived from height.
func (s *Store) CreateTower(ctx context.Context, req domain.CreateTowerRequest, createdBy string) (domain.Tower, error) {
	towerID, err := id.Generate(id.PrefixTower)
	if err != nil {
		return domain.Tower{}, err
	}
	now := s.now()
	rect := geometry.NewRect(req.X, req.Y, req.Height)
	t := domain.Tower{
		ID:          towerID,
		MapName:     req.MapName,
		TowerNumber: req.TowerNumber,
		Stars:       req.Stars,
		Color:       req.Color.OrDefault(),
		X:           rect.X,
		Y:           rect.Y,
		Width:       rect.Width,
		Height:      rect.Height,
		DefenseIDs:  "[]",
		CreatedBy:   createdBy,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO towers (`+towerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.MapName, t.TowerNumber, t.Stars, t.Color, t.X, t.Y, t.Width, t.Height,
		t.DefenseIDs, t.CreatedBy, formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return domain.Tower{}, fmt.Errorf("insert tower: %w", err)
	}
	return t, nil
}

// GetTower returns one tower or a not-found error.
func (s *Store) GetTower(ctx context.Context, towerID string) (domain.Tower, error) {
	return getTower(ctx, s.db, towerID)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func getTower(ctx context.Context, q queryer, towerID string) (domain.Tower, error) {
	row := q.QueryRowContext(ctx, `SELECT `+towerColumns+` FROM towers WHERE id = ?`, towerID)
	t, err := scanTower(row)
	if err == sql.ErrNoRows {
		return domain.Tower{}, domainerrors.NotFound("Tour introuvable")
	}
	if err != nil {
		return domain.Tower{}, fmt.Errorf("get tower: %w", err)
	}
	return t, nil
}

// ListTowers returns the towers of mapName in creation order, or every tower
// when mapName is empty.
func (s *Store) ListTowers(ctx context.Context, mapName string) ([]domain.Tower, error) {
	return listTowers(ctx, s.db, mapName)
}

func listTowers(ctx context.Context, q queryer, mapName string) ([]domain.Tower, error) {
	query := `SELECT ` + towerColumns + ` FROM towers`
	var args []any
	if mapName != "" {
		query += ` WHERE map_name = ?`
		args = append(args, mapName)
	}
	query += ` ORDER BY rowid`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list towers: %w", err)
	}
	defer rows.Close()

	towers := []domain.Tower{}
	for rows.Next() {
		t, err := scanTower(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tower: %w", err)
		}
		towers = append(towers, t)
	}
	return towers, rows.Err()
}

// decodeAssignments validates a submitted defenseIds value. Unlike reads,
// writes reject a missing or malformed list instead of treating it as empty:
// clearing a tower takes an explicit "[]".
func decodeAssignments(raw string) ([]assignment.Assignment, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domainerrors.Validation("defenseIds est requis")
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, domainerrors.Validation("defenseIds doit être un tableau JSON")
	}
	return assignment.Parse(raw), nil
}

// checkAssignments enforces capacity and map-wide uniqueness of
// (defense, user) pairs against the other towers of the same map.
func checkAssignments(list []assignment.Assignment, self domain.Tower, mapTowers []domain.Tower) error {
	if len(list) > assignment.MaxPerTower {
		return domainerrors.Validation(fmt.Sprintf("Une tour ne peut pas avoir plus de %d défenses", assignment.MaxPerTower))
	}

	seen := make(map[assignment.Assignment]struct{}, len(list))
	for _, a := range list {
		if !a.HasUser() {
			continue
		}
		if _, dup := seen[a]; dup {
			return domainerrors.Conflict("Cette défense est déjà assignée à ce joueur sur cette tour")
		}
		seen[a] = struct{}{}
	}

	idx := assignment.NewIndex(mapTowers)
	for _, a := range list {
		if a.HasUser() && idx.TakenElsewhere(a, self.ID) {
			return domainerrors.Conflict("Cette défense est déjà assignée à ce joueur sur une autre tour")
		}
	}
	return nil
}

// UpdateTower replaces number, stars, color and assignments. The stored
// assignment list is always written in the current object format. Concurrent
// saves of the same tower are last-write-wins.
func (s *Store) UpdateTower(ctx context.Context, towerID string, update domain.TowerUpdate) (domain.Tower, error) {
	list, err := decodeAssignments(update.DefenseIDs)
	if err != nil {
		return domain.Tower{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Tower{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := getTower(ctx, tx, towerID)
	if err != nil {
		return domain.Tower{}, err
	}
	mapTowers, err := listTowers(ctx, tx, current.MapName)
	if err != nil {
		return domain.Tower{}, err
	}
	if err := checkAssignments(list, current, mapTowers); err != nil {
		return domain.Tower{}, err
	}

	current.TowerNumber = update.TowerNumber
	current.Stars = update.Stars
	current.Color = update.Color.OrDefault()
	current.DefenseIDs = assignment.Encode(list)
	current.UpdatedAt = s.now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE towers SET tower_number = ?, stars = ?, color = ?, defense_ids = ?, updated_at = ?
		WHERE id = ?`,
		current.TowerNumber, current.Stars, current.Color, current.DefenseIDs, formatTime(current.UpdatedAt), towerID)
	if err != nil {
		return domain.Tower{}, fmt.Errorf("update tower: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Tower{}, fmt.Errorf("commit: %w", err)
	}
	return current, nil
}

// UpdateGeometry moves or resizes a tower. Width is recomputed from height.
func (s *Store) UpdateGeometry(ctx context.Context, towerID string, update domain.GeometryUpdate) (domain.Tower, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Tower{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	t, err := getTower(ctx, tx, towerID)
	if err != nil {
		return domain.Tower{}, err
	}
	if update.X != nil {
		t.X = *update.X
	}
	if update.Y != nil {
		t.Y = *update.Y
	}
	if update.Height != nil {
		t.Height = *update.Height
	}
	t.Width = geometry.WidthForHeight(t.Height)
	t.UpdatedAt = s.now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE towers SET x = ?, y = ?, width = ?, height = ?, updated_at = ?
		WHERE id = ?`,
		t.X, t.Y, t.Width, t.Height, formatTime(t.UpdatedAt), towerID)
	if err != nil {
		return domain.Tower{}, fmt.Errorf("update geometry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Tower{}, fmt.Errorf("commit: %w", err)
	}
	return t, nil
}

// DeleteTower removes a tower.
func (s *Store) DeleteTower(ctx context.Context, towerID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM towers WHERE id = ?`, towerID)
	if err != nil {
		return fmt.Errorf("delete tower: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domainerrors.NotFound("Tour introuvable")
	}
	return nil
}
