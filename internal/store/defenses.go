package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"siegemap/internal/domain"
	domainerrors "siegemap/internal/errors"
	"siegemap/internal/id"
)

const defenseColumns = `id, leader_monster, monster2, monster3, tags`

func scanDefense(row scanner) (domain.Defense, error) {
	var (
		d    domain.Defense
		tags string
	)
	if err := row.Scan(&d.ID, &d.LeaderMonster, &d.Monster2, &d.Monster3, &tags); err != nil {
		return domain.Defense{}, err
	}
	if err := json.Unmarshal([]byte(tags), &d.Tags); err != nil {
		return domain.Defense{}, fmt.Errorf("decode tags: %w", err)
	}
	return d, nil
}

// CreateDefense inserts a defense.
func (s *Store) CreateDefense(ctx context.Context, req domain.CreateDefenseRequest) (domain.Defense, error) {
	defenseID, err := id.Generate(id.PrefixDefense)
	if err != nil {
		return domain.Defense{}, err
	}
	d := domain.Defense{
		ID:            defenseID,
		LeaderMonster: req.LeaderMonster,
		Monster2:      req.Monster2,
		Monster3:      req.Monster3,
		Tags:          req.Tags,
	}
	tags, err := json.Marshal(append([]string{}, d.Tags...))
	if err != nil {
		return domain.Defense{}, fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO defenses (id, leader_monster, monster2, monster3, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.LeaderMonster, d.Monster2, d.Monster3, string(tags), formatTime(s.now()))
	if err != nil {
		return domain.Defense{}, fmt.Errorf("insert defense: %w", err)
	}
	return d, nil
}

// GetDefense returns one defense or a not-found error.
func (s *Store) GetDefense(ctx context.Context, defenseID string) (domain.Defense, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+defenseColumns+` FROM defenses WHERE id = ?`, defenseID)
	d, err := scanDefense(row)
	if err == sql.ErrNoRows {
		return domain.Defense{}, domainerrors.NotFound("Défense introuvable")
	}
	if err != nil {
		return domain.Defense{}, fmt.Errorf("get defense: %w", err)
	}
	return d, nil
}

// SetEligibleUsers replaces the users allowed to play defenseID.
func (s *Store) SetEligibleUsers(ctx context.Context, defenseID string, userIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM defenses WHERE id = ?`, defenseID).Scan(&exists)
	if err == sql.ErrNoRows {
		return domainerrors.NotFound("Défense introuvable")
	}
	if err != nil {
		return fmt.Errorf("check defense: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM defense_users WHERE defense_id = ?`, defenseID); err != nil {
		return fmt.Errorf("clear eligibility: %w", err)
	}
	for _, userID := range userIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO defense_users (defense_id, user_id) VALUES (?, ?)`, defenseID, userID)
		if err != nil {
			if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
				return domainerrors.Validation("Utilisateur inconnu: " + userID)
			}
			return fmt.Errorf("insert eligibility: %w", err)
		}
	}
	return tx.Commit()
}

// ListEligibleAssignments returns every defense with the users allowed to
// play it, in defense creation order.
func (s *Store) ListEligibleAssignments(ctx context.Context) ([]domain.EligibleAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+defenseColumns+` FROM defenses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list defenses: %w", err)
	}
	out := []domain.EligibleAssignment{}
	pos := make(map[string]int)
	for rows.Next() {
		d, err := scanDefense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan defense: %w", err)
		}
		pos[d.ID] = len(out)
		out = append(out, domain.EligibleAssignment{DefenseID: d.ID, Defense: d, Users: []domain.User{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT du.defense_id, u.id, u.name, u.identifier
		FROM defense_users du JOIN users u ON u.id = du.user_id
		ORDER BY u.rowid`)
	if err != nil {
		return nil, fmt.Errorf("list eligibility: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var defenseID string
		u, err := scanUser(rows, &defenseID)
		if err != nil {
			return nil, fmt.Errorf("scan eligibility: %w", err)
		}
		if i, ok := pos[defenseID]; ok {
			out[i].Users = append(out[i].Users, u)
		}
	}
	return out, rows.Err()
}
