package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"siegemap/internal/domain"
	domainerrors "siegemap/internal/errors"
	"siegemap/internal/id"
)

// scanUser reads id, name, identifier, after any leading columns in prefix.
func scanUser(row scanner, prefix ...any) (domain.User, error) {
	var (
		u    domain.User
		name sql.NullString
	)
	dest := append(prefix, &u.ID, &name, &u.Identifier)
	if err := row.Scan(dest...); err != nil {
		return domain.User{}, err
	}
	if name.Valid {
		u.Name = &name.String
	}
	return u, nil
}

// CreateUser inserts a user. Identifiers are unique.
func (s *Store) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{ID: userID, Name: req.Name, Identifier: req.Identifier}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, identifier, created_at)
		VALUES (?, ?, ?, ?)`,
		u.ID, u.Name, u.Identifier, formatTime(s.now()))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.User{}, domainerrors.Conflictf("L'identifiant %s existe déjà", req.Identifier)
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// ListUsers returns every user in creation order.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, identifier FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
