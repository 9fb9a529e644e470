// Copyright 2026 The AcademyKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/academykit/academykit/internal/identity"
	"github.com/academykit/academykit/internal/rbac"
	"github.com/academykit/academykit/internal/scope"
)

// UserStore implements identity.Repository bound to a scope. Every read
// conjoins the academy predicate and every write forces the academy id;
// a handle scoped to academy T can neither observe nor produce a row
// belonging to any other academy.
type UserStore struct {
	q  Querier
	sc scope.Scope
}

// NewUserStore creates a user store bound to the given scope.
func NewUserStore(q Querier, sc scope.Scope) *UserStore {
	return &UserStore{q: q, sc: sc}
}

// Create inserts a user. Under a bound scope the entity's academy id is
// overwritten with the scope's academy before the write.
func (s *UserStore) Create(ctx context.Context, u *identity.User) error {
	scope.Bind(s.sc, u)

	_, err := s.q.Exec(ctx, `
		INSERT INTO users (id, academy_id, role, name, email, password_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.AcademyID, string(u.Role), u.Name, u.Email, u.PasswordHash, u.Status, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user visible to the scope. A row in another academy
// reads as absent.
func (s *UserStore) GetByID(ctx context.Context, id string) (*identity.User, error) {
	return s.get(ctx, `
		SELECT id, academy_id, role, name, email, password_hash, status, created_at, updated_at
		FROM users
		WHERE id = $1 AND ($2::uuid IS NULL OR academy_id = $2)
	`, id)
}

// GetByEmail retrieves a user by email within the scope.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	return s.get(ctx, `
		SELECT id, academy_id, role, name, email, password_hash, status, created_at, updated_at
		FROM users
		WHERE email = $1 AND ($2::uuid IS NULL OR academy_id = $2)
	`, email)
}

func (s *UserStore) get(ctx context.Context, query, arg string) (*identity.User, error) {
	var u identity.User
	var role string
	err := s.q.QueryRow(ctx, query, arg, scopeParam(s.sc)).Scan(
		&u.ID, &u.AcademyID, &role, &u.Name, &u.Email, &u.PasswordHash, &u.Status,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.Role = rbac.Role(role)
	return &u, nil
}

// List returns users visible to the scope, newest first.
func (s *UserStore) List(ctx context.Context, limit, offset int) ([]*identity.User, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, academy_id, role, name, email, password_hash, status, created_at, updated_at
		FROM users
		WHERE ($1::uuid IS NULL OR academy_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, scopeParam(s.sc), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []*identity.User
	for rows.Next() {
		var u identity.User
		var role string
		if err := rows.Scan(&u.ID, &u.AcademyID, &role, &u.Name, &u.Email, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Role = rbac.Role(role)
		out = append(out, &u)
	}
	return out, rows.Err()
}

// Update rewrites mutable user fields. The scope predicate in the WHERE
// clause means an update aimed at a foreign row affects nothing and reads
// as not found.
func (s *UserStore) Update(ctx context.Context, u *identity.User) error {
	scope.Bind(s.sc, u)

	result, err := s.q.Exec(ctx, `
		UPDATE users SET name = $2, email = $3, updated_at = $4
		WHERE id = $1 AND ($5::uuid IS NULL OR academy_id = $5)
	`, u.ID, u.Name, u.Email, time.Now(), scopeParam(s.sc))
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// SetStatus flips a user's status.
func (s *UserStore) SetStatus(ctx context.Context, id, status string) error {
	result, err := s.q.Exec(ctx, `
		UPDATE users SET status = $2, updated_at = $3
		WHERE id = $1 AND ($4::uuid IS NULL OR academy_id = $4)
	`, id, status, time.Now(), scopeParam(s.sc))
	if err != nil {
		return fmt.Errorf("failed to set user status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the stored credential hash.
func (s *UserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := s.q.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = $3
		WHERE id = $1 AND ($4::uuid IS NULL OR academy_id = $4)
	`, id, passwordHash, time.Now(), scopeParam(s.sc))
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}
