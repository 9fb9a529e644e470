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

	"github.com/academykit/academykit/internal/academy"
)

// AcademyStore implements academy.Repository. Academies are tenant-free:
// the store is never scope-bound, and access control happens at the guard.
type AcademyStore struct {
	q Querier
}

// NewAcademyStore creates a new academy store
func NewAcademyStore(q Querier) *AcademyStore {
	return &AcademyStore{q: q}
}

// Create inserts an academy.
func (s *AcademyStore) Create(ctx context.Context, a *academy.Academy) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO academies (id, name, code, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.Name, a.Code, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert academy: %w", err)
	}
	return nil
}

// GetByID retrieves an academy by id.
func (s *AcademyStore) GetByID(ctx context.Context, id string) (*academy.Academy, error) {
	return s.get(ctx, `
		SELECT id, name, code, status, created_at, updated_at
		FROM academies WHERE id = $1
	`, id)
}

// GetByCode retrieves an academy by its short code.
func (s *AcademyStore) GetByCode(ctx context.Context, code string) (*academy.Academy, error) {
	return s.get(ctx, `
		SELECT id, name, code, status, created_at, updated_at
		FROM academies WHERE code = $1
	`, code)
}

func (s *AcademyStore) get(ctx context.Context, query, arg string) (*academy.Academy, error) {
	var a academy.Academy
	err := s.q.QueryRow(ctx, query, arg).Scan(
		&a.ID, &a.Name, &a.Code, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, academy.ErrAcademyNotFound
		}
		return nil, fmt.Errorf("failed to get academy: %w", err)
	}
	return &a, nil
}

// SetStatus flips the academy's administrative status.
func (s *AcademyStore) SetStatus(ctx context.Context, id, status string) error {
	result, err := s.q.Exec(ctx, `
		UPDATE academies SET status = $2, updated_at = $3 WHERE id = $1
	`, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set academy status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return academy.ErrAcademyNotFound
	}
	return nil
}

// List returns academies ordered by creation time.
func (s *AcademyStore) List(ctx context.Context, limit, offset int) ([]*academy.Academy, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, name, code, status, created_at, updated_at
		FROM academies
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list academies: %w", err)
	}
	defer rows.Close()

	var out []*academy.Academy
	for rows.Next() {
		var a academy.Academy
		if err := rows.Scan(&a.ID, &a.Name, &a.Code, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan academy: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
