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

	"github.com/academykit/academykit/internal/invite"
	"github.com/academykit/academykit/internal/rbac"
	"github.com/academykit/academykit/internal/scope"
)

const inviteColumns = `id, academy_id, role, fingerprint, expires_at, used_at, created_by, created_at`

// InviteStore implements invite.Repository bound to a scope.
type InviteStore struct {
	q  Querier
	sc scope.Scope
}

// NewInviteStore creates an invite store bound to the given scope.
func NewInviteStore(q Querier, sc scope.Scope) *InviteStore {
	return &InviteStore{q: q, sc: sc}
}

// Create inserts an invite.
func (s *InviteStore) Create(ctx context.Context, inv *invite.Invite) error {
	scope.Bind(s.sc, inv)

	_, err := s.q.Exec(ctx, `
		INSERT INTO invites (`+inviteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		inv.ID, inv.AcademyID, string(inv.Role), inv.Fingerprint,
		inv.ExpiresAt, inv.UsedAt, inv.CreatedBy, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

// GetByFingerprint retrieves an invite by token fingerprint.
func (s *InviteStore) GetByFingerprint(ctx context.Context, fingerprint string) (*invite.Invite, error) {
	return s.get(ctx, `
		SELECT `+inviteColumns+`
		FROM invites
		WHERE fingerprint = $1 AND ($2::uuid IS NULL OR academy_id = $2)
	`, fingerprint)
}

func (s *InviteStore) getByID(ctx context.Context, id string) (*invite.Invite, error) {
	return s.get(ctx, `
		SELECT `+inviteColumns+`
		FROM invites
		WHERE id = $1 AND ($2::uuid IS NULL OR academy_id = $2)
	`, id)
}

func (s *InviteStore) get(ctx context.Context, query, arg string) (*invite.Invite, error) {
	var inv invite.Invite
	var role string
	err := s.q.QueryRow(ctx, query, arg, scopeParam(s.sc)).Scan(
		&inv.ID, &inv.AcademyID, &role, &inv.Fingerprint,
		&inv.ExpiresAt, &inv.UsedAt, &inv.CreatedBy, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invite.ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	inv.Role = rbac.Role(role)
	return &inv, nil
}

// List returns invites visible to the scope, newest first. Invite ids are
// random, so ordering is on created_at.
func (s *InviteStore) List(ctx context.Context, limit, offset int) ([]*invite.Invite, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+inviteColumns+`
		FROM invites
		WHERE ($1::uuid IS NULL OR academy_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, scopeParam(s.sc), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var out []*invite.Invite
	for rows.Next() {
		var inv invite.Invite
		var role string
		if err := rows.Scan(&inv.ID, &inv.AcademyID, &role, &inv.Fingerprint, &inv.ExpiresAt, &inv.UsedAt, &inv.CreatedBy, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		inv.Role = rbac.Role(role)
		out = append(out, &inv)
	}
	return out, rows.Err()
}

// Redeem claims the invite with a compare-and-set on used_at. Concurrent
// redemptions race on the same predicate, so exactly one wins; the loser
// re-reads the row to learn whether it lost to use or to expiry.
func (s *InviteStore) Redeem(ctx context.Context, id string, at time.Time) error {
	result, err := s.q.Exec(ctx, `
		UPDATE invites SET used_at = $2
		WHERE id = $1 AND used_at IS NULL AND expires_at > $2
		  AND ($3::uuid IS NULL OR academy_id = $3)
	`, id, at, scopeParam(s.sc))
	if err != nil {
		return fmt.Errorf("failed to redeem invite: %w", err)
	}
	if result.RowsAffected() == 1 {
		return nil
	}

	inv, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if inv.Used() {
		return invite.ErrInviteUsed
	}
	if inv.Expired(at) {
		return invite.ErrInviteExpired
	}
	return invite.ErrInviteNotFound
}

// DeleteExpired removes unredeemed invites whose expiry passed before the
// cutoff. Redeemed invites are kept for the audit trail.
func (s *InviteStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.q.Exec(ctx, `
		DELETE FROM invites WHERE expires_at < $1 AND used_at IS NULL
	`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invites: %w", err)
	}
	return result.RowsAffected(), nil
}
