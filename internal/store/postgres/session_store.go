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

	"github.com/academykit/academykit/internal/scope"
	"github.com/academykit/academykit/internal/session"
)

const sessionColumns = `id, user_id, academy_id, fingerprint, ip_address, user_agent, expires_at, created_at, revoked_at`

// SessionStore implements session.Repository bound to a scope.
type SessionStore struct {
	q  Querier
	sc scope.Scope
}

// NewSessionStore creates a session store bound to the given scope.
func NewSessionStore(q Querier, sc scope.Scope) *SessionStore {
	return &SessionStore{q: q, sc: sc}
}

// Create inserts a session.
func (s *SessionStore) Create(ctx context.Context, sess *session.Session) error {
	scope.Bind(s.sc, sess)

	_, err := s.q.Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		sess.ID, sess.UserID, sess.AcademyID, sess.Fingerprint, sess.IPAddress,
		sess.UserAgent, sess.ExpiresAt, sess.CreatedAt, sess.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session visible to the scope.
func (s *SessionStore) GetByID(ctx context.Context, id string) (*session.Session, error) {
	return s.get(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE id = $1 AND ($2::uuid IS NULL OR academy_id = $2)
	`, id)
}

// GetByFingerprint retrieves a session by token fingerprint.
func (s *SessionStore) GetByFingerprint(ctx context.Context, fingerprint string) (*session.Session, error) {
	return s.get(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE fingerprint = $1 AND ($2::uuid IS NULL OR academy_id = $2)
	`, fingerprint)
}

func (s *SessionStore) get(ctx context.Context, query, arg string) (*session.Session, error) {
	var sess session.Session
	err := s.q.QueryRow(ctx, query, arg, scopeParam(s.sc)).Scan(
		&sess.ID, &sess.UserID, &sess.AcademyID, &sess.Fingerprint, &sess.IPAddress,
		&sess.UserAgent, &sess.ExpiresAt, &sess.CreatedAt, &sess.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &sess, nil
}

// ListByUser returns a user's sessions visible to the scope, newest first.
// Session ids are ULIDs, so ordering by id is chronological.
func (s *SessionStore) ListByUser(ctx context.Context, userID string) ([]*session.Session, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE user_id = $1 AND ($2::uuid IS NULL OR academy_id = $2)
		ORDER BY id DESC
	`, userID, scopeParam(s.sc))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []*session.Session
	for rows.Next() {
		var sess session.Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.AcademyID, &sess.Fingerprint, &sess.IPAddress, &sess.UserAgent, &sess.ExpiresAt, &sess.CreatedAt, &sess.RevokedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, &sess)
	}
	return out, rows.Err()
}

// Revoke sets revoked_at if unset. COALESCE keeps the first revocation
// time, making a second revoke a no-op rather than an error or a rewrite.
func (s *SessionStore) Revoke(ctx context.Context, id string, at time.Time) error {
	result, err := s.q.Exec(ctx, `
		UPDATE sessions SET revoked_at = COALESCE(revoked_at, $2)
		WHERE id = $1 AND ($3::uuid IS NULL OR academy_id = $3)
	`, id, at, scopeParam(s.sc))
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// DeleteExpired removes sessions whose expiry passed before the cutoff.
func (s *SessionStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.q.Exec(ctx, `
		DELETE FROM sessions WHERE expires_at < $1
	`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
