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

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSessionRepo is a simple in-memory implementation of Repository
type memSessionRepo struct {
	sessions map[string]*Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*Session)}
}

func (m *memSessionRepo) Create(_ context.Context, s *Session) error {
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memSessionRepo) GetByID(_ context.Context, id string) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionRepo) GetByFingerprint(_ context.Context, fp string) (*Session, error) {
	for _, s := range m.sessions {
		if s.Fingerprint == fp {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (m *memSessionRepo) ListByUser(_ context.Context, userID string) ([]*Session, error) {
	var out []*Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSessionRepo) Revoke(_ context.Context, id string, at time.Time) error {
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if s.RevokedAt == nil {
		s.RevokedAt = &at
	}
	return nil
}

func (m *memSessionRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for id, s := range m.sessions {
		if s.ExpiresAt.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// TestPurpose: Validates that the raw session token is never persisted,
// only its fingerprint, so a leaked sessions table cannot mint sessions.
// Scope: Unit Test
// Security: Credential Storage (CWE-312)
// Expected: The stored fingerprint differs from the raw token and matches
// its sha256.
// Test Case ID: SES-01
func TestIssue_StoresFingerprintOnly(t *testing.T) {
	repo := newMemSessionRepo()
	svc := NewService(repo, time.Hour)
	aid := "academy-a"

	sess, raw, err := svc.Issue(context.Background(), "user-1", &aid, "10.0.0.1", "test-agent")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	stored := repo.sessions[sess.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, raw, stored.Fingerprint)
	assert.Equal(t, Fingerprint(raw), stored.Fingerprint)
	require.NotNil(t, stored.AcademyID)
	assert.Equal(t, "academy-a", *stored.AcademyID)
}

func TestResolve(t *testing.T) {
	repo := newMemSessionRepo()
	svc := NewService(repo, time.Hour)

	_, raw, err := svc.Issue(context.Background(), "user-1", nil, "", "")
	require.NoError(t, err)

	sess, err := svc.Resolve(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.UserID)

	_, err = svc.Resolve(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResolve_RevokedAndExpired(t *testing.T) {
	repo := newMemSessionRepo()
	svc := NewService(repo, time.Hour)
	ctx := context.Background()

	sess, raw, err := svc.Issue(ctx, "user-1", nil, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, sess.ID))
	_, err = svc.Resolve(ctx, raw)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	// An expired but unrevoked session reports expiry.
	expiredSvc := NewService(repo, -time.Hour)
	_, rawExpired, err := expiredSvc.Issue(ctx, "user-2", nil, "", "")
	require.NoError(t, err)
	_, err = expiredSvc.Resolve(ctx, rawExpired)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

// TestPurpose: Validates that revocation is terminal and idempotent: a
// second revoke succeeds without moving the original revocation time.
// Scope: Unit Test
// Security: Session Termination Semantics
// Expected: RevokedAt is unchanged by a repeated revoke.
// Test Case ID: SES-02
func TestRevoke_Idempotent(t *testing.T) {
	repo := newMemSessionRepo()
	svc := NewService(repo, time.Hour)
	ctx := context.Background()

	sess, _, err := svc.Issue(ctx, "user-1", nil, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, sess.ID))
	first := *repo.sessions[sess.ID].RevokedAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.Revoke(ctx, sess.ID))
	assert.Equal(t, first, *repo.sessions[sess.ID].RevokedAt)
}

func TestRevokeByRawToken_UnknownTokenIsNoop(t *testing.T) {
	repo := newMemSessionRepo()
	svc := NewService(repo, time.Hour)

	assert.NoError(t, svc.RevokeByRawToken(context.Background(), "never-issued"))
	assert.NoError(t, svc.RevokeByRawToken(context.Background(), ""))
}

func TestCleanupExpired(t *testing.T) {
	repo := newMemSessionRepo()
	ctx := context.Background()

	_, _, err := NewService(repo, -time.Hour).Issue(ctx, "user-1", nil, "", "")
	require.NoError(t, err)
	_, _, err = NewService(repo, time.Hour).Issue(ctx, "user-2", nil, "", "")
	require.NoError(t, err)

	n, err := NewService(repo, time.Hour).CleanupExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Len(t, repo.sessions, 1)
}
