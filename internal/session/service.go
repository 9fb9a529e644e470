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
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/academykit/academykit/internal/id"
)

const rawTokenBytes = 32

// Service manages the session lifecycle.
type Service struct {
	repo     Repository
	lifetime time.Duration
}

// NewService creates a new session service
func NewService(repo Repository, lifetime time.Duration) *Service {
	return &Service{
		repo:     repo,
		lifetime: lifetime,
	}
}

// Fingerprint derives the stored lookup key from a raw session token.
func Fingerprint(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// Issue creates a session and returns it with the raw token. The raw token
// leaves this function exactly once; only its fingerprint is persisted.
func (s *Service) Issue(ctx context.Context, userID string, academyID *string, ipAddr, userAgent string) (*Session, string, error) {
	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, "", fmt.Errorf("failed to generate session token: %w", err)
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)

	now := time.Now()
	sess := &Session{
		ID:          id.NewULID(),
		UserID:      userID,
		AcademyID:   academyID,
		Fingerprint: Fingerprint(raw),
		IPAddress:   ipAddr,
		UserAgent:   userAgent,
		ExpiresAt:   now.Add(s.lifetime),
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	return sess, raw, nil
}

// Resolve looks up a session by its raw token and checks it is usable. The
// row is read fresh on every call so that a committed revocation is seen
// immediately; no session state is cached across requests.
func (s *Service) Resolve(ctx context.Context, rawToken string) (*Session, error) {
	if rawToken == "" {
		return nil, ErrSessionNotFound
	}

	sess, err := s.repo.GetByFingerprint(ctx, Fingerprint(rawToken))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if sess.Revoked() {
		return nil, ErrSessionRevoked
	}
	if sess.Expired(now) {
		return nil, ErrSessionExpired
	}

	return sess, nil
}

// Revoke terminates a session. Idempotent: revoking an already-revoked
// session succeeds without touching the original revocation time.
func (s *Service) Revoke(ctx context.Context, sessionID string) error {
	return s.repo.Revoke(ctx, sessionID, time.Now())
}

// RevokeByRawToken terminates the session behind a raw token (logout path).
// An unknown token is not an error: logout is idempotent from the client's
// point of view.
func (s *Service) RevokeByRawToken(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	sess, err := s.repo.GetByFingerprint(ctx, Fingerprint(rawToken))
	if err != nil {
		if err == ErrSessionNotFound {
			return nil
		}
		return err
	}
	return s.repo.Revoke(ctx, sess.ID, time.Now())
}

// ListByUser returns a user's sessions, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Session, error) {
	return s.repo.ListByUser(ctx, userID)
}

// CleanupExpired deletes sessions whose lifetime has elapsed.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, time.Now())
}
