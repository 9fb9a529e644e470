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

package invite

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/academykit/academykit/internal/audit"
	"github.com/academykit/academykit/internal/id"
	"github.com/academykit/academykit/internal/identity"
	"github.com/academykit/academykit/internal/rbac"
)

const rawTokenBytes = 32

// Service manages the invite lifecycle. It holds an unscoped repository:
// redemption is a public flow whose academy comes from the invite row
// itself, never from the redeeming request.
type Service struct {
	repo     Repository
	identity *identity.Service
	recorder audit.Recorder
	lifetime time.Duration
}

// NewService creates a new invite service
func NewService(repo Repository, identitySvc *identity.Service, recorder audit.Recorder, lifetime time.Duration) *Service {
	return &Service{
		repo:     repo,
		identity: identitySvc,
		recorder: recorder,
		lifetime: lifetime,
	}
}

// Fingerprint derives the stored lookup key from a raw invite token.
func Fingerprint(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// Create issues an invite for a role within an academy and returns it with
// the raw token. Only academy-bound roles can be granted by invite.
func (s *Service) Create(ctx context.Context, academyID string, role rbac.Role, createdBy string) (*Invite, string, error) {
	if academyID == "" {
		return nil, "", fmt.Errorf("academy id is required")
	}
	if !role.Invitable() {
		return nil, "", ErrRoleNotInvitable
	}

	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, "", fmt.Errorf("failed to generate invite token: %w", err)
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)

	now := time.Now()
	inv := &Invite{
		ID:          id.NewUUID(),
		AcademyID:   &academyID,
		Role:        role,
		Fingerprint: Fingerprint(raw),
		ExpiresAt:   now.Add(s.lifetime),
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, "", fmt.Errorf("failed to create invite: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorUserID: &createdBy,
		AcademyID:   &academyID,
		Action:      audit.ActionInviteCreate,
		TargetType:  strPtr("invite"),
		TargetID:    &inv.ID,
		Meta:        map[string]any{"role": string(role)},
	})

	return inv, raw, nil
}

// Redeem consumes an invite and creates the invited account. Expiry is
// checked before use: an expired invite fails with ErrInviteExpired even if
// never used, and an already-used invite fails with ErrInviteUsed. Between
// concurrent attempts on the same invite the store's compare-and-set picks
// exactly one winner; the user row is only created for the winner.
func (s *Service) Redeem(ctx context.Context, rawToken, name, email, password string) (*identity.User, error) {
	inv, err := s.repo.GetByFingerprint(ctx, Fingerprint(rawToken))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if inv.Expired(now) {
		return nil, ErrInviteExpired
	}
	if inv.Used() {
		return nil, ErrInviteUsed
	}

	// Account fields are validated before the invite is touched: a weak
	// password or taken email must not consume the single use.
	if err := s.identity.ValidateNew(ctx, name, email, password); err != nil {
		return nil, err
	}

	// Claim the invite. Losing the race here means another request already
	// consumed it; no user row is created in that case.
	if err := s.repo.Redeem(ctx, inv.ID, now); err != nil {
		return nil, err
	}

	user, err := s.identity.Create(ctx, inv.AcademyID, inv.Role, name, email, password)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorUserID: &user.ID,
		AcademyID:   inv.AcademyID,
		Action:      audit.ActionInviteRedeem,
		TargetType:  strPtr("user"),
		TargetID:    &user.ID,
		Meta:        map[string]any{"invite_id": inv.ID, "role": string(inv.Role)},
	})

	return user, nil
}

// CleanupExpired deletes invites that expired without being used.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, time.Now())
}

func strPtr(s string) *string { return &s }
