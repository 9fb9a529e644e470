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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academykit/academykit/internal/audit"
	"github.com/academykit/academykit/internal/identity"
	"github.com/academykit/academykit/internal/rbac"
)

// memInviteRepo mirrors the store's compare-and-set redeem semantics in
// memory.
type memInviteRepo struct {
	invites map[string]*Invite
}

func newMemInviteRepo() *memInviteRepo {
	return &memInviteRepo{invites: make(map[string]*Invite)}
}

func (m *memInviteRepo) Create(_ context.Context, i *Invite) error {
	cp := *i
	m.invites[i.ID] = &cp
	return nil
}

func (m *memInviteRepo) GetByFingerprint(_ context.Context, fp string) (*Invite, error) {
	for _, i := range m.invites {
		if i.Fingerprint == fp {
			cp := *i
			return &cp, nil
		}
	}
	return nil, ErrInviteNotFound
}

func (m *memInviteRepo) List(_ context.Context, limit, offset int) ([]*Invite, error) {
	var out []*Invite
	for _, i := range m.invites {
		cp := *i
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memInviteRepo) Redeem(_ context.Context, id string, at time.Time) error {
	i, ok := m.invites[id]
	if !ok {
		return ErrInviteNotFound
	}
	if i.UsedAt != nil {
		return ErrInviteUsed
	}
	if i.Expired(at) {
		return ErrInviteExpired
	}
	i.UsedAt = &at
	return nil
}

func (m *memInviteRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for id, i := range m.invites {
		if i.ExpiresAt.Before(before) && i.UsedAt == nil {
			delete(m.invites, id)
			n++
		}
	}
	return n, nil
}

// memUserRepo is the minimal user store the identity service needs here.
type memUserRepo struct {
	users map[string]*identity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*identity.User)}
}

func (m *memUserRepo) Create(_ context.Context, u *identity.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*identity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*identity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (m *memUserRepo) List(_ context.Context, limit, offset int) ([]*identity.User, error) {
	return nil, nil
}

func (m *memUserRepo) Update(_ context.Context, u *identity.User) error { return nil }

func (m *memUserRepo) SetStatus(_ context.Context, id, status string) error { return nil }

func (m *memUserRepo) UpdatePassword(_ context.Context, id, hash string) error { return nil }

func newTestService(lifetime time.Duration) (*Service, *memInviteRepo, *memUserRepo) {
	invRepo := newMemInviteRepo()
	userRepo := newMemUserRepo()
	identitySvc := identity.NewService(userRepo, identity.NewPasswordHasher(1024, 1, 1, 16, 32))
	return NewService(invRepo, identitySvc, audit.NopRecorder{}, lifetime), invRepo, userRepo
}

func TestCreate_OnlyInvitableRoles(t *testing.T) {
	svc, _, _ := newTestService(time.Hour)
	ctx := context.Background()

	for _, role := range []rbac.Role{rbac.RoleGlobalAdmin, rbac.RoleStudent} {
		_, _, err := svc.Create(ctx, "academy-a", role, "creator-1")
		assert.ErrorIs(t, err, ErrRoleNotInvitable, string(role))
	}

	inv, raw, err := svc.Create(ctx, "academy-a", rbac.RoleStaff, "creator-1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, Fingerprint(raw), inv.Fingerprint)
	assert.NotEqual(t, raw, inv.Fingerprint)
}

// TestPurpose: Validates that the redeemed account lands in the invite's
// academy with the invite's role, ignoring anything the redeeming request
// could claim about either.
// Scope: Unit Test
// Security: Invitation Scope Binding
// Expected: User is created with the invite's academy id and role; the
// invite is terminally used afterwards.
// Test Case ID: INV-01
func TestRedeem(t *testing.T) {
	svc, invRepo, userRepo := newTestService(time.Hour)
	ctx := context.Background()

	inv, raw, err := svc.Create(ctx, "academy-a", rbac.RoleAcademyAdmin, "creator-1")
	require.NoError(t, err)

	user, err := svc.Redeem(ctx, raw, "New Admin", "new@example.com", "long-enough-pw")
	require.NoError(t, err)
	require.NotNil(t, user.AcademyID)
	assert.Equal(t, "academy-a", *user.AcademyID)
	assert.Equal(t, rbac.RoleAcademyAdmin, user.Role)
	assert.NotNil(t, invRepo.invites[inv.ID].UsedAt)
	assert.Len(t, userRepo.users, 1)

	// Second redemption conflicts and creates nothing.
	_, err = svc.Redeem(ctx, raw, "Other", "other@example.com", "long-enough-pw")
	assert.ErrorIs(t, err, ErrInviteUsed)
	assert.Len(t, userRepo.users, 1)
}

func TestRedeem_Expired(t *testing.T) {
	svc, _, userRepo := newTestService(-time.Hour)
	ctx := context.Background()

	_, raw, err := svc.Create(ctx, "academy-a", rbac.RoleStaff, "creator-1")
	require.NoError(t, err)

	// Expired wins over unused: the invite was never redeemed, yet the
	// outcome is expiry, not availability.
	_, err = svc.Redeem(ctx, raw, "Late", "late@example.com", "long-enough-pw")
	assert.ErrorIs(t, err, ErrInviteExpired)
	assert.Empty(t, userRepo.users)
}

// TestPurpose: Validates that a redemption rejected on account validation
// does not consume the invite's single use.
// Scope: Unit Test
// Security: Invite Use Preservation
// Expected: A weak password or taken email fails before the claim; the
// invite stays unused and a later valid redemption succeeds.
// Test Case ID: INV-02
func TestRedeem_ValidationFailureLeavesInviteUnused(t *testing.T) {
	svc, invRepo, userRepo := newTestService(time.Hour)
	ctx := context.Background()

	_, err := svc.identity.Create(ctx, strPtr("academy-a"), rbac.RoleStaff, "Existing", "taken@example.com", "long-enough-pw")
	require.NoError(t, err)

	inv, raw, err := svc.Create(ctx, "academy-a", rbac.RoleStaff, "creator-1")
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, raw, "New Staff", "new@example.com", "short")
	assert.ErrorIs(t, err, identity.ErrWeakPassword)
	assert.Nil(t, invRepo.invites[inv.ID].UsedAt)

	_, err = svc.Redeem(ctx, raw, "New Staff", "taken@example.com", "long-enough-pw")
	assert.ErrorIs(t, err, identity.ErrEmailTaken)
	assert.Nil(t, invRepo.invites[inv.ID].UsedAt)
	assert.Len(t, userRepo.users, 1)

	_, err = svc.Redeem(ctx, raw, "New Staff", "new@example.com", "long-enough-pw")
	require.NoError(t, err)
	assert.NotNil(t, invRepo.invites[inv.ID].UsedAt)
}

func TestRedeem_UnknownToken(t *testing.T) {
	svc, _, _ := newTestService(time.Hour)

	_, err := svc.Redeem(context.Background(), "never-issued", "X", "x@example.com", "long-enough-pw")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestRedeem_LosingTheRaceCreatesNoUser(t *testing.T) {
	svc, invRepo, userRepo := newTestService(time.Hour)
	ctx := context.Background()

	inv, raw, err := svc.Create(ctx, "academy-a", rbac.RoleStaff, "creator-1")
	require.NoError(t, err)

	// Simulate a concurrent winner between the read and the claim.
	now := time.Now()
	invRepo.invites[inv.ID].UsedAt = &now

	_, err = svc.Redeem(ctx, raw, "Loser", "loser@example.com", "long-enough-pw")
	assert.Error(t, err)
	assert.Empty(t, userRepo.users)
}

func TestCleanupExpired_KeepsRedeemed(t *testing.T) {
	svc, invRepo, _ := newTestService(time.Hour)
	ctx := context.Background()

	inv, raw, err := svc.Create(ctx, "academy-a", rbac.RoleStaff, "creator-1")
	require.NoError(t, err)
	_, err = svc.Redeem(ctx, raw, "User", "u@example.com", "long-enough-pw")
	require.NoError(t, err)

	// Force both invites past expiry; only the unused one is pruned.
	expired := time.Now().Add(-time.Minute)
	invRepo.invites[inv.ID].ExpiresAt = expired
	unused, _, err := svc.Create(ctx, "academy-a", rbac.RoleStaff, "creator-1")
	require.NoError(t, err)
	invRepo.invites[unused.ID].ExpiresAt = expired

	n, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Contains(t, invRepo.invites, inv.ID)
}
