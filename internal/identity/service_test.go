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

package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academykit/academykit/internal/rbac"
)

// memUserRepo is a simple in-memory implementation of Repository
type memUserRepo struct {
	users map[string]*User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*User)}
}

func (m *memUserRepo) Create(_ context.Context, u *User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memUserRepo) List(_ context.Context, limit, offset int) ([]*User, error) {
	var out []*User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) SetStatus(_ context.Context, id, status string) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func testHasher() *PasswordHasher {
	// Light parameters keep the suite fast; production values come from config.
	return NewPasswordHasher(1024, 1, 1, 16, 32)
}

func newTestService() (*Service, *memUserRepo) {
	repo := newMemUserRepo()
	return NewService(repo, testHasher()), repo
}

func TestCreate_RoleAcademyCoupling(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	aid := "academy-a"

	_, err := svc.Create(ctx, nil, rbac.RoleStaff, "Staff", "staff@example.com", "long-enough-pw")
	assert.Error(t, err)

	_, err = svc.Create(ctx, &aid, rbac.RoleGlobalAdmin, "Admin", "admin@example.com", "long-enough-pw")
	assert.Error(t, err)

	admin, err := svc.Create(ctx, nil, rbac.RoleGlobalAdmin, "Admin", "admin@example.com", "long-enough-pw")
	require.NoError(t, err)
	assert.Nil(t, admin.AcademyID)

	staff, err := svc.Create(ctx, &aid, rbac.RoleStaff, "Staff", "staff@example.com", "long-enough-pw")
	require.NoError(t, err)
	require.NotNil(t, staff.AcademyID)
	assert.Equal(t, "academy-a", *staff.AcademyID)
}

func TestCreate_WeakPassword(t *testing.T) {
	svc, _ := newTestService()
	aid := "academy-a"

	_, err := svc.Create(context.Background(), &aid, rbac.RoleStaff, "Staff", "staff@example.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestCreate_EmailTaken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	aid := "academy-a"

	_, err := svc.Create(ctx, &aid, rbac.RoleStaff, "One", "dup@example.com", "long-enough-pw")
	require.NoError(t, err)

	// Same address in a different academy still conflicts: email is unique
	// platform-wide because login is not academy-qualified.
	bid := "academy-b"
	_, err = svc.Create(ctx, &bid, rbac.RoleStaff, "Two", "DUP@example.com", "long-enough-pw")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreate_PasswordIsHashed(t *testing.T) {
	svc, repo := newTestService()
	aid := "academy-a"

	user, err := svc.Create(context.Background(), &aid, rbac.RoleStudent, "S", "s@example.com", "long-enough-pw")
	require.NoError(t, err)

	stored := repo.users[user.ID]
	assert.NotEqual(t, "long-enough-pw", stored.PasswordHash)
	assert.Contains(t, stored.PasswordHash, "$argon2id$")
}

// TestPurpose: Validates that authentication failures are indistinguishable
// to the caller regardless of cause.
// Scope: Unit Test
// Security: Account Enumeration Prevention (CWE-203)
// Expected: Unknown email, wrong password and suspended account all return
// ErrInvalidCredentials.
// Test Case ID: IDN-01
func TestAuthenticate_FailuresCollapse(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	aid := "academy-a"

	user, err := svc.Create(ctx, &aid, rbac.RoleStaff, "Staff", "staff@example.com", "long-enough-pw")
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "STAFF@example.com", "long-enough-pw")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "unknown@example.com", "long-enough-pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "staff@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, repo.SetStatus(ctx, user.ID, StatusSuspended))
	_, err = svc.Authenticate(ctx, "staff@example.com", "long-enough-pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
