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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/academykit/academykit/internal/id"
	"github.com/academykit/academykit/internal/rbac"
)

const minPasswordLength = 10

// Service provides account business logic. It holds an unscoped repository:
// authentication happens before any tenant context exists, and account
// creation binds the academy decided by the caller (invite redemption,
// bootstrap), not by a request body.
type Service struct {
	repo   Repository
	hasher *PasswordHasher
}

// NewService creates a new identity service
func NewService(repo Repository, hasher *PasswordHasher) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
	}
}

// Authenticate checks email and password. Every failure mode (unknown
// email, wrong password, suspended account) collapses into
// ErrInvalidCredentials so the response cannot be used as an oracle.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	if !user.Active() {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Get retrieves a user by id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// ValidateNew checks prospective account fields without creating anything.
// Invite redemption runs it before consuming the invite, so a weak password
// or taken email leaves the invite usable for another attempt.
func (s *Service) ValidateNew(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("valid email is required")
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}

// Create provisions an account. academyID must be nil exactly when the role
// is global admin; that coupling is enforced here and nowhere bypassed.
func (s *Service) Create(ctx context.Context, academyID *string, role rbac.Role, name, email, password string) (*User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if !role.Valid() {
		return nil, rbac.ErrUnknownRole
	}
	if role.Global() != (academyID == nil) {
		return nil, fmt.Errorf("academy id must be set exactly for non-global roles")
	}
	if err := s.ValidateNew(ctx, name, email, password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &User{
		ID:           id.NewUUID(),
		AcademyID:    academyID,
		Role:         role,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// SetPassword replaces a user's password.
func (s *Service) SetPassword(ctx context.Context, userID, password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
