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
	"time"

	"github.com/academykit/academykit/internal/rbac"
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password does not meet security requirements")
)

// Status constants. Deactivation is a status flip, never a delete.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// User represents an account. AcademyID is nil only for global admins; a
// user belongs to at most one academy.
type User struct {
	ID           string     `json:"id"`
	AcademyID    *string    `json:"academy_id,omitempty"`
	Role         rbac.Role  `json:"role"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AcademyRef implements scope.Owned.
func (u *User) AcademyRef() *string { return u.AcademyID }

// BindAcademy implements scope.Owned.
func (u *User) BindAcademy(id string) { u.AcademyID = &id }

// Active reports whether the account may authenticate.
func (u *User) Active() bool {
	return u.Status == StatusActive
}

// Repository defines the interface for user persistence. Implementations
// are constructed bound to a scope; every method conjoins the academy
// predicate when the scope is not global.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, error)
	Update(ctx context.Context, u *User) error
	SetStatus(ctx context.Context, id, status string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
