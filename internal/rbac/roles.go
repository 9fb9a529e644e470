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

// Package rbac defines the closed set of roles recognized by the platform.
//
// The set is deliberately small and closed: every role-branching decision
// (token verification, tenant resolution, route guarding) matches on it
// exhaustively, so introducing a new role forces every call site to be
// revisited instead of silently falling through.
package rbac

import (
	"errors"
	"fmt"
)

// Role identifies the privilege level of an authenticated user.
type Role string

const (
	// RoleGlobalAdmin operates across all academies. It is the single role
	// exempt from academy scoping and carries no academy id.
	RoleGlobalAdmin Role = "global_admin"

	// RoleAcademyAdmin administers exactly one academy.
	RoleAcademyAdmin Role = "academy_admin"

	// RoleStaff is a teacher or office employee of one academy.
	RoleStaff Role = "staff"

	// RoleStudent is an end-user account within one academy.
	RoleStudent Role = "student"
)

// ErrUnknownRole is returned for a role string outside the closed set.
var ErrUnknownRole = errors.New("unknown role")

// Parse validates a role string against the closed set.
func Parse(s string) (Role, error) {
	switch Role(s) {
	case RoleGlobalAdmin, RoleAcademyAdmin, RoleStaff, RoleStudent:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Valid reports whether r is a member of the closed set.
func (r Role) Valid() bool {
	_, err := Parse(string(r))
	return err == nil
}

// Global reports whether r is exempt from academy scoping.
func (r Role) Global() bool {
	return r == RoleGlobalAdmin
}

// Invitable reports whether r may be granted through an invite.
// Global admin accounts are never created by invitation.
func (r Role) Invitable() bool {
	switch r {
	case RoleAcademyAdmin, RoleStaff:
		return true
	case RoleGlobalAdmin, RoleStudent:
		return false
	default:
		return false
	}
}
