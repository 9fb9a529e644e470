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

// Package guard is the authorization backbone every handler depends on.
//
// A guarded request passes five strictly sequential steps: credential
// extraction, verification, role check, tenant resolution and the
// suspension gate. Success yields an immutable Grant carrying the verified
// claims, the resolved academy and a scoped store bundle. The Grant is
// passed explicitly down the call chain; no request identity ever lives in
// ambient or global state, so concurrent requests are isolated by
// construction.
package guard

import (
	"context"
	"net/http"
	"slices"

	"github.com/academykit/academykit/internal/academy"
	"github.com/academykit/academykit/internal/observability/logger"
	"github.com/academykit/academykit/internal/rbac"
	"github.com/academykit/academykit/internal/scope"
	"github.com/academykit/academykit/internal/token"
)

// Grant is the result of a successful guard pass. AcademyID mirrors the
// resolved tenant: nil exactly when the claims carry the global role, in
// which case Stores is unscoped.
type Grant struct {
	Claims    *token.Claims
	AcademyID *string
	Scope     scope.Scope
	Stores    Stores
}

// Guard composes credential verification, tenant resolution, the
// suspension gate and the scoped store factory.
type Guard struct {
	tokens    *token.Service
	academies academy.Repository
	stores    StoreFactory
	seclog    *logger.SecurityLogger
}

// New creates a guard.
func New(tokens *token.Service, academies academy.Repository, stores StoreFactory, seclog *logger.SecurityLogger) *Guard {
	return &Guard{
		tokens:    tokens,
		academies: academies,
		stores:    stores,
		seclog:    seclog,
	}
}

// Authorize runs the guard sequence for a request, short-circuiting on the
// first failure. A *Denial error is an expected authorization outcome; any
// other error is an infrastructure fault.
func (g *Guard) Authorize(r *http.Request, allowed ...rbac.Role) (*Grant, error) {
	ctx := r.Context()

	raw := g.tokens.FromRequest(r)
	if raw == "" {
		return nil, g.denied(ctx, nil, denyUnauthenticated())
	}

	claims, err := g.tokens.Verify(raw)
	if err != nil {
		return nil, g.denied(ctx, nil, denyInvalidToken())
	}

	if len(allowed) > 0 && !slices.Contains(allowed, claims.Role) {
		return nil, g.denied(ctx, claims, denyForbidden())
	}

	academyID, err := resolve(claims)
	if err != nil {
		return nil, g.denied(ctx, claims, denyInvalidToken())
	}

	if academyID != nil {
		a, err := g.academies.GetByID(ctx, *academyID)
		if err != nil {
			if err == academy.ErrAcademyNotFound {
				// A claim naming a vanished academy is denied the same
				// way as a suspended one; the distinction is not leaked.
				return nil, g.denied(ctx, claims, denySuspended())
			}
			return nil, err
		}
		if !a.Active() {
			return nil, g.denied(ctx, claims, denySuspended())
		}
	}

	sc := scope.Global()
	if academyID != nil {
		sc = scope.Academy(*academyID)
	}

	return &Grant{
		Claims:    claims,
		AcademyID: academyID,
		Scope:     sc,
		Stores:    g.stores.Scoped(sc),
	}, nil
}

// AuthorizeAcademy additionally requires a non-global caller's resolved
// academy to equal the one named in the path. Global admins are exempt
// from the equality check but must name an academy; their grant is then
// rebound to the named academy so store access stays inside it.
func (g *Guard) AuthorizeAcademy(r *http.Request, pathAcademyID string, allowed ...rbac.Role) (*Grant, error) {
	grant, err := g.Authorize(r, allowed...)
	if err != nil {
		return nil, err
	}

	switch {
	case grant.Claims.Role.Global():
		if pathAcademyID == "" {
			return nil, g.denied(r.Context(), grant.Claims, denyAcademyRequired())
		}
		grant.Scope = scope.Academy(pathAcademyID)
		grant.Stores = g.stores.Scoped(grant.Scope)
	case grant.AcademyID == nil || *grant.AcademyID != pathAcademyID:
		return nil, g.denied(r.Context(), grant.Claims, denyForbidden())
	}

	return grant, nil
}

// resolve derives the effective academy from verified claims. The global
// role is the single path yielding a nil academy; a non-global claim
// missing its academy is a configuration error and fails closed.
func resolve(claims *token.Claims) (*string, error) {
	// Exhaustive over the closed role set.
	switch claims.Role {
	case rbac.RoleGlobalAdmin:
		return nil, nil
	case rbac.RoleAcademyAdmin, rbac.RoleStaff, rbac.RoleStudent:
		if claims.AcademyID == nil || *claims.AcademyID == "" {
			return nil, token.ErrInvalidCredential
		}
		return claims.AcademyID, nil
	default:
		return nil, token.ErrInvalidCredential
	}
}

func (g *Guard) denied(ctx context.Context, claims *token.Claims, d *Denial) *Denial {
	if g.seclog != nil {
		userID, academyID := "", ""
		if claims != nil {
			userID = claims.UserID
			if claims.AcademyID != nil {
				academyID = *claims.AcademyID
			}
		}
		g.seclog.GuardDenied(ctx, userID, academyID, "", d.Code)
	}
	return d
}
