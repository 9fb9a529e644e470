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

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/academykit/academykit/internal/identity"
	"github.com/academykit/academykit/internal/invite"
	"github.com/academykit/academykit/internal/observability/logger"
	"github.com/academykit/academykit/internal/rbac"
)

// CreateInviteRequest represents invite creation data
type CreateInviteRequest struct {
	Role string `json:"role"`
}

// CreateInvite mints an invite for the academy in the path. The raw invite
// token appears once, in this response; the store keeps its fingerprint.
func (h *Handler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	academyID := chi.URLParam(r, "academyID")
	grant, err := h.guard.AuthorizeAcademy(r, academyID, rbac.RoleGlobalAdmin, rbac.RoleAcademyAdmin)
	if err != nil {
		respondGuardError(w, r, err)
		return
	}

	var req CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	role, err := rbac.Parse(req.Role)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "unknown role")
		return
	}

	inv, rawToken, err := h.inviteService.Create(r.Context(), academyID, role, grant.Claims.UserID)
	if err != nil {
		if errors.Is(err, invite.ErrRoleNotInvitable) {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "role cannot be invited")
			return
		}
		slog.ErrorContext(r.Context(), "failed to create invite", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"invite_id":  inv.ID,
		"token":      rawToken,
		"role":       inv.Role,
		"expires_at": inv.ExpiresAt,
	})
}

// RedeemInviteRequest represents invite redemption data
type RedeemInviteRequest struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RedeemInvite creates an account in the invite's academy. Public route:
// the invite token is the credential. A used invite conflicts; an expired
// one is gone; the two are distinct outcomes on purpose, since only the
// used case suggests the token leaked.
func (h *Handler) RedeemInvite(w http.ResponseWriter, r *http.Request) {
	var req RedeemInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	user, err := h.inviteService.Redeem(r.Context(), req.Token, req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, invite.ErrInviteNotFound):
			respondError(w, http.StatusNotFound, "NOT_FOUND", "invite not found")
		case errors.Is(err, invite.ErrInviteUsed):
			respondError(w, http.StatusConflict, "CONFLICT", "invite already used")
		case errors.Is(err, invite.ErrInviteExpired):
			respondError(w, http.StatusGone, "GONE", "invite expired")
		case errors.Is(err, identity.ErrEmailTaken):
			respondError(w, http.StatusConflict, "CONFLICT", "email already in use")
		case errors.Is(err, identity.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "password does not meet requirements")
		default:
			slog.ErrorContext(r.Context(), "failed to redeem invite", logger.Error(err))
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"user_id":    user.ID,
		"academy_id": user.AcademyID,
		"role":       user.Role,
	})
}
