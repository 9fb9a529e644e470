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
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/academykit/academykit/internal/audit"
	"github.com/academykit/academykit/internal/identity"
	"github.com/academykit/academykit/internal/observability/logger"
	"github.com/academykit/academykit/internal/rbac"
)

// ListUsers returns the academy's users through the grant's scoped store.
// A foreign academy in the path never reaches the store: the guard's
// path-tenant check rejects it first.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	academyID := chi.URLParam(r, "academyID")
	grant, err := h.guard.AuthorizeAcademy(r, academyID, rbac.RoleGlobalAdmin, rbac.RoleAcademyAdmin, rbac.RoleStaff)
	if err != nil {
		respondGuardError(w, r, err)
		return
	}

	limit, offset := pagination(r)
	users, err := grant.Stores.Users.List(r.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list users", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// GetUser returns one user. A user outside the caller's academy reads as
// absent, identical to a nonexistent id.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	academyID := chi.URLParam(r, "academyID")
	grant, err := h.guard.AuthorizeAcademy(r, academyID, rbac.RoleGlobalAdmin, rbac.RoleAcademyAdmin, rbac.RoleStaff)
	if err != nil {
		respondGuardError(w, r, err)
		return
	}

	user, err := grant.Stores.Users.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get user", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateUserRequest represents user update data
type UpdateUserRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// UpdateUser changes a user's name or academy-level role. The global role
// cannot be granted here: global admins are provisioned out of band.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	academyID := chi.URLParam(r, "academyID")
	grant, err := h.guard.AuthorizeAcademy(r, academyID, rbac.RoleGlobalAdmin, rbac.RoleAcademyAdmin)
	if err != nil {
		respondGuardError(w, r, err)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	userID := chi.URLParam(r, "userID")
	user, err := grant.Stores.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get user", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.Role != "" {
		role, err := rbac.Parse(req.Role)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "unknown role")
			return
		}
		if role.Global() || user.Role.Global() {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "the global role cannot be granted or revoked here")
			return
		}
		user.Role = role
	}

	if err := grant.Stores.Users.Update(r.Context(), user); err != nil {
		slog.ErrorContext(r.Context(), "failed to update user", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	h.recorder.Record(r.Context(), audit.Entry{
		ActorUserID: &grant.Claims.UserID,
		AcademyID:   user.AcademyID,
		Action:      audit.ActionUserUpdate,
		TargetType:  strPtr("user"),
		TargetID:    &user.ID,
		IP:          strPtr(getIPAddress(r)),
	})

	respondJSON(w, http.StatusOK, user)
}

// DeactivateUser flips a user's status to suspended. No rows are deleted;
// sessions already issued die at the guard's next look.
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	academyID := chi.URLParam(r, "academyID")
	grant, err := h.guard.AuthorizeAcademy(r, academyID, rbac.RoleGlobalAdmin, rbac.RoleAcademyAdmin)
	if err != nil {
		respondGuardError(w, r, err)
		return
	}

	userID := chi.URLParam(r, "userID")
	if err := grant.Stores.Users.SetStatus(r.Context(), userID, identity.StatusSuspended); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to deactivate user", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	h.recorder.Record(r.Context(), audit.Entry{
		ActorUserID: &grant.Claims.UserID,
		AcademyID:   &academyID,
		Action:      audit.ActionUserDeactivate,
		TargetType:  strPtr("user"),
		TargetID:    &userID,
		IP:          strPtr(getIPAddress(r)),
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "user deactivated",
	})
}
