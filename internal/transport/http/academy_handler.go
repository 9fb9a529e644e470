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
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/academykit/academykit/internal/academy"
	"github.com/academykit/academykit/internal/observability/logger"
	"github.com/academykit/academykit/internal/rbac"
)

// CreateAcademyRequest represents academy creation data
type CreateAcademyRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// CreateAcademy provisions a new academy. Global admin only.
func (h *Handler) CreateAcademy(w http.ResponseWriter, r *http.Request) {
	grant, err := h.guard.Authorize(r, rbac.RoleGlobalAdmin)
	if err != nil {
		respondGuardError(w, r, err)
		return
	}

	var req CreateAcademyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	a, err := h.academyService.Create(r.Context(), req.Name, req.Code, grant.Claims.UserID)
	if err != nil {
		if errors.Is(err, academy.ErrCodeTaken) {
			respondError(w, http.StatusConflict, "CONFLICT", "academy code already in use")
			return
		}
		slog.ErrorContext(r.Context(), "failed to create academy", logger.Error(err))
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, a)
}

// ListAcademies returns all academies. Global admin only.
func (h *Handler) ListAcademies(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Authorize(r, rbac.RoleGlobalAdmin); err != nil {
		respondGuardError(w, r, err)
		return
	}

	limit, offset := pagination(r)
	academies, err := h.academyService.List(r.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list academies", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"academies": academies})
}

// GetAcademy returns one academy. Members see their own; global admin any.
func (h *Handler) GetAcademy(w http.ResponseWriter, r *http.Request) {
	academyID := chi.URLParam(r, "academyID")
	if _, err := h.guard.AuthorizeAcademy(r, academyID); err != nil {
		respondGuardError(w, r, err)
		return
	}

	a, err := h.academyService.Get(r.Context(), academyID)
	if err != nil {
		if errors.Is(err, academy.ErrAcademyNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "academy not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get academy", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, a)
}

// SuspendAcademy suspends an academy. Global admin only. Takes effect on
// the next guarded request from any of the academy's users.
func (h *Handler) SuspendAcademy(w http.ResponseWriter, r *http.Request) {
	h.setAcademyStatus(w, r, h.academyService.Suspend, "academy suspended")
}

// ReactivateAcademy reactivates a suspended academy. Global admin only.
func (h *Handler) ReactivateAcademy(w http.ResponseWriter, r *http.Request) {
	h.setAcademyStatus(w, r, h.academyService.Reactivate, "academy reactivated")
}

func (h *Handler) setAcademyStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, academyID, actorUserID string) error, message string) {
	academyID := chi.URLParam(r, "academyID")
	grant, err := h.guard.AuthorizeAcademy(r, academyID, rbac.RoleGlobalAdmin)
	if err != nil {
		respondGuardError(w, r, err)
		return
	}

	if err := op(r.Context(), academyID, grant.Claims.UserID); err != nil {
		if errors.Is(err, academy.ErrAcademyNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "academy not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to update academy status", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}
