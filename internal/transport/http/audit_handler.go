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
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/academykit/academykit/internal/observability/logger"
	"github.com/academykit/academykit/internal/rbac"
)

// ListAudit returns the academy's audit trail, newest first.
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	academyID := chi.URLParam(r, "academyID")
	grant, err := h.guard.AuthorizeAcademy(r, academyID, rbac.RoleGlobalAdmin, rbac.RoleAcademyAdmin)
	if err != nil {
		respondGuardError(w, r, err)
		return
	}

	limit, offset := pagination(r)
	entries, err := grant.Stores.Audit.List(r.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list audit entries", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
