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

	"github.com/academykit/academykit/internal/audit"
	"github.com/academykit/academykit/internal/identity"
	"github.com/academykit/academykit/internal/observability/logger"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user, opens a session and mints an access token.
// The raw session token travels only in the response cookie and is never
// stored server-side; the store keeps its fingerprint.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	user, err := h.identityService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			h.seclog.LoginFailure(r.Context(), getIPAddress(r), "invalid_credentials")
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
			return
		}
		slog.ErrorContext(r.Context(), "authentication failed", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	sess, rawSession, err := h.sessionService.Issue(r.Context(), user.ID, user.AcademyID, getIPAddress(r), r.UserAgent())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create session", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	access, err := h.tokens.Issue(user.ID, sess.ID, user.Role, user.AcademyID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue access token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	h.setSessionCookie(w, rawSession, int(sess.ExpiresAt.Sub(sess.CreatedAt).Seconds()))
	h.setTokenCookie(w, access)

	h.recorder.Record(r.Context(), audit.Entry{
		ActorUserID: &user.ID,
		AcademyID:   user.AcademyID,
		Action:      audit.ActionLogin,
		TargetType:  strPtr("session"),
		TargetID:    &sess.ID,
		IP:          strPtr(getIPAddress(r)),
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"access_token": access,
		"token_type":   "Bearer",
		"expires_in":   int(h.tokens.Lifetime().Seconds()),
		"user":         user,
	})
}

// Refresh exchanges a live session for a fresh access token. The session
// row is re-read so revocation and expiry take effect here at the latest;
// the old access token simply runs out its short lifetime.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	rawSession := h.sessionTokenFromCookie(r)
	if rawSession == "" {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	sess, err := h.sessionService.Resolve(r.Context(), rawSession)
	if err != nil {
		h.clearAuthCookies(w)
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired session")
		return
	}

	user, err := h.identityService.Get(r.Context(), sess.UserID)
	if err != nil || !user.Active() {
		h.clearAuthCookies(w)
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired session")
		return
	}

	access, err := h.tokens.Issue(user.ID, sess.ID, user.Role, user.AcademyID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue access token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	h.setTokenCookie(w, access)

	respondJSON(w, http.StatusOK, map[string]any{
		"access_token": access,
		"token_type":   "Bearer",
		"expires_in":   int(h.tokens.Lifetime().Seconds()),
	})
}

// Logout revokes the session named by the cookie. Revocation is terminal
// and idempotent: logging out twice, or with a token that resolves to no
// session, still succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	rawSession := h.sessionTokenFromCookie(r)
	if rawSession != "" {
		if sess, err := h.sessionService.Resolve(r.Context(), rawSession); err == nil {
			h.recorder.Record(r.Context(), audit.Entry{
				ActorUserID: &sess.UserID,
				AcademyID:   sess.AcademyID,
				Action:      audit.ActionLogout,
				TargetType:  strPtr("session"),
				TargetID:    &sess.ID,
				IP:          strPtr(getIPAddress(r)),
			})
		}
		if err := h.sessionService.RevokeByRawToken(r.Context(), rawSession); err != nil {
			slog.ErrorContext(r.Context(), "failed to revoke session", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
			return
		}
	}

	h.clearAuthCookies(w)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Me returns the authenticated user, read through the grant's scoped
// store.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	grant, err := h.guard.Authorize(r)
	if err != nil {
		respondGuardError(w, r, err)
		return
	}

	user, err := grant.Stores.Users.GetByID(r.Context(), grant.Claims.UserID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to load user", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Cookie helpers

func (h *Handler) setTokenCookie(w http.ResponseWriter, access string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.TokenName,
		Value:    access,
		Path:     h.cookies.Path,
		Domain:   h.cookies.Domain,
		Secure:   h.cookies.Secure,
		HttpOnly: true,
		SameSite: h.cookies.SameSite,
		MaxAge:   int(h.tokens.Lifetime().Seconds()),
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, rawSession string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.SessionName,
		Value:    rawSession,
		Path:     h.cookies.Path,
		Domain:   h.cookies.Domain,
		Secure:   h.cookies.Secure,
		HttpOnly: true,
		SameSite: h.cookies.SameSite,
		MaxAge:   maxAge,
	})
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{h.cookies.TokenName, h.cookies.SessionName} {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   h.cookies.Path,
			Domain: h.cookies.Domain,
			MaxAge: -1,
		})
	}
}

func (h *Handler) sessionTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(h.cookies.SessionName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func strPtr(s string) *string { return &s }
