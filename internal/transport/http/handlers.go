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
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/academykit/academykit/internal/academy"
	"github.com/academykit/academykit/internal/audit"
	"github.com/academykit/academykit/internal/guard"
	"github.com/academykit/academykit/internal/identity"
	"github.com/academykit/academykit/internal/invite"
	"github.com/academykit/academykit/internal/observability/logger"
	"github.com/academykit/academykit/internal/session"
	"github.com/academykit/academykit/internal/token"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	guard           *guard.Guard
	tokens          *token.Service
	identityService *identity.Service
	sessionService  *session.Service
	inviteService   *invite.Service
	academyService  *academy.Service
	recorder        audit.Recorder
	seclog          *logger.SecurityLogger
	cookies         CookieConfig
}

// CookieConfig holds cookie configuration for the access token and the
// session token cookies.
type CookieConfig struct {
	TokenName   string
	SessionName string
	Domain      string
	Path        string
	Secure      bool
	SameSite    http.SameSite
}

// NewHandler creates a new HTTP handler
func NewHandler(
	g *guard.Guard,
	tokens *token.Service,
	identityService *identity.Service,
	sessionService *session.Service,
	inviteService *invite.Service,
	academyService *academy.Service,
	recorder audit.Recorder,
	seclog *logger.SecurityLogger,
	cookies CookieConfig,
) *Handler {
	return &Handler{
		guard:           g,
		tokens:          tokens,
		identityService: identityService,
		sessionService:  sessionService,
		inviteService:   inviteService,
		academyService:  academyService,
		recorder:        recorder,
		seclog:          seclog,
		cookies:         cookies,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// API routes. Authorization is not middleware: every protected handler
	// opens with an explicit guard call naming the roles it accepts, so a
	// route with no guard call stands out in review.
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.Refresh)
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)

		r.Post("/invites/redeem", h.RedeemInvite)

		r.Route("/academies", func(r chi.Router) {
			r.Post("/", h.CreateAcademy)
			r.Get("/", h.ListAcademies)

			r.Route("/{academyID}", func(r chi.Router) {
				r.Get("/", h.GetAcademy)
				r.Post("/suspend", h.SuspendAcademy)
				r.Post("/reactivate", h.ReactivateAcademy)

				r.Post("/invites", h.CreateInvite)
				r.Get("/audit", h.ListAudit)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", h.ListUsers)
					r.Get("/{userID}", h.GetUser)
					r.Patch("/{userID}", h.UpdateUser)
					r.Delete("/{userID}", h.DeactivateUser)
				})
			})
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "academykit",
	})
}

// pagination parses limit/offset query parameters with sane bounds.
func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
