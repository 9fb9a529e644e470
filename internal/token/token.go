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

// Package token issues and verifies the short-lived access credential.
//
// The credential is derived from a session at login/refresh time and is not
// persisted. Verification is pure with respect to the raw token and the
// clock: it never touches the store. Revocation therefore propagates within
// at most one credential lifetime, or immediately for flows that re-read
// the session row (refresh, forced logout).
package token

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/academykit/academykit/internal/rbac"
)

const issuer = "academykit"

// ErrInvalidCredential is the single failure returned for every verification
// problem: bad signature, malformed payload, expiry, missing fields. The
// caller deliberately cannot tell why verification failed.
var ErrInvalidCredential = errors.New("invalid credential")

// Claims is the verified, decoded content of an access credential.
// Immutable once verified; reconstructed per request, never persisted.
type Claims struct {
	UserID    string
	SessionID string
	Role      rbac.Role
	AcademyID *string // nil only for the global admin role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type wireClaims struct {
	Role      string  `json:"role"`
	AcademyID *string `json:"aid,omitempty"`
	SessionID string  `json:"sid"`
	jwt.RegisteredClaims
}

// Service signs and verifies access credentials with HS256.
type Service struct {
	secret     []byte
	lifetime   time.Duration
	cookieName string
}

// Config holds credential configuration.
type Config struct {
	Secret     string
	Lifetime   time.Duration
	CookieName string
}

// NewService creates a credential service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = 15 * time.Minute
	}
	return &Service{
		secret:     []byte(cfg.Secret),
		lifetime:   lifetime,
		cookieName: cfg.CookieName,
	}, nil
}

// Lifetime returns the configured credential lifetime. It bounds how long a
// revoked session's outstanding credentials stay verifiable.
func (s *Service) Lifetime() time.Duration {
	return s.lifetime
}

// Issue mints an access credential for a session. academyID is nil only for
// global admins.
func (s *Service) Issue(userID, sessionID string, role rbac.Role, academyID *string) (string, error) {
	if userID == "" || sessionID == "" {
		return "", errors.New("token: user and session ids are required")
	}
	if !role.Valid() {
		return "", rbac.ErrUnknownRole
	}

	now := time.Now()
	claims := wireClaims{
		Role:      string(role),
		AcademyID: academyID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify validates signature, expiry and structural shape. Any failure
// collapses into ErrInvalidCredential.
func (s *Service) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidCredential
	}

	parsed, err := jwt.ParseWithClaims(raw, &wireClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidCredential
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidCredential
	}

	wc, ok := parsed.Claims.(*wireClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidCredential
	}
	if wc.Subject == "" || wc.SessionID == "" || wc.IssuedAt == nil || wc.ExpiresAt == nil {
		return nil, ErrInvalidCredential
	}

	role, err := rbac.Parse(wc.Role)
	if err != nil {
		return nil, ErrInvalidCredential
	}
	if wc.AcademyID != nil && *wc.AcademyID == "" {
		return nil, ErrInvalidCredential
	}

	return &Claims{
		UserID:    wc.Subject,
		SessionID: wc.SessionID,
		Role:      role,
		AcademyID: wc.AcademyID,
		IssuedAt:  wc.IssuedAt.Time,
		ExpiresAt: wc.ExpiresAt.Time,
	}, nil
}

// FromRequest extracts the raw credential from the request. The
// Authorization bearer header takes precedence over the cookie; the empty
// string means no credential was supplied.
func (s *Service) FromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		const prefix = "Bearer "
		if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
			return strings.TrimSpace(h[len(prefix):])
		}
		// A malformed Authorization header is treated as an invalid
		// credential, not as absence; it must not fall through to the cookie.
		return h
	}
	if s.cookieName != "" {
		if c, err := r.Cookie(s.cookieName); err == nil {
			return c.Value
		}
	}
	return ""
}
