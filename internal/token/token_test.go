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

package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academykit/academykit/internal/rbac"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Config{
		Secret:     testSecret,
		Lifetime:   15 * time.Minute,
		CookieName: "academykit_token",
	})
	require.NoError(t, err)
	return svc
}

func TestIssueVerify_Roundtrip(t *testing.T) {
	svc := newTestService(t)
	aid := "academy-a"

	raw, err := svc.Issue("user-1", "sess-1", rbac.RoleStaff, &aid)
	require.NoError(t, err)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, rbac.RoleStaff, claims.Role)
	require.NotNil(t, claims.AcademyID)
	assert.Equal(t, "academy-a", *claims.AcademyID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestIssueVerify_GlobalAdminHasNoAcademy(t *testing.T) {
	svc := newTestService(t)

	raw, err := svc.Issue("user-1", "sess-1", rbac.RoleGlobalAdmin, nil)
	require.NoError(t, err)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Nil(t, claims.AcademyID)
}

// TestPurpose: Validates that every verification failure collapses into the
// single ErrInvalidCredential sentinel, so responses cannot be used to probe
// why a forged or stale token was rejected.
// Scope: Unit Test
// Security: Error Oracle Prevention
// Expected: Wrong key, alg=none, tampering, expiry, wrong issuer and
// structural gaps all return ErrInvalidCredential.
// Test Case ID: TOK-01
func TestVerify_AllFailuresCollapse(t *testing.T) {
	svc := newTestService(t)
	aid := "academy-a"

	valid, err := svc.Issue("user-1", "sess-1", rbac.RoleStaff, &aid)
	require.NoError(t, err)

	otherSvc, err := NewService(Config{Secret: "another-secret-another-secret-32", Lifetime: time.Minute})
	require.NoError(t, err)
	wrongKey, err := otherSvc.Issue("user-1", "sess-1", rbac.RoleStaff, &aid)
	require.NoError(t, err)

	noneAlg := func() string {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"iss": "academykit", "sub": "user-1", "sid": "sess-1",
			"role": "staff", "aid": "academy-a",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		return s
	}()

	expired := func() string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iss": "academykit", "sub": "user-1", "sid": "sess-1",
			"role": "staff", "aid": "academy-a",
			"iat": time.Now().Add(-2 * time.Hour).Unix(),
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		s, err := tok.SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}()

	wrongIssuer := func() string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iss": "someone-else", "sub": "user-1", "sid": "sess-1",
			"role": "staff", "aid": "academy-a",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		s, err := tok.SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}()

	missingSession := func() string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iss": "academykit", "sub": "user-1",
			"role": "staff", "aid": "academy-a",
			"iat": time.Now().Unix(),
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		s, err := tok.SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}()

	unknownRole := func() string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iss": "academykit", "sub": "user-1", "sid": "sess-1",
			"role": "superuser", "aid": "academy-a",
			"iat": time.Now().Unix(),
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		s, err := tok.SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"tampered payload", valid[:len(valid)-6] + "xxxxxx"},
		{"wrong key", wrongKey},
		{"alg none", noneAlg},
		{"expired", expired},
		{"wrong issuer", wrongIssuer},
		{"missing session id", missingSession},
		{"unknown role", unknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.raw)
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}

// TestPurpose: Validates credential extraction precedence so a malformed
// Authorization header cannot silently fall back to a cookie credential.
// Scope: Unit Test
// Security: Credential Source Confusion Prevention
// Expected: Bearer header beats cookie; malformed header yields an invalid
// (non-empty) credential; cookie serves when no header is present.
// Test Case ID: TOK-02
func TestFromRequest_Precedence(t *testing.T) {
	svc := newTestService(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	r.AddCookie(&http.Cookie{Name: "academykit_token", Value: "cookie-token"})
	assert.Equal(t, "header-token", svc.FromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "academykit_token", Value: "cookie-token"})
	assert.Equal(t, "cookie-token", svc.FromRequest(r))

	// Malformed header must not fall through to the cookie.
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	r.AddCookie(&http.Cookie{Name: "academykit_token", Value: "cookie-token"})
	got := svc.FromRequest(r)
	assert.NotEqual(t, "cookie-token", got)
	assert.NotEmpty(t, got)
	_, err := svc.Verify(got)
	assert.ErrorIs(t, err, ErrInvalidCredential)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, svc.FromRequest(r))
}
