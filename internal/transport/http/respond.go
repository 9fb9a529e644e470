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

	"github.com/academykit/academykit/internal/guard"
	"github.com/academykit/academykit/internal/observability/logger"
)

// ErrorBody is the uniform error envelope for every non-2xx response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the stable machine code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

// respondGuardError maps a guard failure to the wire. A *guard.Denial is
// an expected outcome and carries its own status and code; anything else
// is an infrastructure fault and surfaces as an opaque 500.
func respondGuardError(w http.ResponseWriter, r *http.Request, err error) {
	var d *guard.Denial
	if errors.As(err, &d) {
		respondError(w, d.Status, d.Code, d.Message)
		return
	}
	slog.ErrorContext(r.Context(), "guard infrastructure failure", logger.Error(err))
	respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
