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

package guard

import (
	"fmt"
	"net/http"
)

// Denial codes surfaced in the response body.
const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeForbidden        = "FORBIDDEN"
	CodeAcademySuspended = "ACADEMY_SUSPENDED"
	CodeAcademyRequired  = "ACADEMY_REQUIRED"
)

// Denial is an expected authorization failure. It is an ordinary value, not
// a fault: the guard returns it for bad tokens, wrong roles and suspended
// academies, and the transport maps it onto the HTTP response. Infra
// failures (store unreachable) travel as plain errors instead and become a
// generic 5xx upstream.
type Denial struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface so a Denial can flow through
// ordinary error returns.
func (d *Denial) Error() string {
	return fmt.Sprintf("denied: %s (%d)", d.Code, d.Status)
}

func denyUnauthenticated() *Denial {
	return &Denial{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "authentication required"}
}

func denyInvalidToken() *Denial {
	return &Denial{Status: http.StatusUnauthorized, Code: CodeInvalidToken, Message: "invalid or expired credential"}
}

func denyForbidden() *Denial {
	return &Denial{Status: http.StatusForbidden, Code: CodeForbidden, Message: "insufficient privileges"}
}

func denySuspended() *Denial {
	return &Denial{Status: http.StatusForbidden, Code: CodeAcademySuspended, Message: "academy is suspended"}
}

func denyAcademyRequired() *Denial {
	return &Denial{Status: http.StatusBadRequest, Code: CodeAcademyRequired, Message: "academy id is required"}
}
