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
	"github.com/academykit/academykit/internal/audit"
	"github.com/academykit/academykit/internal/identity"
	"github.com/academykit/academykit/internal/invite"
	"github.com/academykit/academykit/internal/scope"
	"github.com/academykit/academykit/internal/session"
)

// Stores bundles the data-access handles a guarded handler may touch. Every
// handle is constructed bound to the grant's scope: reads conjoin the
// academy predicate, writes force the academy id, and none of it is
// bypassable from handler code. Academies themselves carry no academy id
// and are reachable only through role-checked services, not through here.
type Stores struct {
	Users    identity.Repository
	Sessions session.Repository
	Invites  invite.Repository
	Audit    audit.Store
}

// StoreFactory builds a scoped store bundle. The postgres store implements
// it; tests substitute fakes.
type StoreFactory interface {
	Scoped(sc scope.Scope) Stores
}
