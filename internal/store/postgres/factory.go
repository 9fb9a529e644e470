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

package postgres

import (
	"github.com/academykit/academykit/internal/guard"
	"github.com/academykit/academykit/internal/scope"
)

// Factory builds scoped store bundles for the guard. Handles are cheap
// per-request values over the shared pool.
type Factory struct {
	q Querier
}

// NewFactory creates a store factory.
func NewFactory(db *DB) *Factory {
	return &Factory{q: db.Pool()}
}

// NewFactoryWithQuerier creates a factory over an explicit querier (tests).
func NewFactoryWithQuerier(q Querier) *Factory {
	return &Factory{q: q}
}

// Scoped implements guard.StoreFactory.
func (f *Factory) Scoped(sc scope.Scope) guard.Stores {
	return guard.Stores{
		Users:    NewUserStore(f.q, sc),
		Sessions: NewSessionStore(f.q, sc),
		Invites:  NewInviteStore(f.q, sc),
		Audit:    NewAuditStore(f.q, sc),
	}
}

// scopeParam turns a scope into the nullable SQL argument conjoined into
// every query against an academy-owned table: rows match when the handle
// is global (NULL) or when academy_id equals the bound academy.
func scopeParam(sc scope.Scope) any {
	if id, ok := sc.AcademyID(); ok {
		return id
	}
	return nil
}
