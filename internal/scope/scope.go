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

// Package scope defines the academy isolation boundary used by every
// data-access handle.
//
// A Scope is either bound to one academy or global. Bound handles conjoin
// the academy predicate into every read and force the academy id on every
// write; the global scope is produced exclusively for the global admin role
// and passes operations through unmodified.
package scope

// Scope is the tenant context a data-access handle is constructed with.
// The zero value is the global (unscoped) scope; use Academy to bind one.
type Scope struct {
	academyID *string
}

// Global returns the unscoped scope. Only the global admin role may ever
// reach a handle built from it.
func Global() Scope {
	return Scope{}
}

// Academy returns a scope bound to the given academy.
func Academy(id string) Scope {
	return Scope{academyID: &id}
}

// AcademyID returns the bound academy id, or false for the global scope.
func (s Scope) AcademyID() (string, bool) {
	if s.academyID == nil {
		return "", false
	}
	return *s.academyID, true
}

// IsGlobal reports whether the scope bypasses academy isolation.
func (s Scope) IsGlobal() bool {
	return s.academyID == nil
}

// Owned marks entity types that carry the academy isolation key. The set of
// implementations is the closed set of academy-owned entities: a new entity
// type cannot pass through a scoped write path without implementing it.
type Owned interface {
	// AcademyRef returns the entity's academy id, nil when unset.
	AcademyRef() *string

	// BindAcademy overwrites the entity's academy id.
	BindAcademy(id string)
}

// Bind forces the scope's academy onto an entity before a write. Under a
// bound scope any caller-supplied academy id is overwritten, so a spoofed
// id in a request body can never place a row in another academy. The
// global scope leaves the entity untouched.
func Bind(s Scope, e Owned) {
	if id, ok := s.AcademyID(); ok {
		e.BindAcademy(id)
	}
}

// Visible reports whether an already-loaded entity belongs to the scope.
// Read paths normally filter in SQL; this is the belt for rows obtained
// through joins or denormalized lookups.
func Visible(s Scope, e Owned) bool {
	id, ok := s.AcademyID()
	if !ok {
		return true
	}
	ref := e.AcademyRef()
	return ref != nil && *ref == id
}
