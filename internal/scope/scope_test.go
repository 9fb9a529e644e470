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

package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type ownedRow struct {
	academyID *string
}

func (r *ownedRow) AcademyRef() *string   { return r.academyID }
func (r *ownedRow) BindAcademy(id string) { r.academyID = &id }

// TestPurpose: Validates that a write through a scoped handle carries the
// scope's academy id regardless of what the caller put on the entity.
// Scope: Unit Test
// Security: Cross-Tenant Write Prevention
// Expected: Bind overwrites a foreign academy id; a global scope leaves the
// entity untouched.
// Test Case ID: SCP-01
func TestBind_ForcesScopeAcademy(t *testing.T) {
	foreign := "academy-b"
	row := &ownedRow{academyID: &foreign}

	Bind(Academy("academy-a"), row)

	assert.NotNil(t, row.AcademyRef())
	assert.Equal(t, "academy-a", *row.AcademyRef())
}

func TestBind_GlobalScopeIsPassthrough(t *testing.T) {
	own := "academy-a"
	row := &ownedRow{academyID: &own}

	Bind(Global(), row)

	assert.Equal(t, "academy-a", *row.AcademyRef())

	empty := &ownedRow{}
	Bind(Global(), empty)
	assert.Nil(t, empty.AcademyRef())
}

func TestVisible(t *testing.T) {
	a, b := "academy-a", "academy-b"

	assert.True(t, Visible(Global(), &ownedRow{academyID: &a}))
	assert.True(t, Visible(Global(), &ownedRow{}))
	assert.True(t, Visible(Academy("academy-a"), &ownedRow{academyID: &a}))
	assert.False(t, Visible(Academy("academy-a"), &ownedRow{academyID: &b}))
	assert.False(t, Visible(Academy("academy-a"), &ownedRow{}))
}

func TestScope_Accessors(t *testing.T) {
	sc := Academy("academy-a")
	id, ok := sc.AcademyID()
	assert.True(t, ok)
	assert.Equal(t, "academy-a", id)
	assert.False(t, sc.IsGlobal())

	g := Global()
	_, ok = g.AcademyID()
	assert.False(t, ok)
	assert.True(t, g.IsGlobal())
}
