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

package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureStore struct {
	entries []*Entry
	insert  error
}

func (c *captureStore) Insert(_ context.Context, e *Entry) error {
	if c.insert != nil {
		return c.insert
	}
	c.entries = append(c.entries, e)
	return nil
}

func (c *captureStore) List(_ context.Context, limit, offset int) ([]*Entry, error) {
	return c.entries, nil
}

func TestStoreRecorder_FillsIDAndTime(t *testing.T) {
	store := &captureStore{}
	rec := NewStoreRecorder(store)

	actor := "user-1"
	ip := "203.0.113.9"
	rec.Record(context.Background(), Entry{
		ActorUserID: &actor,
		Action:      ActionLogin,
		IP:          &ip,
	})

	require.Len(t, store.entries, 1)
	e := store.entries[0]
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
	assert.Equal(t, ActionLogin, e.Action)
	require.NotNil(t, e.IP)
	assert.Equal(t, ip, *e.IP)

	// IP is optional; system-initiated entries omit it.
	rec.Record(context.Background(), Entry{Action: ActionBootstrapAdmin})
	require.Len(t, store.entries, 2)
	assert.Nil(t, store.entries[1].IP)
}

// TestPurpose: Validates that secret-looking metadata keys are redacted
// before the entry reaches the store.
// Scope: Unit Test
// Security: Data Masking and Leakage Prevention (CWE-532)
// Expected: Values under keys like password/token are replaced; other keys
// pass through untouched.
// Test Case ID: AUD-02
func TestStoreRecorder_RedactsSecrets(t *testing.T) {
	store := &captureStore{}
	rec := NewStoreRecorder(store)

	rec.Record(context.Background(), Entry{
		Action: ActionInviteCreate,
		Meta: map[string]any{
			"password":  "hunter2",
			"api_token": "tok_abc",
			"role":      "staff",
		},
	})

	require.Len(t, store.entries, 1)
	meta := store.entries[0].Meta
	assert.Equal(t, "[REDACTED]", meta["password"])
	assert.Equal(t, "[REDACTED]", meta["api_token"])
	assert.Equal(t, "staff", meta["role"])
}

// TestPurpose: Validates that audit persistence is best-effort: a failing
// store must not surface to or abort the audited operation.
// Scope: Unit Test
// Security: Availability of the primary flow over audit completeness
// Expected: Record swallows the store error.
// Test Case ID: AUD-03
func TestStoreRecorder_StoreFailureIsSwallowed(t *testing.T) {
	store := &captureStore{insert: errors.New("disk full")}
	rec := NewStoreRecorder(store)

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), Entry{Action: ActionLogout})
	})
}
