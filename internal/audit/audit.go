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

// Package audit records immutable entries for mutating actions. The log is
// append-only: no update or delete operation exists, and a bad entry is
// corrected by writing a compensating entry, never by editing history.
package audit

import (
	"context"
	"strings"
	"time"
)

// Action names. Dotted verb form, entity first.
const (
	ActionLogin             = "auth.login"
	ActionLogout            = "auth.logout"
	ActionSessionRevoke     = "session.revoke"
	ActionAcademyCreate     = "academy.create"
	ActionAcademySuspend    = "academy.suspend"
	ActionAcademyReactivate = "academy.reactivate"
	ActionInviteCreate      = "invite.create"
	ActionInviteRedeem      = "invite.redeem"
	ActionUserUpdate        = "user.update"
	ActionUserDeactivate    = "user.deactivate"
	ActionBootstrapAdmin    = "bootstrap.global_admin"
)

// Entry is one recorded action. ActorUserID is nil for system-initiated
// actions; AcademyID is nil for platform-level actions.
type Entry struct {
	ID          string         `json:"id"`
	ActorUserID *string        `json:"actor_user_id,omitempty"`
	AcademyID   *string        `json:"academy_id,omitempty"`
	Action      string         `json:"action"`
	TargetType  *string        `json:"target_type,omitempty"`
	TargetID    *string        `json:"target_id,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
	IP          *string        `json:"ip,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AcademyRef implements scope.Owned.
func (e *Entry) AcademyRef() *string { return e.AcademyID }

// BindAcademy implements scope.Owned.
func (e *Entry) BindAcademy(id string) { e.AcademyID = &id }

// Store persists entries. Insert and List are the complete surface: the
// absence of update/delete methods is what makes the log append-only at
// the type level.
type Store interface {
	Insert(ctx context.Context, e *Entry) error
	List(ctx context.Context, limit, offset int) ([]*Entry, error)
}

// Recorder accepts entries after a mutation has committed.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// isSecret checks if a metadata key likely contains a secret. Matching is
// case-insensitive and on substrings, so derived keys like password_hash or
// api_token are caught too.
func isSecret(key string) bool {
	secrets := []string{"password", "secret", "token", "key", "authorization", "credential", "hash"}
	key = strings.ToLower(key)
	for _, s := range secrets {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
