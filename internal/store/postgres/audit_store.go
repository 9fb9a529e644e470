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
	"context"
	"encoding/json"
	"fmt"

	"github.com/academykit/academykit/internal/audit"
	"github.com/academykit/academykit/internal/scope"
)

// AuditStore implements audit.Store bound to a scope. The table is
// append-only: there is no update or delete path.
type AuditStore struct {
	q  Querier
	sc scope.Scope
}

// NewAuditStore creates an audit store bound to the given scope.
func NewAuditStore(q Querier, sc scope.Scope) *AuditStore {
	return &AuditStore{q: q, sc: sc}
}

// Insert appends an audit entry.
func (s *AuditStore) Insert(ctx context.Context, e *audit.Entry) error {
	scope.Bind(s.sc, e)

	var meta []byte
	if e.Meta != nil {
		var err error
		meta, err = json.Marshal(e.Meta)
		if err != nil {
			return fmt.Errorf("failed to marshal audit meta: %w", err)
		}
	}

	_, err := s.q.Exec(ctx, `
		INSERT INTO audit_log (id, actor_user_id, academy_id, action, target_type, target_id, meta, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		e.ID, e.ActorUserID, e.AcademyID, e.Action,
		e.TargetType, e.TargetID, meta, e.IP, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// List returns entries visible to the scope, newest first. Audit ids are
// ULIDs, so ordering by id is chronological.
func (s *AuditStore) List(ctx context.Context, limit, offset int) ([]*audit.Entry, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, actor_user_id, academy_id, action, target_type, target_id, meta, ip_address, created_at
		FROM audit_log
		WHERE ($1::uuid IS NULL OR academy_id = $1)
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`, scopeParam(s.sc), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var out []*audit.Entry
	for rows.Next() {
		var e audit.Entry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.ActorUserID, &e.AcademyID, &e.Action, &e.TargetType, &e.TargetID, &meta, &e.IP, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Meta); err != nil {
				return nil, fmt.Errorf("failed to unmarshal audit meta: %w", err)
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
