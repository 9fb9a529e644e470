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
	"log/slog"
	"time"

	"github.com/academykit/academykit/internal/id"
	"github.com/academykit/academykit/internal/observability/logger"
)

// StoreRecorder persists entries best-effort. It is always called after the
// triggering mutation has committed; a failed write never rolls back or
// fails that mutation. Failures go to the log collaborator, not the caller.
type StoreRecorder struct {
	store Store
}

// NewStoreRecorder creates a recorder backed by a store.
func NewStoreRecorder(store Store) *StoreRecorder {
	return &StoreRecorder{store: store}
}

// Record appends an entry. Metadata values under secret-looking keys are
// redacted before persistence.
func (r *StoreRecorder) Record(ctx context.Context, e Entry) {
	if e.ID == "" {
		e.ID = id.NewULID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.Meta = redact(e.Meta)

	if err := r.store.Insert(ctx, &e); err != nil {
		slog.ErrorContext(ctx, "failed to record audit entry",
			logger.Error(err),
			logger.Component("audit"),
			slog.String("action", e.Action),
		)
	}
}

func redact(meta map[string]any) map[string]any {
	if len(meta) == 0 {
		return meta
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		if isSecret(k) {
			v = "[REDACTED]"
		}
		out[k] = v
	}
	return out
}

// NopRecorder discards entries. Used by tests and offline commands.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, Entry) {}
