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

package academy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/academykit/academykit/internal/audit"
	"github.com/academykit/academykit/internal/id"
)

// Service provides academy lifecycle business logic. All operations here
// are platform-level and reachable only through global admin routes.
type Service struct {
	repo     Repository
	recorder audit.Recorder
}

// NewService creates a new academy service
func NewService(repo Repository, recorder audit.Recorder) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
	}
}

// Create registers a new academy in active status.
func (s *Service) Create(ctx context.Context, name, code string, actorUserID string) (*Academy, error) {
	name = strings.TrimSpace(name)
	code = strings.ToLower(strings.TrimSpace(code))
	if name == "" {
		return nil, fmt.Errorf("academy name is required")
	}
	if code == "" {
		return nil, fmt.Errorf("academy code is required")
	}

	if _, err := s.repo.GetByCode(ctx, code); err == nil {
		return nil, ErrCodeTaken
	}

	now := time.Now()
	a := &Academy{
		ID:        id.NewUUID(),
		Name:      name,
		Code:      code,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create academy: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorUserID: &actorUserID,
		Action:      audit.ActionAcademyCreate,
		TargetType:  ptr("academy"),
		TargetID:    &a.ID,
		Meta:        map[string]any{"code": code},
	})

	return a, nil
}

// Get retrieves an academy by ID
func (s *Service) Get(ctx context.Context, idStr string) (*Academy, error) {
	return s.repo.GetByID(ctx, idStr)
}

// List lists academies with pagination
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Academy, error) {
	return s.repo.List(ctx, limit, offset)
}

// Suspend blocks all non-global access to the academy. The suspension gate
// reads status fresh per request, so the very next guarded request for this
// academy is denied.
func (s *Service) Suspend(ctx context.Context, academyID, actorUserID string) error {
	return s.setStatus(ctx, academyID, actorUserID, StatusSuspended, audit.ActionAcademySuspend)
}

// Reactivate lifts a suspension.
func (s *Service) Reactivate(ctx context.Context, academyID, actorUserID string) error {
	return s.setStatus(ctx, academyID, actorUserID, StatusActive, audit.ActionAcademyReactivate)
}

func (s *Service) setStatus(ctx context.Context, academyID, actorUserID, status, action string) error {
	if _, err := s.repo.GetByID(ctx, academyID); err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, academyID, status); err != nil {
		return fmt.Errorf("failed to set academy status: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorUserID: &actorUserID,
		Action:      action,
		TargetType:  ptr("academy"),
		TargetID:    &academyID,
	})

	return nil
}

func ptr(s string) *string { return &s }
