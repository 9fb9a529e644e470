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

package identity

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/academykit/academykit/internal/audit"
	"github.com/academykit/academykit/internal/rbac"
)

const (
	EnvBootstrapAdminEmail    = "BOOTSTRAP_ADMIN_EMAIL"
	EnvBootstrapAdminName     = "BOOTSTRAP_ADMIN_NAME"
	EnvBootstrapAdminPassword = "BOOTSTRAP_ADMIN_PASSWORD"
)

// BootstrapService provisions the first global admin from the environment.
type BootstrapService struct {
	identityService *Service
	recorder        audit.Recorder
}

// NewBootstrapService creates a new bootstrap service
func NewBootstrapService(identityService *Service, recorder audit.Recorder) *BootstrapService {
	return &BootstrapService{
		identityService: identityService,
		recorder:        recorder,
	}
}

// Bootstrap creates the global admin named by the environment if it does
// not exist yet. With no environment configuration it is a no-op.
func (s *BootstrapService) Bootstrap(ctx context.Context) error {
	email := os.Getenv(EnvBootstrapAdminEmail)
	if email == "" {
		return nil
	}
	name := os.Getenv(EnvBootstrapAdminName)
	if name == "" {
		name = "Platform Admin"
	}
	password := os.Getenv(EnvBootstrapAdminPassword)

	user, err := s.identityService.Create(ctx, nil, rbac.RoleGlobalAdmin, name, email, password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			// Already bootstrapped, skip silently.
			return nil
		}
		return fmt.Errorf("bootstrap global admin: %w", err)
	}

	// System-initiated: no actor.
	s.recorder.Record(ctx, audit.Entry{
		Action:     audit.ActionBootstrapAdmin,
		TargetType: strPtr("user"),
		TargetID:   &user.ID,
	})

	return nil
}

func strPtr(s string) *string { return &s }
