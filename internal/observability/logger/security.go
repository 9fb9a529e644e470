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

package logger

import (
	"context"
	"log/slog"
)

// SecurityEvent represents a security-relevant occurrence that is logged
// regardless of whether the durable audit log also records it.
type SecurityEvent struct {
	EventType string
	UserID    string
	SessionID string
	AcademyID string
	IPAddress string
	Action    string
	Result    string // success, failure, denied
	Reason    string
}

// SecurityLogger logs authentication and authorization events.
type SecurityLogger struct {
	logger *slog.Logger
}

// NewSecurityLogger creates a security event logger on top of the default logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: slog.Default().With(Component("security")),
	}
}

// Log logs a security event
func (s *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	attrs := []slog.Attr{
		slog.String("event_type", event.EventType),
		slog.String("action", event.Action),
		slog.String("result", event.Result),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}
	if event.AcademyID != "" {
		attrs = append(attrs, slog.String("academy_id", event.AcademyID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("reason", event.Reason))
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "security_event", attrs...)
}

// LoginFailure logs a failed credential check. The attempted email is not
// logged; the reason string must stay coarse to avoid an oracle.
func (s *SecurityLogger) LoginFailure(ctx context.Context, ipAddr, reason string) {
	s.Log(ctx, SecurityEvent{
		EventType: "authentication",
		IPAddress: ipAddr,
		Action:    "login",
		Result:    "failure",
		Reason:    reason,
	})
}

// GuardDenied logs a request rejected by the route guard.
func (s *SecurityLogger) GuardDenied(ctx context.Context, userID, academyID, ipAddr, code string) {
	s.Log(ctx, SecurityEvent{
		EventType: "access_control",
		UserID:    userID,
		AcademyID: academyID,
		IPAddress: ipAddr,
		Action:    "guard",
		Result:    "denied",
		Reason:    code,
	})
}
