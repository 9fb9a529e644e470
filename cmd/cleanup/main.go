package main

import (
	"context"
	"fmt"
	"os"

	"github.com/academykit/academykit/internal/audit"
	"github.com/academykit/academykit/internal/config"
	"github.com/academykit/academykit/internal/invite"
	"github.com/academykit/academykit/internal/scope"
	"github.com/academykit/academykit/internal/session"
	"github.com/academykit/academykit/internal/store/postgres"
)

// One-shot pruner for expired sessions and unredeemed expired invites.
// Meant for cron; the server also runs the same sweep hourly.
func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	stores := postgres.NewFactory(db).Scoped(scope.Global())

	sessionService := session.NewService(stores.Sessions, cfg.Auth.SessionLifetime)
	n, err := sessionService.CleanupExpired(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Session cleanup failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Pruned %d expired sessions.\n", n)

	inviteService := invite.NewService(stores.Invites, nil, audit.NopRecorder{}, cfg.Auth.InviteLifetime)
	n, err = inviteService.CleanupExpired(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invite cleanup failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Pruned %d expired invites.\n", n)
}
