package orchestrators

import (
	"context"
	"log/slog"

	"grindset/internal/domain/account"
)

// AdminLister reports existing admin accounts.
type AdminLister interface {
	ListByRole(ctx context.Context, role string) ([]account.Account, error)
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	Admins AdminLister
	SignUp SignUpDeps
}

// ExecuteSeedAdmin creates the configured admin account when no admin exists yet.
// An empty email or password disables seeding.
// POST: at least one admin account exists, or seeding was skipped
func ExecuteSeedAdmin(ctx context.Context, emailAddr, password string, deps SeedAdminDeps) error {
	if emailAddr == "" || password == "" {
		slog.Info("auth_event", "event", "admin_seed_skipped", "reason", "not_configured")
		return nil
	}

	admins, err := deps.Admins.ListByRole(ctx, account.RoleAdmin)
	if err != nil {
		return err
	}
	if len(admins) > 0 {
		return nil
	}

	acct, err := createAccount(ctx, emailAddr, password, account.RoleAdmin, deps.SignUp)
	if err != nil {
		return err
	}
	slog.Info("auth_event", "event", "admin_seeded", "account_id", acct.ID)
	return nil
}
