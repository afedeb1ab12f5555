package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"grindset/internal/adapters/email"
	"grindset/internal/domain/account"
	"grindset/internal/domain/profile"
)

// AccountStoreForSignUp defines the account store interface needed by SignUp and SeedAdmin.
type AccountStoreForSignUp interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ProfileStoreForSignUp defines the profile store interface needed by SignUp and SeedAdmin.
type ProfileStoreForSignUp interface {
	Save(ctx context.Context, p profile.Profile) error
}

// SignUpInput carries input for the sign-up orchestrator.
type SignUpInput struct {
	Email    string
	Password string
}

// SignUpResult identifies the new account.
type SignUpResult struct {
	AccountID string
	Email     string
	Role      string
}

// SignUpDeps holds dependencies for SignUp. Sender may be nil.
type SignUpDeps struct {
	AccountStore AccountStoreForSignUp
	ProfileStore ProfileStoreForSignUp
	Sender       email.Sender
	GenerateID   func() string
	Now          func() time.Time
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteSignUp creates a member account and its empty profile, then sends a welcome email.
// PRE: valid email, password >= account.MinPasswordLength
// POST: account and incomplete profile share one ID
// INVARIANT: email is unique
func ExecuteSignUp(ctx context.Context, input SignUpInput, deps SignUpDeps) (SignUpResult, error) {
	acct, err := createAccount(ctx, input.Email, input.Password, account.RoleMember, deps)
	if err != nil {
		return SignUpResult{}, err
	}

	if deps.Sender != nil {
		if _, err := deps.Sender.Send(ctx, email.WelcomeEmail(acct.Email)); err != nil {
			slog.Warn("auth_event", "event", "welcome_email_failed", "account_id", acct.ID, "error", err)
		}
	}

	return SignUpResult{AccountID: acct.ID, Email: acct.Email, Role: acct.Role}, nil
}

func createAccount(ctx context.Context, emailAddr, password, role string, deps SignUpDeps) (account.Account, error) {
	now := deps.Now()
	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     account.NormalizeEmail(emailAddr),
		Role:      role,
		CreatedAt: now,
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}

	_, err := deps.AccountStore.GetByEmail(ctx, acct.Email)
	if err == nil {
		return account.Account{}, ErrEmailAlreadyExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return account.Account{}, fmt.Errorf("%w: lookup account: %w", ErrPersistence, err)
	}

	if err := acct.SetPassword(password); err != nil {
		return account.Account{}, err
	}
	// Profile before account: a failed sign-up must leave the email free.
	if err := deps.ProfileStore.Save(ctx, profile.Profile{ID: acct.ID, CreatedAt: now, UpdatedAt: now}); err != nil {
		return account.Account{}, fmt.Errorf("%w: create profile: %w", ErrPersistence, err)
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Account{}, fmt.Errorf("%w: save account: %w", ErrPersistence, err)
	}

	slog.Info("auth_event", "event", "account_created", "account_id", acct.ID, "role", role)
	return acct, nil
}
