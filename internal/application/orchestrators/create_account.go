package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"actiontracker/internal/adapters/storage"
	"actiontracker/internal/domain/account"
	"actiontracker/internal/domain/subscription"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email     string
	Name      string
	Password  string
	Role      string
	CompanyID string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore      AccountStoreForCreate
	SubscriptionStore SubscriptionStoreForOrchestrator // optional; starts the free plan
	GenerateID        func() string
	Now               func() time.Time
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteCreateAccount coordinates account creation.
// PRE: Valid email, password >= 12 chars, valid role
// POST: Account created with hashed password
// INVARIANT: Email must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (account.Account, error) {
	email := strings.TrimSpace(input.Email)
	_, err := deps.AccountStore.GetByEmail(ctx, email)
	if err == nil {
		return account.Account{}, ErrEmailAlreadyExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return account.Account{}, err
	}

	now := deps.Now()
	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     email,
		Name:      strings.TrimSpace(input.Name),
		Role:      input.Role,
		CompanyID: input.CompanyID,
		CreatedAt: now,
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Account{}, err
	}
	if deps.SubscriptionStore != nil {
		if err := deps.SubscriptionStore.Save(ctx, subscription.NewFree(acct.ID, now)); err != nil {
			slog.Error("subscription_not_started", "account_id", acct.ID, "error", err)
		}
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", acct.Role, "company_id", acct.CompanyID)
	return acct, nil
}

// ExecuteSeedAdmin creates a default admin account if no accounts exist.
// PRE: Database is migrated
// POST: Admin account created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:    email,
		Name:     "Administrator",
		Password: password,
		Role:     account.RoleAdmin,
	}, deps); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}
