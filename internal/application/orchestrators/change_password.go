package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"actiontracker/internal/domain/account"
)

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
}

// AccountStoreForChangePassword defines the store interface needed by ChangePassword.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForChangePassword
}

var (
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrNewPasswordSame      = errors.New("new password must be different from current password")
	ErrResetOwnPassword     = errors.New("use the change-password form for your own account")
)

// ExecuteChangePassword checks the current password and stores a new hash.
// PRE: AccountID names an existing account
// POST: password updated and the failed-login counter cleared
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return account.ErrEmptyPassword
	}
	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		slog.Warn("auth_event", "event", "password_change_rejected", "account_id", acct.ID)
		return ErrCurrentPasswordWrong
	}
	if input.CurrentPassword == input.NewPassword {
		return ErrNewPasswordSame
	}
	if err := storeNewPassword(ctx, &acct, input.NewPassword, deps.AccountStore); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_changed", "account_id", acct.ID)
	return nil
}

// ResetPasswordInput carries an admin-issued password for another account.
type ResetPasswordInput struct {
	AdminID     string
	AccountID   string
	NewPassword string
}

// ExecuteResetPassword sets a password without the current one and lifts any lockout.
// An admin cannot reset their own password this way.
// PRE: caller is an admin
// POST: password updated, FailedLogins == 0, LockedUntil zero
func ExecuteResetPassword(ctx context.Context, input ResetPasswordInput, deps ChangePasswordDeps) (account.Account, error) {
	if input.NewPassword == "" {
		return account.Account{}, account.ErrEmptyPassword
	}
	if input.AdminID == input.AccountID {
		return account.Account{}, ErrResetOwnPassword
	}
	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return account.Account{}, err
	}
	wasLocked := acct.FailedLogins > 0 || !acct.LockedUntil.IsZero()
	if err := storeNewPassword(ctx, &acct, input.NewPassword, deps.AccountStore); err != nil {
		return account.Account{}, err
	}

	slog.Info("auth_event", "event", "password_reset", "account_id", acct.ID,
		"admin_id", input.AdminID, "unlocked", wasLocked)
	return acct, nil
}

func storeNewPassword(ctx context.Context, acct *account.Account, plaintext string, store AccountStoreForChangePassword) error {
	if err := acct.SetPassword(plaintext); err != nil {
		return err
	}
	acct.ResetFailedLogins()
	if err := store.Save(ctx, *acct); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}
