package orchestrators

import (
	"context"
	"errors"
	"testing"

	"actiontracker/internal/domain/account"
)

// TestExecuteChangePassword covers the accepted change and each rejection.
func TestExecuteChangePassword(t *testing.T) {
	store, _, _ := newLoginFixture(t)
	a := store.accounts["u1"]
	a.FailedLogins = 2
	store.accounts["u1"] = a
	deps := ChangePasswordDeps{AccountStore: store}
	ctx := context.Background()

	tests := []struct {
		name    string
		input   ChangePasswordInput
		wantErr error
	}{
		{"empty new", ChangePasswordInput{AccountID: "u1", CurrentPassword: "correct horse battery"}, account.ErrEmptyPassword},
		{"wrong current", ChangePasswordInput{AccountID: "u1", CurrentPassword: "nope nope nope", NewPassword: "a brand new passphrase"}, ErrCurrentPasswordWrong},
		{"same", ChangePasswordInput{AccountID: "u1", CurrentPassword: "correct horse battery", NewPassword: "correct horse battery"}, ErrNewPasswordSame},
		{"too short", ChangePasswordInput{AccountID: "u1", CurrentPassword: "correct horse battery", NewPassword: "short"}, account.ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ExecuteChangePassword(ctx, tt.input, deps); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	err := ExecuteChangePassword(ctx, ChangePasswordInput{
		AccountID:       "u1",
		CurrentPassword: "correct horse battery",
		NewPassword:     "a brand new passphrase",
	}, deps)
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	updated := store.accounts["u1"]
	if updated.CheckPassword("a brand new passphrase") != nil {
		t.Errorf("new password not stored")
	}
	if updated.FailedLogins != 0 {
		t.Errorf("failed logins = %d, want 0", updated.FailedLogins)
	}
}

// TestExecuteResetPassword lifts a lockout and refuses self-service resets.
func TestExecuteResetPassword(t *testing.T) {
	store, _, _ := newLoginFixture(t)
	a := store.accounts["u1"]
	for i := 0; i < account.MaxFailedLogins; i++ {
		a.RecordFailedLogin(testTime)
	}
	store.accounts["u1"] = a
	deps := ChangePasswordDeps{AccountStore: store}
	ctx := context.Background()

	if _, err := ExecuteResetPassword(ctx, ResetPasswordInput{AdminID: "u1", AccountID: "u1", NewPassword: "a brand new passphrase"}, deps); !errors.Is(err, ErrResetOwnPassword) {
		t.Errorf("own reset err = %v", err)
	}
	if _, err := ExecuteResetPassword(ctx, ResetPasswordInput{AdminID: "admin", AccountID: "missing", NewPassword: "a brand new passphrase"}, deps); err == nil {
		t.Errorf("expected error for unknown account")
	}

	got, err := ExecuteResetPassword(ctx, ResetPasswordInput{AdminID: "admin", AccountID: "u1", NewPassword: "a brand new passphrase"}, deps)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got.IsLocked(testTime) || store.accounts["u1"].FailedLogins != 0 {
		t.Errorf("account still locked: %+v", store.accounts["u1"])
	}
	if stored := store.accounts["u1"]; stored.CheckPassword("a brand new passphrase") != nil {
		t.Errorf("new password not stored")
	}
}
