package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"actiontracker/internal/adapters/storage"
	store "actiontracker/internal/adapters/storage/account"
	"actiontracker/internal/adapters/storage/storagetest"
	domain "actiontracker/internal/domain/account"
)

func TestSQLStore_SaveAndLookup(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLStore(storagetest.NewDB(t))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	acct := domain.Account{ID: "m1", Email: "Boss@Acme.test", Name: "Boss", Role: domain.RoleManager, CompanyID: "acme", CreatedAt: now}
	require.NoError(t, s.Save(ctx, acct))
	require.NoError(t, s.Save(ctx, domain.Account{ID: "r1", Email: "rep@acme.test", Name: "Rep", Role: domain.RoleRep, CompanyID: "acme", CreatedAt: now}))
	require.NoError(t, s.Save(ctx, domain.Account{ID: "r2", Email: "rep@globex.test", Name: "Other", Role: domain.RoleRep, CompanyID: "globex", CreatedAt: now}))

	got, err := s.GetByEmail(ctx, "boss@acme.test")
	require.NoError(t, err)
	require.Equal(t, "m1", got.ID)
	require.True(t, got.LockedUntil.IsZero())

	got.RecordFailedLogin(now)
	got.LockedUntil = now.Add(time.Minute)
	require.NoError(t, s.Save(ctx, got))
	got, err = s.GetByID(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, 1, got.FailedLogins)
	require.True(t, got.LockedUntil.Equal(now.Add(time.Minute)))

	acme, err := s.List(ctx, store.ListFilter{CompanyID: "acme"})
	require.NoError(t, err)
	require.Len(t, acme, 2)

	_, err = s.GetByID(ctx, "nobody")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
