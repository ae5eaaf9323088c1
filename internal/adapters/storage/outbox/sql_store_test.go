package outbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	store "actiontracker/internal/adapters/storage/outbox"
	"actiontracker/internal/adapters/storage/storagetest"
	domain "actiontracker/internal/domain/outbox"
)

func TestSQLStore_EnqueueDedup(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLStore(storagetest.NewDB(t))
	now := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)

	e1, err := domain.NewEmail("e1", domain.EmailPayload{To: "rep@acme.test", Subject: "Due today"}, "reminder:u1:2024-01-01", now)
	require.NoError(t, err)
	ok, err := s.Enqueue(ctx, e1)
	require.NoError(t, err)
	require.True(t, ok)

	e2 := e1
	e2.ID = "e2"
	ok, err = s.Enqueue(ctx, e2)
	require.NoError(t, err)
	require.False(t, ok, "duplicate dedup key should be skipped")

	// entries without a key never collide
	e3, _ := domain.NewEmail("e3", domain.EmailPayload{To: "a@b.c"}, "", now)
	e4, _ := domain.NewEmail("e4", domain.EmailPayload{To: "a@b.c"}, "", now)
	for _, e := range []domain.Entry{e3, e4} {
		ok, err := s.Enqueue(ctx, e)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestSQLStore_ListDueRespectsBackoff(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLStore(storagetest.NewDB(t))
	now := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)

	e, err := domain.NewEmail("e1", domain.EmailPayload{To: "rep@acme.test"}, "", now)
	require.NoError(t, err)
	_, err = s.Enqueue(ctx, e)
	require.NoError(t, err)

	due, err := s.ListDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)

	e.MarkAttempt(now)
	e.MarkFailed(errors.New("boom"), now, time.Minute, time.Hour)
	require.NoError(t, s.Save(ctx, e))

	due, err = s.ListDue(ctx, now.Add(30*time.Second), 10)
	require.NoError(t, err)
	require.Empty(t, due)

	due, err = s.ListDue(ctx, now.Add(3*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, 1, due[0].Attempts)
	require.Equal(t, "boom", due[0].ErrorMessage)

	retrying, err := s.ListByStatus(ctx, domain.StatusRetrying, 10)
	require.NoError(t, err)
	require.Len(t, retrying, 1)
}
