package dayrecord_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"actiontracker/internal/adapters/storage"
	store "actiontracker/internal/adapters/storage/dayrecord"
	"actiontracker/internal/adapters/storage/storagetest"
	domain "actiontracker/internal/domain/dayrecord"
)

func TestSQLStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLStore(storagetest.NewDB(t))

	_, err := s.Get(ctx, "u1", "2024-01-10")
	require.ErrorIs(t, err, storage.ErrNotFound)

	rec := domain.NewEmpty("u1", "2024-01-10")
	rec.TopTargets = []domain.Goal{{ID: "g1", Text: "Call Acme"}}
	rec.SpeedOfImplementation[3] = domain.SOITarget{Goal: domain.Goal{ID: "s1", Text: "Launch ad"}, CurrentDay: 2, TotalDays: 30}
	rec.UpdatedAt = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "u1", "2024-01-10")
	require.NoError(t, err)
	require.Equal(t, "Call Acme", got.TopTargets[0].Text)
	require.Len(t, got.SpeedOfImplementation, domain.SOISlots)
	require.Equal(t, 2, got.SpeedOfImplementation[3].CurrentDay)

	// last write wins
	rec.TopTargets[0].Completed = true
	require.NoError(t, s.Save(ctx, rec))
	got, err = s.Get(ctx, "u1", "2024-01-10")
	require.NoError(t, err)
	require.True(t, got.TopTargets[0].Completed)
}

func TestSQLStore_SaveAllAtomic(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLStore(storagetest.NewDB(t))

	today := domain.NewEmpty("u1", "2024-01-10")
	tomorrow := domain.NewEmpty("u1", "2024-01-11")
	require.NoError(t, s.SaveAll(ctx, today, tomorrow))

	recs, err := s.ListRange(ctx, []string{"u1"}, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "2024-01-10", recs[0].Date)
	require.Equal(t, "2024-01-11", recs[1].Date)
}

func TestSQLStore_ListRangeFilters(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLStore(storagetest.NewDB(t))

	for _, r := range []struct{ user, date string }{
		{"u1", "2024-01-01"}, {"u1", "2024-01-05"}, {"u2", "2024-01-05"}, {"u3", "2024-02-01"},
	} {
		require.NoError(t, s.Save(ctx, domain.NewEmpty(r.user, r.date)))
	}

	recs, err := s.ListRange(ctx, []string{"u1", "u2"}, "2024-01-02", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "u1", recs[0].UserID)
	require.Equal(t, "u2", recs[1].UserID)

	all, err := s.ListRange(ctx, nil, "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	require.Len(t, all, 4)

	users, err := s.ListUserIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u2", "u3"}, users)
}

func TestSQLStore_ReadsOversizedListsWhole(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLStore(storagetest.NewDB(t))

	rec := domain.NewEmpty("u1", "2024-01-10")
	for i := 0; i < domain.MaxGoals+2; i++ {
		rec.MassiveGoals = append(rec.MassiveGoals, domain.Goal{ID: string(rune('a' + i)), Text: string(rune('A' + i))})
	}
	rec.SpeedOfImplementation = rec.SpeedOfImplementation[:4]
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "u1", "2024-01-10")
	require.NoError(t, err)
	require.Len(t, got.MassiveGoals, domain.MaxGoals+2)
	require.Len(t, got.SpeedOfImplementation, domain.SOISlots)

	recs, err := s.ListRange(ctx, nil, "2024-01-10", "2024-01-10")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Len(t, recs[0].MassiveGoals, domain.MaxGoals+2)
}

func TestSQLStore_EventDateFollowsMoves(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLStore(storagetest.NewDB(t))

	_, err := s.EventDate(ctx, "u1", "ghl-1")
	require.ErrorIs(t, err, storage.ErrNotFound)

	thu := domain.NewEmpty("u1", "2024-03-07")
	thu.UpsertEvent(domain.CalendarEvent{ID: "e1", Title: "Demo", GHLEventID: "ghl-1"})
	require.NoError(t, s.Save(ctx, thu))
	date, err := s.EventDate(ctx, "u1", "ghl-1")
	require.NoError(t, err)
	require.Equal(t, "2024-03-07", date)

	fri := domain.NewEmpty("u1", "2024-03-08")
	ev, ok := thu.TakeEventByExternalID("ghl-1")
	require.True(t, ok)
	fri.UpsertEvent(ev)
	require.NoError(t, s.SaveAll(ctx, fri, thu))
	date, err = s.EventDate(ctx, "u1", "ghl-1")
	require.NoError(t, err)
	require.Equal(t, "2024-03-08", date)

	_, err = s.EventDate(ctx, "u2", "ghl-1")
	require.ErrorIs(t, err, storage.ErrNotFound, "index is per user")

	require.NoError(t, s.Save(ctx, domain.NewEmpty("u1", "2024-03-08")))
	_, err = s.EventDate(ctx, "u1", "ghl-1")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
