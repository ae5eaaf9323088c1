package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"actiontracker/internal/adapters/ai"
	"actiontracker/internal/adapters/storage"
	"actiontracker/internal/domain/account"
	"actiontracker/internal/domain/avatar"
	"actiontracker/internal/domain/content"
	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/hotlead"
	"actiontracker/internal/domain/outbox"
	"actiontracker/internal/domain/subscription"
	"actiontracker/internal/domain/transaction"
)

var testTime = time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

func testNow() time.Time { return testTime }

// seqIDs returns a generator producing id-1, id-2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// --- days ---

type memDayStore struct {
	days      map[string]dayrecord.DayRecord
	saveCalls int
	failSave  error
}

func newMemDayStore(recs ...dayrecord.DayRecord) *memDayStore {
	s := &memDayStore{days: map[string]dayrecord.DayRecord{}}
	for _, r := range recs {
		r.FillSlots()
		s.days[r.UserID+"|"+r.Date] = r
	}
	return s
}

func (s *memDayStore) Get(_ context.Context, userID, date string) (dayrecord.DayRecord, error) {
	r, ok := s.days[userID+"|"+date]
	if !ok {
		return dayrecord.DayRecord{}, storage.ErrNotFound
	}
	return cloneDay(r), nil
}

// cloneDay deep-copies a record the way a round trip through storage would.
func cloneDay(r dayrecord.DayRecord) dayrecord.DayRecord {
	raw, err := json.Marshal(r)
	if err != nil {
		panic(err)
	}
	var out dayrecord.DayRecord
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}

func (s *memDayStore) Save(ctx context.Context, rec dayrecord.DayRecord) error {
	return s.SaveAll(ctx, rec)
}

func (s *memDayStore) SaveAll(_ context.Context, recs ...dayrecord.DayRecord) error {
	s.saveCalls++
	if s.failSave != nil {
		return s.failSave
	}
	for _, r := range recs {
		s.days[r.UserID+"|"+r.Date] = cloneDay(r)
	}
	return nil
}

func (s *memDayStore) ListRange(_ context.Context, userIDs []string, from, to string) ([]dayrecord.DayRecord, error) {
	want := map[string]bool{}
	for _, id := range userIDs {
		want[id] = true
	}
	var out []dayrecord.DayRecord
	for _, r := range s.days {
		if r.Date < from || r.Date > to || (len(want) > 0 && !want[r.UserID]) {
			continue
		}
		out = append(out, cloneDay(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (s *memDayStore) EventDate(_ context.Context, userID, ghlEventID string) (string, error) {
	for _, r := range s.days {
		if r.UserID != userID {
			continue
		}
		for _, ev := range r.Events {
			if ev.GHLEventID == ghlEventID {
				return r.Date, nil
			}
		}
	}
	return "", storage.ErrNotFound
}

// --- hot leads ---

type memHotLeadStore struct {
	leads map[string]hotlead.HotLead
}

func newMemHotLeadStore() *memHotLeadStore {
	return &memHotLeadStore{leads: map[string]hotlead.HotLead{}}
}

func (s *memHotLeadStore) GetByID(_ context.Context, id string) (hotlead.HotLead, error) {
	l, ok := s.leads[id]
	if !ok {
		return hotlead.HotLead{}, storage.ErrNotFound
	}
	return l, nil
}

func (s *memHotLeadStore) GetByExternalID(_ context.Context, userID, contactID string) (hotlead.HotLead, error) {
	for _, l := range s.leads {
		if l.UserID == userID && l.GHLContactID == contactID {
			return l, nil
		}
	}
	return hotlead.HotLead{}, storage.ErrNotFound
}

func (s *memHotLeadStore) Save(_ context.Context, l hotlead.HotLead) error {
	s.leads[l.ID] = l
	return nil
}

func (s *memHotLeadStore) ListDue(_ context.Context, userID, date string) ([]hotlead.HotLead, error) {
	var out []hotlead.HotLead
	for _, l := range s.leads {
		if (userID == "" || l.UserID == userID) && l.IsDue(date) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- transactions ---

type memTransactionStore struct {
	txns map[string]transaction.Transaction
}

func newMemTransactionStore(txns ...transaction.Transaction) *memTransactionStore {
	s := &memTransactionStore{txns: map[string]transaction.Transaction{}}
	for _, t := range txns {
		s.txns[t.ID] = t
	}
	return s
}

func (s *memTransactionStore) GetByID(_ context.Context, id string) (transaction.Transaction, error) {
	t, ok := s.txns[id]
	if !ok {
		return transaction.Transaction{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *memTransactionStore) GetByExternalID(_ context.Context, userID, oppID string) (transaction.Transaction, error) {
	for _, t := range s.txns {
		if t.UserID == userID && t.GHLOpportunityID == oppID {
			return t, nil
		}
	}
	return transaction.Transaction{}, storage.ErrNotFound
}

func (s *memTransactionStore) Save(_ context.Context, t transaction.Transaction) error {
	s.txns[t.ID] = t
	return nil
}

func (s *memTransactionStore) Delete(_ context.Context, id string) error {
	if _, ok := s.txns[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.txns, id)
	return nil
}

func (s *memTransactionStore) ListByUsers(_ context.Context, userIDs []string, from, to string) ([]transaction.Transaction, error) {
	var out []transaction.Transaction
	for _, t := range s.txns {
		for _, u := range userIDs {
			if t.UserID == u && (from == "" || t.Date >= from) && (to == "" || t.Date <= to) {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

// --- studio ---

type memAvatarStore struct {
	avatars map[string]avatar.BuyerAvatar
}

func (s *memAvatarStore) GetByID(_ context.Context, id string) (avatar.BuyerAvatar, error) {
	a, ok := s.avatars[id]
	if !ok {
		return avatar.BuyerAvatar{}, storage.ErrNotFound
	}
	return a, nil
}

func (s *memAvatarStore) Save(_ context.Context, a avatar.BuyerAvatar) error {
	s.avatars[a.ID] = a
	return nil
}

func (s *memAvatarStore) Delete(_ context.Context, id string) error {
	delete(s.avatars, id)
	return nil
}

type memContentStore struct {
	items map[string]content.Content
}

func (s *memContentStore) GetByID(_ context.Context, id string) (content.Content, error) {
	c, ok := s.items[id]
	if !ok {
		return content.Content{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *memContentStore) Save(_ context.Context, c content.Content) error {
	s.items[c.ID] = c
	return nil
}

type memSubscriptionStore struct {
	subs map[string]subscription.Subscription
}

func (s *memSubscriptionStore) Get(_ context.Context, userID string) (subscription.Subscription, error) {
	sub, ok := s.subs[userID]
	if !ok {
		return subscription.Subscription{}, storage.ErrNotFound
	}
	return sub, nil
}

func (s *memSubscriptionStore) Save(_ context.Context, sub subscription.Subscription) error {
	s.subs[sub.UserID] = sub
	return nil
}

type fakeGenerator struct {
	out     ai.Copy
	err     error
	prompts []ai.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req ai.Request) (ai.Copy, error) {
	g.prompts = append(g.prompts, req)
	return g.out, g.err
}

// --- accounts ---

type memAccountStore struct {
	accounts map[string]account.Account
}

func newMemAccountStore(accts ...account.Account) *memAccountStore {
	s := &memAccountStore{accounts: map[string]account.Account{}}
	for _, a := range accts {
		s.accounts[a.ID] = a
	}
	return s
}

func (s *memAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return account.Account{}, storage.ErrNotFound
	}
	return a, nil
}

func (s *memAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, storage.ErrNotFound
}

func (s *memAccountStore) Save(_ context.Context, a account.Account) error {
	s.accounts[a.ID] = a
	return nil
}

func (s *memAccountStore) Count(_ context.Context) (int, error) {
	return len(s.accounts), nil
}

// --- outbox ---

type memOutbox struct {
	mu      sync.Mutex
	entries map[string]outbox.Entry
	keys    map[string]bool
}

func newMemOutbox() *memOutbox {
	return &memOutbox{entries: map[string]outbox.Entry{}, keys: map[string]bool{}}
}

func (s *memOutbox) Enqueue(_ context.Context, e outbox.Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.DedupKey != "" && s.keys[e.DedupKey] {
		return false, nil
	}
	s.keys[e.DedupKey] = true
	s.entries[e.ID] = e
	return true, nil
}

func (s *memOutbox) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return outbox.Entry{}, storage.ErrNotFound
	}
	return e, nil
}

func (s *memOutbox) Save(_ context.Context, e outbox.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = e
	return nil
}

func (s *memOutbox) ListDue(_ context.Context, now time.Time, limit int) ([]outbox.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []outbox.Entry
	for _, e := range s.entries {
		if (e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying) && !e.NextAttemptAt.After(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
