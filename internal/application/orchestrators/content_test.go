package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"actiontracker/internal/adapters/ai"
	"actiontracker/internal/domain/avatar"
	"actiontracker/internal/domain/content"
	"actiontracker/internal/domain/subscription"
)

type studioFixture struct {
	avatars *memAvatarStore
	items   *memContentStore
	subs    *memSubscriptionStore
	gen     *fakeGenerator
	deps    GenerateContentDeps
}

func newStudioFixture() *studioFixture {
	f := &studioFixture{
		avatars: &memAvatarStore{avatars: map[string]avatar.BuyerAvatar{
			"av1": {ID: "av1", UserID: "u1", Name: "Busy Brenda", PainPoints: "no leads"},
		}},
		items: &memContentStore{items: map[string]content.Content{}},
		subs:  &memSubscriptionStore{subs: map[string]subscription.Subscription{}},
		gen:   &fakeGenerator{out: ai.Copy{Headline: "H", Body: "B", CTA: "C"}},
	}
	f.deps = GenerateContentDeps{
		AvatarStore:       f.avatars,
		ContentStore:      f.items,
		SubscriptionStore: f.subs,
		Generator:         f.gen,
		Limits:            subscription.Limits{subscription.PlanFree: 2},
		GenerateID:        seqIDs(),
		Now:               testNow,
	}
	return f
}

// TestGenerateContent_ConsumesUsage saves content and counts the generation.
func TestGenerateContent_ConsumesUsage(t *testing.T) {
	f := newStudioFixture()
	in := GenerateContentInput{UserID: "u1", AvatarID: "av1", Kind: content.KindAd, Platform: "Instagram"}

	res, err := ExecuteGenerateContent(context.Background(), in, f.deps)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Content.Headline != "H" || res.Content.AvatarID != "av1" || res.Remaining != 1 {
		t.Errorf("result = %+v", res)
	}
	if !f.gen.prompts[0].Structured || !strings.Contains(f.gen.prompts[0].Prompt, "Busy Brenda") {
		t.Errorf("request = %+v", f.gen.prompts[0])
	}
	if _, ok := f.items.items[res.Content.ID]; !ok {
		t.Errorf("content not saved")
	}
	if f.subs.subs["u1"].GenerationsUsed != 1 {
		t.Errorf("usage = %+v", f.subs.subs["u1"])
	}

	in.Kind = content.KindHooks
	if _, err := ExecuteGenerateContent(context.Background(), in, f.deps); err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if f.gen.prompts[1].Structured {
		t.Errorf("hooks should be free text")
	}
	if _, err := ExecuteGenerateContent(context.Background(), in, f.deps); !errors.Is(err, subscription.ErrLimitReached) {
		t.Errorf("third generate err = %v, want ErrLimitReached", err)
	}
	if len(f.gen.prompts) != 2 {
		t.Errorf("model called after limit reached")
	}
}

// TestGenerateContent_FailureKeepsUsage leaves quota untouched when the model fails.
func TestGenerateContent_FailureKeepsUsage(t *testing.T) {
	f := newStudioFixture()
	f.gen.err = errors.New("503 from model")

	_, err := ExecuteGenerateContent(context.Background(), GenerateContentInput{UserID: "u1", AvatarID: "av1", Kind: content.KindEmail}, f.deps)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
	if len(f.items.items) != 0 || len(f.subs.subs) != 0 {
		t.Errorf("failure wrote state: items=%d subs=%d", len(f.items.items), len(f.subs.subs))
	}

	f.gen.err = nil
	f.gen.out = ai.Copy{Headline: "only a headline"}
	if _, err := ExecuteGenerateContent(context.Background(), GenerateContentInput{UserID: "u1", AvatarID: "av1", Kind: content.KindEmail}, f.deps); !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("empty body err = %v", err)
	}
}

// TestGenerateContent_Access rejects other users' avatars and bad kinds.
func TestGenerateContent_Access(t *testing.T) {
	f := newStudioFixture()
	if _, err := ExecuteGenerateContent(context.Background(), GenerateContentInput{UserID: "u2", AvatarID: "av1", Kind: content.KindAd}, f.deps); !errors.Is(err, ErrNotOwner) {
		t.Errorf("other user err = %v", err)
	}
	if _, err := ExecuteGenerateContent(context.Background(), GenerateContentInput{UserID: "u1", AvatarID: "av1", Kind: "poem"}, f.deps); !errors.Is(err, content.ErrInvalidKind) {
		t.Errorf("bad kind err = %v", err)
	}
}

// TestGenerateContent_PeriodReset gives a fresh quota after a month.
func TestGenerateContent_PeriodReset(t *testing.T) {
	f := newStudioFixture()
	f.subs.subs["u1"] = subscription.Subscription{
		UserID: "u1", Plan: subscription.PlanFree, GenerationsUsed: 2,
		PeriodStart: testTime.AddDate(0, -1, -1),
	}
	res, err := ExecuteGenerateContent(context.Background(), GenerateContentInput{UserID: "u1", AvatarID: "av1", Kind: content.KindSocial}, f.deps)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := f.subs.subs["u1"]; got.GenerationsUsed != 1 || !got.PeriodStart.Equal(testTime) || res.Remaining != 1 {
		t.Errorf("subscription = %+v", got)
	}
}

// TestContentPostedAndPerformance covers the post-generation lifecycle.
func TestContentPostedAndPerformance(t *testing.T) {
	store := &memContentStore{items: map[string]content.Content{
		"c1": {ID: "c1", UserID: "u1", AvatarID: "av1", Kind: content.KindAd, Body: "Buy"},
	}}
	deps := ContentActionDeps{ContentStore: store, Now: testNow}

	if _, err := ExecuteRecordContentPerformance(context.Background(), "u1", "c1", content.Performance{Clicks: 1}, deps); !errors.Is(err, content.ErrNotPosted) {
		t.Errorf("performance before posting err = %v", err)
	}
	c, err := ExecuteMarkContentPosted(context.Background(), "u1", "c1", deps)
	if err != nil || !c.Posted || c.PostedAt == nil || !c.PostedAt.Equal(testTime) {
		t.Fatalf("posted = %+v, %v", c, err)
	}
	if _, err := ExecuteMarkContentPosted(context.Background(), "u2", "c1", deps); !errors.Is(err, ErrNotOwner) {
		t.Errorf("other user err = %v", err)
	}
	c, err = ExecuteRecordContentPerformance(context.Background(), "u1", "c1", content.Performance{Impressions: 1000, Clicks: 30, Leads: 4}, deps)
	if err != nil || store.items["c1"].Performance.Leads != 4 {
		t.Errorf("performance = %+v, %v", c.Performance, err)
	}
}

// TestAvatarSaveAndDelete covers create, update and ownership.
func TestAvatarSaveAndDelete(t *testing.T) {
	store := &memAvatarStore{avatars: map[string]avatar.BuyerAvatar{}}
	deps := AvatarDeps{AvatarStore: store, GenerateID: seqIDs(), Now: testNow}

	a, err := ExecuteSaveAvatar(context.Background(), SaveAvatarInput{UserID: "u1", Name: "Coach Carl", Offer: "1:1 coaching"}, deps)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	later := testTime.Add(time.Hour)
	deps.Now = func() time.Time { return later }
	updated, err := ExecuteSaveAvatar(context.Background(), SaveAvatarInput{UserID: "u1", ID: a.ID, Name: "Coach Carla"}, deps)
	if err != nil || updated.ID != a.ID || !updated.CreatedAt.Equal(testTime) || !updated.UpdatedAt.Equal(later) {
		t.Errorf("updated = %+v, %v", updated, err)
	}
	if _, err := ExecuteSaveAvatar(context.Background(), SaveAvatarInput{UserID: "u2", ID: a.ID, Name: "Mine now"}, deps); !errors.Is(err, ErrNotOwner) {
		t.Errorf("foreign update err = %v", err)
	}
	if _, err := ExecuteSaveAvatar(context.Background(), SaveAvatarInput{UserID: "u1", Name: " "}, deps); !errors.Is(err, avatar.ErrEmptyName) {
		t.Errorf("blank name err = %v", err)
	}
	if err := ExecuteDeleteAvatar(context.Background(), "u2", a.ID, deps); !errors.Is(err, ErrNotOwner) {
		t.Errorf("foreign delete err = %v", err)
	}
	if err := ExecuteDeleteAvatar(context.Background(), "u1", a.ID, deps); err != nil || len(store.avatars) != 0 {
		t.Errorf("delete err = %v, remaining = %d", err, len(store.avatars))
	}
}
