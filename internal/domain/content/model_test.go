package content_test

import (
	"strings"
	"testing"
	"time"

	"actiontracker/internal/domain/avatar"
	"actiontracker/internal/domain/content"
)

// TestBuildPrompt checks that avatar details and kind instructions reach the prompt.
func TestBuildPrompt(t *testing.T) {
	a := avatar.BuyerAvatar{Name: "Busy Brenda", PainPoints: "no time to prospect"}

	tests := []struct {
		kind string
		want string
	}{
		{content.KindAd, "Write one paid ad for Facebook"},
		{content.KindEmail, "Write one sales email"},
		{content.KindSocial, "Write one organic social post for Facebook"},
		{content.KindHooks, "Write 10 opening hooks"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			p, err := content.BuildPrompt(content.PromptRequest{Avatar: a, Kind: tt.kind, Platform: "Facebook"})
			if err != nil {
				t.Fatalf("BuildPrompt: %v", err)
			}
			if !strings.Contains(p, tt.want) {
				t.Errorf("prompt missing %q:\n%s", tt.want, p)
			}
			if !strings.Contains(p, "Busy Brenda") || !strings.Contains(p, "no time to prospect") {
				t.Errorf("prompt missing avatar details:\n%s", p)
			}
			if !strings.Contains(p, "Desires: (not provided)") {
				t.Errorf("blank avatar fields should render as not provided")
			}
		})
	}

	if _, err := content.BuildPrompt(content.PromptRequest{Avatar: a, Kind: "tweetstorm"}); err != content.ErrInvalidKind {
		t.Errorf("invalid kind error = %v", err)
	}
}

// TestContent_PostedLifecycle tests posting and performance recording.
func TestContent_PostedLifecycle(t *testing.T) {
	c := content.Content{UserID: "u1", AvatarID: "a1", Kind: content.KindAd, Body: "Buy now"}

	if err := c.RecordPerformance(content.Performance{Clicks: 1}); err != content.ErrNotPosted {
		t.Errorf("record before posting = %v", err)
	}
	if err := c.MarkPosted(time.Now()); err != nil {
		t.Fatalf("MarkPosted: %v", err)
	}
	if err := c.MarkPosted(time.Now()); err != content.ErrAlreadyPosted {
		t.Errorf("second MarkPosted = %v", err)
	}
	if err := c.RecordPerformance(content.Performance{Impressions: -1}); err != content.ErrNegativeMetric {
		t.Errorf("negative metric = %v", err)
	}
	if err := c.RecordPerformance(content.Performance{Impressions: 200, Clicks: 5}); err != nil {
		t.Fatalf("RecordPerformance: %v", err)
	}
	if ctr := c.Performance.ClickThroughRate(); ctr != 2.5 {
		t.Errorf("CTR = %v, want 2.5", ctr)
	}
}
