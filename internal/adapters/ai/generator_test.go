package ai

import (
	"context"
	"errors"
	"testing"
)

func TestParseCopy(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		structured bool
		want       Copy
		wantErr    bool
	}{
		{"free text", "  1. Hook\n2. Hook  ", false, Copy{Body: "1. Hook\n2. Hook"}, false},
		{"json", `{"headline":"H","body":"B","cta":"C","imagePrompt":"I"}`, true, Copy{"H", "B", "C", "I"}, false},
		{"fenced json", "```json\n{\"headline\":\"H\",\"body\":\"B\",\"cta\":\"C\"}\n```", true, Copy{Headline: "H", Body: "B", CTA: "C"}, false},
		{"empty", "   ", false, Copy{}, true},
		{"json without body", `{"headline":"H"}`, true, Copy{}, true},
		{"not json", "sorry, I can't", true, Copy{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCopy(tt.text, tt.structured)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCannedGenerator(t *testing.T) {
	g := NewCannedGenerator()
	c, err := g.Generate(context.Background(), Request{Prompt: "x", Structured: true})
	if err != nil || c.Headline == "" || c.Body == "" {
		t.Errorf("structured = %+v, %v", c, err)
	}
	c, err = g.Generate(context.Background(), Request{Prompt: "x"})
	if err != nil || c.Headline != "" || c.Body == "" {
		t.Errorf("free text = %+v, %v", c, err)
	}
	if _, err := g.Generate(context.Background(), Request{}); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("empty prompt err = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Generate(ctx, Request{Prompt: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled err = %v", err)
	}
}
