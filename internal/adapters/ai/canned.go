package ai

import (
	"context"
	"fmt"
	"strings"
)

// CannedGenerator returns placeholder copy without calling a model.
// It stands in when no API key is configured.
type CannedGenerator struct{}

// NewCannedGenerator creates a CannedGenerator.
func NewCannedGenerator() *CannedGenerator {
	return &CannedGenerator{}
}

// Generate returns deterministic copy derived from the prompt's first line.
func (CannedGenerator) Generate(ctx context.Context, req Request) (Copy, error) {
	if err := ctx.Err(); err != nil {
		return Copy{}, err
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return Copy{}, ErrEmptyResponse
	}
	if !req.Structured {
		var b strings.Builder
		for i := 1; i <= 10; i++ {
			fmt.Fprintf(&b, "%d. Placeholder hook %d\n", i, i)
		}
		return Copy{Body: strings.TrimSpace(b.String())}, nil
	}
	return Copy{
		Headline:    "Placeholder headline",
		Body:        "Placeholder body. Configure a Gemini API key for real copy.",
		CTA:         "Learn more",
		ImagePrompt: "A bright, friendly product photo",
	}, nil
}
