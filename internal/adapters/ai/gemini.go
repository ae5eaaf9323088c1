package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// copySchema constrains structured generations to the Copy fields.
var copySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"headline":    {Type: genai.TypeString},
		"body":        {Type: genai.TypeString},
		"cta":         {Type: genai.TypeString},
		"imagePrompt": {Type: genai.TypeString},
	},
	Required:         []string{"headline", "body", "cta"},
	PropertyOrdering: []string{"headline", "body", "cta", "imagePrompt"},
}

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// NewGeminiGenerator creates a generator for model.
// PRE: apiKey is non-empty
func NewGeminiGenerator(ctx context.Context, apiKey, model string, temperature float32, timeout time.Duration) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model, temperature: temperature, timeout: timeout}, nil
}

// Generate sends the prompt and parses the reply.
// POST: on error no partial Copy is returned
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (Copy, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if req.Structured {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = copySchema
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		slog.Error("ai_generate_failed", "model", g.model, "error", err)
		return Copy{}, fmt.Errorf("gemini generate: %w", err)
	}
	slog.Info("ai_generated", "model", g.model, "structured", req.Structured,
		"duration_ms", time.Since(start).Milliseconds())

	return parseCopy(resp.Text(), req.Structured)
}
