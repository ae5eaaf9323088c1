// Package ai generates marketing copy for the Dream Client Studio.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Request is one generation call.
type Request struct {
	Prompt     string
	Structured bool // ask for headline/body/cta/imagePrompt JSON instead of free text
}

// Copy is the parsed output of a generation.
type Copy struct {
	Headline    string `json:"headline"`
	Body        string `json:"body"`
	CTA         string `json:"cta"`
	ImagePrompt string `json:"imagePrompt"`
}

// Generator produces copy from a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (Copy, error)
}

// parseCopy turns raw model text into Copy. Structured output tolerates a
// markdown code fence around the JSON object.
func parseCopy(text string, structured bool) (Copy, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Copy{}, ErrEmptyResponse
	}
	if !structured {
		return Copy{Body: text}, nil
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var c Copy
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &c); err != nil {
		return Copy{}, fmt.Errorf("decode structured copy: %w", err)
	}
	if strings.TrimSpace(c.Body) == "" {
		return Copy{}, ErrEmptyResponse
	}
	return c, nil
}
