package content

import (
	"bytes"
	"strings"
	"text/template"

	"actiontracker/internal/domain/avatar"
)

// PromptRequest is everything the prompt template needs.
type PromptRequest struct {
	Avatar   avatar.BuyerAvatar
	Kind     string
	Platform string
	Tone     string
	Extra    string
}

// Fields returned by schema-constrained generations.
const (
	FieldHeadline    = "headline"
	FieldBody        = "body"
	FieldCTA         = "cta"
	FieldImagePrompt = "imagePrompt"
)

var promptTemplate = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"orNone": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "(not provided)"
		}
		return strings.TrimSpace(s)
	},
}).Parse(`You are a direct-response copywriter writing for one specific dream client.

DREAM CLIENT: {{.Avatar.Name}}
Demographics: {{orNone .Avatar.Demographics}}
Pain points: {{orNone .Avatar.PainPoints}}
Desires: {{orNone .Avatar.Desires}}
Objections: {{orNone .Avatar.Objections}}
Where they hang out: {{orNone .Avatar.WateringHoles}}
Offer: {{orNone .Avatar.Offer}}

{{- if eq .Kind "ad"}}

Write one paid ad{{if .Platform}} for {{.Platform}}{{end}}. Return a headline under 40 characters, a body under 125 words, a call to action under 6 words, and an imagePrompt describing a scroll-stopping image.
{{- else if eq .Kind "email"}}

Write one sales email. Put the subject line in headline, the email in body (plain text, short paragraphs), the single next step in cta, and leave imagePrompt empty.
{{- else if eq .Kind "social"}}

Write one organic social post{{if .Platform}} for {{.Platform}}{{end}}. Put the hook in headline, the post in body, the engagement prompt in cta, and an imagePrompt for an accompanying image.
{{- else}}

Write 10 opening hooks, one per line, numbered 1 to 10. No commentary.
{{- end}}
Tone: {{if .Tone}}{{.Tone}}{{else}}conversational, confident, specific{{end}}.
{{- if .Extra}}
Additional instructions: {{.Extra}}
{{- end}}
`))

// BuildPrompt renders the generation prompt for an avatar.
// PRE: req.Kind is valid
// POST: returns a non-empty prompt string
func BuildPrompt(req PromptRequest) (string, error) {
	if !IsValidKind(req.Kind) {
		return "", ErrInvalidKind
	}
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
