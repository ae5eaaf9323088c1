package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// mdRenderer escapes raw HTML in the source (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family:-apple-system,Segoe UI,Helvetica,Arial,sans-serif;line-height:1.5;color:#1f2933;max-width:600px;margin:0 auto;padding:24px">
{{.Body}}
<p style="color:#7b8794;font-size:12px;margin-top:32px">Sent by Massive Action Tracker</p>
</body></html>`))

// MarkdownToHTML renders a markdown fragment to HTML.
func MarkdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Render builds a SendRequest for one recipient from a markdown body.
// The markdown source doubles as the plain-text alternative.
func Render(to, subject, md string) (SendRequest, error) {
	body, err := MarkdownToHTML(md)
	if err != nil {
		return SendRequest{}, err
	}
	var buf bytes.Buffer
	err = layout.Execute(&buf, struct {
		Subject string
		Body    template.HTML
	}{subject, template.HTML(body)})
	if err != nil {
		return SendRequest{}, fmt.Errorf("render email layout: %w", err)
	}
	return SendRequest{
		To:      []string{to},
		Subject: subject,
		HTML:    buf.String(),
		Text:    md,
	}, nil
}
