package render

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"webex-room-archiver/internal/models"
)

// TemplateEngine renders a named template against a context value.
// The archiver uses exactly two template names: TextTemplate and
// HTMLTemplate.
type TemplateEngine interface {
	Render(name string, data any) (string, error)
}

// Template names understood by the default engine.
const (
	TextTemplate = "default.txt"
	HTMLTemplate = "default.html"
)

//go:embed templates/default.txt.tmpl templates/default.html.tmpl
var templateFS embed.FS

// Engine is the default TemplateEngine, backed by the embedded
// transcript templates
type Engine struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

// NewEngine parses the embedded templates. Parse failures are
// programmer errors, hence the Must-style panic.
func NewEngine() *Engine {
	funcs := map[string]any{
		"formatTime": formatTime,
		"humanSize":  humanSize,
		"sanitize":   models.SanitizeName,
	}

	textSrc, err := templateFS.ReadFile("templates/default.txt.tmpl")
	if err != nil {
		panic(err)
	}
	htmlSrc, err := templateFS.ReadFile("templates/default.html.tmpl")
	if err != nil {
		panic(err)
	}

	htmlFuncs := map[string]any{
		"formatTime":  formatTime,
		"humanSize":   humanSize,
		"sanitize":    models.SanitizeName,
		"messageBody": messageBody,
	}

	return &Engine{
		text: texttemplate.Must(texttemplate.New(TextTemplate).Funcs(funcs).Parse(string(textSrc))),
		html: htmltemplate.Must(htmltemplate.New(HTMLTemplate).Funcs(htmlFuncs).Parse(string(htmlSrc))),
	}
}

// Render executes the named template against data
func (e *Engine) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	switch name {
	case TextTemplate:
		if err := e.text.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("rendering %s: %w", name, err)
		}
	case HTMLTemplate:
		if err := e.html.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("rendering %s: %w", name, err)
		}
	default:
		return "", fmt.Errorf("unknown template %q", name)
	}
	return buf.String(), nil
}

func formatTime(t time.Time, layout string) string {
	return t.Format(layout)
}

func humanSize(length int64) string {
	if length < 0 {
		length = 0
	}
	return humanize.Bytes(uint64(length))
}

// The markdown converter is initialized once and shared; the goldmark
// parser configuration never changes and parsing creates per-call state.
var (
	markdownOnce     sync.Once
	markdownInstance goldmark.Markdown
)

func markdownConverter() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownInstance
}

// messageBody picks the richest representation of a message body for
// the HTML transcript: pre-rendered HTML from the API, then markdown
// converted locally, then escaped plain text.
func messageBody(m models.GroupedMessage) htmltemplate.HTML {
	switch {
	case m.HTML != "":
		return htmltemplate.HTML(m.HTML)
	case m.Markdown != "":
		var buf bytes.Buffer
		if err := markdownConverter().Convert([]byte(m.Markdown), &buf); err != nil {
			return htmltemplate.HTML(htmltemplate.HTMLEscapeString(m.Markdown))
		}
		return htmltemplate.HTML(strings.TrimSpace(buf.String()))
	default:
		return htmltemplate.HTML(htmltemplate.HTMLEscapeString(m.Text))
	}
}
