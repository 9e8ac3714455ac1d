package render

import (
	"bytes"
	"fmt"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dmitrymomot/mailseries/pkg/mailer"
)

// helpers are the stateless functions available to every template.
func (r *Renderer) helpers() texttemplate.FuncMap {
	return texttemplate.FuncMap{
		"markdown": r.Markdown,
		"wrap":     func(width int, s string) string { return mailer.Wrap(s, width) },
		"title":    func(s string) string { return cases.Title(r.lang).String(s) },
		"number":   func(v any) string { return message.NewPrinter(r.lang).Sprint(v) },
		"nth":      Ordinal,
		"join":     join,
		"date":     formatDate,
		"fail":     fail,
	}
}

// attachmentFuncs binds the attachment helpers to one render's collector.
func attachmentFuncs(c *mailer.Collector) texttemplate.FuncMap {
	return texttemplate.FuncMap{
		"attachFile": c.AttachFile,
		"attachData": c.AttachData,
		"attachB64":  c.AttachBase64,
	}
}

// placeholderFuncs lets templates parse before a collector exists.
var placeholderFuncs = attachmentFuncs(mailer.NewCollector())

// Markdown converts markdown to HTML, including [!button|Label](URL) buttons.
func (r *Renderer) Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", mailer.ErrMarkdown, err)
	}
	return buf.String(), nil
}

// Ordinal returns n with its English ordinal suffix: 1st, 2nd, 3rd, 4th, 11th.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func join(sep string, items any) (string, error) {
	switch v := items.(type) {
	case []string:
		return strings.Join(v, sep), nil
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, sep), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("join: unsupported list type %T", items)
	}
}

// formatDate parses an RFC 3339 timestamp or a YYYY-MM-DD date and formats it with layout.
func formatDate(layout, value string) (string, error) {
	for _, in := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(in, value); err == nil {
			return t.Format(layout), nil
		}
	}
	return "", fmt.Errorf("date: cannot parse %q", value)
}

func fail(format string, args ...any) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrTemplateFail, fmt.Sprintf(format, args...))
}

// newMarkdown builds the goldmark processor used by the markdown helper.
func newMarkdown(buttonStyle string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(NewButtonExtension(buttonStyle)),
	)
}

// langOrDefault returns English when no language tag is configured.
func langOrDefault(tag language.Tag) language.Tag {
	if tag == language.Und {
		return language.English
	}
	return tag
}
