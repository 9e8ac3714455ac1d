package render

import (
	"bytes"
	"fmt"
	"io/fs"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/mailseries/pkg/mailer"
)

// Renderer evaluates Go text templates that produce a header block, a blank line and a body.
// Undefined map keys are errors, so a typo in a variable name fails the render
// instead of producing "<no value>".
type Renderer struct {
	fs    fs.FS
	md    goldmark.Markdown
	cache map[string]*texttemplate.Template
	lang  language.Tag
	mu    sync.RWMutex
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLanguage sets the language used by the title and number helpers.
func WithLanguage(tag language.Tag) Option {
	return func(r *Renderer) {
		r.lang = langOrDefault(tag)
	}
}

// WithButtonStyle overrides the inline style of markdown buttons.
func WithButtonStyle(style string) Option {
	return func(r *Renderer) {
		r.md = newMarkdown(style)
	}
}

// New creates a renderer reading templates from filesystem.
func New(filesystem fs.FS, opts ...Option) *Renderer {
	r := &Renderer{
		fs:    filesystem,
		md:    newMarkdown(""),
		cache: make(map[string]*texttemplate.Template),
		lang:  language.English,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render executes the named template with data.
// Attachment helpers called by the template are recorded in collector.
func (r *Renderer) Render(name string, data any, collector *mailer.Collector) (string, error) {
	tmpl, err := r.getTemplate(name)
	if err != nil {
		return "", err
	}

	// Clone so the attachment helpers can be bound to this render only.
	exec, err := tmpl.Clone()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateRender, name, err)
	}
	if collector == nil {
		collector = mailer.NewCollector()
	}
	exec.Funcs(attachmentFuncs(collector))

	var buf bytes.Buffer
	if err := exec.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTemplateRender, name, err)
	}
	return buf.String(), nil
}

// Load reads and parses the named template without executing it.
// Missing files yield ErrTemplateNotFound and syntax errors ErrTemplateParse.
func (r *Renderer) Load(name string) error {
	_, err := r.getTemplate(name)
	return err
}

// getTemplate returns a cached template or parses and caches it.
func (r *Renderer) getTemplate(name string) (*texttemplate.Template, error) {
	r.mu.RLock()
	if cached, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	tmpl, err := texttemplate.New(name).
		Option("missingkey=error").
		Funcs(r.helpers()).
		Funcs(placeholderFuncs).
		Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, name, err)
	}

	r.cache[name] = tmpl
	return tmpl, nil
}
