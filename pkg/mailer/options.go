package mailer

import (
	"log/slog"
	"strings"
)

// DefaultWrapWidth is the column limit used by WithWrap.
const DefaultWrapWidth = 72

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithLogger sets the logger used for non-fatal diagnostics such as duplicate headers.
func WithLogger(l *slog.Logger) AssemblerOption {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithOpener routes file attachments whose source starts with prefix to o.
// Sources without a matching prefix are read from the local filesystem.
//
// Example:
//
//	mailer.WithOpener(storage.RefPrefix, s3)
func WithOpener(prefix string, o Opener) AssemblerOption {
	return func(a *Assembler) {
		if o != nil {
			a.openers = append(a.openers, prefixedOpener{prefix: prefix, opener: o})
		}
	}
}

// WithWrap wraps plain text bodies at DefaultWrapWidth columns.
func WithWrap() AssemblerOption {
	return func(a *Assembler) {
		a.wrapWidth = DefaultWrapWidth
	}
}

// WithTextAlternative adds a tag-stripped plain text part to HTML bodies.
func WithTextAlternative() AssemblerOption {
	return func(a *Assembler) {
		a.textAlternative = true
	}
}

// WithUserAgent sets the User-Agent header on every assembled message
// unless the template supplies its own.
func WithUserAgent(ua string) AssemblerOption {
	return func(a *Assembler) {
		a.userAgent = strings.TrimSpace(ua)
	}
}

type prefixedOpener struct {
	opener Opener
	prefix string
}
