package mailer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrymomot/mailseries/pkg/logger"
	"github.com/dmitrymomot/mailseries/pkg/sanitizer"
	"github.com/dmitrymomot/mailseries/pkg/storage"
)

// Opener reads the content of a file attachment.
// The caller is responsible for closing the returned reader.
type Opener interface {
	Open(ctx context.Context, source string) (io.ReadCloser, error)
}

// OpenerFunc adapts an ordinary function to the Opener interface.
type OpenerFunc func(ctx context.Context, source string) (io.ReadCloser, error)

// Open calls f(ctx, source).
func (f OpenerFunc) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	return f(ctx, source)
}

// localOpener reads attachments from the local filesystem.
var localOpener = OpenerFunc(func(_ context.Context, source string) (io.ReadCloser, error) {
	return os.Open(source)
})

// Headers consumed by the assembler rather than passed through.
var consumedHeaders = map[string]struct{}{
	"from":                      {},
	"to":                        {},
	"cc":                        {},
	"bcc":                       {},
	"subject":                   {},
	"content-type":              {},
	"reply-to":                  {},
	"mime-version":              {},
	"content-transfer-encoding": {},
}

// Assembler converts rendered template output into an Email.
type Assembler struct {
	logger          *slog.Logger
	userAgent       string
	openers         []prefixedOpener
	wrapWidth       int
	textAlternative bool
}

// NewAssembler creates an Assembler with the given options.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble parses rendered text and builds an Email with the recorded attachments.
// Structural problems are reported as ErrMalformedMessage.
func (a *Assembler) Assemble(ctx context.Context, rendered string, attachments []AttachmentSpec) (*Email, error) {
	msg, err := ParseMessage(rendered)
	if err != nil {
		return nil, err
	}
	for _, d := range msg.Duplicates {
		a.logger.WarnContext(ctx, "duplicate header, newer value overwrites previous",
			slog.String("header", d.Name),
			slog.String("value", d.Value),
			slog.String("previous", d.Previous),
		)
	}

	email := &Email{}

	fromHeader, ok := msg.Get("from")
	if !ok {
		return nil, fmt.Errorf("%w: no 'From' header field specified", ErrMalformedMessage)
	}
	from, err := parseAddresses("From", fromHeader)
	if err != nil {
		return nil, err
	}
	if len(from) != 1 {
		return nil, fmt.Errorf("%w: exactly one 'From' address required, got %d", ErrMalformedMessage, len(from))
	}
	email.From = from[0]

	toHeader, ok := msg.Get("to")
	if !ok {
		return nil, fmt.Errorf("%w: no 'To' header field specified", ErrMalformedMessage)
	}
	if email.To, err = parseAddresses("To", toHeader); err != nil {
		return nil, err
	}
	if len(email.To) == 0 {
		return nil, fmt.Errorf("%w: at least one 'To' address required", ErrMalformedMessage)
	}

	if v, ok := msg.Get("cc"); ok {
		if email.CC, err = parseAddresses("Cc", v); err != nil {
			return nil, err
		}
	}
	if v, ok := msg.Get("bcc"); ok {
		if email.BCC, err = parseAddresses("Bcc", v); err != nil {
			return nil, err
		}
	}
	if v, ok := msg.Get("reply-to"); ok {
		replyTo, err := parseAddresses("Reply-To", v)
		if err != nil {
			return nil, err
		}
		email.ReplyTo = strings.Join(replyTo, ", ")
	}

	email.Subject, _ = msg.Get("subject")

	if err := a.setBody(email, msg); err != nil {
		return nil, err
	}

	email.Headers = passThroughHeaders(msg.Headers)
	if a.userAgent != "" {
		if _, ok := email.Headers["User-Agent"]; !ok {
			email.Headers["User-Agent"] = a.userAgent
		}
	}

	for _, spec := range attachments {
		att, err := a.loadAttachment(ctx, spec)
		if err != nil {
			return nil, err
		}
		email.Attachments = append(email.Attachments, att)
	}

	return email, nil
}

func (a *Assembler) setBody(email *Email, msg *Message) error {
	contentType, ok := msg.Get("content-type")
	if !ok {
		contentType = ContentTypePlain
	}

	switch contentType {
	case ContentTypePlain:
		email.Text = msg.Body
		if a.wrapWidth > 0 {
			email.Text = Wrap(email.Text, a.wrapWidth)
		}
	case ContentTypeHTML:
		email.HTML = msg.Body
		if a.textAlternative {
			email.Text = sanitizer.PlainText(msg.Body)
		}
	default:
		return fmt.Errorf("%w: Content-Type must be %s or %s, got %q",
			ErrMalformedMessage, ContentTypePlain, ContentTypeHTML, contentType)
	}
	return nil
}

func (a *Assembler) loadAttachment(ctx context.Context, spec AttachmentSpec) (Attachment, error) {
	att := Attachment{
		Filename:    spec.Filename,
		ContentType: spec.ContentType,
	}

	switch spec.Kind {
	case AttachFile:
		content, err := a.readSource(ctx, spec.Source)
		if err != nil {
			return Attachment{}, err
		}
		att.Content = content
		if att.Filename == "" {
			att.Filename = filepath.Base(spec.Source)
		}
	case AttachData:
		att.Content = spec.Content
	default:
		return Attachment{}, fmt.Errorf("%w: %q", ErrUnknownAttachment, spec.Kind)
	}

	if att.ContentType == "" {
		att.ContentType = storage.DetectContentType(att.Filename, att.Content)
	}
	return att, nil
}

func (a *Assembler) readSource(ctx context.Context, source string) ([]byte, error) {
	opener := Opener(localOpener)
	for _, po := range a.openers {
		if strings.HasPrefix(source, po.prefix) {
			opener = po.opener
			break
		}
	}

	rc, err := opener.Open(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAttachmentRead, source, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAttachmentRead, source, err)
	}
	return content, nil
}

// parseAddresses parses an RFC 5322 address list into formatted addresses.
func parseAddresses(field, value string) ([]string, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	list, err := mail.ParseAddressList(value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid '%s' address list %q: %v", ErrMalformedMessage, field, value, err)
	}
	out := make([]string, len(list))
	for i, addr := range list {
		out[i] = formatAddress(addr)
	}
	return out, nil
}

// formatAddress renders a bare address without angle brackets.
func formatAddress(addr *mail.Address) string {
	if addr.Name == "" {
		return addr.Address
	}
	return addr.String()
}

func passThroughHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for name, value := range headers {
		if _, consumed := consumedHeaders[name]; consumed {
			continue
		}
		out[textproto.CanonicalMIMEHeaderKey(name)] = value
	}
	return out
}
