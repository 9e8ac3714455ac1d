package mailer

import (
	"fmt"
	"strings"
)

// Content types accepted in the Content-Type header of a rendered message.
const (
	ContentTypePlain = "text/plain"
	ContentTypeHTML  = "text/html"
)

// Email represents a fully-assembled email message ready for delivery.
type Email struct {
	Headers     map[string]string // Pass-through headers, canonical MIME names
	Subject     string            // Email subject
	HTML        string            // HTML body content
	Text        string            // Plain text body (or alternative for HTML)
	From        string            // Exactly one sender address
	ReplyTo     string            // Reply-to address
	To          []string          // Recipients (at least one required)
	CC          []string          // Carbon copy recipients
	BCC         []string          // Blind carbon copy recipients, never written to headers
	Attachments []Attachment      // File attachments, in recorded order
}

// Recipients returns every envelope recipient: To, then CC, then BCC.
func (e *Email) Recipients() []string {
	all := make([]string, 0, len(e.To)+len(e.CC)+len(e.BCC))
	all = append(all, e.To...)
	all = append(all, e.CC...)
	all = append(all, e.BCC...)
	return all
}

// String returns a short description used in log lines.
func (e *Email) String() string {
	return fmt.Sprintf("<%s to %s>", e.Subject, strings.Join(e.To, ", "))
}

// Attachment represents an email attachment with its content loaded.
type Attachment struct {
	Filename    string // Display name for the attachment
	ContentType string // MIME type (e.g., "application/pdf")
	Content     []byte // Raw file content
}

// AttachmentKind identifies how an attachment was registered during rendering.
type AttachmentKind string

const (
	// AttachFile references a file path or storage key, read at assembly time.
	AttachFile AttachmentKind = "file"

	// AttachData carries raw bytes. Base64 registrations are decoded into this kind.
	AttachData AttachmentKind = "data"
)

// AttachmentSpec is an attachment as recorded by a template, before assembly.
type AttachmentSpec struct {
	Kind        AttachmentKind
	Source      string // File path or "s3://key" for AttachFile
	Filename    string // Optional display name
	ContentType string // Optional MIME type
	Content     []byte // Raw content for AttachData
}
