package mailer

import (
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
)

// Collector records attachments registered by a template while it renders.
// A fresh Collector is used for every rendered message.
type Collector struct {
	specs []AttachmentSpec
	mu    sync.Mutex
}

// NewCollector creates an empty attachment collector.
func NewCollector() *Collector {
	return &Collector{}
}

// AttachFile registers a file by path or storage reference.
// Optional arguments are the shown filename and the MIME type.
// Returns an empty string so it can be called inline from a template.
func (c *Collector) AttachFile(source string, opts ...string) string {
	name, mimeType := optionalNameAndType(opts)
	c.add(AttachmentSpec{
		Kind:        AttachFile,
		Source:      source,
		Filename:    name,
		ContentType: mimeType,
	})
	return ""
}

// AttachData registers raw content under the given filename.
// The optional argument is the MIME type.
func (c *Collector) AttachData(content, filename string, opts ...string) string {
	_, mimeType := optionalNameAndType(append([]string{filename}, opts...))
	c.add(AttachmentSpec{
		Kind:        AttachData,
		Filename:    filename,
		ContentType: mimeType,
		Content:     []byte(content),
	})
	return ""
}

// AttachBase64 decodes base64 content and registers it as data.
// Decoding failures are returned so the render fails.
func (c *Collector) AttachBase64(encoded, filename string, opts ...string) (string, error) {
	content, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidBase64, filename, err)
	}
	_, mimeType := optionalNameAndType(append([]string{filename}, opts...))
	c.add(AttachmentSpec{
		Kind:        AttachData,
		Filename:    filename,
		ContentType: mimeType,
		Content:     content,
	})
	return "", nil
}

// Specs returns the recorded attachments in registration order.
func (c *Collector) Specs() []AttachmentSpec {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]AttachmentSpec, len(c.specs))
	copy(out, c.specs)
	return out
}

func (c *Collector) add(spec AttachmentSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs = append(c.specs, spec)
}

func optionalNameAndType(opts []string) (name, mimeType string) {
	if len(opts) > 0 {
		name = opts[0]
	}
	if len(opts) > 1 {
		mimeType = opts[1]
	}
	return name, mimeType
}
