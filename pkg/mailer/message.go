package mailer

import (
	"fmt"
	"strings"
)

// headerSeparator divides the header block from the body in rendered output.
const headerSeparator = "\n\n"

// Message is rendered template output split into headers and body.
type Message struct {
	Headers    map[string]string // Lower-cased header names
	Body       string            // Everything after the first blank line, unchanged
	Duplicates []Duplicate       // Headers that were overwritten by a later line
}

// Duplicate describes a header line that replaced an earlier value.
type Duplicate struct {
	Name     string
	Previous string
	Value    string
}

// Get returns the value of a header by case-insensitive name.
func (m *Message) Get(name string) (string, bool) {
	v, ok := m.Headers[strings.ToLower(name)]
	return v, ok
}

// ParseMessage splits rendered text on the first blank line into a header block and a body.
// Header lines are split on the first ": "; names are lower-cased and a repeated
// name overwrites the previous value.
func ParseMessage(rendered string) (*Message, error) {
	headerBlock, body, ok := strings.Cut(rendered, headerSeparator)
	if !ok {
		hint := "no headers supplied"
		if strings.Contains(rendered, "\r\n\r\n") {
			hint = "template uses DOS line endings"
		}
		return nil, fmt.Errorf("%w: no blank line separating headers from body (%s)", ErrMalformedMessage, hint)
	}

	msg := &Message{
		Headers: make(map[string]string),
		Body:    body,
	}

	for line := range strings.SplitSeq(headerBlock, "\n") {
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, fmt.Errorf("%w: not a valid header line: %q", ErrMalformedMessage, line)
		}

		name := strings.ToLower(key)
		if prev, exists := msg.Headers[name]; exists {
			msg.Duplicates = append(msg.Duplicates, Duplicate{Name: key, Previous: prev, Value: value})
		}
		msg.Headers[name] = value
	}

	return msg, nil
}
