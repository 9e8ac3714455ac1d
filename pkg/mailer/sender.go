package mailer

import "context"

// Sender defines the minimal interface that delivery transports implement.
// It accepts a fully-assembled Email and performs a single delivery attempt.
type Sender interface {
	// Send delivers an email message.
	// Returns an error if delivery fails; no retry is expected from implementations.
	Send(ctx context.Context, email *Email) error
}

// SenderFunc adapts an ordinary function to the Sender interface.
type SenderFunc func(ctx context.Context, email *Email) error

// Send calls f(ctx, email).
func (f SenderFunc) Send(ctx context.Context, email *Email) error {
	return f(ctx, email)
}
