package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mailseries/pkg/facility"
	"github.com/dmitrymomot/mailseries/pkg/logger"
	"github.com/dmitrymomot/mailseries/pkg/mailer"
)

// Tracker delivers a message through every configured facility that has not
// delivered it yet, recording each outcome in the recipient's Ledger.
type Tracker struct {
	registry *facility.Registry
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger for attempt, skip and failure messages.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithClock replaces the time source used for sent and error timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker creates a tracker over the registry's facilities.
func NewTracker(registry *facility.Registry, opts ...Option) *Tracker {
	t := &Tracker{
		registry: registry,
		logger:   logger.NewNope(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Deliver attempts email at each facility in configured order.
//
// A facility whose ledger entry has a sent timestamp is skipped unless force is set.
// Success stores the current UTC time as sent and clears an earlier error;
// failure stores the error with its time, keeps any earlier sent timestamp and
// moves on to the next facility. Transport errors never leave this method.
//
// The result is true when at least one facility was attempted, whatever the
// outcome, and signals that the ledger must be persisted.
func (t *Tracker) Deliver(ctx context.Context, email *mailer.Email, ledger *Ledger, force bool) bool {
	changed := false

	for _, f := range t.registry.Facilities() {
		fid := f.FID()

		if st, ok := ledger.Status(fid); ok && !force {
			if sentAt, sent := st.SentAt(); sent {
				t.logger.InfoContext(ctx, "skipped, already delivered",
					slog.String("mail", email.String()),
					slog.String("fid", fid),
					slog.Time("sent", sentAt),
				)
				continue
			}
		}

		if ctx.Err() != nil {
			t.logger.WarnContext(ctx, "delivery interrupted", slog.String("fid", fid))
			break
		}

		changed = true
		t.logger.InfoContext(ctx, "dropping",
			slog.String("mail", email.String()),
			slog.String("fid", fid),
		)

		if err := t.attempt(ctx, f, email); err != nil {
			ledger.markFailed(fid, t.now(), err.Error())
			t.logger.ErrorContext(ctx, "failed drop",
				slog.String("mail", email.String()),
				slog.String("fid", fid),
				slog.Any("error", fmt.Errorf("%w: %w", ErrDeliveryTransport, err)),
			)
			continue
		}
		ledger.markSent(fid, t.now())
	}

	return changed
}

func (t *Tracker) attempt(ctx context.Context, f facility.Facility, email *mailer.Email) error {
	sender, err := t.registry.Sender(f)
	if err != nil {
		return err
	}
	return sender.Send(ctx, email)
}

// FIDs returns the identities of the facilities the tracker delivers through.
func (t *Tracker) FIDs() []string {
	return t.registry.FIDs()
}

// HasFacilities reports whether any facility is configured.
func (t *Tracker) HasFacilities() bool {
	return t.registry != nil && t.registry.Len() > 0
}
