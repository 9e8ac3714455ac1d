package facility

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrymomot/mailseries/pkg/mailer"
	"github.com/dmitrymomot/mailseries/pkg/mailer/resend"
	"github.com/dmitrymomot/mailseries/pkg/mailer/smtp"
)

// Supported URI schemes.
const (
	SchemeSMTP       = "smtp"
	SchemeSubmission = "submission"
	SchemeSMTPS      = "smtps"
	SchemeResend     = "resend"
)

var defaultPorts = map[string]int{
	SchemeSMTP:       25,
	SchemeSubmission: 587,
	SchemeSMTPS:      465,
}

// Dial builds the transport for a facility from its URI:
//
//	smtp://host[:port]        plain SMTP, STARTTLS when offered (port 25)
//	submission://host[:port]  mandatory STARTTLS (port 587)
//	smtps://host[:port]       implicit TLS (port 465)
//	resend://[host]           Resend API, password is the API key; a host overrides the API endpoint
//
// SMTP schemes accept "?timeout=30s".
func Dial(f Facility) (mailer.Sender, error) {
	u, err := url.Parse(f.URI)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidConfig, f.URI, err)
	}

	switch u.Scheme {
	case SchemeSMTP, SchemeSubmission, SchemeSMTPS:
		return dialSMTP(f, u)
	case SchemeResend:
		cfg := resend.Config{APIKey: f.Password}
		if u.Host != "" {
			cfg.BaseURL = "https://" + u.Host + u.Path
		}
		s, err := resend.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, f.FID(), err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func dialSMTP(f Facility, u *url.URL) (mailer.Sender, error) {
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidConfig, f.URI)
	}

	port := defaultPorts[u.Scheme]
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("%w: %q has invalid port", ErrInvalidConfig, f.URI)
		}
		port = n
	}

	cfg := smtp.Config{Host: host, Port: port}
	switch u.Scheme {
	case SchemeSubmission:
		cfg.TLS = smtp.TLSMandatory
	case SchemeSMTPS:
		cfg.TLS = smtp.TLSImplicit
	}

	if raw := u.Query().Get("timeout"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: %q has invalid timeout", ErrInvalidConfig, f.URI)
		}
		cfg.Timeout = d
	}

	if f.HasCredentials() {
		cfg.Username = f.Username
		cfg.Password = f.Password
	}

	return smtp.New(cfg), nil
}
