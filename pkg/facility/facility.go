package facility

import (
	"fmt"
	"net/url"
	"strings"
)

// Facility is a configured delivery endpoint.
type Facility struct {
	URI      string `json:"uri" yaml:"uri"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// FID returns the bookkeeping identity of the facility:
// "{username} @ {uri}" when a username is set, the URI otherwise.
// Two facilities sharing a URI but not a username are distinct.
func (f Facility) FID() string {
	if f.Username != "" {
		return f.Username + " @ " + f.URI
	}
	return f.URI
}

// HasCredentials reports whether both username and password are set.
// Credentials are only applied to the transport when both are present.
func (f Facility) HasCredentials() bool {
	return f.Username != "" && f.Password != ""
}

// String returns the FID; the password is never included.
func (f Facility) String() string {
	return f.FID()
}

// validate checks that the URI parses and has a scheme.
func (f Facility) validate() error {
	if strings.TrimSpace(f.URI) == "" {
		return fmt.Errorf("%w: facility without uri", ErrInvalidConfig)
	}
	u, err := url.Parse(f.URI)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidConfig, f.URI, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("%w: %q has no scheme", ErrInvalidConfig, f.URI)
	}
	return nil
}
