package facility

import (
	"sync"

	"github.com/dmitrymomot/mailseries/pkg/mailer"
)

// DialFunc creates the transport for a facility.
type DialFunc func(Facility) (mailer.Sender, error)

// Registry holds the configured facilities in attempt order
// and caches one transport per facility.
type Registry struct {
	dial       DialFunc
	senders    map[string]mailer.Sender
	facilities []Facility
	mu         sync.Mutex
}

// NewRegistry creates a registry over facilities. A nil dial selects Dial.
func NewRegistry(facilities []Facility, dial DialFunc) *Registry {
	if dial == nil {
		dial = Dial
	}
	list := make([]Facility, len(facilities))
	copy(list, facilities)
	return &Registry{
		dial:       dial,
		senders:    make(map[string]mailer.Sender, len(list)),
		facilities: list,
	}
}

// Facilities returns the facilities in configured order.
func (r *Registry) Facilities() []Facility {
	if r == nil {
		return nil
	}
	out := make([]Facility, len(r.facilities))
	copy(out, r.facilities)
	return out
}

// FIDs returns the facility identities in configured order.
func (r *Registry) FIDs() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.facilities))
	for i, f := range r.facilities {
		out[i] = f.FID()
	}
	return out
}

// Len returns the number of configured facilities.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.facilities)
}

// Sender returns the transport for f, dialing it on first use.
// Dial errors are not cached, so a later call retries.
func (r *Registry) Sender(f Facility) (mailer.Sender, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fid := f.FID()
	if s, ok := r.senders[fid]; ok {
		return s, nil
	}
	s, err := r.dial(f)
	if err != nil {
		return nil, err
	}
	r.senders[fid] = s
	return s, nil
}
