package delivery

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

// Failure describes the most recent failed attempt at a facility.
type Failure struct {
	At     time.Time `json:"at"`
	Reason string    `json:"reason"`
}

// Status is the delivery state of one recipient at one facility.
// Only the Tracker changes it; everything else reads it through accessors.
type Status struct {
	sent    *time.Time
	failure *Failure
}

// SentAt returns when the message was delivered through the facility.
func (s Status) SentAt() (time.Time, bool) {
	if s.sent == nil {
		return time.Time{}, false
	}
	return *s.sent, true
}

// LastError returns the failure recorded by the latest unsuccessful attempt.
func (s Status) LastError() (Failure, bool) {
	if s.failure == nil {
		return Failure{}, false
	}
	return *s.failure, true
}

type statusJSON struct {
	Sent  *time.Time `json:"sent,omitempty"`
	Error *Failure   `json:"error,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusJSON{Sent: s.sent, Error: s.failure})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw statusJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.sent, s.failure = raw.Sent, raw.Error
	return nil
}

// Ledger holds the delivery state of one recipient, keyed by facility FID.
// The zero value is an empty ledger ready to use.
type Ledger struct {
	marked   *time.Time
	statuses map[string]*Status
}

// Status returns the state recorded for a facility.
func (l *Ledger) Status(fid string) (Status, bool) {
	st, ok := l.statuses[fid]
	if !ok {
		return Status{}, false
	}
	return *st, true
}

// FIDs returns the facilities with recorded state, sorted.
func (l *Ledger) FIDs() []string {
	return slices.Sorted(maps.Keys(l.statuses))
}

// Sent reports whether the facility has a successful delivery on record.
func (l *Ledger) Sent(fid string) bool {
	st, ok := l.statuses[fid]
	return ok && st.sent != nil
}

// Delivered reports whether every given facility has a successful delivery on record.
// It is false for an empty list.
func (l *Ledger) Delivered(fids []string) bool {
	if len(fids) == 0 {
		return false
	}
	for _, fid := range fids {
		if !l.Sent(fid) {
			return false
		}
	}
	return true
}

// Marked returns the record-level "sent_utc" marker. It is set by operators,
// or read from the legacy layout, to retire a record regardless of facility state.
func (l *Ledger) Marked() (time.Time, bool) {
	if l.marked == nil {
		return time.Time{}, false
	}
	return *l.marked, true
}

// IsEmpty reports whether the ledger holds no state at all.
func (l *Ledger) IsEmpty() bool {
	return l.marked == nil && len(l.statuses) == 0
}

func (l *Ledger) entry(fid string) *Status {
	if l.statuses == nil {
		l.statuses = make(map[string]*Status)
	}
	st, ok := l.statuses[fid]
	if !ok {
		st = &Status{}
		l.statuses[fid] = st
	}
	return st
}

// markSent records a successful delivery and clears any earlier failure.
func (l *Ledger) markSent(fid string, at time.Time) {
	st := l.entry(fid)
	at = at.UTC()
	st.sent = &at
	st.failure = nil
}

// markFailed records a failed attempt. An earlier success is kept.
func (l *Ledger) markFailed(fid string, at time.Time, reason string) {
	st := l.entry(fid)
	st.failure = &Failure{At: at.UTC(), Reason: reason}
}

type ledgerJSON struct {
	Marked     *time.Time         `json:"sent_utc,omitempty"`
	Facilities map[string]*Status `json:"facilities,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(ledgerJSON{Marked: l.marked, Facilities: l.statuses})
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var raw ledgerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLedger, err)
	}
	l.marked = raw.Marked
	l.statuses = raw.Facilities
	for fid, st := range l.statuses {
		if st == nil {
			delete(l.statuses, fid)
		}
	}
	return nil
}

// legacyMarker is the record-level marker key of the legacy layout.
const legacyMarker = "sent_utc"

// ParseLegacy reads the legacy state layout, where facility entries sit
// directly next to the "sent_utc" marker:
//
//	{"sent_utc": ..., "<fid>": {"sent": time, "error": {"at": time, "reason": text}}}
//
// Any non-null "sent_utc" value retires the record; values that are not
// timestamps are kept as the zero time. Non-object entries are ignored.
func ParseLegacy(data []byte) (Ledger, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Ledger{}, fmt.Errorf("%w: legacy layout: %v", ErrInvalidLedger, err)
	}

	var l Ledger
	for key, value := range raw {
		if key == legacyMarker {
			if string(value) == "null" {
				continue
			}
			var at time.Time
			if err := json.Unmarshal(value, &at); err != nil {
				at = time.Time{}
			}
			l.marked = &at
			continue
		}
		if len(value) == 0 || value[0] != '{' {
			continue
		}
		var st Status
		if err := json.Unmarshal(value, &st); err != nil {
			return Ledger{}, fmt.Errorf("%w: legacy layout: %s: %v", ErrInvalidLedger, key, err)
		}
		if st.sent == nil && st.failure == nil {
			continue
		}
		*l.entry(key) = st
	}
	return l, nil
}
