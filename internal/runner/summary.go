package runner

import "log/slog"

// State is the outcome of processing one record.
type State int

const (
	StateSkippedByFilter State = iota
	StateSkippedAlreadySent
	StateRenderFailed
	StateSent
	StatePartiallySent
	StatePrinted
)

func (s State) String() string {
	switch s {
	case StateSkippedByFilter:
		return "skipped-by-filter"
	case StateSkippedAlreadySent:
		return "skipped-already-sent"
	case StateRenderFailed:
		return "render-failed"
	case StateSent:
		return "sent"
	case StatePartiallySent:
		return "partially-sent"
	case StatePrinted:
		return "printed"
	default:
		return "unknown"
	}
}

// Summary counts the records of a run by outcome.
type Summary struct {
	Total         int
	SkippedFilter int
	SkippedSent   int
	RenderFailed  int
	Sent          int
	PartiallySent int
	Printed       int
	StateSaves    int
}

func (s *Summary) add(st State) {
	switch st {
	case StateSkippedByFilter:
		s.SkippedFilter++
	case StateSkippedAlreadySent:
		s.SkippedSent++
	case StateRenderFailed:
		s.RenderFailed++
	case StateSent:
		s.Sent++
	case StatePartiallySent:
		s.PartiallySent++
	case StatePrinted:
		s.Printed++
	}
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("total", s.Total),
		slog.Int("skipped_filter", s.SkippedFilter),
		slog.Int("skipped_sent", s.SkippedSent),
		slog.Int("render_failed", s.RenderFailed),
		slog.Int("sent", s.Sent),
		slog.Int("partially_sent", s.PartiallySent),
		slog.Int("printed", s.Printed),
		slog.Int("state_saves", s.StateSaves),
	)
}
