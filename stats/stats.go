package stats

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

type Type int

const (
	Traversed Type = iota
	Matched
	Excluded
	Formatted
	Changed
	Failed
)

func (t Type) String() string {
	switch t {
	case Traversed:
		return "traversed"
	case Matched:
		return "matched"
	case Excluded:
		return "excluded"
	case Formatted:
		return "formatted"
	case Changed:
		return "changed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type Stats struct {
	start    time.Time
	counters map[Type]*atomic.Int32
}

func (s *Stats) Add(t Type, delta int) int {
	return int(s.counters[t].Add(int32(delta)))
}

func (s *Stats) Value(t Type) int {
	return int(s.counters[t].Load())
}

func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.start)
}

// Log writes a one line summary of the run at info level.
func (s *Stats) Log(l *log.Logger) {
	l.Info(
		"summary",
		Traversed.String(), s.Value(Traversed),
		Matched.String(), s.Value(Matched),
		Excluded.String(), s.Value(Excluded),
		Formatted.String(), s.Value(Formatted),
		Changed.String(), s.Value(Changed),
		Failed.String(), s.Value(Failed),
		"elapsed", s.Elapsed().Round(time.Millisecond),
	)
}

func New() Stats {
	counters := make(map[Type]*atomic.Int32)
	for _, t := range []Type{Traversed, Matched, Excluded, Formatted, Changed, Failed} {
		counters[t] = &atomic.Int32{}
	}

	return Stats{
		start:    time.Now(),
		counters: counters,
	}
}
