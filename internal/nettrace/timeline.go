package nettrace

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type PhaseKind string

const (
	PhaseDNS      PhaseKind = "dns"
	PhaseConnect  PhaseKind = "connect"
	PhaseTLS      PhaseKind = "tls"
	PhaseTTFB     PhaseKind = "ttfb"
	PhaseTransfer PhaseKind = "transfer"
)

// summaryOrder is the order phases appear in Summary.
var summaryOrder = []PhaseKind{PhaseDNS, PhaseConnect, PhaseTLS, PhaseTTFB, PhaseTransfer}

type PhaseMeta struct {
	Addr   string
	Reused bool
}

type Phase struct {
	Kind     PhaseKind
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Err      string
	Meta     PhaseMeta
}

type Timeline struct {
	Started   time.Time
	Completed time.Time
	Duration  time.Duration
	Err       string
	Phases    []Phase
}

// Phase returns the first recorded phase of kind.
func (tl *Timeline) Phase(kind PhaseKind) (Phase, bool) {
	if tl == nil {
		return Phase{}, false
	}
	for _, p := range tl.Phases {
		if p.Kind == kind {
			return p, true
		}
	}
	return Phase{}, false
}

// Summary renders "dns 2ms · connect 4ms ..." for the phases that ran.
// A reused connection shows as "connect reused".
func (tl *Timeline) Summary() string {
	if tl == nil || len(tl.Phases) == 0 {
		return ""
	}
	parts := make([]string, 0, len(summaryOrder))
	for _, kind := range summaryOrder {
		p, ok := tl.Phase(kind)
		if !ok {
			continue
		}
		if kind == PhaseConnect && p.Meta.Reused {
			parts = append(parts, "connect reused")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", kind, roundDuration(p.Duration)))
	}
	return strings.Join(parts, " · ")
}

func roundDuration(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(100 * time.Microsecond)
	default:
		return d.Round(time.Microsecond)
	}
}

func normalizePhases(phases []Phase) []Phase {
	sort.SliceStable(phases, func(i, j int) bool {
		if phases[i].Start.Equal(phases[j].Start) {
			return phases[i].End.Before(phases[j].End)
		}
		return phases[i].Start.Before(phases[j].Start)
	})
	return phases
}
