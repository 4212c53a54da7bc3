package nettrace

import (
	"sync"
	"time"
)

type phaseState struct {
	start time.Time
	meta  PhaseMeta
}

// Collector records connection phases as the transport reports them. It is
// safe for concurrent use since httptrace hooks may fire from other goroutines.
type Collector struct {
	mu       sync.Mutex
	started  time.Time
	finished time.Time
	err      string
	phases   []Phase
	active   map[PhaseKind]*phaseState
}

func NewCollector() *Collector {
	return &Collector{active: make(map[PhaseKind]*phaseState)}
}

func (c *Collector) Begin(kind PhaseKind, ts time.Time) {
	if kind == "" {
		return
	}
	if ts.IsZero() {
		ts = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started.IsZero() || ts.Before(c.started) {
		c.started = ts
	}
	c.active[kind] = &phaseState{start: ts}
}

func (c *Collector) End(kind PhaseKind, ts time.Time, err error) {
	if kind == "" {
		return
	}
	if ts.IsZero() {
		ts = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.active[kind]
	if !ok {
		state = &phaseState{start: ts}
	}
	if ts.Before(state.start) {
		ts = state.start
	}

	phase := Phase{
		Kind:     kind,
		Start:    state.start,
		End:      ts,
		Duration: ts.Sub(state.start),
		Meta:     state.meta,
	}
	if err != nil {
		phase.Err = err.Error()
	}
	c.phases = append(c.phases, phase)
	delete(c.active, kind)
	if ts.After(c.finished) {
		c.finished = ts
	}
}

// UpdateMeta edits the metadata of an active phase.
func (c *Collector) UpdateMeta(kind PhaseKind, fn func(*PhaseMeta)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if state := c.active[kind]; state != nil {
		fn(&state.meta)
	}
}

func (c *Collector) Fail(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	c.err = err.Error()
	c.mu.Unlock()
}

// Complete closes any phase still open, marking it incomplete.
func (c *Collector) Complete(ts time.Time) {
	if ts.IsZero() {
		ts = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ts.After(c.finished) {
		c.finished = ts
	}
	for kind, state := range c.active {
		c.phases = append(c.phases, Phase{
			Kind:     kind,
			Start:    state.start,
			End:      ts,
			Duration: ts.Sub(state.start),
			Meta:     state.meta,
			Err:      "incomplete",
		})
	}
	c.active = make(map[PhaseKind]*phaseState)
}

func (c *Collector) Timeline() *Timeline {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.phases) == 0 && c.started.IsZero() {
		return nil
	}

	ph := make([]Phase, len(c.phases))
	copy(ph, c.phases)
	ph = normalizePhases(ph)

	start := c.started
	if start.IsZero() && len(ph) > 0 {
		start = ph[0].Start
	}
	finish := c.finished
	if finish.IsZero() && len(ph) > 0 {
		finish = ph[len(ph)-1].End
	}

	tl := &Timeline{Started: start, Completed: finish, Err: c.err, Phases: ph}
	if !start.IsZero() && !finish.IsZero() && !finish.Before(start) {
		tl.Duration = finish.Sub(start)
	}
	return tl
}
