package pipeline

import (
	"fmt"
	"time"

	"github.com/bot80-alt/certa/internal/model"
)

// State is a pipeline run's position in NORMALIZING -> CHECKING -> EXPLAINING -> DONE
type State string

const (
	StateNormalizing State = "NORMALIZING"
	StateChecking    State = "CHECKING"
	StateExplaining  State = "EXPLAINING"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

// Terminal reports whether no further transitions are allowed
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// next lists the legal successors of each non-terminal state
var next = map[State][]State{
	StateNormalizing: {StateChecking, StateFailed},
	StateChecking:    {StateExplaining, StateFailed},
	StateExplaining:  {StateDone, StateFailed},
}

// Transition is one recorded state change
type Transition struct {
	From    State
	To      State
	Stage   model.Stage // set when To is FAILED
	At      time.Time
	Elapsed time.Duration // time spent in From
}

// Trace records the transitions of a single run
type Trace struct {
	RequestID   string
	Transitions []Transition

	state   State
	entered time.Time
	now     func() time.Time
}

func newTrace(requestID string, now func() time.Time) *Trace {
	return &Trace{
		RequestID: requestID,
		state:     StateNormalizing,
		entered:   now(),
		now:       now,
	}
}

// State returns the current state
func (t *Trace) State() State {
	return t.state
}

// FailedStage returns the stage of a FAILED run, or "" otherwise
func (t *Trace) FailedStage() model.Stage {
	if t.state != StateFailed || len(t.Transitions) == 0 {
		return ""
	}
	return t.Transitions[len(t.Transitions)-1].Stage
}

// States lists every state visited, starting with NORMALIZING
func (t *Trace) States() []State {
	states := []State{StateNormalizing}
	for _, tr := range t.Transitions {
		states = append(states, tr.To)
	}
	return states
}

func (t *Trace) advance(to State, stage model.Stage) (Transition, error) {
	allowed := false
	for _, s := range next[t.state] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return Transition{}, fmt.Errorf("illegal transition %s -> %s", t.state, to)
	}

	at := t.now()
	tr := Transition{From: t.state, To: to, At: at, Elapsed: at.Sub(t.entered)}
	if to == StateFailed {
		tr.Stage = stage
	}
	t.Transitions = append(t.Transitions, tr)
	t.state = to
	t.entered = at
	return tr, nil
}
