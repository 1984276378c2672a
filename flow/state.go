package flow

import (
	"errors"
	"fmt"

	"github.com/hupe1980/fashionagent/core"
)

// State is a node of the orchestrator's state machine.
type State int

const (
	StateIntake State = iota
	StateReason
	StateRoute
	StateExecute
	StateDone
)

// String returns the upper case state name used in logs.
func (s State) String() string {
	switch s {
	case StateIntake:
		return "INTAKE"
	case StateReason:
		return "REASON"
	case StateRoute:
		return "ROUTE"
	case StateExecute:
		return "EXECUTE"
	case StateDone:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrInvalidTransition is returned for a transition absent from the table.
var ErrInvalidTransition = errors.New("invalid state transition")

var transitions = map[State][]State{
	StateIntake:  {StateReason},
	StateReason:  {StateRoute},
	StateRoute:   {StateExecute, StateDone},
	StateExecute: {StateReason},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates from -> to.
func Transition(from, to State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Route picks the successor of ROUTE: EXECUTE when msg requests at least one
// tool, DONE otherwise.
func Route(msg core.Message) State {
	if msg.HasToolCalls() {
		return StateExecute
	}
	return StateDone
}
