package workflow

// State represents a step of one bill submission attempt
type State string

const (
	StateIdle        State = "IDLE"
	StateFileStaging State = "FILE_STAGING"
	StateValid       State = "VALID"
	StateInvalid     State = "INVALID"
	StateSubmitting  State = "SUBMITTING"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

var validStates = map[State]bool{
	StateIdle:        true,
	StateFileStaging: true,
	StateValid:       true,
	StateInvalid:     true,
	StateSubmitting:  true,
	StateDone:        true,
	StateFailed:      true,
}

// StateDone ends the form's lifecycle. StateFailed only ends the current
// attempt: the user may submit again by hand.
var terminalStates = map[State]bool{
	StateDone: true,
}

// IsTerminal reports whether the form accepts no more events
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

func (s State) String() string {
	return string(s)
}

// IsValid reports whether s is one of the declared steps
func (s State) IsValid() bool {
	return validStates[s]
}
