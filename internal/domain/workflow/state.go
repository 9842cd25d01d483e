package workflow

// State represents a stage of a signing submission
type State string

const (
	StateIdle               State = "IDLE"
	StateFilling            State = "FILLING"
	StateSubmitting         State = "SUBMITTING"
	StateAwaitingSigningURL State = "AWAITING_SIGNING_URL"
	StateReady              State = "READY"
	StateFailed             State = "FAILED"
)

var validStates = map[State]bool{
	StateIdle:               true,
	StateFilling:            true,
	StateSubmitting:         true,
	StateAwaitingSigningURL: true,
	StateReady:              true,
	StateFailed:             true,
}

var terminalStates = map[State]bool{
	StateReady:  true,
	StateFailed: true,
}

// IsTerminal returns true if no further transitions leave the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known submission state
func (s State) IsValid() bool {
	return validStates[s]
}
