package event

// Type identifies a submission lifecycle event
type Type string

const (
	TypeSubmissionStarted      Type = "submission.started"
	TypeSubmissionTransitioned Type = "submission.transitioned"
	TypeSubmissionReady        Type = "submission.ready"
	TypeSubmissionFailed       Type = "submission.failed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeSubmissionStarted,
		TypeSubmissionTransitioned,
		TypeSubmissionReady,
		TypeSubmissionFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further events follow for the submission
func (t Type) IsTerminal() bool {
	return t == TypeSubmissionReady || t == TypeSubmissionFailed
}
