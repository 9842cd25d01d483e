package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is one step of a submission's life
type Event struct {
	ID           string         `json:"id"`
	Type         Type           `json:"type"`
	SubmissionID string         `json:"submission_id"`
	From         string         `json:"from,omitempty"`
	To           string         `json:"to,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// New creates an event with a fresh ID and the current time
func New(eventType Type, submissionID string) *Event {
	return &Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		SubmissionID: submissionID,
		Timestamp:    time.Now(),
	}
}

// Transition creates a TypeSubmissionTransitioned event
func Transition(submissionID, from, to string) *Event {
	e := New(TypeSubmissionTransitioned, submissionID)
	e.From = from
	e.To = to
	return e
}

// WithPayload returns a copy of e with key set in its payload
func (e *Event) WithPayload(key string, value any) *Event {
	payload := make(map[string]any, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	cp := *e
	cp.Payload = payload
	return &cp
}
