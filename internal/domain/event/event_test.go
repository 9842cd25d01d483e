package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestType(t *testing.T) {
	tests := []struct {
		eventType Type
		valid     bool
		terminal  bool
	}{
		{TypeSubmissionStarted, true, false},
		{TypeSubmissionTransitioned, true, false},
		{TypeSubmissionReady, true, true},
		{TypeSubmissionFailed, true, true},
		{Type("instance.created"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.eventType.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.eventType.IsValid())
			assert.Equal(t, tt.terminal, tt.eventType.IsTerminal())
		})
	}
}

func TestNew(t *testing.T) {
	a := New(TypeSubmissionStarted, "sub-1")
	b := New(TypeSubmissionStarted, "sub-1")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "sub-1", a.SubmissionID)
	assert.False(t, a.Timestamp.IsZero())
}

func TestTransition(t *testing.T) {
	e := Transition("sub-1", "FILLING", "SUBMITTING")

	assert.Equal(t, TypeSubmissionTransitioned, e.Type)
	assert.Equal(t, "FILLING", e.From)
	assert.Equal(t, "SUBMITTING", e.To)
}

func TestEvent_WithPayload(t *testing.T) {
	original := New(TypeSubmissionFailed, "sub-1")
	withErr := original.WithPayload("error", "boom")
	withBoth := withErr.WithPayload("stage", "SUBMITTING")

	assert.Nil(t, original.Payload, "original must not be modified")
	assert.Len(t, withErr.Payload, 1)
	assert.Equal(t, "boom", withBoth.Payload["error"])
	assert.Equal(t, "SUBMITTING", withBoth.Payload["stage"])
	assert.Equal(t, original.ID, withBoth.ID)
}
