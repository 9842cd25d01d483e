package workflow

import (
	"context"
	"time"
)

// Transition records one state change of a machine
type Transition struct {
	From    State
	To      State
	Trigger Trigger
	At      time.Time
}

// StateMachine tracks the current state and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if some transition is configured for trigger in the current state
	CanFire(trigger Trigger) bool

	// Fire executes trigger, moving to the first target whose guard passes
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns the triggers configured for the current state
	PermittedTriggers() []Trigger

	// History returns the transitions taken so far, oldest first
	History() []Transition
}
