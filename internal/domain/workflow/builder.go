package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// GuardFunc decides whether a guarded transition may be taken
type GuardFunc func(ctx context.Context) bool

// StateMachineBuilder collects transitions and produces independent machines
type StateMachineBuilder interface {
	// Configure returns the configuration of state, creating it on first use
	Configure(state State) StateConfiguration

	// Build creates a machine starting in initialState
	Build(initialState State) StateMachine
}

// StateConfiguration configures the transitions leaving one state
type StateConfiguration interface {
	// Permit allows trigger to move to toState
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf allows trigger to move to toState when guard passes
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration
}

type edge struct {
	to    State
	guard GuardFunc
}

type stateConfig struct {
	edges map[Trigger][]edge
}

type stateMachineBuilder struct {
	configs map[State]*stateConfig
}

type stateMachine struct {
	current State
	configs map[State]*stateConfig
	history []Transition
	now     func() time.Time
}

// NewBuilder creates a new state machine builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{configs: make(map[State]*stateConfig)}
}

// NewSubmissionMachine returns a machine wired for the signing flow:
// IDLE -> FILLING -> SUBMITTING -> AWAITING_SIGNING_URL -> READY, with FAILED
// reachable from every non-idle, non-terminal stage.
func NewSubmissionMachine() StateMachine {
	b := NewBuilder()
	b.Configure(StateIdle).Permit(TriggerStart, StateFilling)
	b.Configure(StateFilling).
		Permit(TriggerDocumentFilled, StateSubmitting).
		Permit(TriggerFail, StateFailed)
	b.Configure(StateSubmitting).
		Permit(TriggerPackageCreated, StateAwaitingSigningURL).
		Permit(TriggerFail, StateFailed)
	b.Configure(StateAwaitingSigningURL).
		Permit(TriggerSigningURLReady, StateReady).
		Permit(TriggerFail, StateFailed)
	return b.Build(StateIdle)
}

func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}
	cfg, ok := b.configs[state]
	if !ok {
		cfg = &stateConfig{edges: make(map[Trigger][]edge)}
		b.configs[state] = cfg
	}
	return cfg
}

// Build copies the configuration so later Configure calls do not leak into built machines
func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	configs := make(map[State]*stateConfig, len(b.configs))
	for state, cfg := range b.configs {
		edges := make(map[Trigger][]edge, len(cfg.edges))
		for trigger, list := range cfg.edges {
			edges[trigger] = append([]edge(nil), list...)
		}
		configs[state] = &stateConfig{edges: edges}
	}

	return &stateMachine{
		current: initialState,
		configs: configs,
		now:     time.Now,
	}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	c.edges[trigger] = append(c.edges[trigger], edge{to: toState, guard: guard})
	return c
}

func (m *stateMachine) State() State {
	return m.current
}

// CanFire does not evaluate guards; it only checks that an edge exists
func (m *stateMachine) CanFire(trigger Trigger) bool {
	cfg, ok := m.configs[m.current]
	return ok && len(cfg.edges[trigger]) > 0
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	cfg, ok := m.configs[m.current]
	if !ok || len(cfg.edges[trigger]) == 0 {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	for _, e := range cfg.edges[trigger] {
		if e.guard != nil && !e.guard(ctx) {
			continue
		}
		m.history = append(m.history, Transition{
			From:    m.current,
			To:      e.to,
			Trigger: trigger,
			At:      m.now(),
		})
		m.current = e.to
		return nil
	}

	return fmt.Errorf("%w: %s from %s", ErrGuardFailed, trigger, m.current)
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	cfg, ok := m.configs[m.current]
	if !ok {
		return []Trigger{}
	}
	triggers := make([]Trigger, 0, len(cfg.edges))
	for t := range cfg.edges {
		triggers = append(triggers, t)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}

func (m *stateMachine) History() []Transition {
	return append([]Transition(nil), m.history...)
}
