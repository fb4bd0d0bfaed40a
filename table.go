package constructs

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoStates            = errors.New("no states provided")
	ErrEmptyName           = errors.New("empty name")
	ErrDuplicateState      = errors.New("duplicate state")
	ErrUnknownState        = errors.New("unknown state")
	ErrUnknownGuard        = errors.New("unknown guard")
	ErrDuplicateTransition = errors.New("unreachable transition")
)

// Guard decides whether a table transition may be taken.
type Guard func(ctx context.Context, from, event string) bool

// Hook is notified around a table transition.
type Hook func(ctx context.Context, from, to, event string)

// TableTransition is one row of a transition table. An empty Target is a
// loopback to the owning state. Guard names a guard registered with
// WithGuard; empty means always allowed.
type TableTransition struct {
	Event  string `json:"event" yaml:"event"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	Guard  string `json:"guard,omitempty" yaml:"guard,omitempty"`
}

// TableState lists the transitions out of one state, in priority order.
type TableState struct {
	Name string            `json:"name" yaml:"name"`
	On   []TableTransition `json:"on,omitempty" yaml:"on,omitempty"`
}

// TableConfig is the declarative form of a Table, as written in YAML:
//
//	name: traffic
//	initial: red
//	states:
//	  - name: red
//	    on:
//	      - {event: timer, target: green}
type TableConfig struct {
	Name    string       `json:"name" yaml:"name"`
	Initial string       `json:"initial" yaml:"initial"`
	States  []TableState `json:"states" yaml:"states"`
}

// Table is a Policy[string, string] driven by a transition table. For a
// (state, event) pair the first listed transition whose guard passes wins;
// events with no such transition are rejected.
type Table struct {
	config TableConfig
	index  map[string]map[string][]compiledTransition
	guards map[string]Guard
	will   []Hook
	did    []Hook
}

type compiledTransition struct {
	target string
	guard  Guard
}

var _ Policy[string, string] = (*Table)(nil)

// TableOption configures a Table at build or parse time.
type TableOption func(*Table)

// WithGuard registers a named guard for transitions to reference.
func WithGuard(name string, g Guard) TableOption {
	return func(t *Table) {
		t.guards[name] = g
	}
}

// OnWillTransition appends a hook run before each committed transition.
func OnWillTransition(h Hook) TableOption {
	return func(t *Table) {
		t.will = append(t.will, h)
	}
}

// OnDidTransition appends a hook run after each committed transition.
func OnDidTransition(h Hook) TableOption {
	return func(t *Table) {
		t.did = append(t.did, h)
	}
}

// ParseTable decodes a YAML transition table and compiles it.
func ParseTable(data []byte, opts ...TableOption) (*Table, error) {
	var config TableConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return NewTable(config, opts...)
}

// NewTable validates config and compiles it into a Table.
func NewTable(config TableConfig, opts ...TableOption) (*Table, error) {
	t := &Table{
		config: config,
		index:  make(map[string]map[string][]compiledTransition, len(config.States)),
		guards: make(map[string]Guard),
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.compile(); err != nil {
		return nil, err
	}
	return t, nil
}

// compile validates the config and builds the lookup index.
func (t *Table) compile() error {
	if len(t.config.States) == 0 {
		return ErrNoStates
	}

	for _, s := range t.config.States {
		if s.Name == "" {
			return fmt.Errorf("state: %w", ErrEmptyName)
		}
		if _, exists := t.index[s.Name]; exists {
			return fmt.Errorf("state %q: %w", s.Name, ErrDuplicateState)
		}
		t.index[s.Name] = map[string][]compiledTransition{}
	}

	if t.config.Initial == "" {
		t.config.Initial = t.config.States[0].Name // First state is assigned as initial.
	}
	if _, ok := t.index[t.config.Initial]; !ok {
		return fmt.Errorf("initial state %q: %w", t.config.Initial, ErrUnknownState)
	}

	for _, s := range t.config.States {
		byEvent := t.index[s.Name]
		for _, tr := range s.On {
			if tr.Event == "" {
				return fmt.Errorf("state %q transition: event: %w", s.Name, ErrEmptyName)
			}
			target := tr.Target
			if target == "" {
				target = s.Name
			}
			if _, ok := t.index[target]; !ok {
				return fmt.Errorf("state %q has transition to %q: %w", s.Name, target, ErrUnknownState)
			}

			var guard Guard
			if tr.Guard != "" {
				g, ok := t.guards[tr.Guard]
				if !ok || g == nil {
					return fmt.Errorf("state %q event %q guard %q: %w", s.Name, tr.Event, tr.Guard, ErrUnknownGuard)
				}
				guard = g
			}

			// An earlier unguarded row for the same event shadows this one.
			for _, prev := range byEvent[tr.Event] {
				if prev.guard == nil {
					return fmt.Errorf("state %q event %q: %w", s.Name, tr.Event, ErrDuplicateTransition)
				}
			}
			byEvent[tr.Event] = append(byEvent[tr.Event], compiledTransition{target: target, guard: guard})
		}
	}
	return nil
}

// Name returns the table's name.
func (t *Table) Name() string { return t.config.Name }

// Initial returns the state a machine driven by this table should start in.
func (t *Table) Initial() string { return t.config.Initial }

// Config returns a copy of the table's declarative form.
func (t *Table) Config() TableConfig {
	c := t.config
	c.States = make([]TableState, len(t.config.States))
	for i, s := range t.config.States {
		c.States[i] = TableState{Name: s.Name, On: append([]TableTransition(nil), s.On...)}
	}
	return c
}

// Marshal encodes the table's declarative form as YAML.
func (t *Table) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(t.config)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// Next picks the first transition for (state, event) whose guard passes.
func (t *Table) Next(ctx context.Context, state, event string) (string, bool) {
	for _, tr := range t.index[state][event] {
		if tr.guard == nil || tr.guard(ctx, state, event) {
			return tr.target, true
		}
	}
	return "", false
}

func (t *Table) WillTransition(ctx context.Context, from, to, event string) {
	for _, h := range t.will {
		h(ctx, from, to, event)
	}
}

func (t *Table) DidTransition(ctx context.Context, from, to, event string) {
	for _, h := range t.did {
		h(ctx, from, to, event)
	}
}
