package constructs

// TableBuilder provides a fluent API for constructing a Table in code
// instead of writing a TableConfig by hand.
type TableBuilder struct {
	config TableConfig
	states map[string]int // name -> index in config.States
	opts   []TableOption
}

// StateBuilder provides fluent methods for configuring individual states.
type StateBuilder struct {
	b    *TableBuilder
	name string
}

// NewTableBuilder creates a builder for a table with the given name and
// initial state. The initial state is created if no transition mentions it.
func NewTableBuilder(name, initial string) *TableBuilder {
	b := &TableBuilder{
		config: TableConfig{Name: name, Initial: initial},
		states: make(map[string]int),
	}
	if initial != "" {
		b.ensure(initial)
	}
	return b
}

// State creates or retrieves a state by name.
func (b *TableBuilder) State(name string) *StateBuilder {
	b.ensure(name)
	return &StateBuilder{b: b, name: name}
}

// Guard registers a named guard.
func (b *TableBuilder) Guard(name string, g Guard) *TableBuilder {
	b.opts = append(b.opts, WithGuard(name, g))
	return b
}

// WillTransition appends a hook run before each committed transition.
func (b *TableBuilder) WillTransition(h Hook) *TableBuilder {
	b.opts = append(b.opts, OnWillTransition(h))
	return b
}

// DidTransition appends a hook run after each committed transition.
func (b *TableBuilder) DidTransition(h Hook) *TableBuilder {
	b.opts = append(b.opts, OnDidTransition(h))
	return b
}

// Build validates the configuration and constructs the Table.
func (b *TableBuilder) Build() (*Table, error) {
	return NewTable(b.config, b.opts...)
}

// ensure returns the index of the named state, creating it if needed.
// An empty name is kept so that Build reports it.
func (b *TableBuilder) ensure(name string) int {
	if i, exists := b.states[name]; exists {
		return i
	}
	b.config.States = append(b.config.States, TableState{Name: name})
	i := len(b.config.States) - 1
	b.states[name] = i
	return i
}

// StateBuilder fluent methods

// On adds a transition from this state to target when event occurs.
// Targets may be declared later; Build checks they exist.
func (sb *StateBuilder) On(event, target string) *StateBuilder {
	return sb.add(TableTransition{Event: event, Target: target})
}

// OnGuarded adds a transition taken only when the named guard passes.
func (sb *StateBuilder) OnGuarded(event, target, guard string) *StateBuilder {
	return sb.add(TableTransition{Event: event, Target: target, Guard: guard})
}

// OnLoopback adds a transition back into this state. Hooks still fire.
func (sb *StateBuilder) OnLoopback(event string) *StateBuilder {
	return sb.add(TableTransition{Event: event})
}

// State switches to configuring another state.
func (sb *StateBuilder) State(name string) *StateBuilder {
	return sb.b.State(name)
}

// Done returns the parent builder.
func (sb *StateBuilder) Done() *TableBuilder {
	return sb.b
}

func (sb *StateBuilder) add(tr TableTransition) *StateBuilder {
	i := sb.b.ensure(sb.name)
	sb.b.config.States[i].On = append(sb.b.config.States[i].On, tr)
	return sb
}
