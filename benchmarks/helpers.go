// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/constructs"
)

// GenRingConfig creates a table with n states cycling via "tick" events.
func GenRingConfig(n int) constructs.TableConfig {
	if n < 1 {
		n = 1
	}
	config := constructs.TableConfig{
		Name:    fmt.Sprintf("ring_%d", n),
		Initial: "s0",
		States:  make([]constructs.TableState, n),
	}
	for i := 0; i < n; i++ {
		config.States[i] = constructs.TableState{
			Name: fmt.Sprintf("s%d", i),
			On:   []constructs.TableTransition{{Event: "tick", Target: fmt.Sprintf("s%d", (i+1)%n)}},
		}
	}
	return config
}

// GenRingTable compiles GenRingConfig(n).
func GenRingTable(n int) *constructs.Table {
	table, err := constructs.NewTable(GenRingConfig(n))
	if err != nil {
		panic(err)
	}
	return table
}

// GenGuardedTable creates one state with many guarded "tick" rows, of which
// only the last passes, so every decision scans all of them.
func GenGuardedTable(rows int) *constructs.Table {
	if rows < 1 {
		rows = 1
	}
	b := constructs.NewTableBuilder(fmt.Sprintf("guarded_%d", rows), "main").
		Guard("never", func(context.Context, string, string) bool { return false })
	main := b.State("main")
	for i := 0; i < rows-1; i++ {
		main.OnGuarded("tick", "main", "never")
	}
	main.OnLoopback("tick")

	table, err := b.Build()
	if err != nil {
		panic(err)
	}
	return table
}

// GenRingYAML encodes GenRingConfig(n).
func GenRingYAML(n int) []byte {
	data, err := yaml.Marshal(GenRingConfig(n))
	if err != nil {
		panic(err)
	}
	return data
}

// nopListener is a TransitionListener that only counts.
type nopListener struct {
	name  string
	calls int
}

func (l *nopListener) OnTransition(constructs.Transition[string, string]) { l.calls++ }

// GenListeners returns n distinct listeners. Callers must keep the slice
// reachable while the listeners are registered.
func GenListeners(n int) []*nopListener {
	out := make([]*nopListener, n)
	for i := range out {
		out[i] = &nopListener{name: fmt.Sprintf("listener_%d", i)}
	}
	return out
}
