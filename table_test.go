package constructs_test

import (
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/comalice/constructs"
)

const turnstileYAML = `
name: turnstile
initial: locked
states:
  - name: locked
    on:
      - event: coin
        target: unlocked
        guard: paid
      - event: push
  - name: unlocked
    on:
      - event: push
        target: locked
`

func TestParseTableDrivesMachine(t *testing.T) {
	var did []Transition[string, string]
	table, err := ParseTable([]byte(turnstileYAML),
		WithGuard("paid", func(context.Context, string, string) bool { return true }),
		OnDidTransition(func(_ context.Context, from, to, event string) {
			did = append(did, Transition[string, string]{From: from, To: to, Event: event})
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, "turnstile", table.Name())

	m := NewStateMachine[string, string](table.Initial())
	m.SetPolicy(table)

	ctx := context.Background()
	for _, e := range []string{"push", "coin", "coin", "push"} {
		m.FireEvent(ctx, e)
	}

	assert.Equal(t, []Transition[string, string]{
		{From: "locked", To: "locked", Event: "push"},
		{From: "locked", To: "unlocked", Event: "coin"},
		{From: "unlocked", To: "locked", Event: "push"},
	}, did)
	assert.Equal(t, "locked", m.State())
	runtime.KeepAlive(table)
}

func TestParseTableErrors(t *testing.T) {
	_, err := ParseTable([]byte("states: [oops"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yaml unmarshal")

	_, err = ParseTable([]byte(turnstileYAML))
	assert.ErrorIs(t, err, ErrUnknownGuard)

	_, err = ParseTable([]byte("initial: nope\nstates:\n  - name: a\n"))
	assert.ErrorIs(t, err, ErrUnknownState)

	_, err = ParseTable([]byte("states:\n  - name: a\n  - name: a\n"))
	assert.ErrorIs(t, err, ErrDuplicateState)

	_, err = ParseTable([]byte("states:\n  - name: ''\n"))
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestTableInitialDefaultsToFirstState(t *testing.T) {
	table, err := NewTable(TableConfig{States: []TableState{{Name: "first"}, {Name: "second"}}})
	require.NoError(t, err)
	assert.Equal(t, "first", table.Initial())
}

func TestTableMarshalRoundTrip(t *testing.T) {
	paid := WithGuard("paid", func(context.Context, string, string) bool { return false })
	table, err := ParseTable([]byte(turnstileYAML), paid)
	require.NoError(t, err)

	data, err := table.Marshal()
	require.NoError(t, err)

	again, err := ParseTable(data, paid)
	require.NoError(t, err)
	assert.Equal(t, table.Config(), again.Config())
}

func TestTableConfigIsACopy(t *testing.T) {
	table, err := NewTableBuilder("t", "a").State("a").On("x", "a").Done().Build()
	require.NoError(t, err)

	c := table.Config()
	c.States[0].On[0].Target = "mutated"

	next, ok := table.Next(context.Background(), "a", "x")
	assert.True(t, ok)
	assert.Equal(t, "a", next)
	assert.Equal(t, "a", table.Config().States[0].On[0].Target)
}

func TestTableDOT(t *testing.T) {
	table, err := ParseTable([]byte(turnstileYAML),
		WithGuard("paid", func(context.Context, string, string) bool { return true }))
	require.NoError(t, err)

	dot := table.DOT("unlocked")
	assert.True(t, strings.HasPrefix(dot, `digraph "turnstile" {`))
	assert.Contains(t, dot, `"unlocked" [label="unlocked" style=filled fillcolor=lightgreen];`)
	assert.Contains(t, dot, `"locked" [label="locked" peripheries=2];`)
	assert.Contains(t, dot, `"locked" -> "unlocked" [label="coin [paid]"];`)
	assert.Contains(t, dot, `"locked" -> "locked" [label="push"];`)
	assert.True(t, strings.HasSuffix(dot, "}\n"))
}
