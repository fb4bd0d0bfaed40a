package constructs_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/comalice/constructs"
)

func TestTableBuilder_Basic(t *testing.T) {
	table, err := NewTableBuilder("traffic", "red").
		State("red").On("timer", "green").
		State("green").On("timer", "yellow").
		State("yellow").On("timer", "red").
		Done().Build()
	require.NoError(t, err)
	assert.Equal(t, "traffic", table.Name())
	assert.Equal(t, "red", table.Initial())

	m := NewStateMachine[string, string](table.Initial())
	m.SetPolicy(table)

	ctx := context.Background()
	for _, want := range []string{"green", "yellow", "red", "green"} {
		m.FireEvent(ctx, "timer")
		assert.Equal(t, want, m.State())
	}
	runtime.KeepAlive(table)
}

func TestTableBuilder_Guards(t *testing.T) {
	allowed := false
	table, err := NewTableBuilder("door", "closed").
		Guard("unlocked", func(context.Context, string, string) bool { return allowed }).
		State("closed").
		OnGuarded("push", "open", "unlocked").
		On("push", "jammed").
		State("open").On("push", "closed").
		State("jammed").
		Done().Build()
	require.NoError(t, err)

	next, ok := table.Next(context.Background(), "closed", "push")
	assert.True(t, ok)
	assert.Equal(t, "jammed", next, "falls through to the unguarded row")

	allowed = true
	next, ok = table.Next(context.Background(), "closed", "push")
	assert.True(t, ok)
	assert.Equal(t, "open", next, "first passing row wins")

	_, ok = table.Next(context.Background(), "jammed", "push")
	assert.False(t, ok)
}

func TestTableBuilder_LoopbackAndHooks(t *testing.T) {
	var calls []string
	table, err := NewTableBuilder("counter", "on").
		State("on").OnLoopback("tick").
		Done().
		WillTransition(func(_ context.Context, from, to, event string) {
			calls = append(calls, "will:"+from+"->"+to+":"+event)
		}).
		DidTransition(func(_ context.Context, from, to, event string) {
			calls = append(calls, "did:"+from+"->"+to+":"+event)
		}).
		Build()
	require.NoError(t, err)

	m := NewStateMachine[string, string](table.Initial())
	m.SetPolicy(table)
	m.FireEvent(context.Background(), "tick")

	assert.Equal(t, []string{"will:on->on:tick", "did:on->on:tick"}, calls)
	runtime.KeepAlive(table)
}

func TestTableBuilder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (*Table, error)
		wantErr error
	}{
		{
			name: "unknown target",
			build: func() (*Table, error) {
				return NewTableBuilder("t", "a").State("a").On("go", "nowhere").Done().Build()
			},
			wantErr: ErrUnknownState,
		},
		{
			name: "unknown guard",
			build: func() (*Table, error) {
				return NewTableBuilder("t", "a").State("a").OnGuarded("go", "a", "missing").Done().Build()
			},
			wantErr: ErrUnknownGuard,
		},
		{
			name: "shadowed transition",
			build: func() (*Table, error) {
				return NewTableBuilder("t", "a").
					State("a").On("go", "b").On("go", "a").
					State("b").Done().Build()
			},
			wantErr: ErrDuplicateTransition,
		},
		{
			name: "empty event",
			build: func() (*Table, error) {
				return NewTableBuilder("t", "a").State("a").On("", "a").Done().Build()
			},
			wantErr: ErrEmptyName,
		},
		{
			name: "no states",
			build: func() (*Table, error) {
				return NewTableBuilder("t", "").Build()
			},
			wantErr: ErrNoStates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := tt.build()
			assert.Nil(t, table)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestTableBuilder_StateIsReused(t *testing.T) {
	b := NewTableBuilder("t", "a")
	b.State("a").On("x", "b")
	b.State("b")
	b.State("a").On("y", "b")

	table, err := b.Build()
	require.NoError(t, err)

	config := table.Config()
	require.Len(t, config.States, 2)
	assert.Len(t, config.States[0].On, 2)
}
