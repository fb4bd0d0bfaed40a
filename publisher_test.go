package constructs_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/comalice/constructs"
	"github.com/comalice/constructs/testutil"
)

type transitionLog struct {
	got []Transition[string, string]
}

func (l *transitionLog) OnTransition(tr Transition[string, string]) {
	l.got = append(l.got, tr)
}

func TestAnnounceBroadcastsTransitions(t *testing.T) {
	subs := NewSubscribers[TransitionListener[string, string]]()
	first, second := &transitionLog{}, &transitionLog{}
	subs.Add(first)
	subs.Add(second)

	rec := &testutil.Recorder[string, string]{
		Decide: testutil.Graph(lifecycle),
		OnDid:  Announce(subs),
	}
	m := NewStateMachine[string, string]("idle")
	m.SetPolicy(rec)

	m.FireEvent(context.Background(), "start")
	m.FireEvent(context.Background(), "stop")

	want := []Transition[string, string]{
		{From: "idle", To: "running", Event: "start"},
		{From: "running", To: "idle", Event: "stop"},
	}
	assert.Equal(t, want, first.got)
	assert.Equal(t, want, second.got)
	runtime.KeepAlive(rec)
}

func TestAnnounceFromTableHook(t *testing.T) {
	subs := NewSubscribers[TransitionListener[string, string]]()
	log := &transitionLog{}
	subs.Add(log)

	table, err := NewTableBuilder("t", "a").
		State("a").On("go", "b").
		State("b").
		Done().
		DidTransition(Hook(Announce(subs))).
		Build()
	require.NoError(t, err)

	m := NewStateMachine[string, string](table.Initial())
	m.SetPolicy(table)
	m.FireEvent(context.Background(), "go")

	assert.Equal(t, []Transition[string, string]{{From: "a", To: "b", Event: "go"}}, log.got)
	runtime.KeepAlive(table)
}

func TestChannelPublisher(t *testing.T) {
	ch := make(chan Transition[string, string], 1)
	p := NewChannelPublisher(ch)

	p.OnTransition(Transition[string, string]{From: "a", To: "b", Event: "x"})
	p.OnTransition(Transition[string, string]{From: "b", To: "c", Event: "y"})
	assert.EqualValues(t, 1, p.Dropped(), "full channel drops")

	got := <-ch
	assert.Equal(t, "b", got.To)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	p.OnTransition(Transition[string, string]{From: "c", To: "d", Event: "z"})

	_, ok := <-ch
	assert.False(t, ok, "channel closed")
	assert.EqualValues(t, 1, p.Dropped())
}
