package benchmarks

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"github.com/comalice/constructs"
	"github.com/comalice/constructs/dispatch"
)

func BenchmarkBroadcast(b *testing.B) {
	for _, n := range []int{1, 16, 256} {
		b.Run(fmt.Sprintf("listeners_%d", n), func(b *testing.B) {
			subs := constructs.NewSubscribers[constructs.TransitionListener[string, string]]()
			listeners := GenListeners(n)
			for _, l := range listeners {
				subs.Add(l)
			}
			tr := constructs.Transition[string, string]{From: "a", To: "b", Event: "tick"}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				subs.Broadcast(func(l constructs.TransitionListener[string, string]) {
					l.OnTransition(tr)
				})
			}
			b.StopTimer()
			runtime.KeepAlive(listeners)
		})
	}
}

func BenchmarkBroadcastOnQueue(b *testing.B) {
	q := dispatch.NewQueue(dispatch.WithBuffer(4096))
	defer q.Close()

	subs := constructs.NewSubscribers[constructs.TransitionListener[string, string]](constructs.WithDispatcher(q))
	listeners := GenListeners(16)
	for _, l := range listeners {
		subs.Add(l)
	}
	tr := constructs.Transition[string, string]{From: "a", To: "b", Event: "tick"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		subs.Broadcast(func(l constructs.TransitionListener[string, string]) {
			l.OnTransition(tr)
		})
	}
	if err := q.Sync(b.Context(), func(context.Context) {}); err != nil {
		b.Fatal(err)
	}
	b.StopTimer()
	runtime.KeepAlive(listeners)
}

func BenchmarkAddRemove(b *testing.B) {
	subs := constructs.NewSubscribers[constructs.TransitionListener[string, string]]()
	listeners := GenListeners(64)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l := listeners[i%len(listeners)]
		subs.Add(l)
		subs.Remove(l)
	}
	b.StopTimer()
	runtime.KeepAlive(listeners)
}
