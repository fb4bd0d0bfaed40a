package constructs

import (
	"context"
	"time"
)

// Pump fires every event received from events into m, in order, until
// events is closed or ctx is done. It returns the number of events fired.
func Pump[S, E any](ctx context.Context, m *StateMachine[S, E], events <-chan E) int {
	n := 0
	for {
		select {
		case <-ctx.Done():
			return n
		case e, ok := <-events:
			if !ok {
				return n
			}
			m.FireEvent(ctx, e)
			n++
		}
	}
}

// Ticker emits event every d until ctx is done, then closes the channel.
// Ticks that find the channel full are dropped.
func Ticker[E any](ctx context.Context, d time.Duration, event E) <-chan E {
	ch := make(chan E, 1)
	go func() {
		defer close(ch)
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				select {
				case ch <- event:
				default:
				}
			}
		}
	}()
	return ch
}
