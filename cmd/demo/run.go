package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/comalice/constructs"
	"github.com/comalice/constructs/dispatch"
	"github.com/comalice/constructs/internal/logging"
)

type runOptions struct {
	events     []string
	tick       string
	interval   time.Duration
	cycles     int
	lockThread bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the machine and print its transitions",
		Long: `run feeds events to the machine and prints every committed transition.
With --events the listed events are fired in order; otherwise the --tick event
is fired every --interval, --cycles times.`,
		Example: `  demo run --events timer,timer,fault,reset
  demo run --interval 200ms --cycles 10 -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, subs, err := loadAnnouncingTable(cmd)
			if err != nil {
				return err
			}
			return runMachine(cmd.Context(), cmd.OutOrStdout(), table, subs, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.events, "events", nil, "events to fire, in order")
	cmd.Flags().StringVar(&opts.tick, "tick", "timer", "event fired on every tick")
	cmd.Flags().DurationVar(&opts.interval, "interval", 500*time.Millisecond, "time between ticks")
	cmd.Flags().IntVar(&opts.cycles, "cycles", 6, "number of ticks to fire")
	cmd.Flags().BoolVar(&opts.lockThread, "lock-thread", false, "pin the machine's queue to one OS thread")
	return cmd
}

type listeners = constructs.Subscribers[constructs.TransitionListener[string, string]]

func loadAnnouncingTable(cmd *cobra.Command) (*constructs.Table, *listeners, error) {
	subs := constructs.NewSubscribers[constructs.TransitionListener[string, string]](
		constructs.WithSubscribersLogger(logging.Component("listeners")),
	)
	table, err := loadTable(cmd, constructs.OnDidTransition(constructs.Announce(subs)))
	if err != nil {
		return nil, nil, err
	}
	return table, subs, nil
}

// printer writes one line per transition.
type printer struct {
	out io.Writer
	n   int
}

func (p *printer) OnTransition(tr constructs.Transition[string, string]) {
	p.n++
	fmt.Fprintf(p.out, "%3d  %s -> %s (%s)\n", p.n, tr.From, tr.To, tr.Event)
}

func runMachine(ctx context.Context, out io.Writer, table *constructs.Table, subs *listeners, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	qopts := []dispatch.QueueOption{dispatch.WithName("machine"), dispatch.WithLogger(logging.Component("queue"))}
	if opts.lockThread {
		qopts = append(qopts, dispatch.LockOSThread())
	}
	q := dispatch.NewQueue(qopts...)
	defer q.Close()

	// The machine and the registry hold everything weakly.
	retainer := &constructs.Retainer{}
	defer retainer.Release()

	m := constructs.NewStateMachine[string, string](table.Initial(),
		constructs.OnQueue(q),
		constructs.WithLogger(logging.Component("machine")),
	)
	m.SetPolicy(constructs.RetainedBy(
		constructs.NewLoggingPolicy[string, string](table, logging.Component("policy")), retainer))

	summary := make(chan constructs.Transition[string, string], max(len(opts.events), opts.cycles, 1))
	pub := constructs.RetainedBy(constructs.NewChannelPublisher(summary), retainer)
	subs.Add(constructs.RetainedBy(&printer{out: out}, retainer))
	subs.Add(pub)

	fmt.Fprintf(out, "%s: starting in %s\n", table.Name(), m.State())

	var fired int
	if len(opts.events) > 0 {
		events := make(chan string, len(opts.events))
		for _, e := range opts.events {
			events <- e
		}
		close(events)
		fired = constructs.Pump(ctx, m, events)
	} else {
		tickCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		fired = constructs.Pump(tickCtx, m, take(tickCtx, cancel,
			constructs.Ticker(tickCtx, opts.interval, opts.tick), opts.cycles))
	}

	if err := pub.Close(); err != nil {
		return err
	}
	committed := 0
	for range summary {
		committed++
	}

	log.Info().Int("fired", fired).Int("committed", committed).Int64("dropped", pub.Dropped()).Msg("run finished")
	fmt.Fprintf(out, "%s: %d events, %d transitions, ended in %s\n", table.Name(), fired, committed, m.State())
	return nil
}

// take forwards the first n values of src, then closes the result and
// cancels the producer.
func take[E any](ctx context.Context, cancel context.CancelFunc, src <-chan E, n int) <-chan E {
	out := make(chan E)
	go func() {
		defer close(out)
		defer cancel()
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-src:
				if !ok {
					return
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
