// Package logging configures the zerolog global logger and hands out
// component-scoped loggers.
package logging

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger based on verbosity level.
// 0 = warn, 1 = info, 2 = debug, 3+ = trace. Output goes to w through a
// console writer; debug and trace also carry caller information.
func Setup(verbosity int, w io.Writer) {
	zerolog.SetGlobalLevel(LevelFor(verbosity))

	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}
	log.Logger = zerolog.New(console).With().Timestamp().Logger()

	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}
	generation.Add(1)

	log.Debug().Int("verbosity", verbosity).Msg("Logger initialized")
}

// LevelFor maps a verbosity count to a zerolog level.
func LevelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// Component returns a logger derived from the global logger, tagged with the
// given component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// generation counts Setup calls so Lazy loggers know when to re-derive.
var generation atomic.Uint64

// Lazy is a component logger that follows the global logger: it is derived
// on first use and again after every Setup. Components built before Setup
// therefore still log through the configured writer.
type Lazy struct {
	name   string
	fields []string
	cur    atomic.Pointer[lazyEntry]
}

type lazyEntry struct {
	gen    uint64
	logger zerolog.Logger
}

// NewLazy returns a Lazy for the named component. fields are extra
// key/value string pairs added to every entry.
func NewLazy(name string, fields ...string) *Lazy {
	return &Lazy{name: name, fields: fields}
}

// Logger returns the current logger for the component.
func (z *Lazy) Logger() *zerolog.Logger {
	gen := generation.Load()
	if e := z.cur.Load(); e != nil && e.gen == gen {
		return &e.logger
	}

	ctx := log.With().Str("component", z.name)
	for i := 0; i+1 < len(z.fields); i += 2 {
		ctx = ctx.Str(z.fields[i], z.fields[i+1])
	}
	e := &lazyEntry{gen: gen, logger: ctx.Logger()}
	z.cur.Store(e)
	return &e.logger
}
