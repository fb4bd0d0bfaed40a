package dispatch

// Executor runs a function, possibly later and elsewhere.
type Executor interface {
	Async(fn func()) error
}

type inline struct{}

func (inline) Async(fn func()) error {
	fn()
	return nil
}

type goroutine struct{}

func (goroutine) Async(fn func()) error {
	go fn()
	return nil
}

var (
	// Inline runs each function immediately on the caller's goroutine.
	Inline Executor = inline{}

	// Go runs each function on its own new goroutine.
	Go Executor = goroutine{}

	_ Executor = (*Queue)(nil)
)
