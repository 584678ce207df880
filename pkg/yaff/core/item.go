package core

import "github.com/mynameisdaniil/yaff/pkg/yaff"

// Kind tags a work item. The set is closed.
type Kind uint8

const (
	Sequential Kind = iota + 1
	Parallel
	ErrorHandler
	Finalizer
)

func (k Kind) String() string {
	switch k {
	case Sequential:
		return "seq"
	case Parallel:
		return "par"
	case ErrorHandler:
		return "catch"
	case Finalizer:
		return "finally"
	default:
		return "unknown"
	}
}

// Unbounded is the concurrency limit of a parallel item without a cap.
const Unbounded = 0

// Item is one enqueued unit of deferred work. Exactly one of Action, Catch
// and Final is set, matching Kind.
type Item struct {
	Kind     Kind
	Action   yaff.Action
	Catch    yaff.Catcher
	Final    yaff.Finalizer
	Position int // Parallel only
	Limit    int // Parallel only, Unbounded when <= 0
}

func NewSequential(a yaff.Action) *Item {
	return &Item{Kind: Sequential, Action: a}
}

func NewParallel(a yaff.Action) *Item {
	return &Item{Kind: Parallel, Action: a}
}

func NewErrorHandler(c yaff.Catcher) *Item {
	return &Item{Kind: ErrorHandler, Catch: c}
}

func NewFinalizer(f yaff.Finalizer) *Item {
	return &Item{Kind: Finalizer, Final: f}
}

// Admits reports whether the item may start while running invocations are in
// flight.
func (it *Item) Admits(running int) bool {
	return it.Limit <= Unbounded || running < it.Limit
}
