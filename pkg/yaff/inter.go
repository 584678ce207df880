package yaff

import "context"

// Done completes one work item. The first argument is the error value; the
// rest become the item's results. Only the first call counts.
type Done func(err error, results ...any)

// Action is a sequential or parallel step. args is a private copy of the
// ValueStack taken when the step was dispatched.
type Action func(ctx context.Context, args []any, done Done)

// Catcher handles an error travelling down the chain. Calling done with a nil
// error resumes the chain with the given results; a non-nil error keeps
// propagating.
type Catcher func(ctx context.Context, err error, done Done)

// Finalizer receives the final outcome of a chain: (nil, values...) on
// success, (err) with no results on failure.
type Finalizer func(err error, results ...any)

// ValueReader exposes a read-only view of a value sequence.
type ValueReader interface {
	// Values returns a copy of the stored values
	Values() []any
	// Len returns the number of stored values
	Len() int
}
