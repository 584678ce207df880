package yaff

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrFinalizerExists is returned when a chain already has a finalizer.
	ErrFinalizerExists = errors.New("chain already has a finalizer")

	// ErrChainFinalized reports work enqueued after the finalizer.
	ErrChainFinalized = errors.New("chain is finalized")

	// ErrChainFailed reports work enqueued after an unhandled error.
	ErrChainFailed = errors.New("chain failed with an unhandled error")

	// ErrNoItem reports Limit called on a chain with nothing enqueued.
	ErrNoItem = errors.New("no item to apply the limit to")

	// ErrNilAction reports a nil action, catcher or finalizer.
	ErrNilAction = errors.New("nil action")
)

// UnhandledError wraps an error that reached the end of the queue without
// meeting a catcher or a finalizer.
type UnhandledError struct {
	Err error
}

func (e *UnhandledError) Error() string {
	return "unhandled chain error: " + e.Err.Error()
}

func (e *UnhandledError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking action.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("action panicked: %v", e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func IsNil(i interface{}) bool {
	if i == nil || (reflect.ValueOf(i).Kind() == reflect.Ptr && reflect.ValueOf(i).IsNil()) {
		return true
	}
	return false
}

// GetErrors flattens err into its leaves. Errors built by repeated
// errors.Join calls come back as one flat list, in join order.
func GetErrors(err error) []error {
	if IsNil(err) {
		return []error{}
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}

	var leaves []error
	for _, e := range joined.Unwrap() {
		leaves = append(leaves, GetErrors(e)...)
	}
	return leaves
}

// IsCancellationError reports whether err comes from a canceled or expired
// context.
func IsCancellationError(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return true
	default:
		return errors.Is(err, context.DeadlineExceeded)
	}
}
