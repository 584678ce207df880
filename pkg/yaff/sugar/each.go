package sugar

import (
	"context"

	"github.com/mynameisdaniil/yaff/pkg/yaff"
	"github.com/mynameisdaniil/yaff/pkg/yaff/chain"
	"github.com/mynameisdaniil/yaff/pkg/yaff/telemetry"
)

// Predicate decides whether one value of the stack is kept.
type Predicate func(ctx context.Context, item any, index int, done func(err error, keep bool))

// ParMap runs fn for every value at once, at most limit at a time (limit <= 0
// falls back to the chain's default limit). The stack becomes the results, in
// value order.
func ParMap(c *chain.Chain, fn ItemAction, limit int) *chain.Chain {
	return c.Seq(func(ctx context.Context, args []any, done yaff.Done) {
		child := c.Spawn(ctx, nil)
		for i, v := range args {
			child.ParLimit(bind(fn, v, i), limit)
		}
		finishInto(child, done, asIs)
	})
}

// ParEach runs fn for every value at once, at most limit at a time, and keeps
// the stack as it was.
func ParEach(c *chain.Chain, fn ItemAction, limit int) *chain.Chain {
	return c.Seq(func(ctx context.Context, args []any, done yaff.Done) {
		child := c.Spawn(ctx, nil)
		for i, v := range args {
			child.ParLimit(bind(fn, v, i), limit)
		}
		finishInto(child, done, func([]any) []any { return args })
	})
}

// ForEach starts fn for every value, at most limit at a time, and moves on
// without waiting for them. Errors are logged, not propagated.
func ForEach(c *chain.Chain, fn ItemAction, limit int) *chain.Chain {
	return c.Seq(func(ctx context.Context, args []any, done yaff.Done) {
		child := c.Spawn(ctx, nil)
		for i, v := range args {
			child.ParLimit(bind(fn, v, i), limit)
		}
		err := child.Finally(func(err error, _ ...any) {
			if err != nil {
				telemetry.FromContext(ctx).Warn("background iteration failed",
					"chain_id", child.ID().String(), "error", err)
			}
		})
		done(err, args...)
	})
}

// SeqEach runs fn for every value, one after the other, and keeps the stack
// as it was.
func SeqEach(c *chain.Chain, fn ItemAction) *chain.Chain {
	return c.Seq(func(ctx context.Context, args []any, done yaff.Done) {
		child := c.Spawn(ctx, nil)
		for i, v := range args {
			child.Seq(bind(fn, v, i))
		}
		finishInto(child, done, func([]any) []any { return args })
	})
}

// SeqMap runs fn for every value, one after the other, and collects the
// results in value order.
func SeqMap(c *chain.Chain, fn ItemAction) *chain.Chain {
	return c.Seq(func(ctx context.Context, args []any, done yaff.Done) {
		child := c.Spawn(ctx, nil)
		for i, v := range args {
			child.Seq(accumulate(func(ctx context.Context, next yaff.Done) {
				fn(ctx, v, i, next)
			}))
		}
		finishInto(child, done, asIs)
	})
}

// SeqFilter keeps the values pred accepts, testing one value at a time.
func SeqFilter(c *chain.Chain, pred Predicate) *chain.Chain {
	return c.Seq(func(ctx context.Context, args []any, done yaff.Done) {
		child := c.Spawn(ctx, nil)
		for i, v := range args {
			child.Seq(accumulate(func(ctx context.Context, next yaff.Done) {
				pred(ctx, v, i, keepDone(next))
			}))
		}
		finishInto(child, done, kept(args))
	})
}

// ParFilter keeps the values pred accepts, testing them at once, at most limit
// at a time. The kept values stay in stack order.
func ParFilter(c *chain.Chain, pred Predicate, limit int) *chain.Chain {
	return c.Seq(func(ctx context.Context, args []any, done yaff.Done) {
		child := c.Spawn(ctx, nil)
		for i, v := range args {
			child.ParLimit(func(ctx context.Context, _ []any, next yaff.Done) {
				pred(ctx, v, i, keepDone(next))
			}, limit)
		}
		finishInto(child, done, kept(args))
	})
}

// SeqWith enqueues action as a sequential step that receives args instead of
// the stack. Without args it behaves like Seq.
func SeqWith(c *chain.Chain, action yaff.Action, args ...any) *chain.Chain {
	return c.Seq(withArgs(action, args))
}

// ParWith is the parallel counterpart of SeqWith.
func ParWith(c *chain.Chain, action yaff.Action, args ...any) *chain.Chain {
	return c.Par(withArgs(action, args))
}

func withArgs(action yaff.Action, bound []any) yaff.Action {
	if action == nil {
		return nil
	}
	bound = yaff.Snapshot(bound)
	return func(ctx context.Context, args []any, done yaff.Done) {
		if len(bound) > 0 {
			args = yaff.Snapshot(bound)
		}
		action(ctx, args, done)
	}
}

func bind(fn ItemAction, item any, index int) yaff.Action {
	return func(ctx context.Context, _ []any, done yaff.Done) {
		fn(ctx, item, index, done)
	}
}

// accumulate turns a per-item step into a sequential action that appends the
// item's unwrapped result to the stack it received.
func accumulate(step func(ctx context.Context, next yaff.Done)) yaff.Action {
	return func(ctx context.Context, acc []any, done yaff.Done) {
		step(ctx, func(err error, results ...any) {
			if err != nil {
				done(err)
				return
			}
			done(nil, append(acc, yaff.Unwrap(results))...)
		})
	}
}

func keepDone(next yaff.Done) func(err error, keep bool) {
	return func(err error, keep bool) {
		if err != nil {
			next(err)
			return
		}
		next(nil, keep)
	}
}

// kept selects the values whose flag in the child results is true.
func kept(values []any) func(flags []any) []any {
	return func(flags []any) []any {
		out := make([]any, 0, len(values))
		for i, v := range values {
			if i < len(flags) {
				if keep, _ := flags[i].(bool); keep {
					out = append(out, v)
				}
			}
		}
		return out
	}
}

func asIs(values []any) []any {
	return values
}

// finishInto finalizes child with the parent step's completion handle. shape
// picks the values handed back on success.
func finishInto(child *chain.Chain, done yaff.Done, shape func(results []any) []any) {
	err := child.Finally(func(err error, values ...any) {
		if err != nil {
			done(err)
			return
		}
		done(nil, shape(values)...)
	})
	if err != nil {
		done(err)
	}
}
