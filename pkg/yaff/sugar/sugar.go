package sugar

import (
	"context"
	"log/slog"
	"slices"

	"github.com/mynameisdaniil/yaff/pkg/yaff"
	"github.com/mynameisdaniil/yaff/pkg/yaff/chain"
)

// ItemAction works on one value of the stack.
type ItemAction func(ctx context.Context, item any, index int, done yaff.Done)

// Map replaces every value with fn(value, index).
func Map(c *chain.Chain, fn func(v any, i int) any) *chain.Chain {
	return c.Seq(func(_ context.Context, args []any, done yaff.Done) {
		out := make([]any, len(args))
		for i, v := range args {
			out[i] = fn(v, i)
		}
		done(nil, out...)
	})
}

// Filter keeps the values for which keep returns true.
func Filter(c *chain.Chain, keep func(v any, i int) bool) *chain.Chain {
	return c.Seq(func(_ context.Context, args []any, done yaff.Done) {
		out := make([]any, 0, len(args))
		for i, v := range args {
			if keep(v, i) {
				out = append(out, v)
			}
		}
		done(nil, out...)
	})
}

// Reduce folds the values into one.
func Reduce(c *chain.Chain, fn func(acc, v any) any, initial any) *chain.Chain {
	return c.Seq(func(_ context.Context, args []any, done yaff.Done) {
		acc := initial
		for _, v := range args {
			acc = fn(acc, v)
		}
		done(nil, acc)
	})
}

// Flatten splices []any values into the stack. With deep set, nested slices
// are flattened all the way down.
func Flatten(c *chain.Chain, deep bool) *chain.Chain {
	return c.Seq(func(_ context.Context, args []any, done yaff.Done) {
		done(nil, flatten(args, deep, 0)...)
	})
}

func flatten(values []any, deep bool, depth int) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		nested, ok := v.([]any)
		if !ok || (!deep && depth > 0) {
			out = append(out, v)
			continue
		}
		out = append(out, flatten(nested, deep, depth+1)...)
	}
	return out
}

// Unflatten collapses the stack into a single []any value.
func Unflatten(c *chain.Chain) *chain.Chain {
	return c.Seq(func(_ context.Context, args []any, done yaff.Done) {
		done(nil, args)
	})
}

// Set replaces the stack with values.
func Set(c *chain.Chain, values ...any) *chain.Chain {
	values = yaff.Snapshot(values)
	return c.Seq(func(_ context.Context, _ []any, done yaff.Done) {
		done(nil, values...)
	})
}

// Push appends values to the stack.
func Push(c *chain.Chain, values ...any) *chain.Chain {
	values = yaff.Snapshot(values)
	return c.Seq(func(_ context.Context, args []any, done yaff.Done) {
		done(nil, append(args, values...)...)
	})
}

// Extend appends the members of values to the stack.
func Extend(c *chain.Chain, values []any) *chain.Chain {
	return Push(c, values...)
}

// Unshift prepends values to the stack.
func Unshift(c *chain.Chain, values ...any) *chain.Chain {
	values = yaff.Snapshot(values)
	return c.Seq(func(_ context.Context, args []any, done yaff.Done) {
		done(nil, append(yaff.Snapshot(values), args...)...)
	})
}

// Pop drops the last value.
func Pop(c *chain.Chain) *chain.Chain {
	return c.Seq(func(_ context.Context, args []any, done yaff.Done) {
		if len(args) > 0 {
			args = args[:len(args)-1]
		}
		done(nil, args...)
	})
}

// Shift drops the first value.
func Shift(c *chain.Chain) *chain.Chain {
	return c.Seq(func(_ context.Context, args []any, done yaff.Done) {
		done(nil, yaff.DropFront(args)...)
	})
}

// Splice removes count values starting at index and inserts values in their
// place. A negative index counts from the end of the stack.
func Splice(c *chain.Chain, index, count int, values ...any) *chain.Chain {
	values = yaff.Snapshot(values)
	return c.Seq(func(_ context.Context, args []any, done yaff.Done) {
		n := len(args)
		start := index
		if start < 0 {
			start = max(n+start, 0)
		}
		start = min(start, n)
		end := start + min(max(count, 0), n-start)

		out := make([]any, 0, n-(end-start)+len(values))
		out = append(out, args[:start]...)
		out = append(out, values...)
		out = append(out, args[end:]...)
		done(nil, out...)
	})
}

// Reverse reverses the stack.
func Reverse(c *chain.Chain) *chain.Chain {
	return c.Seq(func(_ context.Context, args []any, done yaff.Done) {
		slices.Reverse(args)
		done(nil, args...)
	})
}

// Pass is a step that leaves the stack untouched.
func Pass(c *chain.Chain) *chain.Chain {
	return c.Seq(func(_ context.Context, args []any, done yaff.Done) {
		done(nil, args...)
	})
}

// Empty clears the stack.
func Empty(c *chain.Chain) *chain.Chain {
	return c.Seq(func(_ context.Context, _ []any, done yaff.Done) {
		done(nil)
	})
}

// Debug logs the stack and passes it on unchanged.
func Debug(c *chain.Chain, logger *slog.Logger) *chain.Chain {
	id := c.ID().String()
	return c.Seq(func(_ context.Context, args []any, done yaff.Done) {
		logger.Debug("chain values", "chain_id", id, "count", len(args), "values", args)
		done(nil, args...)
	})
}
