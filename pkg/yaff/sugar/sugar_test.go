package sugar

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mynameisdaniil/yaff/pkg/yaff"
	"github.com/mynameisdaniil/yaff/pkg/yaff/chain"
	"github.com/mynameisdaniil/yaff/pkg/yaff/core"
)

func values(t *testing.T, c *chain.Chain) []any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	o, err := c.Wait(ctx)
	require.NoError(t, err)
	return o.Values()
}

func start(vs ...any) *chain.Chain {
	return chain.FromValues(context.Background(), vs)
}

func TestMapFilterReduce(t *testing.T) {
	t.Parallel()

	c := start(1, 2, 3, 4)
	Map(c, func(v any, i int) any { return v.(int) * 10 })
	Filter(c, func(v any, i int) bool { return i%2 == 1 })
	Reduce(c, func(acc, v any) any { return acc.(int) + v.(int) }, 0)

	assert.Equal(t, []any{60}, values(t, c))
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	nested := func() *chain.Chain {
		return start(1, []any{2, []any{3, 4}}, []any{})
	}

	assert.Equal(t, []any{1, 2, []any{3, 4}}, values(t, Flatten(nested(), false)))
	assert.Equal(t, []any{1, 2, 3, 4}, values(t, Flatten(nested(), true)))
}

func TestUnflattenSetPushEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []any{[]any{1, 2}}, values(t, Unflatten(start(1, 2))))
	assert.Equal(t, []any{"x", "y"}, values(t, Set(start(1), "x", "y")))
	assert.Equal(t, []any{1, "x"}, values(t, Push(start(1), "x")))
	assert.Empty(t, values(t, Empty(start(1, 2))))
}

func TestDebugPassesValuesThrough(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	assert.Equal(t, []any{1, 2}, values(t, Debug(start(1, 2), logger)))
}

func square(_ context.Context, item any, _ int, done yaff.Done) {
	n := item.(int)
	time.Sleep(time.Duration(5-n) * time.Millisecond)
	done(nil, n*n)
}

func TestParMap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []any{1, 4, 9, 16}, values(t, ParMap(start(1, 2, 3, 4), square, 0)))
	assert.Equal(t, []any{1, 4, 9, 16}, values(t, ParMap(start(1, 2, 3, 4), square, 2)))
	assert.Empty(t, values(t, ParMap(start(), square, 0)))
}

func TestParMap_RespectsLimit(t *testing.T) {
	t.Parallel()

	var (
		inFlight atomic.Int32
		peak     atomic.Int32
	)
	fn := func(_ context.Context, item any, _ int, done yaff.Done) {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		done(nil, item)
	}

	got := values(t, ParMap(start(1, 2, 3, 4, 5, 6, 7, 8), fn, 2))
	assert.Len(t, got, 8)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestParEachAndSeqEachKeepStack(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []any
	)
	record := func(_ context.Context, item any, _ int, done yaff.Done) {
		mu.Lock()
		seen = append(seen, item)
		mu.Unlock()
		done(nil, "ignored")
	}

	assert.Equal(t, []any{"a", "b"}, values(t, ParEach(start("a", "b"), record, 0)))
	assert.ElementsMatch(t, []any{"a", "b"}, seen)

	seen = nil
	assert.Equal(t, []any{"c", "d", "e"}, values(t, SeqEach(start("c", "d", "e"), record)))
	assert.Equal(t, []any{"c", "d", "e"}, seen)
}

func TestSeqMap(t *testing.T) {
	t.Parallel()

	pair := func(_ context.Context, item any, index int, done yaff.Done) {
		if index == 0 {
			done(nil, item)
			return
		}
		done(nil, item, index)
	}

	got := values(t, SeqMap(start("a", "b"), pair))
	assert.Equal(t, []any{"a", []any{"b", 1}}, got)
}

func TestParMap_ErrorReachesParent(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	fn := func(_ context.Context, item any, _ int, done yaff.Done) {
		if item.(int) == 2 {
			done(boom)
			return
		}
		done(nil, item)
	}

	final := make(chan error, 1)
	c := ParMap(start(1, 2, 3), fn, 0)
	require.NoError(t, c.Finally(func(err error, _ ...any) { final <- err }))

	select {
	case err := <-final:
		assert.ErrorIs(t, err, boom)
	case <-time.After(5 * time.Second):
		t.Fatal("finalizer was not called")
	}
}

func TestSeqMap_IgnoresSecondCompletion(t *testing.T) {
	t.Parallel()

	twice := func(_ context.Context, item any, _ int, done yaff.Done) {
		done(nil, item)
		done(nil, item)
	}

	assert.Equal(t, []any{1, 2}, values(t, SeqMap(start(1, 2), twice)))
}

func TestStackEdits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []any{1, 2, 3}, values(t, Extend(start(1), []any{2, 3})))
	assert.Equal(t, []any{"a", "b", 1}, values(t, Unshift(start(1), "a", "b")))
	assert.Equal(t, []any{1, 2}, values(t, Pop(start(1, 2, 3))))
	assert.Empty(t, values(t, Pop(start())))
	assert.Equal(t, []any{2, 3}, values(t, Shift(start(1, 2, 3))))
	assert.Equal(t, []any{3, 2, 1}, values(t, Reverse(start(1, 2, 3))))
	assert.Equal(t, []any{1, 2}, values(t, Pass(start(1, 2))))
}

func TestSplice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		index, count int
		insert       []any
		want         []any
	}{
		{"replace middle", 1, 2, []any{"x"}, []any{1, "x", 4}},
		{"insert only", 2, 0, []any{"x", "y"}, []any{1, 2, "x", "y", 3, 4}},
		{"negative index", -1, 1, nil, []any{1, 2, 3}},
		{"count past end", 3, 10, nil, []any{1, 2, 3}},
		{"index past end", 9, 1, []any{"x"}, []any{1, 2, 3, 4, "x"}},
		{"negative past start", -9, 1, nil, []any{2, 3, 4}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := values(t, Splice(start(1, 2, 3, 4), tc.index, tc.count, tc.insert...))
			assert.Equal(t, tc.want, got)
		})
	}
}

func isEven(_ context.Context, item any, _ int, done func(error, bool)) {
	n := item.(int)
	time.Sleep(time.Duration(6-n) * time.Millisecond)
	done(nil, n%2 == 0)
}

func TestFilters(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []any{2, 4}, values(t, SeqFilter(start(1, 2, 3, 4, 5), isEven)))
	assert.Equal(t, []any{2, 4}, values(t, ParFilter(start(1, 2, 3, 4, 5), isEven, 0)))
	assert.Equal(t, []any{2, 4}, values(t, ParFilter(start(1, 2, 3, 4, 5), isEven, 2)))
	assert.Empty(t, values(t, ParFilter(start(), isEven, 0)))
}

func TestParFilter_ErrorReachesParent(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	pred := func(_ context.Context, item any, _ int, done func(error, bool)) {
		if item.(int) == 3 {
			done(boom, false)
			return
		}
		done(nil, true)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := ParFilter(start(1, 2, 3), pred, 0).Wait(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestForEach_DoesNotWait(t *testing.T) {
	t.Parallel()

	var (
		seen    sync.WaitGroup
		release = make(chan struct{})
		count   atomic.Int32
	)
	seen.Add(3)
	fn := func(_ context.Context, item any, _ int, done yaff.Done) {
		<-release
		count.Add(1)
		seen.Done()
		done(nil)
	}

	assert.Equal(t, []any{"a", "b", "c"}, values(t, ForEach(start("a", "b", "c"), fn, 2)))
	assert.Zero(t, count.Load())

	close(release)
	seen.Wait()
	assert.Equal(t, int32(3), count.Load())
}

func TestSeqWithParWith(t *testing.T) {
	t.Parallel()

	echo := func(_ context.Context, args []any, done yaff.Done) { done(nil, args...) }

	assert.Equal(t, []any{"x", "y"}, values(t, SeqWith(start(1), echo, "x", "y")))
	assert.Equal(t, []any{1}, values(t, SeqWith(start(1), echo)))

	c := start(1)
	ParWith(c, echo, "bound")
	ParWith(c, echo)
	assert.Equal(t, []any{"bound", 1}, values(t, c))

	assert.ErrorIs(t, SeqWith(start(), nil).Err(), yaff.ErrNilAction)
}

func TestChildChainsShareHooks(t *testing.T) {
	t.Parallel()

	var par, seq atomic.Int32
	c := chain.FromValues(context.Background(), []any{1, 2, 3}, chain.WithHooks(core.Hooks{
		OnDispatch: func(it *core.Item, _ int) {
			switch it.Kind {
			case core.Parallel:
				par.Add(1)
			case core.Sequential:
				seq.Add(1)
			}
		},
	}))

	assert.Equal(t, []any{1, 4, 9}, values(t, ParMap(c, square, 0)))
	assert.Equal(t, int32(3), par.Load())
	assert.Equal(t, int32(1), seq.Load())
}

func TestChildChainsInheritDefaultLimit(t *testing.T) {
	t.Parallel()

	var (
		inFlight atomic.Int32
		peak     atomic.Int32
	)
	fn := func(_ context.Context, item any, _ int, done yaff.Done) {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		done(nil, item)
	}

	c := chain.FromValues(context.Background(), []any{1, 2, 3, 4, 5}, chain.WithDefaultLimit(1))
	assert.Len(t, values(t, ParMap(c, fn, 0)), 5)
	assert.Equal(t, int32(1), peak.Load())
}
