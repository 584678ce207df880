package chain

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/mynameisdaniil/yaff/pkg/yaff"
	"github.com/mynameisdaniil/yaff/pkg/yaff/core"
	"github.com/mynameisdaniil/yaff/pkg/yaff/telemetry"
)

// Chain is safe to build from several goroutines; items keep the order in
// which the builder calls returned.
type Chain struct {
	ctx      context.Context
	engine   *core.Engine
	settings settings

	mu        sync.Mutex
	last      *core.Item
	finalized bool
	err       error
}

// New creates a chain with an empty value stack.
func New(ctx context.Context, opts ...Option) *Chain {
	return FromValues(ctx, nil, opts...)
}

// FromValues creates a chain whose value stack starts as a copy of values.
func FromValues(ctx context.Context, values []any, opts ...Option) *Chain {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = telemetry.FromContext(ctx)
	}
	limit := core.GetDefaultLimit(ctx, core.Unbounded)
	if s.defaultLimit != nil {
		limit = *s.defaultLimit
	}

	c := &Chain{ctx: ctx, settings: *s}
	c.engine = core.NewEngine(ctx, core.Config{
		ID:           s.id,
		Values:       values,
		Loop:         s.loop,
		Logger:       s.logger,
		DefaultLimit: limit,
		Hooks:        s.hooks,
		OnReject:     c.record,
	})
	return c
}

// Spawn creates a chain that shares this chain's logger, hooks and default
// limit. Its id and loop are its own.
func (c *Chain) Spawn(ctx context.Context, values []any) *Chain {
	s := c.settings
	opts := []Option{
		WithLogger(s.logger),
		func(child *settings) {
			child.hooks = append(child.hooks, s.hooks...)
		},
	}
	if s.defaultLimit != nil {
		opts = append(opts, WithDefaultLimit(*s.defaultLimit))
	}
	return FromValues(ctx, values, opts...)
}

func (c *Chain) ID() uuid.UUID {
	return c.engine.ID()
}

// Context returns the context actions of this chain receive.
func (c *Chain) Context() context.Context {
	return c.ctx
}

// Loop returns the loop the chain runs on.
func (c *Chain) Loop() *core.Loop {
	return c.engine.Loop()
}

// Err returns builder misuse recorded so far, joined.
func (c *Chain) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Errs returns the recorded builder misuse one error per entry.
func (c *Chain) Errs() []error {
	return yaff.GetErrors(c.Err())
}

func (c *Chain) record(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = errors.Join(c.err, err)
}

// Seq enqueues a sequential step. It receives the values left by the
// previous step and its results replace them.
func (c *Chain) Seq(action yaff.Action) *Chain {
	if action == nil {
		c.record(yaff.ErrNilAction)
		return c
	}
	return c.enqueue(core.NewSequential(action))
}

// Par enqueues a parallel step. Directly consecutive Par steps run as one
// batch; each result is stored at the step's position within the batch, a
// single result as itself and several as a []any.
func (c *Chain) Par(action yaff.Action) *Chain {
	if action == nil {
		c.record(yaff.ErrNilAction)
		return c
	}
	return c.enqueue(core.NewParallel(action))
}

// ParLimit enqueues a parallel step that starts only while fewer than n
// invocations run. Unlike Par followed by Limit, the cap is in place before
// the step can be dispatched. n <= 0 leaves the default limit in place.
func (c *Chain) ParLimit(action yaff.Action, n int) *Chain {
	if action == nil {
		c.record(yaff.ErrNilAction)
		return c
	}
	it := core.NewParallel(action)
	it.Limit = max(n, core.Unbounded)
	return c.enqueue(it)
}

// Limit caps the running count at which the most recently enqueued step may
// still start. n <= 0 removes the cap.
func (c *Chain) Limit(n int) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil {
		c.err = errors.Join(c.err, yaff.ErrNoItem)
		return c
	}
	c.engine.SetLimit(c.last, n)
	return c
}

// Catch enqueues an error handler. It is skipped unless an error reaches it.
func (c *Chain) Catch(catcher yaff.Catcher) *Chain {
	if catcher == nil {
		c.record(yaff.ErrNilAction)
		return c
	}
	return c.enqueue(core.NewErrorHandler(catcher))
}

// Finally enqueues the terminal callback and arms the chain. A chain accepts
// one finalizer; nothing may be enqueued after it.
func (c *Chain) Finally(fin yaff.Finalizer) error {
	if fin == nil {
		return yaff.ErrNilAction
	}

	c.mu.Lock()
	if c.finalized {
		c.mu.Unlock()
		return yaff.ErrFinalizerExists
	}
	c.finalized = true
	it := core.NewFinalizer(fin)
	c.last = it
	c.engine.Enqueue(it)
	c.mu.Unlock()

	c.engine.Start()
	return nil
}

// Run arms the chain: the dispatcher starts on the work enqueued so far and
// picks up anything enqueued later.
func (c *Chain) Run() *Chain {
	c.engine.Start()
	return c
}

// Wait arms the chain and blocks until it is finalized, failed, or idle with
// nothing left to run.
func (c *Chain) Wait(ctx context.Context) (yaff.Outcome, error) {
	c.engine.Start()
	return c.engine.Await(ctx)
}

// Stats reports the engine state.
func (c *Chain) Stats(ctx context.Context) (core.Stats, error) {
	return c.engine.Inspect(ctx)
}

func (c *Chain) enqueue(it *core.Item) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized {
		c.err = errors.Join(c.err, yaff.ErrChainFinalized)
		return c
	}
	c.last = it
	c.engine.Enqueue(it)
	return c
}
