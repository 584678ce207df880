package core

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mynameisdaniil/yaff/pkg/yaff"
)

// State of the dispatcher.
type State uint8

const (
	Idle State = iota
	DrainingSequential
	DrainingParallel
	Propagating
	Finalized
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case DrainingSequential:
		return "draining-sequential"
	case DrainingParallel:
		return "draining-parallel"
	case Propagating:
		return "propagating"
	case Finalized:
		return "finalized"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type Config struct {
	ID           uuid.UUID
	Values       []any
	Loop         *Loop
	Logger       *slog.Logger
	DefaultLimit int
	Hooks        []Hooks
	// OnReject receives builder misuse detected on the loop, such as work
	// enqueued after the chain terminated.
	OnReject func(err error)
}

// Stats is a point-in-time view of an Engine.
type Stats struct {
	State    State
	Armed    bool
	Pending  int
	Overflow int
	Running  int
	Values   []any
	LastErr  error // first error reported by the current dispatch wave
}

// Engine drives one chain. All fields below loop are owned by the loop: they
// are only read or written from tasks posted to it.
type Engine struct {
	ctx          context.Context
	id           uuid.UUID
	loop         *Loop
	log          *slog.Logger
	hooks        hookSet
	defaultLimit int
	onReject     func(err error)

	pending   Queue
	overflow  Overflow
	values    []any
	batchArgs []any
	running   int
	gen       uint64
	lastErr   error
	finalizer *Item
	state     State
	armed     bool
	outcome   yaff.Outcome
	waiters   []chan yaff.Outcome
}

func NewEngine(ctx context.Context, cfg Config) *Engine {
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	if cfg.Loop == nil {
		cfg.Loop = NewLoop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		ctx:          ctx,
		id:           cfg.ID,
		loop:         cfg.Loop,
		log:          cfg.Logger.With("chain_id", cfg.ID.String()),
		hooks:        hookSet(cfg.Hooks),
		defaultLimit: cfg.DefaultLimit,
		onReject:     cfg.OnReject,
		values:       yaff.Snapshot(cfg.Values),
		state:        Idle,
	}
}

func (e *Engine) ID() uuid.UUID {
	return e.id
}

func (e *Engine) Loop() *Loop {
	return e.loop
}

// Enqueue appends it to the pending queue.
func (e *Engine) Enqueue(it *Item) {
	e.loop.Post(func() { e.push(it) })
}

// SetLimit caps the concurrency of a parallel item. n <= 0 lifts the cap.
func (e *Engine) SetLimit(it *Item, n int) {
	if n < 0 {
		n = Unbounded
	}
	e.loop.Post(func() { it.Limit = n })
}

// Start arms the dispatcher. Calling it more than once has no effect.
func (e *Engine) Start() {
	e.loop.Post(func() {
		if e.armed {
			return
		}
		e.armed = true
		e.tick()
	})
}

// Await blocks until the chain is finalized, failed, or idle with nothing
// left to run. The returned error is the unhandled error of a failed chain,
// or ctx.Err().
func (e *Engine) Await(ctx context.Context) (yaff.Outcome, error) {
	ch := make(chan yaff.Outcome, 1)
	e.loop.Post(func() {
		if o, ok := e.settled(); ok {
			ch <- o
			return
		}
		e.waiters = append(e.waiters, ch)
	})

	select {
	case o := <-ch:
		if o.IsFailed() {
			return o, o.Err()
		}
		return o, nil
	case <-ctx.Done():
		return yaff.Outcome{}, ctx.Err()
	}
}

// Inspect returns the engine state as seen from its loop.
func (e *Engine) Inspect(ctx context.Context) (Stats, error) {
	ch := make(chan Stats, 1)
	e.loop.Post(func() {
		ch <- Stats{
			State:    e.state,
			Armed:    e.armed,
			Pending:  e.pending.Len(),
			Overflow: e.overflow.Len(),
			Running:  e.running,
			Values:   yaff.Snapshot(e.values),
			LastErr:  e.lastErr,
		}
	})

	select {
	case s := <-ch:
		return s, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (e *Engine) terminal() bool {
	return e.state == Finalized || e.state == Failed
}

func (e *Engine) settled() (yaff.Outcome, bool) {
	if e.terminal() {
		return e.outcome, true
	}
	if e.armed && e.state == Idle && e.running == 0 && e.pending.Len() == 0 {
		return yaff.Drained(e.id, e.values), true
	}
	return yaff.Outcome{}, false
}

func (e *Engine) notify() {
	o, ok := e.settled()
	if !ok {
		return
	}
	for _, w := range e.waiters {
		w <- o
	}
	e.waiters = nil
}

func (e *Engine) reject(err error) {
	e.log.Warn("item rejected", "error", err, "state", e.state.String())
	if e.onReject != nil {
		e.onReject(err)
	}
}

func (e *Engine) push(it *Item) {
	switch e.state {
	case Finalized:
		e.reject(yaff.ErrChainFinalized)
		return
	case Failed:
		e.reject(yaff.ErrChainFailed)
		return
	}

	if it.Kind == Parallel && it.Limit == Unbounded {
		it.Limit = e.defaultLimit
	}
	if it.Kind == Finalizer {
		if e.finalizer != nil {
			e.reject(yaff.ErrFinalizerExists)
			return
		}
		e.finalizer = it
	}
	e.pending.Push(it)

	if e.armed && e.state == Idle {
		// pushes already posted join the same scheduling step
		e.loop.Post(e.tick)
	}
}

// tick runs one scheduling step. It does nothing while invocations are in
// flight: a batch is finished before the next item is looked at.
func (e *Engine) tick() {
	for {
		if e.terminal() || e.running > 0 {
			return
		}

		head := e.pending.Head()
		if head == nil {
			e.state = Idle
			e.notify()
			return
		}

		switch head.Kind {
		case Sequential:
			it := e.pending.Pop()
			e.state = DrainingSequential
			e.lastErr = nil
			e.execute(it, e.values)
			return
		case Parallel:
			e.state = DrainingParallel
			e.lastErr = nil
			e.dispatchBatch(e.pending.PopBatch())
			return
		case ErrorHandler:
			// a catcher is inert unless an error is travelling
			e.pending.Pop()
		case Finalizer:
			e.finalize(e.pending.Pop(), nil)
			return
		}
	}
}

func (e *Engine) dispatchBatch(batch []*Item) {
	e.batchArgs = yaff.Snapshot(e.values)
	for _, it := range batch {
		if !it.Admits(e.running) {
			e.overflow.Push(it)
			e.hooks.deferred(it)
			continue
		}
		e.execute(it, e.batchArgs)
	}
	e.values = []any{}
}

func (e *Engine) execute(it *Item, args []any) {
	inv := e.begin(it)
	args = yaff.Snapshot(args)
	go inv.run(func(done yaff.Done) {
		it.Action(e.ctx, args, done)
	})
}

func (e *Engine) catch(it *Item, err error) {
	inv := e.begin(it)
	go inv.run(func(done yaff.Done) {
		it.Catch(e.ctx, err, done)
	})
}

func (e *Engine) begin(it *Item) *invocation {
	e.running++
	e.hooks.dispatch(it, e.running)
	e.log.Debug("item dispatched",
		"kind", it.Kind.String(), "position", it.Position, "running", e.running)
	return &invocation{engine: e, item: it, gen: e.gen}
}

func (e *Engine) settle(inv *invocation, err error, results []any) {
	e.running--
	e.hooks.settle(inv.item, err, e.running)

	if e.terminal() {
		return
	}

	if inv.gen != e.gen {
		// the wave this invocation belonged to was abandoned by an error
		e.hooks.discard(inv.item)
		e.tick()
		return
	}

	if !yaff.IsNil(err) {
		if e.lastErr == nil {
			e.lastErr = err
		}
		e.propagate(err)
		return
	}

	if inv.item.Kind == Parallel {
		e.values = yaff.Merge(e.values, inv.item.Position, results)
	} else {
		e.values = yaff.Snapshot(results)
	}

	if next := e.overflow.Pop(); next != nil {
		e.execute(next, e.batchArgs)
		return
	}
	e.tick()
}

func (e *Engine) propagate(err error) {
	e.gen++
	e.state = Propagating
	for _, it := range e.overflow.Drop() {
		e.hooks.discard(it)
	}
	e.log.Debug("error propagating", "error", err, "running", e.running)

	for {
		it := e.pending.Pop()
		if it == nil {
			e.fail(err)
			return
		}

		switch it.Kind {
		case ErrorHandler:
			e.catch(it, err)
			return
		case Finalizer:
			e.finalize(it, err)
			return
		default:
			e.values = yaff.DropFront(e.values)
			e.hooks.discard(it)
		}
	}
}

func (e *Engine) finalize(it *Item, err error) {
	e.state = Finalized
	e.pending.Clear()
	e.outcome = yaff.Finalized(e.id, err, e.values)

	func() {
		defer func() {
			if r := recover(); r != nil {
				e.log.Error("finalizer panicked", "panic", r)
			}
		}()
		if err != nil {
			it.Final(err)
		} else {
			it.Final(nil, yaff.Snapshot(e.values)...)
		}
	}()

	e.hooks.finalize(err)
	e.notify()
}

func (e *Engine) fail(err error) {
	e.state = Failed
	e.outcome = yaff.Failed(e.id, &yaff.UnhandledError{Err: err})
	if yaff.IsCancellationError(err) {
		e.log.Warn("chain canceled", "error", err)
	} else {
		e.log.Error("unhandled chain error", "error", err)
	}
	e.hooks.unhandled(err)
	e.notify()
}

func (e *Engine) duplicate(it *Item) {
	e.log.Warn("item completed more than once", "kind", it.Kind.String(), "position", it.Position)
	e.hooks.duplicate(it)
}

// invocation is one run of an item's user function. Its Done handle is
// one-shot: the first call settles the invocation, later calls are reported
// and dropped.
type invocation struct {
	engine *Engine
	item   *Item
	gen    uint64
	used   atomic.Bool
}

func (inv *invocation) run(call func(done yaff.Done)) {
	defer func() {
		if r := recover(); r != nil {
			inv.complete(&yaff.PanicError{Value: r})
		}
	}()
	call(inv.complete)
}

func (inv *invocation) complete(err error, results ...any) {
	e := inv.engine
	if !inv.used.CompareAndSwap(false, true) {
		e.loop.Post(func() { e.duplicate(inv.item) })
		return
	}
	results = yaff.Snapshot(results)
	e.loop.Post(func() { e.settle(inv, err, results) })
}
