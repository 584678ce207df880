package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/mynameisdaniil/yaff/pkg/yaff"
)

func valueAction(p Params) (yaff.Action, error) {
	values := p.getList("values")
	return func(_ context.Context, _ []any, done yaff.Done) {
		done(nil, yaff.Snapshot(values)...)
	}, nil
}

func passAction(Params) (yaff.Action, error) {
	return func(_ context.Context, args []any, done yaff.Done) {
		done(nil, args...)
	}, nil
}

func sleepAction(p Params) (yaff.Action, error) {
	ms, err := p.getInt("ms", 0)
	if err != nil {
		return nil, err
	}
	if ms < 0 {
		return nil, fmt.Errorf("%w: ms must not be negative", ErrInvalidParams)
	}
	d := time.Duration(ms) * time.Millisecond
	return func(ctx context.Context, args []any, done yaff.Done) {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-timer.C:
			done(nil, args...)
		case <-ctx.Done():
			done(ctx.Err())
		}
	}, nil
}

func failAction(p Params) (yaff.Action, error) {
	msg := p.getString("message", "failure")
	return func(_ context.Context, _ []any, done yaff.Done) {
		done(fmt.Errorf("%w: %s", ErrStepFailed, msg))
	}, nil
}

func sumAction(Params) (yaff.Action, error) {
	return func(_ context.Context, args []any, done yaff.Done) {
		var total number
		for i, v := range args {
			n, ok := toNumber(v)
			if !ok {
				done(fmt.Errorf("%w: sum: value %d is %T", ErrInvalidParams, i, v))
				return
			}
			total = total.add(n)
		}
		done(nil, total.value())
	}, nil
}

func doubleAction(Params) (yaff.Action, error) {
	return func(_ context.Context, args []any, done yaff.Done) {
		out := make([]any, len(args))
		for i, v := range args {
			n, ok := toNumber(v)
			if !ok {
				done(fmt.Errorf("%w: double: value %d is %T", ErrInvalidParams, i, v))
				return
			}
			out[i] = n.add(n).value()
		}
		done(nil, out...)
	}, nil
}

func countAction(Params) (yaff.Action, error) {
	return func(_ context.Context, args []any, done yaff.Done) {
		done(nil, len(args))
	}, nil
}

func recoverCatcher(p Params) (yaff.Catcher, error) {
	values := p.getList("values")
	return func(_ context.Context, _ error, done yaff.Done) {
		done(nil, yaff.Snapshot(values)...)
	}, nil
}

func rethrowCatcher(Params) (yaff.Catcher, error) {
	return func(_ context.Context, err error, done yaff.Done) {
		done(err)
	}, nil
}

// number keeps integer arithmetic exact until a float shows up.
type number struct {
	i       int64
	f       float64
	isFloat bool
}

func toNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int:
		return number{i: int64(n)}, true
	case int64:
		return number{i: n}, true
	case int32:
		return number{i: int64(n)}, true
	case float64:
		return number{f: n, isFloat: true}, true
	case float32:
		return number{f: float64(n), isFloat: true}, true
	default:
		return number{}, false
	}
}

func (a number) float() float64 {
	if a.isFloat {
		return a.f
	}
	return float64(a.i)
}

func (a number) add(b number) number {
	if a.isFloat || b.isFloat {
		return number{f: a.float() + b.float(), isFloat: true}
	}
	return number{i: a.i + b.i}
}

func (a number) value() any {
	if a.isFloat {
		return a.f
	}
	return int(a.i)
}

func (p Params) getString(key, def string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func (p Params) getInt(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidParams, key, v)
	}
}

func (p Params) getList(key string) []any {
	v, ok := p[key]
	if !ok {
		return []any{}
	}
	if l, ok := v.([]any); ok {
		return l
	}
	return []any{v}
}
