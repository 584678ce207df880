package core

import "context"

type OptionKey string

const (
	LimitOptionKey OptionKey = "limit_options"
)

type MaxLimitOption struct {
	Value int
}

type LimitOptions struct {
	MaxRunning MaxLimitOption
}

// WithLimitOptions sets the concurrency limit for parallel items that do not
// carry one of their own.
func WithLimitOptions(ctx context.Context, maxRunning int) context.Context {
	return context.WithValue(ctx, LimitOptionKey, LimitOptions{MaxLimitOption{Value: maxRunning}})
}

func GetDefaultLimit(ctx context.Context, defaultLimit int) int {
	options, ok := ctx.Value(LimitOptionKey).(LimitOptions)
	if ok {
		return options.MaxRunning.Value
	}
	return defaultLimit
}
