package chain

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/mynameisdaniil/yaff/pkg/yaff/core"
	"github.com/mynameisdaniil/yaff/pkg/yaff/telemetry"
)

type settings struct {
	id           uuid.UUID
	logger       *slog.Logger
	loop         *core.Loop
	hooks        []core.Hooks
	defaultLimit *int
}

type Option func(*settings)

// WithID sets the chain id instead of a random one.
func WithID(id uuid.UUID) Option {
	return func(s *settings) {
		s.id = id
	}
}

// WithLogger overrides the logger taken from the context.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithLoop runs the chain on an existing loop. Chains sharing a loop are
// serialized with each other but keep separate state.
func WithLoop(loop *core.Loop) Option {
	return func(s *settings) {
		s.loop = loop
	}
}

func WithHooks(hooks core.Hooks) Option {
	return func(s *settings) {
		s.hooks = append(s.hooks, hooks)
	}
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *settings) {
		if m != nil {
			s.hooks = append(s.hooks, m.Hooks())
		}
	}
}

// WithDefaultLimit caps parallel items that have no Limit of their own.
func WithDefaultLimit(n int) Option {
	return func(s *settings) {
		s.defaultLimit = &n
	}
}

// OnUnhandled is called once with an error that found neither a catcher nor a
// finalizer.
func OnUnhandled(fn func(err error)) Option {
	return func(s *settings) {
		s.hooks = append(s.hooks, core.Hooks{OnUnhandled: fn})
	}
}
