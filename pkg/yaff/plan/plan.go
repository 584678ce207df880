package plan

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mynameisdaniil/yaff/pkg/yaff/chain"
	"github.com/mynameisdaniil/yaff/pkg/yaff/core"
)

type Plan struct {
	Name    string `yaml:"name"`
	Initial []any  `yaml:"initial,omitempty"`
	Limit   int    `yaml:"limit,omitempty"` // default cap for parallel steps
	Steps   []Step `yaml:"steps"`
}

// Step names exactly one of Seq, Par or Catch.
type Step struct {
	Seq   string `yaml:"seq,omitempty"`
	Par   string `yaml:"par,omitempty"`
	Catch string `yaml:"catch,omitempty"`
	Limit int    `yaml:"limit,omitempty"`
	With  Params `yaml:"with,omitempty"`
}

// Kind returns the step kind and the registry name it refers to.
func (s Step) Kind() (core.Kind, string, error) {
	var (
		kind  core.Kind
		name  string
		count int
	)
	if s.Seq != "" {
		kind, name = core.Sequential, s.Seq
		count++
	}
	if s.Par != "" {
		kind, name = core.Parallel, s.Par
		count++
	}
	if s.Catch != "" {
		kind, name = core.ErrorHandler, s.Catch
		count++
	}
	if count != 1 {
		return 0, "", ErrStepKind
	}
	return kind, name, nil
}

// Load decodes a plan. Unknown fields are rejected.
func Load(r io.Reader) (*Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &p, nil
}

func LoadFile(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Validate checks the plan shape and that every name resolves in reg.
func (p *Plan) Validate(reg *Registry) error {
	if len(p.Steps) == 0 {
		return NewValidationError(-1, "steps", "plan has no steps", ErrEmptySteps)
	}
	if p.Limit < 0 {
		return NewValidationError(-1, "limit", "limit must not be negative", ErrInvalidParams)
	}

	for i, s := range p.Steps {
		kind, name, err := s.Kind()
		if err != nil {
			return NewValidationError(i, "kind", err.Error(), err)
		}
		if s.Limit < 0 {
			return NewValidationError(i, "limit", "limit must not be negative", ErrInvalidParams)
		}
		if s.Limit != 0 && kind != core.Parallel {
			return NewValidationError(i, "limit", "limit applies to par steps only", ErrInvalidParams)
		}

		known := reg.HasAction(name)
		if kind == core.ErrorHandler {
			known = reg.HasCatcher(name)
		}
		if !known {
			return NewValidationError(i, kind.String(), "unknown "+kind.String()+" "+name, ErrUnknownAction)
		}
	}
	return nil
}

// Build validates the plan and compiles it into a chain seeded with the
// plan's initial values. The chain is not armed.
func (p *Plan) Build(ctx context.Context, reg *Registry, opts ...chain.Option) (*chain.Chain, error) {
	if err := p.Validate(reg); err != nil {
		return nil, err
	}

	if p.Limit > 0 {
		opts = append([]chain.Option{chain.WithDefaultLimit(p.Limit)}, opts...)
	}
	c := chain.FromValues(ctx, p.Initial, opts...)

	for i, s := range p.Steps {
		kind, name, _ := s.Kind()

		switch kind {
		case core.ErrorHandler:
			catcher, err := reg.Catcher(name, s.With)
			if err != nil {
				return nil, NewValidationError(i, "with", err.Error(), err)
			}
			c.Catch(catcher)
		default:
			action, err := reg.Action(name, s.With)
			if err != nil {
				return nil, NewValidationError(i, "with", err.Error(), err)
			}
			if kind == core.Parallel {
				c.ParLimit(action, s.Limit)
			} else {
				c.Seq(action)
			}
		}
	}
	return c, nil
}
