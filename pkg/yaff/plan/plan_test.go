package plan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mynameisdaniil/yaff/pkg/yaff"
)

const demo = `
name: demo
initial: [1, 2]
limit: 2
steps:
  - par: double
  - par: count
  - seq: pass
`

func run(t *testing.T, p *Plan) (yaff.Outcome, error) {
	t.Helper()
	c, err := p.Build(context.Background(), DefaultRegistry())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Wait(ctx)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	p, err := Load(strings.NewReader(demo))
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name)
	assert.Equal(t, []any{1, 2}, p.Initial)
	assert.Equal(t, 2, p.Limit)
	require.Len(t, p.Steps, 3)
	assert.Equal(t, "double", p.Steps[0].Par)
	assert.Equal(t, "pass", p.Steps[2].Seq)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := Load(strings.NewReader("name: x\nstepz: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode plan")
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(demo), 0o600))

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	cases := []struct {
		name  string
		plan  Plan
		index int
		want  error
	}{
		{"no steps", Plan{}, -1, ErrEmptySteps},
		{"negative limit", Plan{Limit: -1, Steps: []Step{{Seq: "pass"}}}, -1, ErrInvalidParams},
		{"no kind", Plan{Steps: []Step{{}}}, 0, ErrStepKind},
		{"two kinds", Plan{Steps: []Step{{Seq: "pass"}, {Seq: "pass", Par: "pass"}}}, 1, ErrStepKind},
		{"limit on seq", Plan{Steps: []Step{{Seq: "pass", Limit: 2}}}, 0, ErrInvalidParams},
		{"unknown action", Plan{Steps: []Step{{Par: "nope"}}}, 0, ErrUnknownAction},
		{"unknown catcher", Plan{Steps: []Step{{Catch: "double"}}}, 0, ErrUnknownAction},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.plan.Validate(reg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.index, ve.Index)
		})
	}
}

func TestBuild_Runs(t *testing.T) {
	t.Parallel()

	p, err := Load(strings.NewReader(demo))
	require.NoError(t, err)

	o, err := run(t, p)
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{2, 4}, 2}, o.Values())
}

func TestBuild_BadParams(t *testing.T) {
	t.Parallel()

	p := &Plan{Steps: []Step{{Seq: "sleep", With: Params{"ms": "soon"}}}}
	_, err := p.Build(context.Background(), DefaultRegistry())
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestBuild_RecoverAfterFail(t *testing.T) {
	t.Parallel()

	p := &Plan{
		Initial: []any{1},
		Steps: []Step{
			{Seq: "fail", With: Params{"message": "nope"}},
			{Seq: "double"},
			{Catch: "recover", With: Params{"values": []any{5, 2.5}}},
			{Seq: "sum"},
		},
	}

	o, err := run(t, p)
	require.NoError(t, err)
	assert.Equal(t, []any{7.5}, o.Values())
}

func TestBuild_UnhandledFail(t *testing.T) {
	t.Parallel()

	p := &Plan{Steps: []Step{
		{Seq: "fail", With: Params{"message": "nope"}},
		{Catch: "rethrow"},
	}}

	o, err := run(t, p)
	require.Error(t, err)
	assert.True(t, o.IsFailed())
	assert.ErrorIs(t, err, ErrStepFailed)
	assert.Contains(t, err.Error(), "nope")
}

func TestBuiltins(t *testing.T) {
	t.Parallel()

	p := &Plan{
		Initial: []any{"a", "b", "c"},
		Steps: []Step{
			{Seq: "count"},
			{Seq: "double"},
			{Seq: "sleep", With: Params{"ms": 1}},
			{Par: "value", With: Params{"values": "x"}},
			{Par: "pass"},
		},
	}

	o, err := run(t, p)
	require.NoError(t, err)
	assert.Equal(t, []any{"x", 6}, o.Values())
}

func TestSum_RejectsNonNumbers(t *testing.T) {
	t.Parallel()

	p := &Plan{Initial: []any{1, "two"}, Steps: []Step{{Seq: "sum"}}}
	_, err := run(t, p)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	actions, catchers := reg.Names()
	assert.Equal(t, []string{"count", "double", "fail", "pass", "sleep", "sum", "value"}, actions)
	assert.Equal(t, []string{"recover", "rethrow"}, catchers)

	reg.RegisterAction("noop", func(Params) (yaff.Action, error) {
		return func(_ context.Context, args []any, done yaff.Done) { done(nil, args...) }, nil
	})
	assert.True(t, reg.HasAction("noop"))
	assert.False(t, DefaultRegistry().HasAction("noop"))

	_, err := reg.Action("missing", nil)
	assert.ErrorIs(t, err, ErrUnknownAction)
	_, err = reg.Catcher("missing", nil)
	assert.True(t, errors.Is(err, ErrUnknownAction))
}
