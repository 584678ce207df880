package yaff

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOutcome_Finalized(t *testing.T) {
	t.Parallel()
	id := uuid.New()

	ok := Finalized(id, nil, []any{1, 2})
	assert.True(t, ok.IsSuccess())
	assert.True(t, ok.IsFinalized())
	assert.Equal(t, []any{1, 2}, ok.Values())
	assert.Equal(t, id, ok.Id())
	assert.False(t, ok.CreatedAt().IsZero())

	boom := errors.New("boom")
	failed := Finalized(id, boom, []any{1, 2})
	assert.False(t, failed.IsSuccess())
	assert.Equal(t, boom, failed.Err())
	assert.Equal(t, 0, failed.Len())
}

func TestOutcome_Statuses(t *testing.T) {
	t.Parallel()
	id := uuid.New()

	assert.Equal(t, StatusDrained, Drained(id, nil).Status())
	assert.True(t, Drained(id, nil).IsSuccess())

	f := Failed(id, &UnhandledError{Err: errors.New("x")})
	assert.True(t, f.IsFailed())
	assert.False(t, f.IsSuccess())

	var zero Outcome
	assert.Equal(t, StatusPending, zero.Status())
	assert.False(t, zero.IsSuccess())
	assert.Equal(t, "pending", zero.Status().String())
}

func TestOutcome_ValuesAreCopied(t *testing.T) {
	t.Parallel()

	src := []any{"a"}
	o := Drained(uuid.New(), src)
	src[0] = "b"

	v := o.Values()
	v[0] = "c"
	assert.Equal(t, []any{"a"}, o.Values())
}
