package yaff

import (
	"time"

	"github.com/google/uuid"
)

// Status is the terminal condition a chain reached.
type Status uint8

const (
	// StatusPending means the chain has not settled yet.
	StatusPending Status = iota
	// StatusDrained means the queue ran empty without a finalizer.
	StatusDrained
	// StatusFinalized means the finalizer ran.
	StatusFinalized
	// StatusFailed means an error found no handler.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDrained:
		return "drained"
	case StatusFinalized:
		return "finalized"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

var _ ValueReader = Outcome{}

type Outcome struct {
	id        uuid.UUID
	createdAt time.Time
	values    []any
	err       error
	status    Status
}

func Drained(id uuid.UUID, values []any) Outcome {
	return Outcome{
		id:        id,
		createdAt: time.Now().UTC(),
		values:    Snapshot(values),
		status:    StatusDrained,
	}
}

// Finalized records a finalizer run. err is the error the finalizer observed,
// if any; values are dropped in that case.
func Finalized(id uuid.UUID, err error, values []any) Outcome {
	o := Outcome{
		id:        id,
		createdAt: time.Now().UTC(),
		err:       err,
		status:    StatusFinalized,
	}
	if err == nil {
		o.values = Snapshot(values)
	}
	return o
}

func Failed(id uuid.UUID, err error) Outcome {
	return Outcome{
		id:        id,
		createdAt: time.Now().UTC(),
		err:       err,
		status:    StatusFailed,
	}
}

func (o Outcome) Values() []any {
	return Snapshot(o.values)
}

func (o Outcome) Len() int {
	return len(o.values)
}

func (o Outcome) Err() error {
	return o.err
}

func (o Outcome) Status() Status {
	return o.status
}

// IsSuccess returns true if the chain settled without an error
func (o Outcome) IsSuccess() bool {
	return o.err == nil && o.status != StatusPending
}

func (o Outcome) IsFinalized() bool {
	return o.status == StatusFinalized
}

func (o Outcome) IsFailed() bool {
	return o.status == StatusFailed
}

// CreatedAt time creation (UTC)
func (o Outcome) CreatedAt() time.Time {
	return o.createdAt
}

// Id is the id of the chain that produced the outcome
func (o Outcome) Id() uuid.UUID {
	return o.id
}
