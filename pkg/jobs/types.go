package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/skynet2/finance-reconciler/pkg/database"
)

const defaultListLimit = 50

type SubmitRequest struct {
	Type    database.JobType
	LockKey string
	Params  any
}

type ListFilter struct {
	Type   database.JobType
	Status []database.JobStatus
	Limit  int
}

type Event struct {
	Job database.Job
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, job *database.Job, reporter *Reporter) error

func (f HandlerFunc) Handle(ctx context.Context, job *database.Job, reporter *Reporter) error {
	return f(ctx, job, reporter)
}

type Option func(r *Runner)

func WithClock(clock func() time.Time) Option {
	return func(r *Runner) {
		r.clock = clock
	}
}

// SyncLockKey allows one active sync per connection and source type.
func SyncLockKey(connectionID string, sourceType database.SourceType) string {
	return fmt.Sprintf("sync:%s:%s", connectionID, sourceType)
}
