package jobs

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/skynet2/finance-reconciler/pkg/common"
)

// Reporter persists the progress of one running job. Processed never goes
// backwards and never passes a known total.
type Reporter struct {
	store     Store
	jobID     string
	mu        sync.Mutex
	total     int
	processed int
}

func newReporter(store Store, jobID string) *Reporter {
	return &Reporter{
		store: store,
		jobID: jobID,
	}
}

func (r *Reporter) SetTotal(ctx context.Context, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if total <= r.total {
		return r.checkCancelled(ctx)
	}

	if err := r.store.SetTotal(ctx, r.jobID, total); err != nil {
		return err
	}

	r.total = total

	return r.checkCancelled(ctx)
}

// Advance adds a progress delta. It returns an error marked with
// common.ErrJobCancelled once a cancel was requested, handlers stop on it.
func (r *Reporter) Advance(ctx context.Context, delta common.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkCancelled(ctx); err != nil {
		return err
	}

	delta.Processed = max(delta.Processed, 0)
	delta.Succeeded = max(delta.Succeeded, 0)
	delta.Duplicates = max(delta.Duplicates, 0)
	delta.Failed = max(delta.Failed, 0)

	if r.total > 0 && r.processed+delta.Processed > r.total {
		delta.Processed = r.total - r.processed
	}

	if delta == (common.Progress{}) {
		return nil
	}

	if err := r.store.AddProgress(ctx, r.jobID, delta); err != nil {
		return err
	}

	r.processed += delta.Processed

	return nil
}

// Cancelled reports whether the job should stop.
func (r *Reporter) Cancelled(ctx context.Context) bool {
	return r.checkCancelled(ctx) != nil
}

func (r *Reporter) checkCancelled(ctx context.Context) error {
	if ctx.Err() != nil {
		return errors.Mark(errors.Wrap(ctx.Err(), "job context done"), common.ErrJobCancelled)
	}

	requested, err := r.store.CancelRequested(ctx, r.jobID)
	if err != nil {
		return err
	}

	if requested {
		return errors.Wrapf(common.ErrJobCancelled, "job %s", r.jobID)
	}

	return nil
}
