package api

import (
	"context"

	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/ingest"
	"github.com/skynet2/finance-reconciler/pkg/jobs"
)

// SyncSubmitter queues bank feed syncs under the per connection lock. It
// serves both the sync route and webhook pushes.
type SyncSubmitter struct {
	runner JobRunner
}

func NewSyncSubmitter(runner JobRunner) *SyncSubmitter {
	return &SyncSubmitter{
		runner: runner,
	}
}

func (s *SyncSubmitter) SubmitSync(ctx context.Context, connectionID string) (*database.Job, error) {
	return s.Submit(ctx, ingest.SyncRequest{
		ConnectionID: connectionID,
		SourceType:   database.SourceBankFeed,
	})
}

func (s *SyncSubmitter) Submit(ctx context.Context, req ingest.SyncRequest) (*database.Job, error) {
	return s.runner.Submit(ctx, jobs.SubmitRequest{
		Type:    database.JobTypeSync,
		LockKey: jobs.SyncLockKey(req.ConnectionID, req.SourceType),
		Params:  req,
	})
}
