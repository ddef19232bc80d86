package jobs

import (
	"context"
	"time"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/enrichment"
	"github.com/skynet2/finance-reconciler/pkg/ingest"
	"github.com/skynet2/finance-reconciler/pkg/matcher"
)

//go:generate mockgen -destination interfaces_mocks_test.go -package jobs_test -source=interfaces.go

type Store interface {
	Create(ctx context.Context, job *database.Job) error
	Get(ctx context.Context, id string) (*database.Job, error)
	List(ctx context.Context, filter ListFilter) ([]*database.Job, error)
	Transition(
		ctx context.Context,
		id string,
		from []database.JobStatus,
		to database.JobStatus,
		message string,
		at time.Time,
	) error
	SetTotal(ctx context.Context, id string, total int) error
	AddProgress(ctx context.Context, id string, delta common.Progress) error
	RequestCancel(ctx context.Context, id string) (bool, error)
	CancelRequested(ctx context.Context, id string) (bool, error)
}

// Handler executes one job type. Params are decoded by the handler itself.
type Handler interface {
	Handle(ctx context.Context, job *database.Job, reporter *Reporter) error
}

type Syncer interface {
	Sync(ctx context.Context, req ingest.SyncRequest, reporter ingest.Reporter) (*ingest.Result, error)
	Import(ctx context.Context, req ingest.ImportRequest, reporter ingest.Reporter) (*ingest.Result, error)
}

type Matcher interface {
	Match(ctx context.Context, req matcher.MatchRequest, reporter matcher.Reporter) (*matcher.MatchBatchResult, error)
}

type Enricher interface {
	Run(ctx context.Context, req enrichment.BatchRequest, reporter enrichment.Reporter) (*enrichment.BatchResult, error)
}
