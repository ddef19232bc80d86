package jobs

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/enrichment"
	"github.com/skynet2/finance-reconciler/pkg/ingest"
	"github.com/skynet2/finance-reconciler/pkg/matcher"
)

func decodeParams(job *database.Job, target any) error {
	if len(job.Params) == 0 {
		return errors.Newf("job %s has no params", job.ID)
	}

	if err := json.Unmarshal(job.Params, target); err != nil {
		return errors.Wrapf(err, "can not decode params of job %s", job.ID)
	}

	return nil
}

func SyncHandler(svc Syncer) Handler {
	return HandlerFunc(func(ctx context.Context, job *database.Job, reporter *Reporter) error {
		var req ingest.SyncRequest
		if err := decodeParams(job, &req); err != nil {
			return err
		}

		_, err := svc.Sync(ctx, req, reporter)

		return err
	})
}

func ImportHandler(svc Syncer) Handler {
	return HandlerFunc(func(ctx context.Context, job *database.Job, reporter *Reporter) error {
		var req ingest.ImportRequest
		if err := decodeParams(job, &req); err != nil {
			return err
		}

		_, err := svc.Import(ctx, req, reporter)

		return err
	})
}

func MatchHandler(m Matcher) Handler {
	return HandlerFunc(func(ctx context.Context, job *database.Job, reporter *Reporter) error {
		var req matcher.MatchRequest
		if err := decodeParams(job, &req); err != nil {
			return err
		}

		_, err := m.Match(ctx, req, reporter)

		return err
	})
}

func EnrichHandler(e Enricher) Handler {
	return HandlerFunc(func(ctx context.Context, job *database.Job, reporter *Reporter) error {
		var req enrichment.BatchRequest
		if err := decodeParams(job, &req); err != nil {
			return err
		}

		_, err := e.Run(ctx, req, reporter)

		return err
	})
}
