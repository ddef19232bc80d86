package api

import (
	"context"

	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/enrichment"
	"github.com/skynet2/finance-reconciler/pkg/jobs"
	"github.com/skynet2/finance-reconciler/pkg/webhook"
)

//go:generate mockgen -destination interfaces_mocks_test.go -package api_test -source=interfaces.go

type JobRunner interface {
	Submit(ctx context.Context, req jobs.SubmitRequest) (*database.Job, error)
	Get(ctx context.Context, id string) (*database.Job, error)
	List(ctx context.Context, filter jobs.ListFilter) ([]*database.Job, error)
	Cancel(ctx context.Context, id string) (*database.Job, error)
}

type LinkService interface {
	Links(ctx context.Context, transactionID string) ([]*database.EnrichmentLink, error)
	Verify(ctx context.Context, linkID string) (*database.EnrichmentLink, error)
	Resolve(ctx context.Context, link *database.EnrichmentLink) (database.SourceRecord, error)
}

type Estimator interface {
	Estimate(ctx context.Context, req enrichment.BatchRequest) (*enrichment.Estimate, error)
}

type ConnectionService interface {
	Connect(ctx context.Context, providerID string, code string, redirectURI string) (*database.ConnectionView, error)
	Disconnect(ctx context.Context, connectionID string, revoked bool) error
	GetConnection(ctx context.Context, connectionID string) (*database.ConnectionView, error)
}

type WebhookReceiver interface {
	Handle(ctx context.Context, provider string, body []byte, signature string) (*webhook.Outcome, error)
}
