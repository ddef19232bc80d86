package webhook

import (
	"context"

	"github.com/skynet2/finance-reconciler/pkg/database"
)

//go:generate mockgen -destination interfaces_mocks_test.go -package webhook_test -source=interfaces.go

type Inbox interface {
	Record(ctx context.Context, delivery *database.WebhookDelivery) (bool, error)
	MarkProcessed(ctx context.Context, deliveries []*database.WebhookDelivery) error
	ListUnprocessed(ctx context.Context, provider string) ([]*database.WebhookDelivery, error)
}

type SyncSubmitter interface {
	SubmitSync(ctx context.Context, connectionID string) (*database.Job, error)
}
