package matcher

import (
	"context"
	"time"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

//go:generate mockgen -destination interfaces_mocks_test.go -package matcher_test -source=interfaces.go

type Repo interface {
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*database.CanonicalTransaction, error)
	PrimaryLinks(ctx context.Context, sourceType database.SourceType, transactionIDs []string) (map[string]*database.EnrichmentLink, error)
	ListCandidates(ctx context.Context, sourceType database.SourceType, from time.Time, to time.Time) ([]database.SourceRecord, error)
	SaveMatch(ctx context.Context, match *Match) error
	GetLink(ctx context.Context, id string) (*database.EnrichmentLink, error)
	SetVerified(ctx context.Context, id string) error
	ListLinks(ctx context.Context, transactionID string) ([]*database.EnrichmentLink, error)
	GetSource(ctx context.Context, sourceType database.SourceType, id string) (database.SourceRecord, error)
}

type Reporter interface {
	SetTotal(ctx context.Context, total int) error
	Advance(ctx context.Context, delta common.Progress) error
}
