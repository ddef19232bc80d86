package ingest

import (
	"context"
	"time"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/truelayer"
)

//go:generate mockgen -destination interfaces_mocks_test.go -package ingest_test -source=interfaces.go

type TokenSource interface {
	GetValidAccessToken(ctx context.Context, connectionID string) (string, error)
	MarkSynced(ctx context.Context, connectionID string, at time.Time) error
}

type BankFeed interface {
	ListAccounts(ctx context.Context, accessToken string) ([]truelayer.Account, error)
	ListTransactions(
		ctx context.Context,
		accessToken string,
		accountID string,
		from time.Time,
		to time.Time,
	) (*truelayer.RawTransactions, error)
}

type RecordStore interface {
	Upsert(ctx context.Context, record Record) (Outcome, error)
	EnsureBankAccount(ctx context.Context, account *database.BankAccount) (*database.BankAccount, error)
}

type Reporter interface {
	SetTotal(ctx context.Context, total int) error
	Advance(ctx context.Context, delta common.Progress) error
}
