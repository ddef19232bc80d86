package vault

import (
	"context"
	"time"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

//go:generate mockgen -destination interfaces_mocks_test.go -package vault_test -source=interfaces.go

type Repo interface {
	GetConnection(ctx context.Context, id string) (*database.Connection, error)
	CreateConnection(ctx context.Context, conn *database.Connection) error
	SaveTokens(ctx context.Context, id string, expectedVersion int64, tokens EncryptedTokens) (bool, error)
	UpdateStatus(ctx context.Context, id string, status database.ConnectionStatus, lastError string) error
	MarkSynced(ctx context.Context, id string, at time.Time) error
	AddAuditEvent(ctx context.Context, event *database.ConnectionAuditEvent) error
}

type Exchanger interface {
	ExchangeCode(ctx context.Context, code string, redirectURI string) (*common.TokenSet, error)
	RefreshToken(ctx context.Context, refreshToken string) (*common.TokenSet, error)
}
