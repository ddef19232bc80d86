package notifications

import (
	"context"

	"github.com/skynet2/finance-reconciler/pkg/database"
)

//go:generate mockgen -destination interfaces_mocks_test.go -package notifications_test -source=interfaces.go

type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type Formatter interface {
	Details(job *database.Job) string
}
