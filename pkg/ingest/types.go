package ingest

import (
	"context"
	"time"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

type Outcome string

const (
	OutcomeInserted  = Outcome("inserted")
	OutcomeDuplicate = Outcome("duplicate")
)

// Record is anything stored under a unique dedup key.
type Record interface {
	TableName() string
	DedupValue() string
}

type referencing interface {
	ForeignKeys() []database.ForeignKey
}

type SyncRequest struct {
	ConnectionID string              `json:"connection_id"`
	SourceType   database.SourceType `json:"source_type"`
	From         time.Time           `json:"from"`
	To           time.Time           `json:"to"`
}

type ImportRequest struct {
	SourceType database.SourceType `json:"source_type"`
	Data       []byte              `json:"data"`
}

type Result struct {
	Processed int `json:"processed"`
	Inserted  int `json:"inserted"`
	Duplicate int `json:"duplicate"`
	Failed    int `json:"failed"`
}

type nopReporter struct{}

func (nopReporter) SetTotal(context.Context, int) error            { return nil }
func (nopReporter) Advance(context.Context, common.Progress) error { return nil }
