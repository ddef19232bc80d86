package matcher

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

var (
	ErrAlreadyLinked = errors.New("transaction or source record already holds a primary link")
	ErrLinkChanged   = errors.New("primary link changed while rematching")
)

type MatchRequest struct {
	SourceType     database.SourceType `json:"source_type"`
	TransactionIDs []string            `json:"transaction_ids,omitempty"`
	From           time.Time           `json:"from"`
	To             time.Time           `json:"to"`
}

type TransactionFilter struct {
	IDs       []string
	Direction database.Direction
	From      time.Time
	To        time.Time
}

type MatchBatchResult struct {
	Processed int `json:"processed"`
	Matched   int `json:"matched"`
	Upgraded  int `json:"upgraded"`
	Unmatched int `json:"unmatched"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Match is everything written for one transaction in a single transaction.
type Match struct {
	Primary      *database.EnrichmentLink
	Alternatives []*database.EnrichmentLink
	Replaces     *database.EnrichmentLink
	Status       database.PreEnrichmentStatus
}

type nopReporter struct{}

func (nopReporter) SetTotal(context.Context, int) error            { return nil }
func (nopReporter) Advance(context.Context, common.Progress) error { return nil }
