package enrichment

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/skynet2/finance-reconciler/pkg/common"
)

type ItemKind string

const (
	KindReceiptEmail = ItemKind("receipt-email")
	KindTransaction  = ItemKind("transaction")
)

// Item is one thing waiting for a category.
type Item struct {
	Kind       ItemKind
	ID         string
	Content    string
	RetryCount int
}

type Classification struct {
	Category     string `json:"category"`
	Confidence   int    `json:"confidence"`
	OutputTokens int    `json:"-"`
}

type Outcome struct {
	Item       *Item
	Provider   string
	Category   string
	Confidence int
	CostCents  decimal.Decimal
	Err        error
}

func (o *Outcome) Succeeded() bool {
	return o.Err == nil
}

type Filter struct {
	Kinds []ItemKind
	Limit int
}

type BatchRequest struct {
	Provider string     `json:"provider"`
	Model    string     `json:"model"`
	Limit    int        `json:"limit"`
	Kinds    []ItemKind `json:"kinds,omitempty"`
	Confirm  bool       `json:"confirm"`
}

type Estimate struct {
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	Items     int             `json:"items"`
	Free      bool            `json:"free"`
	CostCents decimal.Decimal `json:"cost_cents"`
}

type BatchResult struct {
	Processed int             `json:"processed"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	CostCents decimal.Decimal `json:"cost_cents"`
}

// Totals are the running counters of one Process call.
type Totals struct {
	mu        sync.Mutex
	succeeded int
	failed    int
	costCents decimal.Decimal
}

func (t *Totals) add(o *Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if o.Succeeded() {
		t.succeeded++
	} else {
		t.failed++
	}

	t.costCents = t.costCents.Add(o.CostCents)
}

func (t *Totals) Snapshot() BatchResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	return BatchResult{
		Processed: t.succeeded + t.failed,
		Succeeded: t.succeeded,
		Failed:    t.failed,
		CostCents: t.costCents,
	}
}

type ProviderFactory func(model string) (Provider, error)

type nopReporter struct{}

func (nopReporter) SetTotal(context.Context, int) error            { return nil }
func (nopReporter) Advance(context.Context, common.Progress) error { return nil }
