package matcher

import (
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/skynet2/finance-reconciler/pkg/database"
)

type RematchPolicy string

const (
	// RematchKeep never touches an existing primary link.
	RematchKeep = RematchPolicy("keep")
	// RematchUpgradeUnverified replaces an unverified primary link when a
	// candidate with strictly higher confidence shows up.
	RematchUpgradeUnverified = RematchPolicy("upgrade-unverified")
)

const maxAlternatives = 3

type Weights struct {
	Amount float64
	Date   float64
	Text   float64
}

type Config struct {
	Weights          Weights
	MinConfidence    int
	AmountTolerance  decimal.Decimal
	WindowDays       map[database.SourceType]int
	RematchPolicy    RematchPolicy
	KeepAlternatives int
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Amount: 0.5,
			Date:   0.2,
			Text:   0.3,
		},
		MinConfidence:   60,
		AmountTolerance: decimal.Zero,
		WindowDays: map[database.SourceType]int{
			database.SourceMarketplaceOrder:  3,
			database.SourceMarketplaceReturn: 14,
			database.SourceBusinessOrder:     5,
			database.SourceAppStorePurchase:  3,
			database.SourceReceiptEmail:      2,
		},
		RematchPolicy: RematchKeep,
	}
}

func (c Config) Validate() error {
	if c.Weights.Amount < 0 || c.Weights.Date < 0 || c.Weights.Text < 0 {
		return errors.New("score weights must not be negative")
	}

	if c.Weights.Amount+c.Weights.Date+c.Weights.Text == 0 {
		return errors.New("at least one score weight must be positive")
	}

	if c.MinConfidence < 0 || c.MinConfidence > 100 {
		return errors.Newf("min confidence %d is outside 0..100", c.MinConfidence)
	}

	if c.AmountTolerance.IsNegative() {
		return errors.New("amount tolerance must not be negative")
	}

	switch c.RematchPolicy {
	case RematchKeep, RematchUpgradeUnverified:
	default:
		return errors.Newf("unknown rematch policy %q", c.RematchPolicy)
	}

	if c.KeepAlternatives < 0 || c.KeepAlternatives > maxAlternatives {
		return errors.Newf("keep alternatives must be within 0..%d", maxAlternatives)
	}

	return nil
}

func (c Config) window(sourceType database.SourceType) int {
	if days, ok := c.WindowDays[sourceType]; ok {
		return days
	}

	return 3
}

// DirectionFor is the bank movement a source type explains: refunds arrive
// as credits, everything else is money going out.
func DirectionFor(sourceType database.SourceType) database.Direction {
	if sourceType == database.SourceMarketplaceReturn {
		return database.DirectionCredit
	}

	return database.DirectionDebit
}
