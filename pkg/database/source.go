package database

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skynet2/finance-reconciler/pkg/common"
)

// SourceBase holds the columns every source table shares. Matching only ever
// looks at these, the variant specific columns are for display.
type SourceBase struct {
	ID          string          `gorm:"primaryKey;size:36"`
	DedupKey    string          `gorm:"size:255;uniqueIndex;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Currency    string          `gorm:"size:3;index"`
	RecordDate  datatypes.Date  `gorm:"index"`
	Description string
	Metadata    datatypes.JSON
	CreatedAt   time.Time
}

func (b *SourceBase) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	return nil
}

func (b *SourceBase) DedupValue() string {
	return b.DedupKey
}

func (b *SourceBase) Date() time.Time {
	return time.Time(b.RecordDate)
}

// SourceRecord is the tagged union over all non bank sources.
type SourceRecord interface {
	SourceType() SourceType
	Base() *SourceBase
	TableName() string
	DedupValue() string
	MatchText() string
}

// SourceSummary is the variant independent projection used by matching.
type SourceSummary struct {
	Type        SourceType
	ID          string
	Amount      decimal.Decimal
	Currency    string
	Date        time.Time
	Description string
}

func Summarize(r SourceRecord) SourceSummary {
	b := r.Base()

	return SourceSummary{
		Type:        r.SourceType(),
		ID:          b.ID,
		Amount:      b.Amount,
		Currency:    b.Currency,
		Date:        b.Date(),
		Description: r.MatchText(),
	}
}

// NewSourceRecord returns an empty value of the variant identified by the tag.
// It is the only place where a source type is resolved to a concrete schema.
func NewSourceRecord(sourceType SourceType) (SourceRecord, error) {
	switch sourceType {
	case SourceMarketplaceOrder:
		return &MarketplaceOrder{}, nil
	case SourceMarketplaceReturn:
		return &MarketplaceReturn{}, nil
	case SourceBusinessOrder:
		return &BusinessOrder{}, nil
	case SourceAppStorePurchase:
		return &AppStorePurchase{}, nil
	case SourceReceiptEmail:
		return &ReceiptEmail{}, nil
	}

	return nil, errors.Wrapf(common.ErrUnsupportedSource, "source type %q", sourceType)
}

// FindSources runs q against the table of the variant and returns typed rows.
func FindSources(q *gorm.DB, sourceType SourceType) ([]SourceRecord, error) {
	switch sourceType {
	case SourceMarketplaceOrder:
		return findSources[MarketplaceOrder](q)
	case SourceMarketplaceReturn:
		return findSources[MarketplaceReturn](q)
	case SourceBusinessOrder:
		return findSources[BusinessOrder](q)
	case SourceAppStorePurchase:
		return findSources[AppStorePurchase](q)
	case SourceReceiptEmail:
		return findSources[ReceiptEmail](q)
	}

	return nil, errors.Wrapf(common.ErrUnsupportedSource, "source type %q", sourceType)
}

func findSources[T any, P interface {
	*T
	SourceRecord
}](q *gorm.DB) ([]SourceRecord, error) {
	var rows []T

	if err := q.Model(P(new(T))).Find(&rows).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	records := make([]SourceRecord, 0, len(rows))
	for i := range rows {
		records = append(records, P(&rows[i]))
	}

	return records, nil
}

func SourceTable(sourceType SourceType) (string, error) {
	rec, err := NewSourceRecord(sourceType)
	if err != nil {
		return "", err
	}

	return rec.TableName(), nil
}

type MarketplaceOrder struct {
	SourceBase
	OrderID     string `gorm:"size:128;index"`
	Marketplace string `gorm:"size:64"`
	ItemSummary string
	ItemCount   int
}

func (MarketplaceOrder) TableName() string      { return "marketplace_orders" }
func (MarketplaceOrder) SourceType() SourceType { return SourceMarketplaceOrder }
func (o *MarketplaceOrder) Base() *SourceBase   { return &o.SourceBase }
func (o *MarketplaceOrder) MatchText() string   { return o.Marketplace + " " + o.ItemSummary }

type MarketplaceReturn struct {
	SourceBase
	OrderID     string `gorm:"size:128;index"`
	RefundID    string `gorm:"size:128"`
	Marketplace string `gorm:"size:64"`
	ItemSummary string
}

func (MarketplaceReturn) TableName() string      { return "marketplace_returns" }
func (MarketplaceReturn) SourceType() SourceType { return SourceMarketplaceReturn }
func (r *MarketplaceReturn) Base() *SourceBase   { return &r.SourceBase }
func (r *MarketplaceReturn) MatchText() string   { return r.Marketplace + " refund " + r.ItemSummary }

type BusinessOrder struct {
	SourceBase
	OrderID       string `gorm:"size:128;index"`
	LineNumber    int
	Supplier      string
	PurchaseOrder string
	ItemSummary   string
}

func (BusinessOrder) TableName() string      { return "business_orders" }
func (BusinessOrder) SourceType() SourceType { return SourceBusinessOrder }
func (o *BusinessOrder) Base() *SourceBase   { return &o.SourceBase }
func (o *BusinessOrder) MatchText() string   { return o.Supplier + " " + o.ItemSummary }

type AppStorePurchase struct {
	SourceBase
	OrderID  string `gorm:"size:128;index"`
	Store    string `gorm:"size:32"`
	AppName  string
	ItemName string
}

func (AppStorePurchase) TableName() string      { return "app_store_purchases" }
func (AppStorePurchase) SourceType() SourceType { return SourceAppStorePurchase }
func (p *AppStorePurchase) Base() *SourceBase   { return &p.SourceBase }
func (p *AppStorePurchase) MatchText() string   { return p.Store + " " + p.AppName + " " + p.ItemName }

// ReceiptEmail is the only mutable source: parsing moves it from pending to
// parsed, failed or unparseable and DeletedAt soft deletes it.
type ReceiptEmail struct {
	SourceBase
	MessageID     string `gorm:"size:255;index"`
	Sender        string
	Subject       string
	Body          string
	ParsingStatus ParsingStatus `gorm:"size:16;index;default:pending"`
	RetryCount    int
	ParseError    string
	Category      string
	Confidence    int
	CostCents     decimal.Decimal `gorm:"type:decimal(20,6)"`
	ParsedAt      *time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (ReceiptEmail) TableName() string      { return "receipt_emails" }
func (ReceiptEmail) SourceType() SourceType { return SourceReceiptEmail }
func (e *ReceiptEmail) Base() *SourceBase   { return &e.SourceBase }
func (e *ReceiptEmail) MatchText() string   { return e.Sender + " " + e.Subject }
