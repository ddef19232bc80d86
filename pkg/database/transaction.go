package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ForeignKey names a row that must exist before a record referencing it is stored.
type ForeignKey struct {
	Table string
	ID    string
}

type BankAccount struct {
	ID                string `gorm:"primaryKey;size:36"`
	ConnectionID      string `gorm:"size:36;index"`
	ProviderAccountID string `gorm:"size:128;uniqueIndex"`
	DisplayName       string
	Currency          string `gorm:"size:3"`
	CreatedAt         time.Time
}

func (BankAccount) TableName() string {
	return "bank_accounts"
}

func (a *BankAccount) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	return nil
}

// CanonicalTransaction is one bank feed movement. Amount is always absolute,
// the sign lives in Direction.
type CanonicalTransaction struct {
	ID                  string              `gorm:"primaryKey;size:36"`
	BankAccountID       string              `gorm:"size:36;index;not null"`
	DedupKey            string              `gorm:"size:255;uniqueIndex;not null"`
	Timestamp           time.Time           `gorm:"index"`
	Description         string
	MerchantName        string
	Amount              decimal.Decimal     `gorm:"type:decimal(20,4);not null"`
	Currency            string              `gorm:"size:3"`
	Direction           Direction           `gorm:"size:8"`
	Metadata            datatypes.JSON
	PreEnrichmentStatus PreEnrichmentStatus `gorm:"size:32;default:none"`

	Category             string
	CategoryConfidence   int
	CategoryProvider     string
	EnrichmentStatus     EnrichmentStatus `gorm:"size:16;index;default:pending"`
	EnrichmentRetryCount int              `gorm:"default:0;not null"`
	EnrichmentError      string
	EnrichmentCostCents  decimal.Decimal `gorm:"type:decimal(20,6)"`
	EnrichedAt           *time.Time

	CreatedAt time.Time
}

func (CanonicalTransaction) TableName() string {
	return "canonical_transactions"
}

func (t *CanonicalTransaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.PreEnrichmentStatus == "" {
		t.PreEnrichmentStatus = PreEnrichmentNone
	}
	if t.EnrichmentStatus == "" {
		t.EnrichmentStatus = EnrichmentPending
	}
	t.Timestamp = t.Timestamp.UTC()

	return nil
}

func (t *CanonicalTransaction) DedupValue() string {
	return t.DedupKey
}

func (t *CanonicalTransaction) ForeignKeys() []ForeignKey {
	return []ForeignKey{{Table: BankAccount{}.TableName(), ID: t.BankAccountID}}
}

// MatchText is the free text compared against source record descriptions.
func (t *CanonicalTransaction) MatchText() string {
	if t.MerchantName == "" {
		return t.Description
	}

	return t.MerchantName + " " + t.Description
}
