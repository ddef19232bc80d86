package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnrichmentLink explains a canonical transaction with one source record.
type EnrichmentLink struct {
	ID            string      `gorm:"primaryKey;size:36" json:"id"`
	TransactionID string      `gorm:"size:36;index;not null" json:"transaction_id"`
	SourceType    SourceType  `gorm:"size:32;not null" json:"source_type"`
	SourceID      string      `gorm:"size:36;not null" json:"source_id"`
	Confidence    int         `json:"confidence"`
	MatchMethod   MatchMethod `gorm:"size:32" json:"match_method"`
	IsPrimary     bool        `json:"is_primary"`
	UserVerified  bool        `json:"user_verified"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (EnrichmentLink) TableName() string {
	return "enrichment_links"
}

func (l *EnrichmentLink) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	return nil
}
