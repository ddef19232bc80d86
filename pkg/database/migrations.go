package database

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, &gormigrate.Options{
		TableName:                 "gorm_migrations",
		IDColumnName:              "id",
		IDColumnSize:              255,
		UseTransaction:            false,
		ValidateUnknownMigrations: false,
	}, getMigrations())

	return m.Migrate()
}

func getMigrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "2024_06_01_Initial",
			Migrate: func(db *gorm.DB) error {
				return db.AutoMigrate(
					&BankAccount{},
					&CanonicalTransaction{},
					&MarketplaceOrder{},
					&MarketplaceReturn{},
					&BusinessOrder{},
					&AppStorePurchase{},
					&ReceiptEmail{},
					&EnrichmentLink{},
					&Connection{},
					&ConnectionAuditEvent{},
					&Job{},
				)
			},
		},
		{
			ID: "2024_06_01_PrimaryLinkIndexes",
			Migrate: func(db *gorm.DB) error {
				if err := db.Exec(`create unique index if not exists ux_enrichment_links_primary_tx
    on enrichment_links (transaction_id, source_type)
    where is_primary;`).Error; err != nil {
					return err
				}

				return db.Exec(`create unique index if not exists ux_enrichment_links_primary_source
    on enrichment_links (source_type, source_id)
    where is_primary;`).Error
			},
		},
		{
			ID: "2024_06_02_ActiveJobLock",
			Migrate: func(db *gorm.DB) error {
				return db.Exec(`create unique index if not exists ux_jobs_active_lock
    on jobs (lock_key)
    where status in ('queued', 'running') and lock_key <> '';`).Error
			},
		},
		{
			ID: "2024_06_03_WebhookDeliveries",
			Migrate: func(db *gorm.DB) error {
				return db.AutoMigrate(&WebhookDelivery{})
			},
		},
		{
			ID: "2024_06_04_TransactionEnrichmentRetries",
			Migrate: func(db *gorm.DB) error {
				return db.AutoMigrate(&CanonicalTransaction{})
			},
		},
	}
}
