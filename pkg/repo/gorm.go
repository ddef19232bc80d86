package repo

import (
	"context"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"

	"github.com/skynet2/finance-reconciler/pkg/database"
)

// Gorm is the relational inbox used when no Cosmos account is configured.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{
		db: db,
	}
}

func (g *Gorm) Record(ctx context.Context, delivery *database.WebhookDelivery) (bool, error) {
	if err := g.db.WithContext(ctx).Create(delivery).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}

		return false, errors.WithStack(err)
	}

	return true, nil
}

func (g *Gorm) MarkProcessed(ctx context.Context, deliveries []*database.WebhookDelivery) error {
	if len(deliveries) == 0 {
		return nil
	}

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range deliveries {
			d.Processed = true

			if err := tx.Model(&database.WebhookDelivery{}).
				Where("id = ?", d.ID).
				Updates(map[string]any{
					"processed": true,
					"job_id":    d.JobID,
				}).Error; err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
}

func (g *Gorm) ListUnprocessed(ctx context.Context, provider string) ([]*database.WebhookDelivery, error) {
	var items []*database.WebhookDelivery

	if err := g.db.WithContext(ctx).
		Where("provider = ? AND processed = ?", provider, false).
		Order("received_at asc").
		Find(&items).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	return items, nil
}
