package matcher

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

const lookupChunk = 500

type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{
		db: db,
	}
}

func (r *GormRepo) ListTransactions(ctx context.Context, filter TransactionFilter) ([]*database.CanonicalTransaction, error) {
	q := r.db.WithContext(ctx).Model(&database.CanonicalTransaction{})

	if len(filter.IDs) > 0 {
		q = q.Where("id IN ?", filter.IDs)
	}

	if filter.Direction != "" {
		q = q.Where("direction = ?", filter.Direction)
	}

	if !filter.From.IsZero() {
		q = q.Where("timestamp >= ?", filter.From.UTC())
	}

	if !filter.To.IsZero() {
		q = q.Where("timestamp <= ?", filter.To.UTC())
	}

	var txs []*database.CanonicalTransaction
	if err := q.Order("timestamp asc, id asc").Find(&txs).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	return txs, nil
}

func (r *GormRepo) PrimaryLinks(
	ctx context.Context,
	sourceType database.SourceType,
	transactionIDs []string,
) (map[string]*database.EnrichmentLink, error) {
	res := map[string]*database.EnrichmentLink{}

	for _, chunk := range lo.Chunk(transactionIDs, lookupChunk) {
		var links []*database.EnrichmentLink

		if err := r.db.WithContext(ctx).
			Where("source_type = ? AND is_primary = ?", sourceType, true).
			Where("transaction_id IN ?", chunk).
			Find(&links).Error; err != nil {
			return nil, errors.WithStack(err)
		}

		for _, l := range links {
			res[l.TransactionID] = l
		}
	}

	return res, nil
}

// ListCandidates returns the records dated within [from, to] that are not yet
// the primary explanation of any transaction.
func (r *GormRepo) ListCandidates(
	ctx context.Context,
	sourceType database.SourceType,
	from time.Time,
	to time.Time,
) ([]database.SourceRecord, error) {
	table, err := database.SourceTable(sourceType)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).
		Where("record_date BETWEEN ? AND ?", from.UTC(), to.UTC()).
		Where("amount > 0").
		Where(fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM enrichment_links l WHERE l.source_type = ? AND l.source_id = %s.id AND l.is_primary = ?)",
			table,
		), sourceType, true)

	return database.FindSources(q, sourceType)
}

// SaveMatch writes the primary link, its alternatives and the transaction
// status atomically. The partial unique indexes reject a second primary for
// the same transaction or source record.
func (r *GormRepo) SaveMatch(ctx context.Context, match *Match) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if match.Replaces != nil {
			res := tx.Model(&database.EnrichmentLink{}).
				Where("id = ? AND is_primary = ? AND user_verified = ?", match.Replaces.ID, true, false).
				Update("is_primary", false)
			if res.Error != nil {
				return errors.WithStack(res.Error)
			}

			if res.RowsAffected != 1 {
				return errors.Wrapf(ErrLinkChanged, "link %s", match.Replaces.ID)
			}
		}

		if err := tx.Create(match.Primary).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.Mark(errors.Wrapf(err, "transaction %s", match.Primary.TransactionID), ErrAlreadyLinked)
			}

			return errors.WithStack(err)
		}

		for _, alt := range match.Alternatives {
			if err := tx.Create(alt).Error; err != nil {
				return errors.WithStack(err)
			}
		}

		if match.Status == "" {
			return nil
		}

		return errors.WithStack(tx.Model(&database.CanonicalTransaction{}).
			Where("id = ?", match.Primary.TransactionID).
			Where("pre_enrichment_status = ?", database.PreEnrichmentNone).
			Update("pre_enrichment_status", match.Status).Error)
	})
}

func (r *GormRepo) GetLink(ctx context.Context, id string) (*database.EnrichmentLink, error) {
	var link database.EnrichmentLink

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(common.ErrNotFound, "link %s", id)
		}

		return nil, errors.WithStack(err)
	}

	return &link, nil
}

func (r *GormRepo) SetVerified(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&database.EnrichmentLink{}).
		Where("id = ?", id).
		Update("user_verified", true)
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}

	if res.RowsAffected == 0 {
		return errors.Wrapf(common.ErrNotFound, "link %s", id)
	}

	return nil
}

func (r *GormRepo) ListLinks(ctx context.Context, transactionID string) ([]*database.EnrichmentLink, error) {
	var links []*database.EnrichmentLink

	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("is_primary desc, confidence desc, created_at asc").
		Find(&links).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	return links, nil
}

// GetSource loads a record even when it was soft deleted after being linked.
func (r *GormRepo) GetSource(ctx context.Context, sourceType database.SourceType, id string) (database.SourceRecord, error) {
	rec, err := database.NewSourceRecord(sourceType)
	if err != nil {
		return nil, err
	}

	if err = r.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(common.ErrNotFound, "%s %s", sourceType, id)
		}

		return nil, errors.WithStack(err)
	}

	return rec, nil
}
