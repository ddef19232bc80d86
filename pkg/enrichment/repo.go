package enrichment

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

const DefaultMaxRetries = 3

type GormRepo struct {
	db         *gorm.DB
	maxRetries int
	clock      func() time.Time
}

func NewGormRepo(db *gorm.DB, maxRetries int) *GormRepo {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	return &GormRepo{
		db:         db,
		maxRetries: maxRetries,
		clock:      time.Now,
	}
}

// ListCandidates returns receipts waiting for a parse first, then
// uncategorised transactions that no source record explains yet.
func (r *GormRepo) ListCandidates(ctx context.Context, filter Filter) ([]*Item, error) {
	kinds := filter.Kinds
	if len(kinds) == 0 {
		kinds = []ItemKind{KindReceiptEmail, KindTransaction}
	}

	var items []*Item

	if lo.Contains(kinds, KindReceiptEmail) {
		var receipts []database.ReceiptEmail

		if err := r.db.WithContext(ctx).
			Where("parsing_status IN ?", []database.ParsingStatus{database.ParsingPending, database.ParsingFailed}).
			Where("retry_count < ?", r.maxRetries).
			Where("body <> ''").
			Order("created_at asc, id asc").
			Limit(filter.Limit).
			Find(&receipts).Error; err != nil {
			return nil, errors.WithStack(err)
		}

		for _, rec := range receipts {
			items = append(items, &Item{
				Kind:       KindReceiptEmail,
				ID:         rec.ID,
				Content:    rec.Sender + "\n" + rec.Subject + "\n" + rec.Body,
				RetryCount: rec.RetryCount,
			})
		}
	}

	remaining := filter.Limit - len(items)

	if lo.Contains(kinds, KindTransaction) && remaining > 0 {
		var txs []database.CanonicalTransaction

		if err := r.db.WithContext(ctx).
			Where("category = '' OR category IS NULL").
			Where("pre_enrichment_status = ?", database.PreEnrichmentNone).
			Where("enrichment_status IN ?", []database.EnrichmentStatus{database.EnrichmentPending, database.EnrichmentFailed}).
			Where("enrichment_retry_count < ?", r.maxRetries).
			Where("description <> '' OR merchant_name <> ''").
			Order("timestamp asc, id asc").
			Limit(remaining).
			Find(&txs).Error; err != nil {
			return nil, errors.WithStack(err)
		}

		for _, tx := range txs {
			items = append(items, &Item{
				Kind:       KindTransaction,
				ID:         tx.ID,
				Content:    tx.MatchText() + "\n" + tx.Amount.StringFixed(2) + " " + tx.Currency,
				RetryCount: tx.EnrichmentRetryCount,
			})
		}
	}

	return items, nil
}

func (r *GormRepo) SaveOutcome(ctx context.Context, outcome *Outcome) error {
	switch outcome.Item.Kind {
	case KindReceiptEmail:
		return r.saveReceipt(ctx, outcome)
	case KindTransaction:
		return r.saveTransaction(ctx, outcome)
	}

	return errors.Newf("unknown item kind %q", outcome.Item.Kind)
}

func (r *GormRepo) saveReceipt(ctx context.Context, outcome *Outcome) error {
	now := r.clock().UTC()
	updates := map[string]any{
		"cost_cents": gorm.Expr("cost_cents + ?", outcome.CostCents),
	}

	if outcome.Succeeded() {
		updates["parsing_status"] = database.ParsingParsed
		updates["category"] = outcome.Category
		updates["confidence"] = outcome.Confidence
		updates["parse_error"] = ""
		updates["parsed_at"] = now
	} else {
		status := database.ParsingFailed
		if outcome.Item.RetryCount+1 >= r.maxRetries {
			status = database.ParsingUnparseable
		}

		updates["parsing_status"] = status
		updates["parse_error"] = common.UserMessage(outcome.Err)
		updates["retry_count"] = gorm.Expr("retry_count + 1")
	}

	return r.update(ctx, &database.ReceiptEmail{}, outcome.Item.ID, updates)
}

func (r *GormRepo) saveTransaction(ctx context.Context, outcome *Outcome) error {
	updates := map[string]any{
		"enrichment_cost_cents": gorm.Expr("enrichment_cost_cents + ?", outcome.CostCents),
		"category_provider":     outcome.Provider,
	}

	if outcome.Succeeded() {
		updates["category"] = outcome.Category
		updates["category_confidence"] = outcome.Confidence
		updates["enrichment_status"] = database.EnrichmentDone
		updates["enrichment_error"] = ""
		updates["enriched_at"] = r.clock().UTC()
	} else {
		status := database.EnrichmentFailed
		if outcome.Item.RetryCount+1 >= r.maxRetries {
			status = database.EnrichmentAbandoned
		}

		updates["enrichment_status"] = status
		updates["enrichment_error"] = common.UserMessage(outcome.Err)
		updates["enrichment_retry_count"] = gorm.Expr("enrichment_retry_count + 1")
	}

	return r.update(ctx, &database.CanonicalTransaction{}, outcome.Item.ID, updates)
}

func (r *GormRepo) update(ctx context.Context, model any, id string, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}

	if res.RowsAffected == 0 {
		return errors.Wrapf(common.ErrNotFound, "item %s", id)
	}

	return nil
}
