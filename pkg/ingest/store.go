package ingest

import (
	"context"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db: db,
	}
}

// Upsert inserts the record unless its dedup key is already stored. The
// insert itself resolves the race between concurrent writers, there is no
// separate lookup. Referenced rows are checked in the same transaction.
func (s *Store) Upsert(ctx context.Context, record Record) (Outcome, error) {
	if record.DedupValue() == "" {
		return "", errors.Wrap(common.ErrMalformedRecord, "record has no dedup key")
	}

	var outcome Outcome

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if withRefs, ok := record.(referencing); ok {
			for _, fk := range withRefs.ForeignKeys() {
				var count int64

				if err := tx.Table(fk.Table).Where("id = ?", fk.ID).Count(&count).Error; err != nil {
					return errors.WithStack(err)
				}

				if count == 0 {
					return errors.Wrapf(common.ErrDanglingReference, "%s %q", fk.Table, fk.ID)
				}
			}
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoNothing: true,
		}).Create(record)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				outcome = OutcomeDuplicate
				return nil
			}

			return errors.WithStack(res.Error)
		}

		outcome = OutcomeInserted
		if res.RowsAffected == 0 {
			outcome = OutcomeDuplicate
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return outcome, nil
}

// EnsureBankAccount returns the stored account for the provider account id,
// creating it on first sight. A re-authorized account moves to the new
// connection.
func (s *Store) EnsureBankAccount(ctx context.Context, account *database.BankAccount) (*database.BankAccount, error) {
	db := s.db.WithContext(ctx)

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"connection_id"}),
	}).Create(account).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	var stored database.BankAccount
	if err := db.Where("provider_account_id = ?", account.ProviderAccountID).First(&stored).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	return &stored, nil
}
