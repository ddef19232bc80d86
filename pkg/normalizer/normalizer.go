package normalizer

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

// Result is the outcome for one input item. A failed item carries Err and
// no record, the rest of the batch is unaffected.
type Result struct {
	Index       int
	Transaction *database.CanonicalTransaction
	Record      database.SourceRecord
	Err         error
}

func failed(index int, err error) *Result {
	if !errors.Is(err, common.ErrMalformedRecord) {
		err = errors.Mark(err, common.ErrMalformedRecord)
	}

	return &Result{
		Index: index,
		Err:   err,
	}
}

// FileNormalizer parses a whole exported file or message batch. The error is
// returned only when nothing in data can be read, bad items go into Result.Err.
type FileNormalizer interface {
	SourceType() database.SourceType
	Normalize(ctx context.Context, data []byte) ([]*Result, error)
}

type Registry struct {
	normalizers map[database.SourceType]FileNormalizer
}

func NewRegistry(defaultCurrency string) *Registry {
	marketplace := NewMarketplace(defaultCurrency)

	return &Registry{
		normalizers: map[database.SourceType]FileNormalizer{
			database.SourceMarketplaceOrder:  marketplace,
			database.SourceMarketplaceReturn: marketplace,
			database.SourceBusinessOrder:     NewBusiness(defaultCurrency),
			database.SourceAppStorePurchase:  NewAppStore(defaultCurrency),
			database.SourceReceiptEmail:      NewReceipt(defaultCurrency),
		},
	}
}

func (r *Registry) Get(sourceType database.SourceType) (FileNormalizer, error) {
	n, ok := r.normalizers[sourceType]
	if !ok {
		return nil, errors.Wrapf(common.ErrUnsupportedSource, "no file normalizer for %q", sourceType)
	}

	return n, nil
}
