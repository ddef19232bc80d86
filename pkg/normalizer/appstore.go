package normalizer

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/dedup"
)

// AppStore reads purchase receipts from app stores. A receipt may list
// several purchases, each one is matched on its own.
type AppStore struct {
	defaultCurrency string
}

func NewAppStore(defaultCurrency string) *AppStore {
	return &AppStore{
		defaultCurrency: defaultCurrency,
	}
}

func (a *AppStore) SourceType() database.SourceType {
	return database.SourceAppStorePurchase
}

func (a *AppStore) Normalize(_ context.Context, data []byte) ([]*Result, error) {
	receipts, err := decodeObjects(data)
	if err != nil {
		return nil, err
	}

	var results []*Result

	for i, receipt := range receipts {
		if purchases, ok := receipt["purchases"].([]any); ok {
			for _, p := range purchases {
				item, ok := p.(map[string]any)
				if !ok {
					results = append(results, failed(i, malformed("purchase is not an object")))
					continue
				}

				// purchases inherit receipt level fields they do not carry
				merged := lo.Assign(lo.OmitByKeys(receipt, []string{"purchases"}), item)

				results = append(results, a.result(i, merged))
			}

			continue
		}

		results = append(results, a.result(i, receipt))
	}

	return results, nil
}

func (a *AppStore) result(index int, m map[string]any) *Result {
	rec, err := a.parse(m)
	if err != nil {
		return failed(index, err)
	}

	return &Result{Index: index, Record: rec}
}

func (a *AppStore) parse(m map[string]any) (*database.AppStorePurchase, error) {
	orderID := str(m, "order_id", "transaction_id", "orderId")
	if orderID == "" {
		return nil, malformed("purchase has no order id")
	}

	amount, currency, err := CoerceAmount(firstValue(m, "price", "amount", "total"))
	if err != nil {
		return nil, errors.Wrapf(err, "purchase %s", orderID)
	}

	date, err := ParseDate(firstValue(m, "purchase_date", "date", "order_date"))
	if err != nil {
		return nil, errors.Wrapf(err, "purchase %s", orderID)
	}

	key, err := dedup.Key(database.SourceAppStorePurchase, orderID)
	if err != nil {
		return nil, err
	}

	appName := str(m, "app_name", "app")
	itemName := str(m, "item_name", "item", "product")

	meta, err := Metadata(lo.OmitByKeys(m, []string{
		"order_id", "transaction_id", "orderId", "price", "amount", "total",
		"purchase_date", "date", "order_date", "app_name", "app", "item_name", "item", "product",
	}))
	if err != nil {
		return nil, err
	}

	return &database.AppStorePurchase{
		SourceBase: database.SourceBase{
			DedupKey:    key,
			Amount:      amount.Abs(),
			Currency:    firstNonEmpty(currency, NormalizeCurrency(str(m, "currency")), a.defaultCurrency),
			RecordDate:  date,
			Description: strings.TrimSpace(str(m, "store") + " " + appName + " " + itemName),
			Metadata:    meta,
		},
		OrderID:  orderID,
		Store:    firstNonEmpty(strings.ToLower(str(m, "store")), "apple"),
		AppName:  appName,
		ItemName: itemName,
	}, nil
}
