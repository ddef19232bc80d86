package normalizer

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/dedup"
)

var bankCoreFields = map[string]struct{}{
	"transaction_id": {},
	"timestamp":      {},
	"description":    {},
	"amount":         {},
	"currency":       {},
	"merchant_name":  {},
}

// Bank converts bank feed transactions into canonical transactions.
type Bank struct {
}

func NewBank() *Bank {
	return &Bank{}
}

func (b *Bank) SourceType() database.SourceType {
	return database.SourceBankFeed
}

func (b *Bank) Normalize(
	_ context.Context,
	bankAccountID string,
	rawArr []json.RawMessage,
) []*Result {
	results := make([]*Result, 0, len(rawArr))

	for i, raw := range rawArr {
		tx, err := b.normalizeOne(bankAccountID, raw)
		if err != nil {
			results = append(results, failed(i, err))
			continue
		}

		results = append(results, &Result{
			Index:       i,
			Transaction: tx,
		})
	}

	return results
}

func (b *Bank) normalizeOne(bankAccountID string, raw json.RawMessage) (*database.CanonicalTransaction, error) {
	var m map[string]any

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(err, "transaction is not a json object")
	}

	providerID := str(m, "transaction_id")
	if providerID == "" {
		if meta, ok := m["meta"].(map[string]any); ok {
			providerID = str(meta, "provider_transaction_id")
		}
	}

	if providerID == "" {
		return nil, malformed("transaction has no provider id")
	}

	amount, currency, err := CoerceAmount(m["amount"])
	if err != nil {
		return nil, errors.Wrapf(err, "transaction %s", providerID)
	}

	if currency == "" {
		currency = NormalizeCurrency(str(m, "currency"))
	}

	if currency == "" {
		return nil, malformed("transaction %s has no currency", providerID)
	}

	ts, err := ParseInstant(m["timestamp"])
	if err != nil {
		return nil, errors.Wrapf(err, "transaction %s", providerID)
	}

	direction := database.DirectionCredit
	switch strings.ToUpper(str(m, "transaction_type")) {
	case "DEBIT":
		direction = database.DirectionDebit
	case "CREDIT":
	default:
		if amount.IsNegative() {
			direction = database.DirectionDebit
		}
	}

	key, err := dedup.Key(database.SourceBankFeed, providerID)
	if err != nil {
		return nil, err
	}

	extra := map[string]any{}
	for k, v := range m {
		if _, core := bankCoreFields[k]; !core {
			extra[k] = v
		}
	}

	meta, err := Metadata(extra)
	if err != nil {
		return nil, err
	}

	return &database.CanonicalTransaction{
		BankAccountID: bankAccountID,
		DedupKey:      key,
		Timestamp:     ts,
		Description:   str(m, "description"),
		MerchantName:  str(m, "merchant_name"),
		Amount:        amount.Abs(),
		Currency:      currency,
		Direction:     direction,
		Metadata:      meta,
	}, nil
}
