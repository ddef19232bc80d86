package normalizer

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/dedup"
)

// Receipt turns fetched mailbox messages into pending receipt emails. The
// amount is optional here, it is filled by the enrichment step when the
// mail provider did not extract one.
type Receipt struct {
	defaultCurrency string
}

func NewReceipt(defaultCurrency string) *Receipt {
	return &Receipt{
		defaultCurrency: defaultCurrency,
	}
}

func (r *Receipt) SourceType() database.SourceType {
	return database.SourceReceiptEmail
}

func (r *Receipt) Normalize(_ context.Context, data []byte) ([]*Result, error) {
	messages, err := decodeObjects(data)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(messages))

	for i, msg := range messages {
		rec, parseErr := r.parse(msg)
		if parseErr != nil {
			results = append(results, failed(i, parseErr))
			continue
		}

		results = append(results, &Result{Index: i, Record: rec})
	}

	return results, nil
}

func (r *Receipt) parse(m map[string]any) (*database.ReceiptEmail, error) {
	messageID := str(m, "message_id", "id")
	if messageID == "" {
		return nil, malformed("message has no id")
	}

	received, err := ParseInstant(firstValue(m, "received_at", "date", "internal_date"))
	if err != nil {
		return nil, errors.Wrapf(err, "message %s", messageID)
	}

	amount := decimal.Zero
	currency := ""

	if raw := firstValue(m, "amount", "total"); raw != nil {
		amount, currency, err = CoerceAmount(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "message %s", messageID)
		}
	}

	key, err := dedup.Key(database.SourceReceiptEmail, messageID)
	if err != nil {
		return nil, err
	}

	subject := str(m, "subject")

	meta, err := Metadata(lo.OmitByKeys(m, []string{
		"message_id", "id", "received_at", "date", "internal_date", "amount", "total",
		"subject", "sender", "from", "body", "text", "currency",
	}))
	if err != nil {
		return nil, err
	}

	return &database.ReceiptEmail{
		SourceBase: database.SourceBase{
			DedupKey:    key,
			Amount:      amount.Abs(),
			Currency:    firstNonEmpty(currency, NormalizeCurrency(str(m, "currency")), r.defaultCurrency),
			RecordDate:  dateOf(received),
			Description: subject,
			Metadata:    meta,
		},
		MessageID:     messageID,
		Sender:        str(m, "sender", "from"),
		Subject:       subject,
		Body:          str(m, "body", "text"),
		ParsingStatus: database.ParsingPending,
	}, nil
}
