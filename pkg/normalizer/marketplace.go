package normalizer

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/dedup"
)

var marketplaceColumns = map[string][]string{
	"order_id":    {"order id", "order_id", "order number"},
	"shipment_id": {"shipment id", "shipment_id", "carrier name & tracking number"},
	"date":        {"order date", "order_date", "date", "ship date"},
	"amount":      {"total owed", "total", "item total", "amount", "total charged"},
	"currency":    {"currency"},
	"title":       {"product name", "title", "item", "description"},
	"quantity":    {"quantity", "qty"},
	"refund_id":   {"refund id", "refund_id", "reversal id"},
	"refund_date": {"refund date", "refund_date", "return date"},
	"refund":      {"refund amount", "refund_amount", "amount refunded"},
	"marketplace": {"website", "marketplace"},
}

// Marketplace reads order history exports. CSV rows that share an order and
// shipment are folded into one order, since the bank is charged per shipment.
// Refund exports and refunds embedded in JSON orders become returns.
type Marketplace struct {
	defaultCurrency string
}

func NewMarketplace(defaultCurrency string) *Marketplace {
	return &Marketplace{
		defaultCurrency: defaultCurrency,
	}
}

func (m *Marketplace) SourceType() database.SourceType {
	return database.SourceMarketplaceOrder
}

func (m *Marketplace) Normalize(ctx context.Context, data []byte) ([]*Result, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, malformed("empty marketplace export")
	}

	if trimmed[0] == '[' || trimmed[0] == '{' {
		return m.normalizeJSON(ctx, trimmed)
	}

	return m.normalizeCSV(ctx, trimmed)
}

type csvGroup struct {
	index   int
	orderID string
	rows    []map[string]string
}

func (m *Marketplace) normalizeCSV(_ context.Context, data []byte) ([]*Result, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "can not read marketplace csv"), common.ErrMalformedRecord)
	}

	if len(lines) < 2 {
		return nil, malformed("marketplace csv has no rows")
	}

	header := headerIndex(lines[0], marketplaceColumns)
	if _, ok := header["order_id"]; !ok {
		return nil, malformed("marketplace csv has no order id column")
	}

	_, isRefunds := header["refund"]

	var results []*Result
	var groups []*csvGroup
	byKey := map[string]*csvGroup{}

	for i, line := range lines[1:] {
		row := rowValues(line, header)
		if lo.EveryBy(line, func(v string) bool { return strings.TrimSpace(v) == "" }) {
			continue
		}

		if row["order_id"] == "" {
			results = append(results, failed(i, malformed("row %d has no order id", i+1)))
			continue
		}

		groupKey := row["order_id"] + "|" + row["shipment_id"]
		if isRefunds {
			groupKey = strconv.Itoa(i)
		}

		g, ok := byKey[groupKey]
		if !ok {
			g = &csvGroup{index: i, orderID: row["order_id"]}
			byKey[groupKey] = g
			groups = append(groups, g)
		}

		g.rows = append(g.rows, row)
	}

	for _, g := range groups {
		var rec database.SourceRecord
		var err error

		if isRefunds {
			rec, err = m.refundFromRow(g.rows[0])
		} else {
			rec, err = m.orderFromRows(g)
		}

		if err != nil {
			results = append(results, failed(g.index, errors.Wrapf(err, "order %s", g.orderID)))
			continue
		}

		results = append(results, &Result{Index: g.index, Record: rec})
	}

	return results, nil
}

func (m *Marketplace) orderFromRows(g *csvGroup) (*database.MarketplaceOrder, error) {
	total := decimal.Zero
	currency := ""
	count := 0
	var titles []string

	for _, row := range g.rows {
		amount, cur, err := CoerceAmount(row["amount"])
		if err != nil {
			return nil, err
		}

		if currency == "" {
			currency = firstNonEmpty(NormalizeCurrency(row["currency"]), cur)
		}

		total = total.Add(amount.Abs())

		qty := 1
		if q, err := strconv.Atoi(row["quantity"]); err == nil && q > 0 {
			qty = q
		}

		count += qty

		if row["title"] != "" {
			titles = append(titles, row["title"])
		}
	}

	first := g.rows[0]

	date, err := ParseDate(first["date"])
	if err != nil {
		return nil, err
	}

	keyParts := []string{g.orderID}
	if first["shipment_id"] != "" {
		keyParts = append(keyParts, first["shipment_id"])
	}

	key, err := dedup.Key(database.SourceMarketplaceOrder, keyParts...)
	if err != nil {
		return nil, err
	}

	extra := map[string]any{"rows": len(g.rows)}
	if first["shipment_id"] != "" {
		extra["shipment_id"] = first["shipment_id"]
	}

	meta, err := Metadata(extra)
	if err != nil {
		return nil, err
	}

	summary := strings.Join(titles, "; ")

	return &database.MarketplaceOrder{
		SourceBase: database.SourceBase{
			DedupKey:    key,
			Amount:      total,
			Currency:    firstNonEmpty(currency, m.defaultCurrency),
			RecordDate:  date,
			Description: summary,
			Metadata:    meta,
		},
		OrderID:     g.orderID,
		Marketplace: firstNonEmpty(first["marketplace"], "amazon"),
		ItemSummary: summary,
		ItemCount:   count,
	}, nil
}

func (m *Marketplace) refundFromRow(row map[string]string) (*database.MarketplaceReturn, error) {
	amount, cur, err := CoerceAmount(row["refund"])
	if err != nil {
		return nil, err
	}

	date, err := ParseDate(firstNonEmpty(row["refund_date"], row["date"]))
	if err != nil {
		return nil, err
	}

	refundID := firstNonEmpty(row["refund_id"], row["refund_date"]+"-"+amount.String())

	return m.newReturn(row["order_id"], refundID, amount, firstNonEmpty(NormalizeCurrency(row["currency"]), cur), date,
		row["title"], row["marketplace"])
}

func (m *Marketplace) newReturn(
	orderID string,
	refundID string,
	amount decimal.Decimal,
	currency string,
	date datatypes.Date,
	title string,
	marketplace string,
) (*database.MarketplaceReturn, error) {
	key, err := dedup.Key(database.SourceMarketplaceReturn, orderID, refundID)
	if err != nil {
		return nil, err
	}

	return &database.MarketplaceReturn{
		SourceBase: database.SourceBase{
			DedupKey:    key,
			Amount:      amount.Abs(),
			Currency:    firstNonEmpty(currency, m.defaultCurrency),
			RecordDate:  date,
			Description: title,
		},
		OrderID:     orderID,
		RefundID:    refundID,
		Marketplace: firstNonEmpty(marketplace, "amazon"),
		ItemSummary: title,
	}, nil
}

func (m *Marketplace) normalizeJSON(_ context.Context, data []byte) ([]*Result, error) {
	orders, err := decodeObjects(data)
	if err != nil {
		return nil, err
	}

	var results []*Result

	for i, o := range orders {
		order, err := m.orderFromJSON(o)
		if err != nil {
			results = append(results, failed(i, err))
			continue
		}

		results = append(results, &Result{Index: i, Record: order})

		refunds, _ := o["refunds"].([]any)
		for _, r := range refunds {
			refund, ok := r.(map[string]any)
			if !ok {
				results = append(results, failed(i, malformed("order %s has a refund that is not an object", order.OrderID)))
				continue
			}

			ret, err := m.returnFromJSON(order, refund)
			if err != nil {
				results = append(results, failed(i, err))
				continue
			}

			results = append(results, &Result{Index: i, Record: ret})
		}
	}

	return results, nil
}

func (m *Marketplace) orderFromJSON(o map[string]any) (*database.MarketplaceOrder, error) {
	orderID := str(o, "order_id", "orderId", "id")
	if orderID == "" {
		return nil, malformed("order has no id")
	}

	amount, currency, err := CoerceAmount(firstValue(o, "total", "amount"))
	if err != nil {
		return nil, errors.Wrapf(err, "order %s", orderID)
	}

	date, err := ParseDate(firstValue(o, "order_date", "date"))
	if err != nil {
		return nil, errors.Wrapf(err, "order %s", orderID)
	}

	var titles []string
	count := 0

	items, _ := o["items"].([]any)
	for _, it := range items {
		item, ok := it.(map[string]any)
		if !ok {
			continue
		}

		if title := str(item, "title", "name"); title != "" {
			titles = append(titles, title)
		}

		qty, err := strconv.Atoi(str(item, "quantity"))
		if err != nil || qty < 1 {
			qty = 1
		}

		count += qty
	}

	key, err := dedup.Key(database.SourceMarketplaceOrder, orderID)
	if err != nil {
		return nil, err
	}

	extra := lo.OmitByKeys(o, []string{"order_id", "orderId", "id", "total", "amount", "order_date", "date", "items", "refunds"})

	meta, err := Metadata(extra)
	if err != nil {
		return nil, err
	}

	summary := strings.Join(titles, "; ")

	return &database.MarketplaceOrder{
		SourceBase: database.SourceBase{
			DedupKey:    key,
			Amount:      amount.Abs(),
			Currency:    firstNonEmpty(currency, NormalizeCurrency(str(o, "currency")), m.defaultCurrency),
			RecordDate:  date,
			Description: summary,
			Metadata:    meta,
		},
		OrderID:     orderID,
		Marketplace: firstNonEmpty(str(o, "marketplace"), "amazon"),
		ItemSummary: summary,
		ItemCount:   count,
	}, nil
}

func (m *Marketplace) returnFromJSON(order *database.MarketplaceOrder, r map[string]any) (*database.MarketplaceReturn, error) {
	amount, currency, err := CoerceAmount(r["amount"])
	if err != nil {
		return nil, errors.Wrapf(err, "refund of order %s", order.OrderID)
	}

	date, err := ParseDate(r["date"])
	if err != nil {
		return nil, errors.Wrapf(err, "refund of order %s", order.OrderID)
	}

	refundID := str(r, "refund_id", "id")
	if refundID == "" {
		return nil, malformed("refund of order %s has no id", order.OrderID)
	}

	return m.newReturn(order.OrderID, refundID, amount, firstNonEmpty(currency, order.Currency), date,
		order.ItemSummary, order.Marketplace)
}

func headerIndex(header []string, aliases map[string][]string) map[string]int {
	result := map[string]int{}

	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))

		for field, names := range aliases {
			if _, seen := result[field]; seen {
				continue
			}

			if lo.Contains(names, h) {
				result[field] = i
			}
		}
	}

	return result
}

func rowValues(line []string, header map[string]int) map[string]string {
	row := make(map[string]string, len(header))

	for field, idx := range header {
		if idx < len(line) {
			row[field] = strings.TrimSpace(line[idx])
		}
	}

	return row
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

func firstValue(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}

	return nil
}
