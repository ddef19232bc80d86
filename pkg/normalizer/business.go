package normalizer

import (
	"context"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tealeg/xlsx"
	"gorm.io/datatypes"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/dedup"
)

var businessColumns = map[string][]string{
	"order_id": {"order id", "order_id"},
	"date":     {"order date", "order_date", "date"},
	"line":     {"order line", "line number", "line", "line item"},
	"po":       {"po number", "purchase order", "po"},
	"supplier": {"seller name", "supplier", "seller"},
	"amount":   {"item net total", "item subtotal", "amount", "total", "line total"},
	"currency": {"currency", "item subtotal currency"},
	"title":    {"title", "description", "item"},
}

// Business reads the business order report spreadsheet. Every row is one
// order line, the line number makes the key unique inside an order.
type Business struct {
	defaultCurrency string
}

func NewBusiness(defaultCurrency string) *Business {
	return &Business{
		defaultCurrency: defaultCurrency,
	}
}

func (b *Business) SourceType() database.SourceType {
	return database.SourceBusinessOrder
}

func (b *Business) Normalize(_ context.Context, data []byte) ([]*Result, error) {
	fileData, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "can not open business order report"), common.ErrMalformedRecord)
	}

	if len(fileData.Sheets) == 0 {
		return nil, malformed("no sheets found")
	}

	sheet := fileData.Sheets[0]

	if len(sheet.Rows) < 2 {
		return nil, malformed("no rows found")
	}

	header := headerIndex(cellStrings(sheet.Rows[0].Cells), businessColumns)
	for _, required := range []string{"order_id", "date", "amount"} {
		if _, ok := header[required]; !ok {
			return nil, malformed("business order report has no %s column", required)
		}
	}

	var results []*Result
	lines := map[string]int{}

	for i := 1; i < len(sheet.Rows); i++ {
		cells := sheet.Rows[i].Cells

		if len(cells) == 0 || strings.TrimSpace(cells[0].String()) == "" {
			continue // looks like empty row, skip
		}

		orderID := cellAt(cells, header, "order_id")
		lines[orderID]++

		rec, parseErr := b.parseRow(cells, header, lines[orderID])
		if parseErr != nil {
			results = append(results, failed(i, errors.Wrapf(parseErr, "row %d", i+1)))
			continue
		}

		results = append(results, &Result{Index: i, Record: rec})
	}

	return results, nil
}

func (b *Business) parseRow(cells []*xlsx.Cell, header map[string]int, position int) (*database.BusinessOrder, error) {
	orderID := cellAt(cells, header, "order_id")
	if orderID == "" {
		return nil, malformed("order id is empty")
	}

	lineNumber := position
	if raw := cellAt(cells, header, "line"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, malformed("line number %q is not an integer", raw)
		}

		lineNumber = n
	}

	amount, currency, err := CoerceAmount(cellAt(cells, header, "amount"))
	if err != nil {
		return nil, err
	}

	date, err := b.cellDate(cells, header)
	if err != nil {
		return nil, err
	}

	key, err := dedup.Key(database.SourceBusinessOrder, orderID, strconv.Itoa(lineNumber))
	if err != nil {
		return nil, err
	}

	title := cellAt(cells, header, "title")
	supplier := cellAt(cells, header, "supplier")

	return &database.BusinessOrder{
		SourceBase: database.SourceBase{
			DedupKey:    key,
			Amount:      amount.Abs(),
			Currency:    firstNonEmpty(NormalizeCurrency(cellAt(cells, header, "currency")), currency, b.defaultCurrency),
			RecordDate:  date,
			Description: strings.TrimSpace(supplier + " " + title),
		},
		OrderID:       orderID,
		LineNumber:    lineNumber,
		Supplier:      supplier,
		PurchaseOrder: cellAt(cells, header, "po"),
		ItemSummary:   title,
	}, nil
}

// cellDate accepts both text dates and spreadsheet serial dates.
func (b *Business) cellDate(cells []*xlsx.Cell, header map[string]int) (datatypes.Date, error) {
	raw := cellAt(cells, header, "date")

	date, err := ParseDate(raw)
	if err == nil {
		return date, nil
	}

	idx := header["date"]
	if idx < len(cells) {
		if t, cellErr := cells[idx].GetTime(false); cellErr == nil {
			return dateOf(t), nil
		}
	}

	return datatypes.Date{}, err
}

func cellAt(cells []*xlsx.Cell, header map[string]int, field string) string {
	idx, ok := header[field]
	if !ok || idx >= len(cells) {
		return ""
	}

	return strings.TrimSpace(cells[idx].String())
}

func cellStrings(cells []*xlsx.Cell) []string {
	values := make([]string, 0, len(cells))

	for _, c := range cells {
		values = append(values, c.String())
	}

	return values
}
