package normalizer

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/davecgh/go-spew/spew"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/skynet2/finance-reconciler/pkg/common"
)

var currencySymbols = map[string]string{
	"£": "GBP",
	"$": "USD",
	"€": "EUR",
	"¥": "JPY",
}

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2-Jan-06",
	"02-Jan-2006",
}

func malformed(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), common.ErrMalformedRecord)
}

// CoerceAmount turns every amount shape providers send into a scalar. Objects
// like {"amount": 1.5, "currency": "GBP"} give their currency too, plain
// values give it only when a symbol or code is part of the string.
func CoerceAmount(v any) (decimal.Decimal, string, error) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, "", malformed("amount is missing")
	case decimal.Decimal:
		return val, "", nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, "", malformed("amount is not finite")
		}

		return decimal.NewFromFloat(val), "", nil
	case int:
		return decimal.NewFromInt(int64(val)), "", nil
	case int64:
		return decimal.NewFromInt(val), "", nil
	case json.Number:
		return coerceAmountString(val.String())
	case string:
		return coerceAmountString(val)
	case map[string]any:
		raw, ok := val["amount"]
		if !ok {
			raw, ok = val["value"]
		}
		if !ok {
			return decimal.Zero, "", malformed("amount object without amount: %v", spew.Sdump(val))
		}

		if _, nested := raw.(map[string]any); nested {
			return decimal.Zero, "", malformed("amount object is nested: %v", spew.Sdump(val))
		}

		amount, currency, err := CoerceAmount(raw)
		if err != nil {
			return decimal.Zero, "", err
		}

		if code, ok := val["currency"].(string); ok && code != "" {
			currency = code
		}

		return amount, NormalizeCurrency(currency), nil
	}

	return decimal.Zero, "", malformed("unsupported amount type %T", v)
}

func coerceAmountString(raw string) (decimal.Decimal, string, error) {
	s := strings.TrimSpace(raw)
	currency := ""

	for symbol, code := range currencySymbols {
		if strings.Contains(s, symbol) {
			currency = code
			s = strings.ReplaceAll(s, symbol, "")
		}
	}

	if fields := strings.Fields(s); len(fields) == 2 {
		for i, f := range fields {
			if len(f) == 3 && strings.ToUpper(f) == f && !strings.ContainsAny(f, "0123456789") {
				currency = f
				s = fields[1-i]
			}
		}
	}

	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, "", malformed("amount %q is empty", raw)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, "", errors.Mark(errors.Wrapf(err, "can not parse amount %q", raw), common.ErrMalformedRecord)
	}

	return amount, currency, nil
}

func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParseInstant returns a UTC instant. Strings without an offset are read as
// UTC, numbers as unix seconds or milliseconds.
func ParseInstant(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), nil
	case float64:
		return fromUnix(int64(val)), nil
	case int64:
		return fromUnix(val), nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return time.Time{}, malformed("timestamp %q is not an integer", val)
		}

		return fromUnix(n), nil
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range instantLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}

		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromUnix(n), nil
		}

		if d, err := ParseDate(s); err == nil {
			return time.Time(d), nil
		}

		return time.Time{}, malformed("can not parse timestamp %q", val)
	}

	return time.Time{}, malformed("unsupported timestamp type %T", v)
}

func fromUnix(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}

	return time.Unix(n, 0).UTC()
}

// ParseDate keeps only the calendar date. A full timestamp contributes the
// date it has in UTC.
func ParseDate(v any) (datatypes.Date, error) {
	s, ok := v.(string)
	if !ok {
		t, err := ParseInstant(v)
		if err != nil {
			return datatypes.Date{}, err
		}

		return dateOf(t), nil
	}

	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOf(t), nil
		}
	}

	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOf(t.UTC()), nil
		}
	}

	return datatypes.Date{}, malformed("can not parse date %q", s)
}

func dateOf(t time.Time) datatypes.Date {
	return datatypes.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
}

// Metadata stores provider detail as a JSON object. A value that arrives as
// a JSON encoded string is decoded first so it is never double encoded.
func Metadata(values map[string]any) (datatypes.JSON, error) {
	clean := map[string]any{}

	for k, v := range values {
		if v == nil {
			continue
		}

		if s, ok := v.(string); ok {
			trimmed := strings.TrimSpace(s)
			if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
				var decoded any
				if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
					v = decoded
				}
			}
		}

		clean[k] = v
	}

	if len(clean) == 0 {
		return nil, nil
	}

	b, err := json.Marshal(clean)
	if err != nil {
		return nil, errors.Wrap(err, "can not encode metadata")
	}

	return datatypes.JSON(b), nil
}

func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}

	return ""
}

func decodeObjects(data []byte) ([]map[string]any, error) {
	var items []map[string]any

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		var single map[string]any
		if err := dec.Decode(&single); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "payload is not a json object"), common.ErrMalformedRecord)
		}

		return []map[string]any{single}, nil
	}

	if err := dec.Decode(&items); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "payload is not a json array"), common.ErrMalformedRecord)
	}

	return items, nil
}
