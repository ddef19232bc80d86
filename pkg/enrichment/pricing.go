package enrichment

import (
	"fmt"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

const (
	charsPerToken        = 4
	promptOverheadTokens = 150
	outputTokensPerItem  = 40
)

var (
	million = decimal.NewFromInt(1_000_000)
	hundred = decimal.NewFromInt(100)
)

// Price is USD per million tokens.
type Price struct {
	Input  decimal.Decimal
	Output decimal.Decimal
}

var DefaultPricing = map[string]Price{
	"gemini/gemini-2.0-flash": {
		Input:  decimal.RequireFromString("0.10"),
		Output: decimal.RequireFromString("0.40"),
	},
	"gemini/gemini-2.5-flash": {
		Input:  decimal.RequireFromString("0.30"),
		Output: decimal.RequireFromString("2.50"),
	},
	"gemini/gemini-2.5-pro": {
		Input:  decimal.RequireFromString("1.25"),
		Output: decimal.RequireFromString("10.00"),
	},
}

func pricingKey(provider string, model string) string {
	return fmt.Sprintf("%s/%s", provider, model)
}

// InputTokens approximates the prompt size of one item without calling the provider.
func InputTokens(content string) int {
	chars := utf8.RuneCountInString(content)

	return (chars+charsPerToken-1)/charsPerToken + promptOverheadTokens
}

func OutputTokens(answer string) int {
	return (utf8.RuneCountInString(answer) + charsPerToken - 1) / charsPerToken
}

func (p Price) CostCents(inputTokens int, outputTokens int) decimal.Decimal {
	usd := p.Input.Mul(decimal.NewFromInt(int64(inputTokens))).
		Add(p.Output.Mul(decimal.NewFromInt(int64(outputTokens)))).
		Div(million)

	return usd.Mul(hundred)
}

// EstimateCents prices items for a provider. A free provider costs zero
// whatever the pricing table says.
func EstimateCents(pricing map[string]Price, provider Provider, items []*Item) (decimal.Decimal, error) {
	if provider.IsFree() {
		return decimal.Zero, nil
	}

	price, ok := pricing[pricingKey(provider.Name(), provider.Model())]
	if !ok {
		return decimal.Zero, errors.Newf("no pricing for %s model %s", provider.Name(), provider.Model())
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(price.CostCents(InputTokens(item.Content), outputTokensPerItem))
	}

	return total, nil
}
