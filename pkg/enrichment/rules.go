package enrichment

import (
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/skynet2/finance-reconciler/pkg/common"
)

const (
	RulesProvider = "rules"
	rulesModel    = "keywords"
	ruleHitScore  = 70
)

var DefaultRules = map[string][]string{
	"groceries":     {"tesco", "sainsbury", "asda", "aldi", "lidl", "waitrose", "morrisons", "ocado"},
	"subscriptions": {"netflix", "spotify", "disney", "icloud", "youtube premium", "prime video"},
	"transport":     {"uber", "tfl", "trainline", "bolt", "shell", "bp "},
	"dining":        {"deliveroo", "just eat", "mcdonald", "starbucks", "pret", "costa"},
	"shopping":      {"amazon", "ebay", "argos", "ikea", "john lewis"},
	"utilities":     {"octopus energy", "british gas", "thames water", "vodafone", "ee limited"},
	"travel":        {"booking.com", "airbnb", "easyjet", "ryanair", "british airways"},
}

// Rules categorises by keyword. It is deterministic and costs nothing.
type Rules struct {
	rules      map[string][]string
	categories []string
}

func NewRules(rules map[string][]string) *Rules {
	if rules == nil {
		rules = DefaultRules
	}

	categories := make([]string, 0, len(rules))
	for c := range rules {
		categories = append(categories, c)
	}

	sort.Strings(categories)

	return &Rules{
		rules:      rules,
		categories: categories,
	}
}

func (r *Rules) Name() string  { return RulesProvider }
func (r *Rules) Model() string { return rulesModel }
func (r *Rules) IsFree() bool  { return true }

func (r *Rules) Classify(_ context.Context, content string) (*Classification, error) {
	text := strings.ToLower(content)

	for _, category := range r.categories {
		for _, keyword := range r.rules[category] {
			if strings.Contains(text, keyword) {
				return &Classification{
					Category:   category,
					Confidence: ruleHitScore,
				}, nil
			}
		}
	}

	return nil, errors.Wrap(common.ErrMalformedRecord, "no keyword rule matched")
}
