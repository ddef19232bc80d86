package matcher

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/skynet2/finance-reconciler/pkg/database"
)

const hoursPerDay = 24

// fuzzy token similarity never scores as high as a shared token
const fuzzyScale = 0.8

var stopTokens = map[string]struct{}{
	"card": {}, "payment": {}, "purchase": {}, "pos": {}, "the": {}, "and": {},
	"ltd": {}, "limited": {}, "www": {}, "com": {}, "gbp": {}, "eur": {}, "usd": {},
	"ref": {}, "order": {}, "from": {}, "debit": {}, "credit": {}, "visa": {},
}

type Candidate struct {
	Source     database.SourceSummary
	Confidence int
	Method     database.MatchMethod
	AmountDiff decimal.Decimal
	DayDiff    int
}

type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{
		cfg: cfg,
	}
}

// Score rates one candidate. It returns false when the candidate is outside
// the date window, the amount tolerance or the currency.
func (s *Scorer) Score(tx *database.CanonicalTransaction, src database.SourceSummary) (Candidate, bool) {
	if !strings.EqualFold(tx.Currency, src.Currency) || !src.Amount.IsPositive() {
		return Candidate{}, false
	}

	diff := tx.Amount.Abs().Sub(src.Amount.Abs()).Abs()

	var amountScore float64
	method := database.MatchExactAmount

	switch {
	case diff.IsZero():
		amountScore = 1
	case s.cfg.AmountTolerance.IsPositive() && diff.LessThanOrEqual(s.cfg.AmountTolerance):
		ratio, _ := diff.Div(s.cfg.AmountTolerance).Float64()
		amountScore = 1 - ratio*0.5
		method = database.MatchTolerantAmount
	default:
		return Candidate{}, false
	}

	window := s.cfg.window(src.Type)

	days := dayDiff(tx.Timestamp, src.Date)
	if days > window {
		return Candidate{}, false
	}

	dateScore := 1 - float64(days)/float64(window+1)
	textScore := TextScore(tx.MatchText(), src.Description)

	w := s.cfg.Weights
	total := w.Amount + w.Date + w.Text
	score := (w.Amount*amountScore + w.Date*dateScore + w.Text*textScore) / total

	return Candidate{
		Source:     src,
		Confidence: int(math.Round(score * 100)),
		Method:     method,
		AmountDiff: diff,
		DayDiff:    days,
	}, true
}

// Rank filters candidates below the confidence floor and orders the rest,
// exact amounts first, then confidence, earliest source date and id.
func (s *Scorer) Rank(tx *database.CanonicalTransaction, sources []database.SourceSummary) []Candidate {
	var exact, tolerant []Candidate

	for _, src := range sources {
		c, ok := s.Score(tx, src)
		if !ok || c.Confidence < s.cfg.MinConfidence {
			continue
		}

		if c.Method == database.MatchExactAmount {
			exact = append(exact, c)
		} else {
			tolerant = append(tolerant, c)
		}
	}

	sortCandidates(exact)
	sortCandidates(tolerant)

	return append(exact, tolerant...)
}

func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}

		if !a.Source.Date.Equal(b.Source.Date) {
			return a.Source.Date.Before(b.Source.Date)
		}

		return a.Source.ID < b.Source.ID
	})
}

func dayDiff(ts time.Time, date time.Time) int {
	u := ts.UTC()
	txDay := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	srcDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	return int(math.Abs(txDay.Sub(srcDay).Hours()) / hoursPerDay)
}

// TextScore compares bank text with source text in 0..1. A shared token
// gives full marks relative to the shorter side, otherwise the closest pair
// of tokens by edit distance counts with a discount.
func TextScore(a string, b string) float64 {
	left := tokens(a)
	right := tokens(b)

	if len(left) == 0 || len(right) == 0 {
		return 0
	}

	rightSet := map[string]struct{}{}
	for _, t := range right {
		rightSet[t] = struct{}{}
	}

	shared := 0
	for _, t := range left {
		if _, ok := rightSet[t]; ok {
			shared++
		}
	}

	containment := float64(shared) / float64(min(len(left), len(right)))
	if containment >= 1 {
		return 1
	}

	best := 0.0
	for _, l := range left {
		for _, r := range right {
			ratio := levenshtein.RatioForStrings([]rune(l), []rune(r), levenshtein.DefaultOptions)
			best = math.Max(best, ratio)
		}
	}

	return math.Max(containment, best*fuzzyScale)
}

func tokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := map[string]struct{}{}
	var result []string

	for _, f := range fields {
		if len(f) < 3 {
			continue
		}

		if _, stop := stopTokens[f]; stop {
			continue
		}

		if _, dup := seen[f]; dup {
			continue
		}

		seen[f] = struct{}{}
		result = append(result, f)
	}

	return result
}
