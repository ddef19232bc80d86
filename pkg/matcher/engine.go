package matcher

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

const progressEvery = 25

type Engine struct {
	repo   Repo
	scorer *Scorer
	cfg    Config
}

func NewEngine(
	repo Repo,
	cfg Config,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		repo:   repo,
		scorer: NewScorer(cfg),
		cfg:    cfg,
	}, nil
}

// Match links transactions in scope to records of one source type. Per item
// failures are counted, only a failure to load the batch fails the call.
func (e *Engine) Match(ctx context.Context, req MatchRequest, reporter Reporter) (*MatchBatchResult, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}

	if !lo.Contains(database.EnrichmentSources, req.SourceType) {
		return nil, errors.Wrapf(common.ErrUnsupportedSource, "%q can not be matched", req.SourceType)
	}

	if ctx.Err() != nil {
		return nil, cancelled(ctx)
	}

	lg := zerolog.Ctx(ctx).With().Str("source_type", string(req.SourceType)).Logger()

	txs, err := e.repo.ListTransactions(ctx, TransactionFilter{
		IDs:       req.TransactionIDs,
		Direction: DirectionFor(req.SourceType),
		From:      req.From,
		To:        req.To,
	})
	if err != nil {
		return nil, err
	}

	result := &MatchBatchResult{}

	if err = reporter.SetTotal(ctx, len(txs)); err != nil {
		return nil, err
	}

	if len(txs) == 0 {
		return result, nil
	}

	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].Timestamp.Before(txs[j].Timestamp)
		}

		return txs[i].ID < txs[j].ID
	})

	existing, err := e.repo.PrimaryLinks(ctx, req.SourceType, lo.Map(txs, func(tx *database.CanonicalTransaction, _ int) string {
		return tx.ID
	}))
	if err != nil {
		return nil, err
	}

	p, err := e.loadPool(ctx, req.SourceType, txs)
	if err != nil {
		return nil, err
	}

	var pending common.Progress

	for _, tx := range txs {
		if ctx.Err() != nil {
			return result, cancelled(ctx)
		}

		linked, itemErr := e.matchOne(ctx, tx, existing[tx.ID], p)

		result.Processed++
		pending.Processed++

		switch {
		case itemErr != nil:
			result.Failed++
			pending.Failed++

			lg.Warn().Err(itemErr).Str("transaction_id", tx.ID).Msg("can not match transaction")
		case linked == outcomeMatched:
			result.Matched++
			pending.Succeeded++
		case linked == outcomeUpgraded:
			result.Matched++
			result.Upgraded++
			pending.Succeeded++
		case linked == outcomeSkipped:
			result.Skipped++
		default:
			result.Unmatched++
		}

		if pending.Processed >= progressEvery {
			if err = reporter.Advance(ctx, pending); err != nil {
				return result, err
			}

			pending = common.Progress{}
		}
	}

	if pending != (common.Progress{}) {
		if err = reporter.Advance(ctx, pending); err != nil {
			return result, err
		}
	}

	lg.Info().
		Int("processed", result.Processed).
		Int("matched", result.Matched).
		Int("unmatched", result.Unmatched).
		Int("failed", result.Failed).
		Msg("matching finished")

	return result, nil
}

func cancelled(ctx context.Context) error {
	return errors.Mark(errors.Wrap(ctx.Err(), "matching stopped"), common.ErrJobCancelled)
}

type outcome int

const (
	outcomeUnmatched outcome = iota
	outcomeMatched
	outcomeUpgraded
	outcomeSkipped
)

func (e *Engine) matchOne(
	ctx context.Context,
	tx *database.CanonicalTransaction,
	current *database.EnrichmentLink,
	p *pool,
) (outcome, error) {
	upgrading := false

	if current != nil {
		if current.UserVerified || e.cfg.RematchPolicy != RematchUpgradeUnverified {
			return outcomeSkipped, nil
		}

		upgrading = true
	}

	ranked := e.scorer.Rank(tx, p.available())
	if len(ranked) == 0 {
		if upgrading {
			return outcomeSkipped, nil
		}

		return outcomeUnmatched, nil
	}

	best := ranked[0]

	if upgrading && best.Confidence <= current.Confidence {
		return outcomeSkipped, nil
	}

	m := &Match{
		Primary: newLink(tx, best, true),
		Status:  database.PreEnrichmentFor(best.Source.Type),
	}

	if upgrading {
		m.Replaces = current
	} else {
		for _, alt := range lo.Slice(ranked, 1, 1+e.cfg.KeepAlternatives) {
			m.Alternatives = append(m.Alternatives, newLink(tx, alt, false))
		}
	}

	if err := e.repo.SaveMatch(ctx, m); err != nil {
		if errors.Is(err, ErrAlreadyLinked) || errors.Is(err, ErrLinkChanged) {
			// a concurrent run got there first
			p.take(best.Source.ID)

			return outcomeSkipped, nil
		}

		return outcomeUnmatched, err
	}

	p.take(best.Source.ID)

	if upgrading {
		return outcomeUpgraded, nil
	}

	return outcomeMatched, nil
}

func newLink(tx *database.CanonicalTransaction, c Candidate, primary bool) *database.EnrichmentLink {
	return &database.EnrichmentLink{
		TransactionID: tx.ID,
		SourceType:    c.Source.Type,
		SourceID:      c.Source.ID,
		Confidence:    c.Confidence,
		MatchMethod:   c.Method,
		IsPrimary:     primary,
	}
}

func (e *Engine) loadPool(ctx context.Context, sourceType database.SourceType, txs []*database.CanonicalTransaction) (*pool, error) {
	window := time.Duration(e.cfg.window(sourceType)) * 24 * time.Hour

	first := txs[0].Timestamp.UTC()
	last := txs[len(txs)-1].Timestamp.UTC()

	from := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC).Add(-window)
	to := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC).Add(window)

	records, err := e.repo.ListCandidates(ctx, sourceType, from, to)
	if err != nil {
		return nil, err
	}

	return newPool(lo.Map(records, func(r database.SourceRecord, _ int) database.SourceSummary {
		return database.Summarize(r)
	})), nil
}

// Verify marks a link as confirmed by a human, rematching never replaces it.
func (e *Engine) Verify(ctx context.Context, linkID string) (*database.EnrichmentLink, error) {
	if err := e.repo.SetVerified(ctx, linkID); err != nil {
		return nil, err
	}

	return e.repo.GetLink(ctx, linkID)
}

func (e *Engine) Links(ctx context.Context, transactionID string) ([]*database.EnrichmentLink, error) {
	return e.repo.ListLinks(ctx, transactionID)
}

// Resolve loads the typed record a link points to.
func (e *Engine) Resolve(ctx context.Context, link *database.EnrichmentLink) (database.SourceRecord, error) {
	return e.repo.GetSource(ctx, link.SourceType, link.SourceID)
}

// pool holds the unlinked candidates of a batch. Taken records are not offered
// to later transactions of the same batch.
type pool struct {
	items []database.SourceSummary
	taken map[string]struct{}
}

func newPool(items []database.SourceSummary) *pool {
	return &pool{
		items: items,
		taken: map[string]struct{}{},
	}
}

func (p *pool) available() []database.SourceSummary {
	return lo.Filter(p.items, func(s database.SourceSummary, _ int) bool {
		_, taken := p.taken[s.ID]
		return !taken
	})
}

func (p *pool) take(id string) {
	p.taken[id] = struct{}{}
}
