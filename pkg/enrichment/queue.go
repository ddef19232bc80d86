package enrichment

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/skynet2/finance-reconciler/pkg/common"
)

const (
	DefaultConcurrency = 4
	DefaultBatchLimit  = 100
	progressEvery      = 25
)

type Queue struct {
	repo        Repo
	pricing     map[string]Price
	concurrency int
	batchLimit  int
	mu          sync.RWMutex
	providers   map[string]ProviderFactory
}

type QueueOption func(q *Queue)

// WithBatchLimit sets how many candidates a batch takes when the request
// does not say.
func WithBatchLimit(limit int) QueueOption {
	return func(q *Queue) {
		if limit > 0 {
			q.batchLimit = limit
		}
	}
}

func NewQueue(
	repo Repo,
	pricing map[string]Price,
	concurrency int,
	opts ...QueueOption,
) *Queue {
	if pricing == nil {
		pricing = DefaultPricing
	}

	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	q := &Queue{
		repo:        repo,
		pricing:     pricing,
		concurrency: concurrency,
		batchLimit:  DefaultBatchLimit,
		providers:   map[string]ProviderFactory{},
	}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

func (q *Queue) RegisterProvider(name string, factory ProviderFactory) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.providers[name] = factory
}

func (q *Queue) Provider(name string, model string) (Provider, error) {
	q.mu.RLock()
	factory, ok := q.providers[name]
	q.mu.RUnlock()

	if !ok {
		return nil, errors.Newf("unknown enrichment provider %q", name)
	}

	return factory(model)
}

func (q *Queue) Providers() []string {
	q.mu.RLock()
	defer q.mu.RUnlock()

	names := make([]string, 0, len(q.providers))
	for name := range q.providers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (q *Queue) SelectCandidates(ctx context.Context, filter Filter) ([]*Item, error) {
	if filter.Limit <= 0 {
		filter.Limit = q.batchLimit
	}

	return q.repo.ListCandidates(ctx, filter)
}

func (q *Queue) EstimateCost(provider Provider, items []*Item) (decimal.Decimal, error) {
	return EstimateCents(q.pricing, provider, items)
}

// Estimate prices the batch a BatchRequest would process right now.
func (q *Queue) Estimate(ctx context.Context, req BatchRequest) (*Estimate, error) {
	provider, err := q.Provider(req.Provider, req.Model)
	if err != nil {
		return nil, err
	}

	items, err := q.SelectCandidates(ctx, Filter{Kinds: req.Kinds, Limit: req.Limit})
	if err != nil {
		return nil, err
	}

	cost, err := q.EstimateCost(provider, items)
	if err != nil {
		return nil, err
	}

	return &Estimate{
		Provider:  provider.Name(),
		Model:     provider.Model(),
		Items:     len(items),
		Free:      provider.IsFree(),
		CostCents: cost,
	}, nil
}

// Process classifies items with bounded concurrency. Outcomes are emitted as
// they finish and persisted before being sent. The channel closes when every
// item is done. Items not started before ctx is cancelled are not emitted.
func (q *Queue) Process(ctx context.Context, provider Provider, items []*Item) (<-chan *Outcome, *Totals) {
	out := make(chan *Outcome, len(items))
	totals := &Totals{}

	pool := workerpool.New(q.concurrency)

	for _, item := range items {
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}

			outcome := q.processOne(ctx, provider, item)
			if outcome == nil {
				return
			}

			totals.add(outcome)
			out <- outcome
		})
	}

	go func() {
		pool.StopWait()
		close(out)
	}()

	return out, totals
}

func (q *Queue) processOne(ctx context.Context, provider Provider, item *Item) *Outcome {
	lg := zerolog.Ctx(ctx).With().
		Str("item_kind", string(item.Kind)).
		Str("item_id", item.ID).
		Logger()

	outcome := &Outcome{
		Item:      item,
		Provider:  provider.Name(),
		CostCents: decimal.Zero,
	}

	cls, err := provider.Classify(context.WithoutCancel(ctx), item.Content)

	if ctx.Err() != nil {
		// the call finished after cancellation, its answer is thrown away
		return nil
	}

	outputTokens := outputTokensPerItem
	if cls != nil {
		outputTokens = cls.OutputTokens
	}

	if !provider.IsFree() {
		if price, ok := q.pricing[pricingKey(provider.Name(), provider.Model())]; ok {
			outcome.CostCents = price.CostCents(InputTokens(item.Content), outputTokens)
		}
	}

	if err != nil {
		outcome.Err = err
	} else {
		outcome.Category = cls.Category
		outcome.Confidence = cls.Confidence
	}

	if saveErr := q.repo.SaveOutcome(ctx, outcome); saveErr != nil {
		outcome.Err = errors.Join(outcome.Err, saveErr)
	}

	if outcome.Err != nil {
		lg.Warn().Err(outcome.Err).Msg("item enrichment failed")
	}

	return outcome
}

// Run is a full batch: select, price, check confirmation, process and report.
func (q *Queue) Run(ctx context.Context, req BatchRequest, reporter Reporter) (*BatchResult, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}

	provider, err := q.Provider(req.Provider, req.Model)
	if err != nil {
		return nil, err
	}

	items, err := q.SelectCandidates(ctx, Filter{Kinds: req.Kinds, Limit: req.Limit})
	if err != nil {
		return nil, err
	}

	cost, err := q.EstimateCost(provider, items)
	if err != nil {
		return nil, err
	}

	if !provider.IsFree() && !req.Confirm {
		return nil, errors.Wrapf(common.ErrConfirmationMissing, "estimated %s cents", cost.StringFixed(4))
	}

	if err = reporter.SetTotal(ctx, len(items)); err != nil {
		return nil, err
	}

	outcomes, totals := q.Process(ctx, provider, items)

	var (
		pending   common.Progress
		reportErr error
	)

	for outcome := range outcomes {
		pending.Processed++
		if outcome.Succeeded() {
			pending.Succeeded++
		} else {
			pending.Failed++
		}

		if pending.Processed >= progressEvery && reportErr == nil {
			reportErr = reporter.Advance(ctx, pending)
			pending = common.Progress{}
		}
	}

	result := totals.Snapshot()

	if reportErr != nil {
		return &result, reportErr
	}

	if ctx.Err() != nil {
		return &result, errors.Mark(errors.Wrap(ctx.Err(), "enrichment stopped"), common.ErrJobCancelled)
	}

	if pending != (common.Progress{}) {
		if err = reporter.Advance(ctx, pending); err != nil {
			return &result, err
		}
	}

	zerolog.Ctx(ctx).Info().
		Str("provider", provider.Name()).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Str("cost_cents", result.CostCents.StringFixed(4)).
		Msg("enrichment batch finished")

	return &result, nil
}
