package ingest

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/normalizer"
)

const progressEvery = 25

type Service struct {
	store    RecordStore
	tokens   TokenSource
	feed     BankFeed
	bank     *normalizer.Bank
	registry *normalizer.Registry
	clock    func() time.Time
}

func NewService(
	store RecordStore,
	tokens TokenSource,
	feed BankFeed,
	registry *normalizer.Registry,
) *Service {
	return &Service{
		store:    store,
		tokens:   tokens,
		feed:     feed,
		bank:     normalizer.NewBank(),
		registry: registry,
		clock:    time.Now,
	}
}

// Sync pulls the bank feed of one connection. Provider calls run on a context
// that is not cancelled with the job, a cancelled job lets them finish and
// throws their results away.
func (s *Service) Sync(ctx context.Context, req SyncRequest, reporter Reporter) (*Result, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}

	if req.SourceType != "" && req.SourceType != database.SourceBankFeed {
		return nil, errors.Wrapf(common.ErrUnsupportedSource, "%s can not be synced, import it instead", req.SourceType)
	}

	lg := zerolog.Ctx(ctx).With().Str("connection_id", req.ConnectionID).Logger()
	callCtx := context.WithoutCancel(ctx)

	token, err := s.tokens.GetValidAccessToken(ctx, req.ConnectionID)
	if err != nil {
		return nil, err
	}

	accounts, err := s.feed.ListAccounts(callCtx, token)
	if err != nil {
		return nil, err
	}

	if err = cancelled(ctx); err != nil {
		return nil, err
	}

	var results []*normalizer.Result

	for _, acc := range accounts {
		stored, err := s.store.EnsureBankAccount(ctx, &database.BankAccount{
			ConnectionID:      req.ConnectionID,
			ProviderAccountID: acc.AccountID,
			DisplayName:       acc.DisplayName,
			Currency:          normalizer.NormalizeCurrency(acc.Currency),
		})
		if err != nil {
			return nil, err
		}

		// long syncs may cross the token expiry
		token, err = s.tokens.GetValidAccessToken(ctx, req.ConnectionID)
		if err != nil {
			return nil, err
		}

		raw, err := s.feed.ListTransactions(callCtx, token, acc.AccountID, req.From, req.To)
		if err != nil {
			return nil, err
		}

		if err = cancelled(ctx); err != nil {
			return nil, err
		}

		lg.Debug().
			Str("account_id", stored.ID).
			Int("count", len(raw.Results)).
			Msg("fetched bank transactions")

		results = append(results, s.bank.Normalize(ctx, stored.ID, raw.Results)...)
	}

	res, err := process(ctx, s.store, results, reporter)
	if err != nil {
		return res, err
	}

	if err = s.tokens.MarkSynced(ctx, req.ConnectionID, s.clock()); err != nil {
		return res, err
	}

	lg.Info().
		Int("inserted", res.Inserted).
		Int("duplicate", res.Duplicate).
		Int("failed", res.Failed).
		Msg("bank feed synced")

	return res, nil
}

// Import stores a file or message batch that an external collaborator
// acquired, for example an order history export.
func (s *Service) Import(ctx context.Context, req ImportRequest, reporter Reporter) (*Result, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}

	n, err := s.registry.Get(req.SourceType)
	if err != nil {
		return nil, err
	}

	results, err := n.Normalize(ctx, req.Data)
	if err != nil {
		return nil, err
	}

	res, err := process(ctx, s.store, results, reporter)
	if err != nil {
		return res, err
	}

	zerolog.Ctx(ctx).Info().
		Str("source_type", string(req.SourceType)).
		Int("inserted", res.Inserted).
		Int("duplicate", res.Duplicate).
		Int("failed", res.Failed).
		Msg("import stored")

	return res, nil
}

func process(
	ctx context.Context,
	store RecordStore,
	results []*normalizer.Result,
	reporter Reporter,
) (*Result, error) {
	res := &Result{}

	if err := reporter.SetTotal(ctx, len(results)); err != nil {
		return res, err
	}

	var pending common.Progress

	flush := func() error {
		if pending == (common.Progress{}) {
			return nil
		}

		err := reporter.Advance(ctx, pending)
		pending = common.Progress{}

		return err
	}

	for _, item := range results {
		if err := cancelled(ctx); err != nil {
			return res, err
		}

		outcome, err := upsertResult(ctx, store, item)

		res.Processed++
		pending.Processed++

		switch {
		case err == nil && outcome == OutcomeInserted:
			res.Inserted++
			pending.Succeeded++
		case err == nil:
			res.Duplicate++
			pending.Duplicates++
		case errors.Is(err, common.ErrMalformedRecord) || errors.Is(err, common.ErrDanglingReference):
			res.Failed++
			pending.Failed++

			zerolog.Ctx(ctx).Warn().Err(err).Int("index", item.Index).Msg("record skipped")
		default:
			return res, err
		}

		if pending.Processed >= progressEvery {
			if err = flush(); err != nil {
				return res, err
			}
		}
	}

	return res, flush()
}

func upsertResult(ctx context.Context, store RecordStore, item *normalizer.Result) (Outcome, error) {
	switch {
	case item.Err != nil:
		return "", item.Err
	case item.Transaction != nil:
		return store.Upsert(ctx, item.Transaction)
	case item.Record != nil:
		return store.Upsert(ctx, item.Record)
	}

	return "", errors.Wrap(common.ErrMalformedRecord, "normalizer produced an empty result")
}

func cancelled(ctx context.Context) error {
	if ctx.Err() != nil {
		return errors.Mark(errors.Wrap(ctx.Err(), "results discarded"), common.ErrJobCancelled)
	}

	return nil
}
