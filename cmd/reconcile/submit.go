package main

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/skynet2/finance-reconciler/pkg/api"
	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/enrichment"
	"github.com/skynet2/finance-reconciler/pkg/matcher"
)

func (a *app) syncCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "sync [connection-id]",
		Short: "Queue a bank feed sync for a connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromAt, err := parseDay(from)
			if err != nil {
				return err
			}

			toAt, err := parseDayEnd(to)
			if err != nil {
				return err
			}

			view, err := a.client.SubmitSync(cmd.Context(), args[0], fromAt, toAt)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day to fetch (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day to fetch (YYYY-MM-DD)")

	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [source-type] [file]",
		Short: "Queue an import of an exported file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return errors.Wrapf(err, "can not read %s", args[1])
			}

			view, err := a.client.SubmitImport(cmd.Context(), database.SourceType(args[0]), data)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), view)
		},
	}
}

func (a *app) matchCmd() *cobra.Command {
	var (
		from, to       string
		transactionIDs []string
	)

	cmd := &cobra.Command{
		Use:   "match [source-type]",
		Short: "Queue a matching run against one source type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromAt, err := parseDay(from)
			if err != nil {
				return err
			}

			toAt, err := parseDayEnd(to)
			if err != nil {
				return err
			}

			view, err := a.client.SubmitMatch(cmd.Context(), matcher.MatchRequest{
				SourceType:     database.SourceType(args[0]),
				TransactionIDs: transactionIDs,
				From:           fromAt,
				To:             toAt,
			})
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first transaction day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last transaction day (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&transactionIDs, "transaction", nil, "only match these transactions")

	return cmd
}

func (a *app) enrichCmd() *cobra.Command {
	batch := enrichment.BatchRequest{}

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Queue categorisation of pending receipts and transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := a.client.SubmitEnrich(cmd.Context(), batch)

			var estimateErr *api.EstimateError
			if errors.Is(err, common.ErrConfirmationMissing) && errors.As(err, &estimateErr) {
				if printErr := printJSON(cmd.OutOrStdout(), estimateErr.Estimate); printErr != nil {
					return printErr
				}

				return errors.New("re-run with --confirm to accept the estimated cost")
			}

			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), view)
		},
	}

	addBatchFlags(cmd, &batch)
	cmd.Flags().BoolVar(&batch.Confirm, "confirm", false, "accept the estimated cost")

	estimateCmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the cost of an enrichment batch without running it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			estimate, err := a.client.EstimateEnrich(cmd.Context(), batch)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), estimate)
		},
	}

	addBatchFlags(estimateCmd, &batch)
	cmd.AddCommand(estimateCmd)

	return cmd
}

func addBatchFlags(cmd *cobra.Command, batch *enrichment.BatchRequest) {
	cmd.Flags().StringVarP(&batch.Provider, "provider", "p", enrichment.GeminiProvider, "enrichment provider")
	cmd.Flags().StringVarP(&batch.Model, "model", "m", "", "provider model")
	cmd.Flags().IntVarP(&batch.Limit, "limit", "n", 0, "maximum items in the batch")
}

func (a *app) linksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Manage enrichment links",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "verify [link-id]",
		Short: "Mark a link as confirmed by the user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := a.client.VerifyLink(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), link)
		},
	})

	return cmd
}

func parseDay(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "%q is not a YYYY-MM-DD day", value)
	}

	return t, nil
}

// parseDayEnd returns the last instant of the day so that --to is inclusive.
func parseDayEnd(value string) (time.Time, error) {
	t, err := parseDay(value)
	if err != nil || t.IsZero() {
		return t, err
	}

	return t.Add(24*time.Hour - time.Nanosecond), nil
}
