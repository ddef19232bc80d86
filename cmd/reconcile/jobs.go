package main

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/skynet2/finance-reconciler/pkg/database"
)

func (a *app) jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and cancel jobs",
	}

	cmd.AddCommand(a.jobsGetCmd())
	cmd.AddCommand(a.jobsListCmd())
	cmd.AddCommand(a.jobsCancelCmd())
	cmd.AddCommand(a.jobsWaitCmd())

	return cmd
}

func (a *app) jobsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [job-id]",
		Short: "Show the status of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.client.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), view)
		},
	}
}

func (a *app) jobsListCmd() *cobra.Command {
	var (
		jobType  string
		statuses []string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			views, err := a.client.ListJobs(cmd.Context(), jobType, statuses, limit)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), views)
		},
	}

	cmd.Flags().StringVarP(&jobType, "type", "t", "", "job type (sync, import, match, enrich)")
	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "filter by status")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum results")

	return cmd
}

func (a *app) jobsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [job-id]",
		Short: "Request cooperative cancellation of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.client.CancelJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), view)
		},
	}
}

func (a *app) jobsWaitCmd() *cobra.Command {
	var (
		interval time.Duration
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait [job-id]",
		Short: "Poll a job until it completes or fails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deadline := time.Now().Add(timeout)

			for {
				view, err := a.client.GetJob(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				if view.Status.Terminal() {
					if err = printJSON(cmd.OutOrStdout(), view); err != nil {
						return err
					}

					if view.Status == database.JobFailed {
						return errors.Newf("job failed: %s", view.ErrorMessage)
					}

					return nil
				}

				if time.Now().After(deadline) {
					return errors.Newf("job %s still %s after %s", view.ID, view.Status, timeout)
				}

				cmd.PrintErrf("%s %s %.1f%%\n", view.ID, view.Status, view.ProgressPercentage)

				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(interval):
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "give up after")

	return cmd
}
