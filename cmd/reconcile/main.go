package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/imroc/req/v3"
	"github.com/spf13/cobra"

	"github.com/skynet2/finance-reconciler/pkg/api"
)

type app struct {
	baseURL string
	apiKey  string
	client  *api.Client
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "reconcile",
		Short:         "Operator cli for the reconciliation server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			a.client = api.NewClient(a.baseURL, a.apiKey, req.C().SetTimeout(60*time.Second))
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.baseURL, "url", envOr("RECONCILE_URL", "http://localhost:8080"), "server base url")
	rootCmd.PersistentFlags().StringVar(&a.apiKey, "api-key", os.Getenv("API_KEY"), "server api key")

	rootCmd.AddCommand(a.connectionsCmd())
	rootCmd.AddCommand(a.jobsCmd())
	rootCmd.AddCommand(a.syncCmd())
	rootCmd.AddCommand(a.importCmd())
	rootCmd.AddCommand(a.matchCmd())
	rootCmd.AddCommand(a.enrichCmd())
	rootCmd.AddCommand(a.linksCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func envOr(key string, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
