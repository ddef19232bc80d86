package main

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
	"gorm.io/gorm"

	"github.com/skynet2/finance-reconciler/pkg/config"
	"github.com/skynet2/finance-reconciler/pkg/enrichment"
	"github.com/skynet2/finance-reconciler/pkg/repo"
	"github.com/skynet2/finance-reconciler/pkg/webhook"
)

func registerProviders(ctx context.Context, cfg *config.Config, queue *enrichment.Queue) error {
	queue.RegisterProvider(enrichment.RulesProvider, func(string) (enrichment.Provider, error) {
		return enrichment.NewRules(nil), nil
	})

	if cfg.GeminiAPIKey == "" {
		zerolog.Ctx(ctx).Warn().Msg("GEMINI_API_KEY not set, only the rules provider is available")

		return nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create genai client")
	}

	queue.RegisterProvider(enrichment.GeminiProvider, func(model string) (enrichment.Provider, error) {
		if model == "" {
			model = cfg.GeminiModel
		}

		return enrichment.NewGemini(client.Models, model), nil
	})

	return nil
}

// newInbox keeps webhook deliveries in cosmos when it is configured and in
// postgres otherwise.
func newInbox(cfg *config.Config, db *gorm.DB) (webhook.Inbox, error) {
	if !cfg.CosmoEnabled() {
		return repo.NewGorm(db), nil
	}

	client, err := azcosmos.NewClientFromConnectionString(cfg.CosmoConnectionString, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cosmos client")
	}

	inbox, err := repo.NewCosmo(client, cfg.CosmoDBName)
	if err != nil {
		return nil, err
	}

	return inbox, nil
}
