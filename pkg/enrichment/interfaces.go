package enrichment

import (
	"context"

	"google.golang.org/genai"

	"github.com/skynet2/finance-reconciler/pkg/common"
)

//go:generate mockgen -destination interfaces_mocks_test.go -package enrichment_test -source=interfaces.go

type Provider interface {
	Name() string
	Model() string
	IsFree() bool
	Classify(ctx context.Context, content string) (*Classification, error)
}

type Repo interface {
	ListCandidates(ctx context.Context, filter Filter) ([]*Item, error)
	SaveOutcome(ctx context.Context, outcome *Outcome) error
}

// GenerativeModel is the part of genai.Models used by the Gemini provider.
type GenerativeModel interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

type Reporter interface {
	SetTotal(ctx context.Context, total int) error
	Advance(ctx context.Context, delta common.Progress) error
}
