package enrichment

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"google.golang.org/genai"

	"github.com/skynet2/finance-reconciler/pkg/common"
)

const (
	GeminiProvider     = "gemini"
	DefaultGeminiModel = "gemini-2.0-flash"
)

const classifyPrompt = `You categorise personal finance records.
Answer with a single JSON object and nothing else:
{"category": "<one of: groceries, shopping, electronics, subscriptions, travel, transport, dining, utilities, health, entertainment, education, other>", "confidence": <integer 0-100>}

Record:
`

type Gemini struct {
	models GenerativeModel
	model  string
}

func NewGemini(models GenerativeModel, model string) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}

	return &Gemini{
		models: models,
		model:  model,
	}
}

func (g *Gemini) Name() string  { return GeminiProvider }
func (g *Gemini) Model() string { return g.model }
func (g *Gemini) IsFree() bool  { return false }

func (g *Gemini) Classify(ctx context.Context, content string) (*Classification, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: classifyPrompt + content},
			},
		},
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "gemini generate content"), common.ErrTransientProvider)
	}

	raw := resp.Text()
	if strings.TrimSpace(raw) == "" {
		return nil, errors.Wrap(common.ErrMalformedRecord, "empty answer from gemini")
	}

	var cls Classification
	if err = json.Unmarshal([]byte(cleanModelJSON(raw)), &cls); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "gemini answer is not json"), common.ErrMalformedRecord)
	}

	if err = cls.validate(); err != nil {
		return nil, err
	}

	cls.OutputTokens = OutputTokens(raw)

	return &cls, nil
}

func (c *Classification) validate() error {
	c.Category = strings.ToLower(strings.TrimSpace(c.Category))
	if c.Category == "" {
		return errors.Wrap(common.ErrMalformedRecord, "answer has no category")
	}

	c.Confidence = min(max(c.Confidence, 0), 100)

	return nil
}

// cleanModelJSON strips markdown fences and text around the object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}

	return strings.TrimSpace(s)
}
