package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/imroc/req/v3"
)

const DefaultTelegramURL = "https://api.telegram.org"

// maxMessageRunes is the longest text the bot api accepts.
const maxMessageRunes = 4096

type Telegram struct {
	client   *req.Client
	apiToken string
	baseURL  string
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func NewTelegram(
	apiToken string,
	cl *req.Client,
) *Telegram {
	return &Telegram{
		client:   cl,
		apiToken: apiToken,
		baseURL:  DefaultTelegramURL,
	}
}

// WithBaseURL points the bot at a self hosted bot api server.
func (t *Telegram) WithBaseURL(baseURL string) *Telegram {
	t.baseURL = strings.TrimRight(baseURL, "/")

	return t
}

func (t *Telegram) SendMessage(
	ctx context.Context,
	chatID int64,
	text string,
) error {
	var result telegramResponse

	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"chat_id":                  chatID,
			"text":                     truncate(text, maxMessageRunes),
			"disable_web_page_preview": true,
		}).
		SetSuccessResult(&result).
		SetErrorResult(&result).
		Post(fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.apiToken))
	if err != nil {
		return errors.Wrap(err, "failed to send telegram message")
	}

	if resp.IsErrorState() || !result.OK {
		return errors.Newf("telegram rejected message with status %v: %s", resp.StatusCode, result.Description)
	}

	return nil
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit-1]) + "…"
}
