package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/skynet2/finance-reconciler/pkg/matcher"
	"github.com/skynet2/finance-reconciler/pkg/truelayer"
)

type Config struct {
	ListenAddr  string `env:"LISTEN_ADDR" envDefault:":8080"`
	HandlerPort string `env:"FUNCTIONS_CUSTOMHANDLER_PORT"`
	APIKey      string `env:"API_KEY"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY"`

	PostgresDSN        string `env:"POSTGRES_CONNECTION_STRING,required"`
	TokenEncryptionKey string `env:"TOKEN_ENCRYPTION_KEY,required"`
	DefaultCurrency    string `env:"DEFAULT_CURRENCY" envDefault:"GBP"`

	TrueLayer TrueLayer `envPrefix:"TRUELAYER_"`

	RefreshBuffer  time.Duration `env:"TOKEN_REFRESH_BUFFER" envDefault:"5m"`
	WebhookSecrets []string      `env:"WEBHOOK_SECRETS" envSeparator:","`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`

	EnrichmentConcurrency int `env:"ENRICHMENT_CONCURRENCY" envDefault:"4"`
	EnrichmentBatchSize   int `env:"ENRICHMENT_BATCH_SIZE" envDefault:"100"`
	EnrichmentMaxRetries  int `env:"ENRICHMENT_MAX_RETRIES" envDefault:"3"`

	MatchMinConfidence    int             `env:"MATCH_MIN_CONFIDENCE" envDefault:"60"`
	MatchAmountTolerance  decimal.Decimal `env:"MATCH_AMOUNT_TOLERANCE" envDefault:"0"`
	MatchRematchPolicy    string          `env:"MATCH_REMATCH_POLICY" envDefault:"keep"`
	MatchKeepAlternatives int             `env:"MATCH_KEEP_ALTERNATIVES" envDefault:"0"`

	JobWorkers int `env:"JOB_WORKERS" envDefault:"4"`

	CosmoConnectionString string `env:"COSMO_DB_CONNECTION_STRING"`
	CosmoDBName           string `env:"COSMO_DB_NAME" envDefault:"reconciler"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`
}

type TrueLayer struct {
	ClientID     string        `env:"CLIENT_ID"`
	ClientSecret string        `env:"CLIENT_SECRET"`
	AuthURL      string        `env:"AUTH_URL" envDefault:"https://auth.truelayer.com"`
	APIURL       string        `env:"API_URL" envDefault:"https://api.truelayer.com"`
	RetryCount   int           `env:"RETRY_COUNT" envDefault:"3"`
	MinBackoff   time.Duration `env:"RETRY_MIN_BACKOFF" envDefault:"500ms"`
	MaxBackoff   time.Duration `env:"RETRY_MAX_BACKOFF" envDefault:"10s"`
}

// Load reads the optional dotenv files (".env" when none are given) and then
// the process environment. Variables already set in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to load %s", f)
		}
	}

	return parse(env.Options{})
}

// FromMap parses cfg from vars only, ignoring the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	if _, err := cfg.Matcher(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Addr prefers the port handed over by the functions host.
func (c *Config) Addr() string {
	if c.HandlerPort != "" {
		return ":" + c.HandlerPort
	}

	return c.ListenAddr
}

func (c *Config) Matcher() (matcher.Config, error) {
	cfg := matcher.DefaultConfig()

	cfg.MinConfidence = c.MatchMinConfidence
	cfg.AmountTolerance = c.MatchAmountTolerance
	cfg.RematchPolicy = matcher.RematchPolicy(c.MatchRematchPolicy)
	cfg.KeepAlternatives = c.MatchKeepAlternatives

	if err := cfg.Validate(); err != nil {
		return matcher.Config{}, errors.Wrap(err, "invalid matching config")
	}

	return cfg, nil
}

func (c *Config) TrueLayerClient() truelayer.Config {
	return truelayer.Config{
		AuthURL:      c.TrueLayer.AuthURL,
		APIURL:       c.TrueLayer.APIURL,
		ClientID:     c.TrueLayer.ClientID,
		ClientSecret: c.TrueLayer.ClientSecret,
	}
}

// Webhooks maps each push provider to its accepted secrets.
func (c *Config) Webhooks() map[string][]string {
	if len(c.WebhookSecrets) == 0 {
		return map[string][]string{}
	}

	return map[string][]string{
		truelayer.ProviderID: c.WebhookSecrets,
	}
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func (c *Config) CosmoEnabled() bool {
	return c.CosmoConnectionString != ""
}
