package truelayer

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/imroc/req/v3"

	"github.com/skynet2/finance-reconciler/pkg/common"
)

const (
	LiveAuthURL = "https://auth.truelayer.com"
	LiveAPIURL  = "https://api.truelayer.com"

	ProviderID = "truelayer"
)

type Config struct {
	AuthURL      string
	APIURL       string
	ClientID     string
	ClientSecret string
}

type Client struct {
	cl    *req.Client
	cfg   Config
	clock func() time.Time
}

func NewClient(
	cfg Config,
	cl *req.Client,
) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = LiveAuthURL
	}

	if cfg.APIURL == "" {
		cfg.APIURL = LiveAPIURL
	}

	return &Client{
		cl:    cl,
		cfg:   cfg,
		clock: time.Now,
	}
}

// NewHTTPClient builds a req client that retries rate limited and failed
// upstream calls with backoff before the error reaches the caller.
func NewHTTPClient(retries int, minBackoff time.Duration, maxBackoff time.Duration) *req.Client {
	return req.C().
		SetTimeout(30 * time.Second).
		SetCommonRetryCount(retries).
		SetCommonRetryBackoffInterval(minBackoff, maxBackoff).
		SetCommonRetryCondition(func(resp *req.Response, err error) bool {
			if err != nil {
				return true
			}

			if resp == nil || resp.Response == nil {
				return false
			}

			return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
		})
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*common.TokenSet, error) {
	return c.token(ctx, map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
		"refresh_token": refreshToken,
	})
}

func (c *Client) ExchangeCode(ctx context.Context, code string, redirectURI string) (*common.TokenSet, error) {
	return c.token(ctx, map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
		"redirect_uri":  redirectURI,
		"code":          code,
	})
}

func (c *Client) token(ctx context.Context, form map[string]string) (*common.TokenSet, error) {
	var tokenResp tokenResponse
	var errResp errorResponse

	resp, err := c.cl.R().
		SetContext(ctx).
		SetFormData(form).
		SetSuccessResult(&tokenResp).
		SetErrorResult(&errResp).
		Post(c.cfg.AuthURL + "/connect/token")
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "token exchange failed"), common.ErrTransientProvider)
	}

	if resp.IsErrorState() {
		if errResp.Error == "invalid_grant" || resp.StatusCode == http.StatusUnauthorized {
			return nil, errors.Wrapf(common.ErrAuthExpired, "token endpoint rejected grant: %s", errResp.Error)
		}

		return nil, classify(resp)
	}

	if tokenResp.AccessToken == "" {
		return nil, errors.Wrap(common.ErrTransientProvider, "token endpoint returned no access token")
	}

	return &common.TokenSet{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresAt:    c.clock().UTC().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}, nil
}

func (c *Client) ListAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	var apiResp GenericResponse[Account]

	if err := c.get(ctx, accessToken, "/data/v1/accounts", nil, &apiResp); err != nil {
		return nil, err
	}

	return apiResp.Results, nil
}

func (c *Client) ListTransactions(
	ctx context.Context,
	accessToken string,
	accountID string,
	from time.Time,
	to time.Time,
) (*RawTransactions, error) {
	query := map[string]string{}

	if !from.IsZero() {
		query["from"] = from.UTC().Format(time.RFC3339)
	}

	if !to.IsZero() {
		query["to"] = to.UTC().Format(time.RFC3339)
	}

	var apiResp RawTransactions

	if err := c.get(ctx, accessToken, "/data/v1/accounts/"+accountID+"/transactions", query, &apiResp); err != nil {
		return nil, err
	}

	return &apiResp, nil
}

func (c *Client) get(
	ctx context.Context,
	accessToken string,
	path string,
	query map[string]string,
	target any,
) error {
	resp, err := c.cl.R().
		SetContext(ctx).
		SetBearerAuthToken(accessToken).
		SetQueryParams(query).
		SetSuccessResult(target).
		Get(c.cfg.APIURL + path)
	if err != nil {
		if ctx.Err() != nil {
			return errors.WithStack(ctx.Err())
		}

		return errors.Mark(errors.Wrapf(err, "request %s failed", path), common.ErrTransientProvider)
	}

	if resp.IsErrorState() {
		return classify(resp)
	}

	return nil
}

// classify maps a final error response onto the error taxonomy. Response
// bodies stay out of the error, they may echo account data.
func classify(resp *req.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.Wrapf(common.ErrAuthExpired, "provider returned %d", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return errors.Wrapf(common.ErrTransientProvider, "provider returned %d", resp.StatusCode)
	}

	return errors.Newf("unexpected provider response %d", resp.StatusCode)
}
