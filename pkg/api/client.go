package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/imroc/req/v3"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/enrichment"
	"github.com/skynet2/finance-reconciler/pkg/matcher"
)

// Client talks to a running server. It is what the operator cli uses.
type Client struct {
	cl      *req.Client
	baseURL string
	apiKey  string
}

func NewClient(
	baseURL string,
	apiKey string,
	cl *req.Client,
) *Client {
	return &Client{
		cl:      cl,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type EstimateError struct {
	Estimate *enrichment.Estimate
}

func (e *EstimateError) Error() string {
	return fmt.Sprintf("cost confirmation required: estimated %s cents for %d items",
		e.Estimate.CostCents.StringFixed(4), e.Estimate.Items)
}

func (c *Client) GetJob(ctx context.Context, id string) (*database.JobView, error) {
	var view database.JobView

	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(id), nil, nil, &view); err != nil {
		return nil, err
	}

	return &view, nil
}

func (c *Client) ListJobs(
	ctx context.Context,
	jobType string,
	statuses []string,
	limit int,
) ([]database.JobView, error) {
	query := map[string]string{}

	if jobType != "" {
		query["type"] = jobType
	}

	if len(statuses) > 0 {
		query["status"] = strings.Join(statuses, ",")
	}

	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}

	var views []database.JobView

	if err := c.do(ctx, http.MethodGet, "/api/jobs", query, nil, &views); err != nil {
		return nil, err
	}

	return views, nil
}

func (c *Client) CancelJob(ctx context.Context, id string) (*database.JobView, error) {
	var view database.JobView

	if err := c.do(ctx, http.MethodPost, "/api/jobs/"+url.PathEscape(id)+"/cancel", nil, nil, &view); err != nil {
		return nil, err
	}

	return &view, nil
}

func (c *Client) SubmitSync(ctx context.Context, connectionID string, from time.Time, to time.Time) (*database.JobView, error) {
	body := map[string]any{}

	if !from.IsZero() {
		body["from"] = from.UTC()
	}

	if !to.IsZero() {
		body["to"] = to.UTC()
	}

	var view database.JobView

	path := "/api/connections/" + url.PathEscape(connectionID) + "/sync/" + string(database.SourceBankFeed)
	if err := c.do(ctx, http.MethodPost, path, nil, body, &view); err != nil {
		return nil, err
	}

	return &view, nil
}

func (c *Client) SubmitImport(ctx context.Context, sourceType database.SourceType, data []byte) (*database.JobView, error) {
	var view database.JobView

	if err := c.do(ctx, http.MethodPost, "/api/imports/"+string(sourceType), nil, data, &view); err != nil {
		return nil, err
	}

	return &view, nil
}

func (c *Client) SubmitMatch(ctx context.Context, matchReq matcher.MatchRequest) (*database.JobView, error) {
	var view database.JobView

	if err := c.do(ctx, http.MethodPost, "/api/match/"+string(matchReq.SourceType), nil, matchReq, &view); err != nil {
		return nil, err
	}

	return &view, nil
}

// SubmitEnrich returns an *EstimateError marked common.ErrConfirmationMissing
// when the server wants the cost confirmed first.
func (c *Client) SubmitEnrich(ctx context.Context, batch enrichment.BatchRequest) (*database.JobView, error) {
	var (
		view    database.JobView
		errResp struct {
			Error    string               `json:"error"`
			Estimate *enrichment.Estimate `json:"estimate"`
		}
	)

	resp, err := c.request(ctx).
		SetBody(batch).
		SetSuccessResult(&view).
		SetErrorResult(&errResp).
		Post(c.baseURL + "/api/enrich")
	if err != nil {
		return nil, errors.Wrap(err, "failed to submit enrichment")
	}

	if resp.StatusCode == http.StatusPreconditionFailed && errResp.Estimate != nil {
		return nil, errors.Mark(&EstimateError{Estimate: errResp.Estimate}, common.ErrConfirmationMissing)
	}

	if resp.IsErrorState() {
		return nil, statusError(resp.StatusCode, errResp.Error)
	}

	return &view, nil
}

func (c *Client) EstimateEnrich(ctx context.Context, batch enrichment.BatchRequest) (*enrichment.Estimate, error) {
	query := map[string]string{
		"provider": batch.Provider,
	}

	if batch.Model != "" {
		query["model"] = batch.Model
	}

	if batch.Limit > 0 {
		query["limit"] = strconv.Itoa(batch.Limit)
	}

	if len(batch.Kinds) > 0 {
		kinds := make([]string, 0, len(batch.Kinds))
		for _, k := range batch.Kinds {
			kinds = append(kinds, string(k))
		}

		query["kinds"] = strings.Join(kinds, ",")
	}

	var estimate enrichment.Estimate

	if err := c.do(ctx, http.MethodGet, "/api/enrich/estimate", query, nil, &estimate); err != nil {
		return nil, err
	}

	return &estimate, nil
}

func (c *Client) VerifyLink(ctx context.Context, linkID string) (*database.EnrichmentLink, error) {
	var link database.EnrichmentLink

	if err := c.do(ctx, http.MethodPost, "/api/links/"+url.PathEscape(linkID)+"/verify", nil, nil, &link); err != nil {
		return nil, err
	}

	return &link, nil
}

func (c *Client) Connect(ctx context.Context, code string, redirectURI string) (*database.ConnectionView, error) {
	var conn database.ConnectionView

	body := ConnectRequest{Code: code, RedirectURI: redirectURI}

	if err := c.do(ctx, http.MethodPost, "/api/connections", nil, body, &conn); err != nil {
		return nil, err
	}

	return &conn, nil
}

func (c *Client) GetConnection(ctx context.Context, connectionID string) (*database.ConnectionView, error) {
	var conn database.ConnectionView

	if err := c.do(ctx, http.MethodGet, "/api/connections/"+url.PathEscape(connectionID), nil, nil, &conn); err != nil {
		return nil, err
	}

	return &conn, nil
}

func (c *Client) Disconnect(ctx context.Context, connectionID string, revoked bool) (*database.ConnectionView, error) {
	var conn database.ConnectionView

	query := map[string]string{"revoked": strconv.FormatBool(revoked)}
	path := "/api/connections/" + url.PathEscape(connectionID) + "/disconnect"

	if err := c.do(ctx, http.MethodPost, path, query, nil, &conn); err != nil {
		return nil, err
	}

	return &conn, nil
}

func (c *Client) request(ctx context.Context) *req.Request {
	r := c.cl.R().SetContext(ctx)

	if c.apiKey != "" {
		r.SetHeader("X-API-Key", c.apiKey)
	}

	return r
}

func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query map[string]string,
	body any,
	result any,
) error {
	var errResp errorResponse

	r := c.request(ctx).
		SetQueryParams(query).
		SetSuccessResult(result).
		SetErrorResult(&errResp)

	if body != nil {
		r.SetBody(body)
	}

	resp, err := r.Send(method, c.baseURL+path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}

	if resp.IsErrorState() {
		return statusError(resp.StatusCode, errResp.Error)
	}

	return nil
}

func statusError(status int, message string) error {
	err := errors.Newf("server returned %d: %s", status, message)

	switch status {
	case http.StatusNotFound:
		return errors.Mark(err, common.ErrNotFound)
	case http.StatusPreconditionFailed:
		return errors.Mark(err, common.ErrConfirmationMissing)
	default:
		return err
	}
}
