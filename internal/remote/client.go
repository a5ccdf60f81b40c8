// Package remote provides the client for the remote price store API.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"pricetrack/internal/config"
	"pricetrack/internal/errors"
	"pricetrack/internal/models"
)

// Gateway exposes the remote store operations used by the application.
// The core treats any Insert failure uniformly; there is no per-error
// retry policy.
type Gateway interface {
	// Insert writes a single price entry. Idempotency is not guaranteed:
	// a retried insert whose first acknowledgment was lost can produce a
	// duplicate record.
	Insert(ctx context.Context, entry models.NewPriceEntry) error

	// List returns confirmed entries, newest first.
	List(ctx context.Context, limit int) ([]models.PriceEntry, error)

	// Ping checks reachability of the remote store.
	Ping(ctx context.Context) error
}

// RestClient is a resty-backed Gateway speaking a PostgREST-style API.
type RestClient struct {
	httpClient *resty.Client
	table      string
	logger     *zap.Logger
}

// NewRestClient builds a remote store client from the provided configuration.
func NewRestClient(cfg config.RemoteConfig, logger *zap.Logger) *RestClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(fmt.Sprintf("%s/rest/v1", base)).
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &RestClient{
		httpClient: restyClient,
		table:      cfg.Table,
		logger:     logger,
	}
}

// apiError represents a PostgREST error payload.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

// Insert writes one entry to the remote table.
func (c *RestClient) Insert(ctx context.Context, entry models.NewPriceEntry) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(entry).
		SetError(apiErr).
		Post("/" + c.table)
	if err != nil {
		return errors.Wrap(errors.ErrRemoteUnavailable, "insert request failed", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return errors.New(errors.ErrRemoteRejected,
			fmt.Sprintf("remote store rejected insert: status=%d, code=%s, message=%s",
				resp.StatusCode(), apiErr.Code, apiErr.Message))
	}

	return nil
}

// List fetches confirmed entries ordered by created_at descending.
func (c *RestClient) List(ctx context.Context, limit int) ([]models.PriceEntry, error) {
	entries := make([]models.PriceEntry, 0, limit)
	apiErr := new(apiError)

	req := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", "created_at.desc").
		SetResult(&entries).
		SetError(apiErr)
	if limit > 0 {
		req.SetQueryParam("limit", fmt.Sprintf("%d", limit))
	}

	resp, err := req.Get("/" + c.table)
	if err != nil {
		return nil, errors.Wrap(errors.ErrRemoteUnavailable, "list request failed", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, errors.New(errors.ErrRemoteRejected,
			fmt.Sprintf("remote store rejected list: status=%d, message=%s",
				resp.StatusCode(), apiErr.Message))
	}

	return entries, nil
}

// Ping checks whether the remote store is reachable.
func (c *RestClient) Ping(ctx context.Context) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("select", "id").
		SetQueryParam("limit", "1").
		Head("/" + c.table)
	if err != nil {
		return errors.Wrap(errors.ErrRemoteUnavailable, "ping failed", err)
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return errors.New(errors.ErrRemoteUnavailable,
			fmt.Sprintf("remote store unhealthy: status=%d", resp.StatusCode()))
	}
	return nil
}
