/*

This file contains the shared HTTP client for all upstream data sources.
Fetching is the only layer that retries: everything downstream treats its
inputs as final and fails the cycle instead of retrying.

*/

package datafetcher

import (
	"errors"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ve33-labs/vom/internal/logger"
)

var fetchLogger = logger.GetForComponent("datafetcher")

var ErrEmptyResponse = errors.New("empty response from upstream API")

const (
	MAX_RETRIES     = 3
	TIMEOUT_SECONDS = 30
)

// Client wraps the REST client with the endpoint set for one network.
type Client struct {
	http         *resty.Client
	dashboardAPI string
	relayAPI     string
	votesAPI     string
	priceAPI     string
}

// NewClient builds a fetcher against the given API base URLs. Retries with
// backoff are configured here once for every fetch.
func NewClient(dashboardAPI, relayAPI, votesAPI, priceAPI string) (*Client, error) {
	if dashboardAPI == "" || relayAPI == "" || votesAPI == "" || priceAPI == "" {
		return nil, errors.New("all API base URLs are required")
	}

	http := resty.New().
		SetTimeout(TIMEOUT_SECONDS * time.Second).
		SetRetryCount(MAX_RETRIES).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{
		http:         http,
		dashboardAPI: dashboardAPI,
		relayAPI:     relayAPI,
		votesAPI:     votesAPI,
		priceAPI:     priceAPI,
	}, nil
}
