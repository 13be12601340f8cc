// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ahmed5528/masa-bot/lib/netutil"
	"github.com/ahmed5528/masa-bot/lib/secret"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// DefaultRequestTimeout bounds a single non-polling call.
const DefaultRequestTimeout = 30 * time.Second

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// APIURL is the Bot API base URL. Defaults to DefaultAPIURL. Tests
	// and self-hosted Bot API servers override it.
	APIURL string
	// Token is the bot token. Required. The Buffer is read but not
	// closed: the caller retains ownership.
	Token *secret.Buffer
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// RequestTimeout bounds each call. GetUpdates extends it by the
	// long-poll duration. Defaults to DefaultRequestTimeout.
	RequestTimeout time.Duration
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client is a Bot API client bound to one bot token.
type Client struct {
	baseURL        string
	token          *secret.Buffer
	httpClient     *http.Client
	requestTimeout time.Duration
	logger         *slog.Logger
}

// NewClient creates a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Token == nil || config.Token.Len() == 0 {
		return nil, fmt.Errorf("telegram: Token is required")
	}

	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	parsed, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("telegram: invalid APIURL %q: %w", apiURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("telegram: APIURL %q must be http or https", apiURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	requestTimeout := config.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:        strings.TrimRight(apiURL, "/"),
		token:          config.Token,
		httpClient:     httpClient,
		requestTimeout: requestTimeout,
		logger:         logger,
	}, nil
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// envelope is the shape of every Bot API response.
type envelope struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result"`
	ErrorCode   int                 `json:"error_code"`
	Description string              `json:"description"`
	Parameters  *responseParameters `json:"parameters"`
}

// call POSTs params to method and decodes the envelope's result into
// result (which may be nil). extra lengthens the request deadline for
// long-polling calls.
func (c *Client) call(ctx context.Context, method string, params, result any, extra time.Duration) error {
	encoded, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("telegram: %s: failed to encode request body: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout+extra)
	defer cancel()

	// The token is converted to string at the URL boundary. The heap
	// copy lives only for the duration of the request.
	requestURL := c.baseURL + "/bot" + c.token.String() + "/" + method
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("telegram: %s: failed to create request: %w", method, netutil.StripURL(err))
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("telegram: %s: %w", method, netutil.StripURL(err))
	}
	defer response.Body.Close()

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return fmt.Errorf("telegram: %s: failed to read response body: %w", method, netutil.StripURL(err))
	}

	var decoded envelope
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("telegram: %s: unexpected %d response: %s",
			method, response.StatusCode, truncateBody(body))
	}

	if !decoded.OK {
		apiErr := &APIError{
			Method:      method,
			Code:        decoded.ErrorCode,
			Description: decoded.Description,
		}
		if apiErr.Code == 0 {
			apiErr.Code = response.StatusCode
		}
		if decoded.Parameters != nil && decoded.Parameters.RetryAfter > 0 {
			apiErr.RetryAfter = time.Duration(decoded.Parameters.RetryAfter) * time.Second
		}
		return apiErr
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(decoded.Result, result); err != nil {
		return fmt.Errorf("telegram: %s: failed to parse result: %w", method, err)
	}
	return nil
}

func truncateBody(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
