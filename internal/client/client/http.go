package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fincatch/fincatch/internal/client/auth"
	"github.com/fincatch/fincatch/internal/common"
	"github.com/fincatch/fincatch/internal/logging"
)

// HTTPClient implements Client over JSON-over-HTTPS, one POST per cycle.
type HTTPClient struct {
	baseURL string
	appID   string
	apiKey  string
	http    *http.Client
	tokens  auth.TokenSource
	log     logging.Logger
}

// NewHTTPClient returns an HTTPClient for the given server and tenant.
func NewHTTPClient(baseURL, appID, apiKey string, tokens auth.TokenSource, httpClient *http.Client, log logging.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		baseURL: baseURL,
		appID:   appID,
		apiKey:  apiKey,
		http:    httpClient,
		tokens:  tokens,
		log:     log,
	}
}

// Delta implements Client. On a 401 the token pair is refreshed once and the
// request replayed; a second rejection surfaces as common.ErrUnauthorized.
func (c *HTTPClient) Delta(ctx context.Context, req *DeltaRequest) (*DeltaResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sync request: %w", err)
	}

	resp, err := c.send(ctx, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		if err := c.tokens.Refresh(ctx); err != nil {
			return nil, err
		}
		if resp, err = c.send(ctx, body); err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("sync rejected (%d): %w", resp.StatusCode, common.ErrUnauthorized)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("sync failed (%d): %w", resp.StatusCode, common.ErrUnavailable)
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sync failed (%d): %s: %w", resp.StatusCode, snippet, common.ErrProtocol)
	}

	var dr DeltaResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("failed to parse sync response: %w: %w", common.ErrProtocol, err)
	}
	return &dr, nil
}

func (c *HTTPClient) send(ctx context.Context, body []byte) (*http.Response, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v1/sync/%s/delta", c.baseURL, c.appID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.AuthorizationHeader, "Bearer "+token)
	req.Header.Set(common.APIKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sync request failed: %w: %w", common.ErrUnavailable, err)
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
