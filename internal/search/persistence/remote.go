// internal/search/persistence/remote.go
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"trial-search/internal/common/config"
	commonhttp "trial-search/internal/common/http"
	"trial-search/internal/models"
)

// RemoteQueryClient implements RemoteStore against the portal REST API.
type RemoteQueryClient struct {
	baseURL    string
	apiKey     string
	httpClient *commonhttp.Client
}

type savedQueryEnvelope struct {
	Data models.SavedQuery `json:"data"`
}

type savedQueryListEnvelope struct {
	Data []models.SavedQuery `json:"data"`
}

func NewRemoteQueryClient(cfg config.PortalConfig) *RemoteQueryClient {
	return &RemoteQueryClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
	}
}

func (c *RemoteQueryClient) List(ctx context.Context, queryType, searchText string) ([]models.SavedQuery, error) {
	endpoint := fmt.Sprintf("%s/api/v1/saved-queries", c.baseURL)

	params := url.Values{}
	params.Set("type", queryType)
	if searchText != "" {
		params.Set("search", searchText)
	}

	req, err := http.NewRequest(http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list saved queries failed (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed savedQueryListEnvelope
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return parsed.Data, nil
}

func (c *RemoteQueryClient) Create(ctx context.Context, query models.SavedQuery) (models.SavedQuery, error) {
	endpoint := fmt.Sprintf("%s/api/v1/saved-queries", c.baseURL)
	return c.send(ctx, http.MethodPost, endpoint, query)
}

func (c *RemoteQueryClient) Update(ctx context.Context, query models.SavedQuery) (models.SavedQuery, error) {
	endpoint := fmt.Sprintf("%s/api/v1/saved-queries/%s", c.baseURL, query.ID)
	return c.send(ctx, http.MethodPut, endpoint, query)
}

func (c *RemoteQueryClient) Delete(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/api/v1/saved-queries/%s", c.baseURL, id)

	req, err := http.NewRequest(http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// A missing remote record is fine: the query may only ever have existed
	// locally.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete saved query failed (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

func (c *RemoteQueryClient) send(ctx context.Context, method, endpoint string, query models.SavedQuery) (models.SavedQuery, error) {
	payload, err := json.Marshal(query)
	if err != nil {
		return models.SavedQuery{}, fmt.Errorf("failed to marshal saved query: %w", err)
	}

	req, err := http.NewRequest(method, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return models.SavedQuery{}, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return models.SavedQuery{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.SavedQuery{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return models.SavedQuery{}, fmt.Errorf("write saved query failed (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed savedQueryEnvelope
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.SavedQuery{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return parsed.Data, nil
}

func (c *RemoteQueryClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
