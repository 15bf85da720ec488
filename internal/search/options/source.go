// Package options resolves candidate values for dropdown-typed search
// fields. It prefers the portal taxonomy service and falls back to a
// registered static option set whenever the remote result is a failure or
// an empty success, so the search form always has something to offer.
package options

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"trial-search/internal/common/config"
	commonhttp "trial-search/internal/common/http"
	"trial-search/internal/common/logger"
)

// Option is one selectable dropdown entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type taxonomyResponse struct {
	Data []Option `json:"data"`
}

// Source fetches dropdown options from the portal taxonomy endpoint.
type Source struct {
	baseURL    string
	apiKey     string
	httpClient *commonhttp.Client
	logger     logger.Logger
	fallbacks  map[string][]Option
}

func NewSource(cfg config.PortalConfig, log logger.Logger) *Source {
	return &Source{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		logger:     log.WithFields(map[string]interface{}{"component": "option-source"}),
		fallbacks:  make(map[string][]Option),
	}
}

// RegisterFallback sets the static option list served for a category when
// the taxonomy service is unreachable or returns nothing.
func (s *Source) RegisterFallback(category string, opts []Option) {
	s.fallbacks[category] = opts
}

// Options returns the candidate values for a taxonomy category. It never
// fails: remote errors degrade to the registered fallback (or an empty
// list) with a warning.
func (s *Source) Options(ctx context.Context, category string) []Option {
	remote, err := s.fetch(ctx, category)
	if err != nil {
		s.logger.Warn("taxonomy fetch failed, using fallback options", map[string]interface{}{
			"category": category,
			"error":    err.Error(),
		})
		return s.fallback(category)
	}
	if len(remote) == 0 {
		return s.fallback(category)
	}
	return remote
}

func (s *Source) fetch(ctx context.Context, category string) ([]Option, error) {
	url := fmt.Sprintf("%s/api/v1/dropdowns/%s", s.baseURL, category)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("taxonomy request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed taxonomyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return parsed.Data, nil
}

func (s *Source) fallback(category string) []Option {
	if opts, ok := s.fallbacks[category]; ok {
		out := make([]Option, len(opts))
		copy(out, opts)
		return out
	}
	return []Option{}
}

// DefaultFallbacks returns the built-in option sets for the default field
// catalog, used when a deployment registers nothing else.
func DefaultFallbacks() map[string][]Option {
	return map[string][]Option{
		"trial_phase": {
			{Value: "phase_i", Label: "Phase I"},
			{Value: "phase_ii", Label: "Phase II"},
			{Value: "phase_iii", Label: "Phase III"},
			{Value: "phase_iv", Label: "Phase IV"},
		},
		"trial_status": {
			{Value: "open", Label: "Open"},
			{Value: "recruiting", Label: "Recruiting"},
			{Value: "suspended", Label: "Suspended"},
			{Value: "completed", Label: "Completed"},
			{Value: "terminated", Label: "Terminated"},
		},
		"therapeutic_area": {
			{Value: "oncology", Label: "Oncology"},
			{Value: "cardiology", Label: "Cardiology"},
			{Value: "neurology", Label: "Neurology"},
			{Value: "immunology", Label: "Immunology"},
			{Value: "infectious_disease", Label: "Infectious Disease"},
		},
	}
}
