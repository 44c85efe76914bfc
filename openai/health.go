package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Settings is the subset of the plugin proxy's settings the probe inspects.
type Settings struct {
	Enabled          bool             `json:"enabled"`
	SecureJSONFields SecureJSONFields `json:"secureJsonFields"`
}

// SecureJSONFields reports which secrets are configured on the backend,
// without exposing their values.
type SecureJSONFields struct {
	OpenAIKey bool `json:"openAIKey"`
}

// Enabled reports whether the backend is configured and reachable: it must
// report itself enabled and have a provider API key set. Any failure, the
// backend plugin simply not being installed included, yields false and is
// logged at debug level once per client so a polling caller does not flood
// the log.
func (c *Client) Enabled(ctx context.Context) bool {
	settings, err := c.settings(ctx)
	if err != nil {
		c.probeLogOnce.Do(func() {
			c.logger.Debug().Err(err).Msg("Settings probe failed, treating the backend as disabled")
		})
		return false
	}
	return settings.Enabled && settings.SecureJSONFields.OpenAIKey
}

// settings fetches the proxy settings with UI alerts suppressed on both the
// success and the error path.
func (c *Client) settings(ctx context.Context) (*Settings, error) {
	url := c.baseURL + settingsPath + "?showSuccessAlert=false&showErrorAlert=false"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request execution error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: respBody}
	}

	var settings Settings
	if err := json.Unmarshal(respBody, &settings); err != nil {
		return nil, fmt.Errorf("could not unmarshal settings: %w", err)
	}
	return &settings, nil
}
