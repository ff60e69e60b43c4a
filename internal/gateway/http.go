package gateway

import (
	"context"
	"encoding/json"
	"net/http"
)

// getJSON issues one GET and decodes the response body into out. Non-2xx
// responses come back classified via classifyStatus; transport failures
// (including timeouts) come back as ProviderError.
func getJSON(ctx context.Context, client *http.Client, platform Platform, subject, url string, apply func(*http.Request), out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &ProviderError{Platform: platform, Message: "build request", Err: err}
	}
	if apply != nil {
		apply(req)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &ProviderError{Platform: platform, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus(platform, subject, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &ProviderError{Platform: platform, StatusCode: resp.StatusCode, Message: "decode response", Err: err}
		}
	}
	return nil
}
