// Package frigate is the HTTP client for the two Frigate API calls the
// reviewer needs: fetching an event snapshot and marking an event as a
// false positive.
package frigate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchSnapshot downloads the snapshot image for an event. Any non-2xx
// response or transport error is a fetch error.
func (c *Client) FetchSnapshot(ctx context.Context, eventID string) ([]byte, error) {
	url := fmt.Sprintf("%s/api/events/%s/snapshot.jpg", c.baseURL, eventID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot for event %s: %w", eventID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("snapshot fetch for event %s returned status %d", eventID, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot for event %s: %w", eventID, err)
	}
	return data, nil
}

// MarkFalsePositive tells Frigate the event was a false positive. The
// call is idempotent on the Frigate side; repeating it is not an error.
func (c *Client) MarkFalsePositive(ctx context.Context, eventID string) error {
	url := fmt.Sprintf("%s/api/events/%s/false_positive", c.baseURL, eventID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build false-positive request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to mark event %s as false positive: %w", eventID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("marking event %s as false positive returned status %d", eventID, resp.StatusCode)
	}
	return nil
}
