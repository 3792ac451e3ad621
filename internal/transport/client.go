package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vane/internal/dashboard"
)

// Client consumes the snapshot API from Go.
type Client struct {
	base string
	http *http.Client
}

func Dial(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Snapshot fetches the current dashboard snapshot.
func (c *Client) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	var snap dashboard.Snapshot
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/v1/snapshot", nil)
	if err != nil {
		return snap, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return snap, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return snap, fmt.Errorf("snapshot: status=%s body=%s", res.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
		return snap, fmt.Errorf("snapshot: decode: %w", err)
	}
	return snap, nil
}
