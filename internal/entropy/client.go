package entropy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"pocbeacon/internal/beacon"
)

// remoteEntropy is the JSON body served by the entropy service. Data is
// base64-encoded on the wire.
type remoteEntropy struct {
	Version   uint32 `json:"version"`
	Data      []byte `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// Client fetches remote entropy from an entropy service endpoint.
type Client struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// NewClient returns a Client for the given entropy service URL.
func NewClient(url string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Fetch retrieves the current remote entropy value.
func (c *Client) Fetch(ctx context.Context) (beacon.Entropy, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return beacon.Entropy{}, fmt.Errorf("building entropy request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return beacon.Entropy{}, fmt.Errorf("fetching entropy from %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return beacon.Entropy{}, fmt.Errorf("entropy service returned %s", resp.Status)
	}

	var remote remoteEntropy
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return beacon.Entropy{}, fmt.Errorf("decoding entropy response: %w", err)
	}
	if len(remote.Data) == 0 {
		return beacon.Entropy{}, fmt.Errorf("entropy service returned empty data")
	}

	c.log.Debug().
		Uint32("version", remote.Version).
		Int("bytes", len(remote.Data)).
		Int64("timestamp", remote.Timestamp).
		Msg("Remote entropy fetched")

	return beacon.Entropy{
		Version:   remote.Version,
		Data:      remote.Data,
		Timestamp: remote.Timestamp,
	}, nil
}
