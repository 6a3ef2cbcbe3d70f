package orcid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the ORCID public API root.
const DefaultBaseURL = "https://pub.orcid.org/v2.0"

// ErrNotFound is returned when the API has no record for an iD.
var ErrNotFound = errors.New("orcid record not found")

// Fetcher retrieves a parsed ORCID record.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*Record, error)
}

// Client fetches records from the ORCID public API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

// NewClient creates a Client for the given API root. An empty baseURL selects
// the public API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		UserAgent: "orcidator/1.0",
	}
}

// Fetch downloads and decodes the record for id.
func (c *Client) Fetch(ctx context.Context, id string) (*Record, error) {
	url := fmt.Sprintf("%s/%s", c.BaseURL, id)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	slog.Debug("orcid request complete", "url", url, "status", resp.StatusCode, "duration", time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fetching %s: %w", url, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	return Decode(data)
}

// Decode parses a raw ORCID record document.
func Decode(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding orcid record: %w", err)
	}
	rec.Raw = json.RawMessage(data)
	return &rec, nil
}
