// Package wikidata queries the Wikidata knowledge base: SPARQL point lookups
// of entities by external identifier and entity search by label.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultSPARQLEndpoint is the Wikidata Query Service endpoint.
	DefaultSPARQLEndpoint = "https://query.wikidata.org/sparql"

	// DefaultAPIURL is the MediaWiki action API of Wikidata.
	DefaultAPIURL = "https://www.wikidata.org/w/api.php"
)

// Term is one RDF term in a SPARQL JSON result binding.
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// Binding maps variable names to the terms bound in one solution.
type Binding map[string]Term

// Querier runs a SPARQL SELECT query and returns its solutions.
type Querier interface {
	Query(ctx context.Context, query string) ([]Binding, error)
}

// Client talks to the Wikidata Query Service and the Wikidata action API.
type Client struct {
	SPARQLEndpoint string
	APIURL         string
	HTTPClient     *http.Client

	// UserAgent is required by the Wikidata Query Service usage policy.
	UserAgent string
}

// NewClient creates a Client. Empty arguments select the public endpoints.
func NewClient(sparqlEndpoint, apiURL string) *Client {
	if sparqlEndpoint == "" {
		sparqlEndpoint = DefaultSPARQLEndpoint
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		SPARQLEndpoint: sparqlEndpoint,
		APIURL:         apiURL,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		UserAgent: "orcidator/1.0 (https://github.com/lehigh-university-libraries/orcidator)",
	}
}

type sparqlResponse struct {
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

// Query runs a SELECT query against the SPARQL endpoint.
func (c *Client) Query(ctx context.Context, query string) ([]Binding, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	var resp sparqlResponse
	if err := c.getJSON(ctx, c.SPARQLEndpoint, params, "application/sparql-results+json", &resp); err != nil {
		return nil, fmt.Errorf("sparql query: %w", err)
	}
	return resp.Results.Bindings, nil
}

// SearchResult is one candidate entity returned by a label search.
type SearchResult struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type searchResponse struct {
	Search []SearchResult `json:"search"`
}

// SearchEntities searches item labels and aliases in the given language.
func (c *Client) SearchEntities(ctx context.Context, search, language string, limit int) ([]SearchResult, error) {
	if language == "" {
		language = "en"
	}
	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", search)
	params.Set("language", language)
	params.Set("type", "item")
	params.Set("format", "json")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp searchResponse
	if err := c.getJSON(ctx, c.APIURL, params, "application/json", &resp); err != nil {
		return nil, fmt.Errorf("searching %q: %w", search, err)
	}
	return resp.Search, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, accept string, v any) error {
	reqURL := endpoint + "?" + params.Encode()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", accept)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		slog.Debug("wikidata request failed", "url", endpoint, "error", err, "duration", time.Since(start))
		return err
	}
	defer resp.Body.Close()

	slog.Debug("wikidata request complete", "url", endpoint, "status", resp.StatusCode, "duration", time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
