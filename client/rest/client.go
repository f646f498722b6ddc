package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/viant/afs/url"
)

// Client talks to the Pollbase data API, a PostgREST-style interface over a
// project's tables. Requests go through the supplied HTTP client, typically
// one whose transport attaches session credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a data API client rooted at baseURL, e.g.
// https://myproject.pollbase.io/rest/v1.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// From starts a query against a table.
func (c *Client) From(table string) *Query {
	return newQuery(c, table)
}

// Insert adds rows to a table. Rows can be a single struct or a slice.
func (c *Client) Insert(ctx context.Context, table string, rows interface{}) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(table), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("insert into %v: %w", table, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	return nil
}

func (c *Client) endpoint(table string) string {
	return url.Join(c.baseURL, table)
}
