package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Query accumulates filters for a single table read. Methods return the
// query itself so calls chain.
type Query struct {
	client *Client
	table  string
	params url.Values
}

func newQuery(client *Client, table string) *Query {
	return &Query{client: client, table: table, params: url.Values{}}
}

// Select restricts the returned columns. Without it all columns return.
func (q *Query) Select(columns ...string) *Query {
	if len(columns) > 0 {
		q.params.Set("select", strings.Join(columns, ","))
	}
	return q
}

// Eq keeps only rows whose column equals value.
func (q *Query) Eq(column string, value interface{}) *Query {
	q.params.Set(column, fmt.Sprintf("eq.%v", value))
	return q
}

// Order sorts the result by column.
func (q *Query) Order(column string, descending bool) *Query {
	direction := "asc"
	if descending {
		direction = "desc"
	}
	q.params.Set("order", column+"."+direction)
	return q
}

// Limit caps the number of returned rows.
func (q *Query) Limit(n int) *Query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

// Do executes the query and decodes the response rows into out. A nil out
// discards the body.
func (q *Query) Do(ctx context.Context, out interface{}) error {
	endpoint := q.client.endpoint(q.table)
	if len(q.params) > 0 {
		endpoint += "?" + q.params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := q.client.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("query %v: %w", q.table, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %v rows: %w", q.table, err)
	}
	return nil
}
