// Package jira retrieves user activity from a JIRA activity-stream
// endpoint. The endpoint caps every response at a fixed number of entries
// and offers no cursor, so complete retrieval works by adaptively halving
// the requested time range (see Fetcher).
package jira

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// maxResults is the page cap enforced by the activity stream servlet: a
// single call never returns more entries than this, no matter how many
// match.
const maxResults = 25

// RetrievalError is a failed call against the activity stream endpoint.
// One failed call aborts the whole retrieval for the current project's
// remote portion; it is never retried per sub-range.
type RetrievalError struct {
	Status int
	Err    error
}

func (e *RetrievalError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("activity stream request failed with status %d", e.Status)
	}
	return fmt.Sprintf("activity stream request failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Client calls the activity stream servlet with basic auth.
type Client struct {
	baseURL    *url.URL
	username   string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a client for the given JIRA base URL. Outbound calls are
// rate limited so that recursive range splitting cannot hammer the server.
func NewClient(baseURL, username, password string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid jira url %q: %w", baseURL, err)
	}
	return &Client{
		baseURL:  u,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}, nil
}

// search queries the servlet for entries whose subject matches user and
// whose update time lies in [startMillis, endMillis], both inclusive on the
// server side. Returns at most maxResults entries.
func (c *Client) search(ctx context.Context, user string, startMillis, endMillis int64) ([]Entry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RetrievalError{Err: err}
	}

	u := *c.baseURL
	u.Path = path.Join(u.Path, "plugins/servlet/streams")
	q := url.Values{}
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Add("streams", "user IS "+user)
	q.Add("streams", fmt.Sprintf("update-date BETWEEN %d %d", startMillis, endMillis))
	// Cache buster, same as the servlet's own UI sends.
	q.Set("_", strconv.FormatInt(time.Now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}
	req.Header.Set("Accept", "application/xml")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &RetrievalError{Status: resp.StatusCode}
	}

	var f feed
	if err := xml.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, &RetrievalError{Err: fmt.Errorf("decoding activity feed: %w", err)}
	}
	return f.Entries, nil
}
