package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when a volume id does not exist.
var ErrNotFound = errors.New("volume not found")

const defaultBaseURL = "https://www.googleapis.com/books/v1"

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
}

type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	RPS        int
	MaxRetries int
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RPS <= 0 {
		opts.RPS = 5
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		userAgent:  opts.UserAgent,
		baseURL:    opts.BaseURL,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(opts.RPS)), 1),
		maxRetries: opts.MaxRetries,
	}
}

// Search fetches one page of volumes for a query in the Google Books query
// grammar (e.g. "intitle:dune+inauthor:herbert"). The query is escaped as a
// whole, matching how a browser submits it. Absent items or totalItems in the
// response decode to an empty page.
func (c *Client) Search(ctx context.Context, query string, startIndex, maxResults int) (SearchResult, error) {
	u := fmt.Sprintf("%s/volumes?q=%s&startIndex=%d&maxResults=%d",
		c.baseURL, url.QueryEscape(query), startIndex, maxResults)

	var res searchResponse
	if err := c.get(ctx, u, &res); err != nil {
		return SearchResult{}, err
	}

	items := res.Items
	if items == nil {
		items = []Volume{}
	}
	return SearchResult{Items: items, TotalItems: res.TotalItems}, nil
}

// GetVolume fetches a single volume by its id. A 404 maps to ErrNotFound.
func (c *Client) GetVolume(ctx context.Context, id string) (Volume, error) {
	u := fmt.Sprintf("%s/volumes/%s", c.baseURL, url.PathEscape(id))

	var v Volume
	if err := c.get(ctx, u, &v); err != nil {
		return Volume{}, err
	}
	return v, nil
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return err
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode == http.StatusNotFound {
				return ErrNotFound
			}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
				continue
			}
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		return err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}
