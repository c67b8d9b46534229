// Package search finds a stock photo URL for a text query using the Pexels
// search API.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Pexels v1 API root.
const DefaultBaseURL = "https://api.pexels.com/v1"

// DefaultDelay separates successive search calls.
const DefaultDelay = 500 * time.Millisecond

// ErrNoMatch is returned when a search has no results.
var ErrNoMatch = errors.New("no matching photo")

// Query is one image to look up and the catalog key it fills.
type Query struct {
	Key         string `yaml:"key"`
	Text        string `yaml:"query"`
	Orientation string `yaml:"orientation,omitempty"` // landscape, portrait or square
	Size        string `yaml:"size,omitempty"`        // small, medium or large
}

func (q Query) cacheKey() string {
	return q.Text + "\x00" + q.Orientation + "\x00" + q.Size
}

// Searcher resolves a query to a photo URL.
type Searcher interface {
	Search(ctx context.Context, q Query) (string, error)
}

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string        // default DefaultBaseURL
	Delay      time.Duration // minimum gap between calls; 0 = DefaultDelay, <0 = none
	CacheSize  int           // default 256
	HTTPClient *http.Client
}

// Client talks to the Pexels API.
type Client struct {
	apiKey  string
	base    string
	http    *http.Client
	limiter *rate.Limiter
	cache   *lru.Cache[string, string]
}

// NewClient returns a client. The API key is required.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("search: PEXELS_API_KEY is not set")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	limit := rate.Inf
	switch {
	case opts.Delay == 0:
		limit = rate.Every(DefaultDelay)
	case opts.Delay > 0:
		limit = rate.Every(opts.Delay)
	}

	cache, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Client{
		apiKey:  opts.APIKey,
		base:    strings.TrimRight(opts.BaseURL, "/"),
		http:    opts.HTTPClient,
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache,
	}, nil
}

// Search returns the URL of the first photo matching q.
func (c *Client) Search(ctx context.Context, q Query) (string, error) {
	if u, ok := c.cache.Get(q.cacheKey()); ok {
		return u, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("query", q.Text)
	params.Set("per_page", "1")
	if q.Orientation != "" {
		params.Set("orientation", q.Orientation)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/search?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", q.Text, err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", q.Text, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("search %q: unexpected status %d", q.Text, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("search %q: read body: %w", q.Text, err)
	}

	u, err := pickSource(body, q.Size)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", q.Text, err)
	}
	c.cache.Add(q.cacheKey(), u)
	return u, nil
}

// srcField maps a requested size to the photo rendition returned.
func srcField(size string) string {
	switch size {
	case "large":
		return "large2x"
	case "small":
		return "medium"
	}
	return "large"
}

func pickSource(body []byte, size string) (string, error) {
	photos, typ, _, err := jsonparser.Get(body, "photos")
	if err != nil || typ != jsonparser.Array {
		return "", errors.New("decode response: missing photos array")
	}
	photo, _, _, err := jsonparser.Get(photos, "[0]")
	if err != nil {
		return "", ErrNoMatch
	}
	u, err := jsonparser.GetString(photo, "src", srcField(size))
	if err != nil {
		return "", fmt.Errorf("decode response: src.%s: %w", srcField(size), err)
	}
	return u, nil
}
