// Package wiktionary fetches page wikitext from Wiktionary and extracts the
// Spanish-language facts the enrichment chains need.
package wiktionary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/markgrovs/anki-spanish/pkg/logger"
	"github.com/markgrovs/anki-spanish/pkg/version"
)

const defaultEndpoint = "https://%s.wiktionary.org/w/api.php"

// Client fetches wikitext. Results, including misses, are memoized for the
// lifetime of the client.
type Client struct {
	httpClient *http.Client
	endpoint   string
	limiter    *rate.Limiter
	logger     *logger.Logger

	mu    sync.Mutex
	cache map[string]string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// WithEndpoint overrides the API URL. The pattern receives the language code
// through a single %s verb.
func WithEndpoint(pattern string) Option {
	return func(c *Client) {
		c.endpoint = pattern
	}
}

func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewClient(log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   defaultEndpoint,
		limiter:    rate.NewLimiter(5, 5),
		logger:     log,
		cache:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wikitext returns the raw wikitext of page on the lang wiki, or "" when the
// page does not exist.
func (c *Client) Wikitext(ctx context.Context, lang, page string) (string, error) {
	key := lang + "\x00" + page

	c.mu.Lock()
	text, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return text, nil
	}

	text, err := c.fetch(ctx, lang, page)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache[key] = text
	c.mu.Unlock()
	return text, nil
}

// Spanish returns the Spanish section of page on the lang wiki.
func (c *Client) Spanish(ctx context.Context, lang, page string) (string, error) {
	text, err := c.Wikitext(ctx, lang, page)
	if err != nil || text == "" {
		return "", err
	}
	return Section(text, lang), nil
}

func (c *Client) fetch(ctx context.Context, lang, page string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "rate limiter")
	}

	params := url.Values{}
	params.Set("action", "parse")
	params.Set("prop", "wikitext")
	params.Set("page", page)
	params.Set("format", "json")
	reqURL := fmt.Sprintf(c.endpoint, lang) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "build wiktionary request")
	}
	req.Header.Set("User-Agent", version.UserAgent())

	c.logger.Trace("GET %s", reqURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "fetch %s from %s.wiktionary", page, lang)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("wiktionary %s returned status %d for %s", lang, resp.StatusCode, page)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "read wiktionary response")
	}

	// Missing pages come back as {"error": {...}} with status 200.
	return gjson.GetBytes(body, `parse.wikitext.\*`).String(), nil
}
