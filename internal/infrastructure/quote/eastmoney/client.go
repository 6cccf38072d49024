package eastmoney

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fundtrack/internal/application/port"
)

// Upstream endpoints. The estimate host serves JSONP, the F10 host serves
// HTML fragments meant for in-page rendering; both refuse requests without
// a plausible Referer.
const (
	defaultGzURL     = "https://fundgz.1234567.com.cn"
	defaultF10URL    = "https://fundf10.eastmoney.com"
	defaultSearchURL = "https://fundsuggest.eastmoney.com"

	referer   = "https://fund.eastmoney.com/"
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// ErrBadPayload 错误：上游返回无法解析的内容
var ErrBadPayload = errors.New("eastmoney: unparseable payload")

// Client talks to the eastmoney fund endpoints and parses their
// JSONP/HTML payloads into typed values. It is stateless and safe for
// concurrent use.
type Client struct {
	gzURL     string
	f10URL    string
	searchURL string
	http      *http.Client
}

type Option func(*Client)

func WithBaseURLs(gz, f10, search string) Option {
	return func(c *Client) {
		if gz != "" {
			c.gzURL = gz
		}
		if f10 != "" {
			c.f10URL = f10
		}
		if search != "" {
			c.searchURL = search
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		gzURL:     defaultGzURL,
		f10URL:    defaultF10URL,
		searchURL: defaultSearchURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", referer)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eastmoney http %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

var _ port.QuoteGateway = (*Client)(nil)
