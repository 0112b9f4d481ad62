package crawl

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultHTTPTimeout bounds a single crawl request.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultUserAgent identifies the crawler to remote sites.
	DefaultUserAgent = "Mozilla/5.0 (compatible; newsdraft/1.0; +https://github.com/hoanghai1803/newsdraft)"
)

// NewHTTPClient returns an http.Client that injects browser-like headers on
// every request.
func NewHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			base:      http.DefaultTransport,
			userAgent: userAgent,
		},
	}
}

// NewRestyClient returns a resty client configured like NewHTTPClient.
func NewRestyClient(timeout time.Duration, userAgent string) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetHeader("User-Agent", userAgent)
	c.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	c.SetHeader("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")
	return c
}

// userAgentTransport wraps an http.RoundTripper to inject a custom User-Agent
// header on every request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")
	return t.base.RoundTrip(req)
}
