// Package requester performs outbound calls to extraction services and reports
// every outcome as data: non-2xx statuses and transport failures are never raised.
package requester

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultUserAgent impersonates a desktop Chrome; several services reject anything else
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodySize caps how much of an upstream body is kept (10MB)
const maxBodySize = 10 * 1024 * 1024

var (
	ErrInvalidTarget = errors.New("target must be an absolute http(s) URL")
	ErrInvalidMethod = errors.New("method must be GET or POST")
	errTooManyHops   = errors.New("too many redirects")
)

// DefaultHeaders is the browser-like header set sent with every request.
// Extra headers passed in a Request are merged on top.
var DefaultHeaders = map[string]string{
	"User-Agent":      DefaultUserAgent,
	"Accept":          "application/json, text/html, */*",
	"Accept-Language": "en-US,en;q=0.9",
	"Accept-Encoding": "gzip, deflate, br",
	"Connection":      "keep-alive",
	"Cache-Control":   "no-cache",
	"Pragma":          "no-cache",
}

// Request describes one outbound call
type Request struct {
	Method  string
	URL     string
	Body    string // form-encoded payload, POST only
	Headers map[string]string
}

// Outcome is the uniform result of a call
type Outcome struct {
	StatusCode int
	Body       string
	Err        error // transport failure; nil when a response was received
}

// OK reports whether a response arrived with HTTP 200
func (o Outcome) OK() bool {
	return o.Err == nil && o.StatusCode == http.StatusOK
}

// Requester is the capability consumed by resolvers
type Requester interface {
	Perform(ctx context.Context, req Request) Outcome
}

// Options configures an HTTPRequester
type Options struct {
	Timeout            time.Duration
	MaxRedirects       int
	InsecureSkipVerify bool
	Proxy              string
}

// DefaultOptions returns the fixed policy: 30s timeout, 10 redirects, no TLS verification
func DefaultOptions() Options {
	return Options{
		Timeout:            30 * time.Second,
		MaxRedirects:       10,
		InsecureSkipVerify: true,
	}
}

// HTTPRequester is the net/http implementation of Requester
type HTTPRequester struct {
	client *http.Client
}

var _ Requester = (*HTTPRequester)(nil)

// New creates an HTTPRequester
func New(opts Options) (*HTTPRequester, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = 10
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		// Third-party hosts are frequently misconfigured; verification is off unless configured.
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify}, //nolint:gosec
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		// Accept-Encoding is set explicitly, so bodies are decoded by decodeBody
		DisableCompression: true,
	}
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", opts.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	maxRedirects := opts.MaxRedirects
	return &HTTPRequester{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return errTooManyHops
				}
				return nil
			},
		},
	}, nil
}

// Perform issues the request and always returns a populated Outcome
func (r *HTTPRequester) Perform(ctx context.Context, req Request) Outcome {
	httpReq, err := buildRequest(ctx, req)
	if err != nil {
		return Outcome{Err: err}
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return Outcome{Err: err}
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp.Header.Get("Content-Encoding"), io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Outcome{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	return Outcome{StatusCode: resp.StatusCode, Body: string(body)}
}

func buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	if method != http.MethodGet && method != http.MethodPost {
		return nil, ErrInvalidMethod
	}
	if err := ValidateTarget(req.URL); err != nil {
		return nil, err
	}

	var body io.Reader
	if method == http.MethodPost && req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for k, v := range DefaultHeaders {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}

// ValidateTarget checks that target is an absolute http or https URL
func ValidateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidTarget
	}
	return nil
}
