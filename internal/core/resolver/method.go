package resolver

import (
	"net/http"
	"net/url"

	"github.com/guiyumin/vlink/internal/core/requester"
)

// Call describes one upstream request
type Call struct {
	Method  string
	URL     string
	Form    url.Values // POST body, form-encoded
	Headers map[string]string
}

func (c Call) request() requester.Request {
	req := requester.Request{
		Method:  c.Method,
		URL:     c.URL,
		Headers: c.Headers,
	}
	if c.Method == http.MethodPost && c.Form != nil {
		req.Body = c.Form.Encode()
	}
	return req
}

// Normalizer maps a raw upstream body into a VideoResult, or returns an error
// (typically ErrNotUsable) when the body carries no media URL.
type Normalizer func(body []byte, originalURL string) (VideoResult, error)

// Method is one extraction strategy: how to call a service, and how to read its answer.
// Build returns an error when the call cannot be made (e.g. a missing API key).
type Method struct {
	Name      string
	Build     func(sourceURL string) (Call, error)
	Normalize Normalizer
}

// getCall builds a GET with the source URL in query parameter "url"
func getCall(endpoint string, extra url.Values, headers map[string]string) func(string) (Call, error) {
	return func(sourceURL string) (Call, error) {
		u, err := url.Parse(endpoint)
		if err != nil {
			return Call{}, err
		}
		q := u.Query()
		q.Set("url", sourceURL)
		for k, vs := range extra {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		return Call{Method: http.MethodGet, URL: u.String(), Headers: headers}, nil
	}
}

// postFormCall builds a form POST; form(sourceURL) supplies the fields
func postFormCall(endpoint string, form func(string) url.Values, ajax bool) func(string) (Call, error) {
	return func(sourceURL string) (Call, error) {
		headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
		if ajax {
			headers["X-Requested-With"] = "XMLHttpRequest"
		}
		return Call{
			Method:  http.MethodPost,
			URL:     endpoint,
			Form:    form(sourceURL),
			Headers: headers,
		}, nil
	}
}
