package resolver

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/guiyumin/vlink/internal/core/auditlog"
	"github.com/guiyumin/vlink/internal/core/requester"
)

var errUnreachable = errors.New("connection refused")

// fakeRequester answers by endpoint prefix and records every request
type fakeRequester struct {
	mu        sync.Mutex
	responses map[string]requester.Outcome
	calls     []requester.Request
}

func newFake(responses map[string]requester.Outcome) *fakeRequester {
	return &fakeRequester{responses: responses}
}

func (f *fakeRequester) Perform(_ context.Context, req requester.Request) requester.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)

	// Longest prefix wins so overlapping endpoints stay unambiguous
	best, found := "", false
	for prefix := range f.responses {
		if strings.HasPrefix(req.URL, prefix) && len(prefix) >= len(best) {
			best, found = prefix, true
		}
	}
	if !found {
		return requester.Outcome{Err: errUnreachable}
	}
	return f.responses[best]
}

func (f *fakeRequester) urls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.URL
	}
	return out
}

func ok(body string) requester.Outcome {
	return requester.Outcome{StatusCode: 200, Body: body}
}

func status(code int) requester.Outcome {
	return requester.Outcome{StatusCode: code, Body: "error"}
}

// recordingSink captures audit entries
type recordingSink struct {
	mu      sync.Mutex
	entries []auditlog.Entry
	err     error
	panics  bool
}

func (s *recordingSink) Record(_ context.Context, e auditlog.Entry) error {
	if s.panics {
		panic("sink exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return s.err
}

func (s *recordingSink) Close() error {
	return nil
}
