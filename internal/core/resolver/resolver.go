package resolver

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/guiyumin/vlink/internal/core/requester"
)

// Resolver runs a platform's extraction methods strictly in priority order
// and returns the first usable result.
type Resolver struct {
	platform Platform
	methods  []Method
	client   requester.Requester
	logger   *log.Logger
}

// NewResolver creates a resolver for platform p. A nil logger discards output.
func NewResolver(p Platform, client requester.Requester, logger *log.Logger, methods ...Method) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Resolver{
		platform: p,
		methods:  methods,
		client:   client,
		logger:   logger,
	}
}

// Platform returns the platform this resolver serves
func (r *Resolver) Platform() Platform {
	return r.platform
}

// Methods returns the method names in priority order
func (r *Resolver) Methods() []string {
	names := make([]string, len(r.methods))
	for i, m := range r.methods {
		names[i] = m.Name
	}
	return names
}

// Resolve tries each method in order. Later methods are never invoked once one succeeds.
func (r *Resolver) Resolve(ctx context.Context, sourceURL string) VideoResult {
	for _, m := range r.methods {
		if err := ctx.Err(); err != nil {
			r.logger.Printf("[%s] aborted before %s: %v", r.platform, m.Name, err)
			break
		}

		result, err := r.attempt(ctx, m, sourceURL)
		if err != nil {
			r.logger.Printf("[%s] %v", r.platform, err)
			continue
		}
		r.logger.Printf("[%s] resolved via %s (%s)", r.platform, m.Name, result.Quality)
		return result
	}

	return VideoResult{Success: false, Platform: r.platform, Error: exhaustedMessage(r.platform)}
}

func (r *Resolver) attempt(ctx context.Context, m Method, sourceURL string) (VideoResult, error) {
	call, err := m.Build(sourceURL)
	if err != nil {
		return VideoResult{}, &AttemptError{Method: m.Name, Kind: KindShape, Err: err}
	}

	out := r.client.Perform(ctx, call.request())
	if out.Err != nil {
		return VideoResult{}, &AttemptError{Method: m.Name, Kind: KindTransport, Err: out.Err}
	}
	if out.StatusCode != http.StatusOK {
		return VideoResult{}, &AttemptError{Method: m.Name, Kind: KindShape, Err: fmt.Errorf("unexpected status %d", out.StatusCode)}
	}

	result, err := m.Normalize([]byte(out.Body), sourceURL)
	if err != nil {
		return VideoResult{}, &AttemptError{Method: m.Name, Kind: KindShape, Err: err}
	}
	if !result.Usable() {
		return VideoResult{}, &AttemptError{Method: m.Name, Kind: KindShape, Err: ErrNotUsable}
	}
	return result, nil
}
