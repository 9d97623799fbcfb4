package resolver

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/guiyumin/vlink/internal/core/auditlog"
	"github.com/guiyumin/vlink/internal/core/config"
	"github.com/guiyumin/vlink/internal/core/requester"
)

// Service is the inbound entry point: it validates input, records the
// request in the audit sink, and dispatches to the platform resolver.
type Service struct {
	router *Router
	sink   auditlog.Sink
	logger *log.Logger
}

// NewService creates a service. A nil sink records nothing; a nil logger discards output.
func NewService(router *Router, sink auditlog.Sink, logger *log.Logger) *Service {
	if sink == nil {
		sink = auditlog.Nop{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{router: router, sink: sink, logger: logger}
}

// Platforms returns the supported platform identifiers
func (s *Service) Platforms() []Platform {
	return s.router.Platforms()
}

// Resolve handles one (url, platform) request. It always returns a result;
// failures are reported through VideoResult.Error.
func (s *Service) Resolve(ctx context.Context, rawURL, platform string) VideoResult {
	sourceURL := strings.TrimSpace(rawURL)
	identifier := strings.ToLower(strings.TrimSpace(platform))
	if sourceURL == "" || identifier == "" {
		return Failure(MsgInputRequired)
	}

	s.record(ctx, identifier, sourceURL)

	res, err := s.router.Route(identifier)
	if err != nil {
		return Failure(MsgUnsupportedPlatform)
	}
	return res.Resolve(ctx, sourceURL)
}

// record never lets the audit sink affect the resolution
func (s *Service) record(ctx context.Context, platform, sourceURL string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("[audit] sink panic: %v", r)
		}
	}()
	if err := s.sink.Record(ctx, auditlog.NewEntry(platform, sourceURL)); err != nil {
		s.logger.Printf("[audit] %v", err)
	}
}

// FromConfig wires a Service from configuration: requester, router and an
// asynchronous audit sink. The returned close function drains the sink.
func FromConfig(cfg *config.Config, logger *log.Logger) (*Service, func() error, error) {
	client, err := requester.New(requester.Options{
		Timeout:            time.Duration(cfg.Requester.Timeout) * time.Second,
		MaxRedirects:       cfg.Requester.MaxRedirects,
		InsecureSkipVerify: cfg.Requester.SkipTLSVerify(),
		Proxy:              cfg.Requester.Proxy,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create requester: %w", err)
	}

	sink, err := auditlog.Open(cfg.Audit.Driver, cfg.Audit.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	async := auditlog.NewAsync(sink, auditlog.DefaultQueueSize, logger)

	router := NewRouter(client, Options{
		RapidAPIKey: cfg.Instagram.RapidAPIKey,
		Logger:      logger,
	})
	return NewService(router, async, logger), async.Close, nil
}
