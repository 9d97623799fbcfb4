package resolver

import (
	"log"
	"net/url"
	"strings"

	"github.com/guiyumin/vlink/internal/core/requester"
)

// platformsByHost maps hostnames to the platform that serves them
var platformsByHost = map[string]Platform{
	"tiktok.com":        TikTok,
	"vm.tiktok.com":     TikTok,
	"vt.tiktok.com":     TikTok,
	"m.tiktok.com":      TikTok,
	"facebook.com":      Facebook,
	"m.facebook.com":    Facebook,
	"web.facebook.com":  Facebook,
	"fb.watch":          Facebook,
	"fb.com":            Facebook,
	"instagram.com":     Instagram,
	"instagr.am":        Instagram,
	"youtube.com":       YouTube,
	"m.youtube.com":     YouTube,
	"music.youtube.com": YouTube,
	"youtu.be":          YouTube,
}

// DetectPlatform guesses the platform from a post URL's hostname
func DetectPlatform(rawURL string) (Platform, bool) {
	raw := strings.TrimSpace(rawURL)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if p, ok := platformsByHost[host]; ok {
		return p, true
	}

	// Try without www. prefix
	if strings.HasPrefix(host, "www.") {
		if p, ok := platformsByHost[host[4:]]; ok {
			return p, true
		}
	}
	return "", false
}

// Options configures a Router
type Options struct {
	Endpoints   Endpoints
	RapidAPIKey string
	Logger      *log.Logger
}

// Router maps platform identifiers to their resolvers
type Router struct {
	resolvers map[Platform]*Resolver
}

// NewRouter builds one resolver per supported platform, all sharing client
func NewRouter(client requester.Requester, opts Options) *Router {
	e := opts.Endpoints.withDefaults()
	return &Router{
		resolvers: map[Platform]*Resolver{
			TikTok:    NewResolver(TikTok, client, opts.Logger, tiktokMethods(e)...),
			Facebook:  NewResolver(Facebook, client, opts.Logger, facebookMethods(e)...),
			Instagram: NewResolver(Instagram, client, opts.Logger, instagramMethods(e, opts.RapidAPIKey)...),
			YouTube:   NewResolver(YouTube, client, opts.Logger, youtubeMethods(e)...),
		},
	}
}

// Route returns the resolver for an identifier, compared trimmed and case-insensitively
func (r *Router) Route(identifier string) (*Resolver, error) {
	p, ok := ParsePlatform(identifier)
	if !ok {
		return nil, ErrUnsupportedPlatform
	}
	res, ok := r.resolvers[p]
	if !ok {
		return nil, ErrUnsupportedPlatform
	}
	return res, nil
}

// Platforms returns the supported identifiers in display order
func (r *Router) Platforms() []Platform {
	out := make([]Platform, 0, len(r.resolvers))
	for _, p := range Platforms {
		if _, ok := r.resolvers[p]; ok {
			out = append(out, p)
		}
	}
	return out
}
