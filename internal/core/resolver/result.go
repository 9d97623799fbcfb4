package resolver

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Platform identifies a supported social-media platform
type Platform string

const (
	TikTok    Platform = "tiktok"
	Facebook  Platform = "facebook"
	Instagram Platform = "instagram"
	YouTube   Platform = "youtube"
)

// Platforms lists every supported platform in display order
var Platforms = []Platform{TikTok, Facebook, Instagram, YouTube}

// ParsePlatform normalizes an identifier (trimmed, case-insensitive)
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case TikTok, Facebook, Instagram, YouTube:
		return p, true
	}
	return "", false
}

// Name returns the human-readable platform name
func (p Platform) Name() string {
	switch p {
	case TikTok:
		return "TikTok"
	case Facebook:
		return "Facebook"
	case Instagram:
		return "Instagram"
	case YouTube:
		return "YouTube"
	}
	return string(p)
}

func (p Platform) defaultTitle() string {
	return p.Name() + " Video"
}

func (p Platform) defaultAuthor() string {
	if p == YouTube {
		return "YouTube Channel"
	}
	return p.Name() + " User"
}

// Failure messages returned to callers
const (
	MsgInputRequired       = "URL and platform are required"
	MsgUnsupportedPlatform = "Unsupported platform"
)

// exhaustedMessage is the terminal message once every method for p has failed
func exhaustedMessage(p Platform) string {
	switch p {
	case TikTok:
		return "Could not fetch TikTok video. Please try another link."
	case Facebook:
		return "Could not fetch Facebook video. Try a different link."
	}
	return "Could not fetch " + p.Name() + " video"
}

// Format is one rendition exposed by an upstream service
type Format struct {
	URL     string `json:"url"`
	Quality string `json:"q,omitempty"`
	Label   string `json:"q_text,omitempty"`
	Size    string `json:"size,omitempty"`
	Ext     string `json:"f,omitempty"`
	Key     string `json:"k,omitempty"`
}

// VideoResult is the canonical outcome of a resolution.
// Build it with Failure or through a normalizer; a success always carries a VideoURL.
type VideoResult struct {
	Success     bool
	Platform    Platform
	Title       string
	Author      string
	Duration    string
	Quality     string
	VideoURL    string
	Thumbnail   string
	OriginalURL string
	NoWatermark *bool
	Formats     map[string]Format
	Error       string
}

// Failure builds an unsuccessful result
func Failure(msg string) VideoResult {
	return VideoResult{Success: false, Error: msg}
}

// Usable reports whether the result satisfies the success invariant
func (r VideoResult) Usable() bool {
	return r.Success && strings.TrimSpace(r.VideoURL) != ""
}

type successBody struct {
	Success     bool              `json:"success"`
	Platform    Platform          `json:"platform"`
	Title       string            `json:"title"`
	Author      string            `json:"author"`
	Duration    string            `json:"duration"`
	Quality     string            `json:"quality"`
	VideoURL    string            `json:"videoUrl"`
	Thumbnail   string            `json:"thumbnail"`
	OriginalURL string            `json:"originalUrl"`
	NoWatermark *bool             `json:"noWatermark,omitempty"`
	Formats     map[string]Format `json:"formats,omitempty"`
}

type failureBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MarshalJSON emits the success shape only for usable results; everything else is a failure
func (r VideoResult) MarshalJSON() ([]byte, error) {
	if !r.Usable() {
		msg := r.Error
		if msg == "" {
			msg = exhaustedMessage(r.Platform)
		}
		return json.Marshal(failureBody{Success: false, Error: msg})
	}
	return json.Marshal(successBody{
		Success:     true,
		Platform:    r.Platform,
		Title:       r.Title,
		Author:      r.Author,
		Duration:    r.Duration,
		Quality:     r.Quality,
		VideoURL:    r.VideoURL,
		Thumbnail:   r.Thumbnail,
		OriginalURL: r.OriginalURL,
		NoWatermark: r.NoWatermark,
		Formats:     r.Formats,
	})
}

// media is what a normalizer extracts before defaults are applied
type media struct {
	Title       string
	Author      string
	Duration    string
	Quality     string
	VideoURL    string
	Thumbnail   string
	NoWatermark *bool
	Formats     map[string]Format
}

// build turns extracted media into a success result, or ErrNotUsable when no media URL exists
func (p Platform) build(m media, originalURL string) (VideoResult, error) {
	videoURL := strings.TrimSpace(m.VideoURL)
	if videoURL == "" {
		return VideoResult{}, ErrNotUsable
	}
	return VideoResult{
		Success:     true,
		Platform:    p,
		Title:       orDefault(m.Title, p.defaultTitle()),
		Author:      orDefault(m.Author, p.defaultAuthor()),
		Duration:    orDefault(m.Duration, "N/A"),
		Quality:     orDefault(m.Quality, "HD"),
		VideoURL:    videoURL,
		Thumbnail:   strings.TrimSpace(m.Thumbnail),
		OriginalURL: originalURL,
		NoWatermark: m.NoWatermark,
		Formats:     m.Formats,
	}, nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

func boolPtr(b bool) *bool {
	return &b
}
