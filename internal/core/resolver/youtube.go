package resolver

import (
	"net/url"
	"regexp"
	"strings"
)

var youtubeIDRegex = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([^&\n?#/]+)`)

// YouTubeVideoID extracts the video id from watch, youtu.be, embed and shorts URLs
func YouTubeVideoID(rawURL string) string {
	if m := youtubeIDRegex.FindStringSubmatch(rawURL); len(m) > 1 {
		return m[1]
	}
	// watch URLs with v= not in first position, e.g. watch?feature=share&v=ID
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !strings.Contains(strings.ToLower(u.Hostname()), "youtube.com") {
		return ""
	}
	return u.Query().Get("v")
}

// YouTubeThumbnail returns the max-resolution thumbnail URL for a video id
func YouTubeThumbnail(id string) string {
	return "https://img.youtube.com/vi/" + id + "/maxresdefault.jpg"
}

// loader.to: {"success":true,"download_url":..,"title":..,"author":..,"duration":..,"quality":..,"thumbnail":..}
type loaderToResponse struct {
	Success     looseBool   `json:"success"`
	DownloadURL looseString `json:"download_url"`
	Title       looseString `json:"title"`
	Author      looseString `json:"author"`
	Duration    looseString `json:"duration"`
	Quality     looseString `json:"quality"`
	Thumbnail   looseString `json:"thumbnail"`
}

func normalizeLoaderTo(body []byte, originalURL string) (VideoResult, error) {
	var resp loaderToResponse
	if err := decode(body, &resp); err != nil {
		return VideoResult{}, err
	}
	if !resp.Success {
		return VideoResult{}, ErrNotUsable
	}
	return YouTube.build(media{
		Title:     resp.Title.String(),
		Author:    resp.Author.String(),
		Duration:  resp.Duration.String(),
		Quality:   resp.Quality.String(),
		VideoURL:  resp.DownloadURL.String(),
		Thumbnail: resp.Thumbnail.String(),
	}, originalURL)
}

// yt5s: {"title":..,"channel":..,"t":..,"links":{"mp4":[{"url":..}]}}
type yt5sResponse struct {
	Title   looseString           `json:"title"`
	Channel looseString           `json:"channel"`
	T       looseString           `json:"t"`
	Links   object[analyzerLinks] `json:"links"`
}

// normalizeYT5s takes the first listed rendition
func normalizeYT5s(body []byte, originalURL string) (VideoResult, error) {
	var resp yt5sResponse
	if err := decode(body, &resp); err != nil {
		return VideoResult{}, err
	}
	mp4 := resp.Links.Value.MP4
	if len(mp4) == 0 {
		return VideoResult{}, ErrNotUsable
	}
	return YouTube.build(media{
		Title:    resp.Title.String(),
		Author:   resp.Channel.String(),
		Duration: resp.T.String(),
		Quality:  "HD",
		VideoURL: mp4[0].Format.URL.String(),
	}, originalURL)
}

func youtubeMethods(e Endpoints) []Method {
	return []Method{
		{
			Name: "loader.to",
			Build: postFormCall(e.LoaderTo, func(sourceURL string) url.Values {
				return url.Values{"url": {sourceURL}, "format": {"mp4"}}
			}, true),
			Normalize: normalizeLoaderTo,
		},
		analyzerMethod(e.Analyzer, normalizeYouTubeAnalyzer),
		{
			Name: "yt5s",
			Build: postFormCall(e.YT5s, func(sourceURL string) url.Values {
				return url.Values{"q": {sourceURL}, "vt": {"home"}}
			}, false),
			Normalize: normalizeYT5s,
		},
	}
}
