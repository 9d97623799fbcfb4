package resolver

import (
	"net/url"
)

// The y2mate analyzer serves both Facebook and YouTube:
// {"title":..,"author":..,"channel":..,"t":..,"thumb":..,"links":{"mp4":{"1080":{"url":..,"size":..}}}}
type analyzerResponse struct {
	Title   looseString           `json:"title"`
	Author  looseString           `json:"author"`
	Channel looseString           `json:"channel"`
	T       looseString           `json:"t"`
	Thumb   looseString           `json:"thumb"`
	Links   object[analyzerLinks] `json:"links"`
}

type analyzerLinks struct {
	MP4 renditions `json:"mp4"`
}

func analyzerForm(sourceURL string) url.Values {
	return url.Values{
		"k_query": {sourceURL},
		"k_page":  {"home"},
		"hl":      {"en"},
		"q_auto":  {"1"},
	}
}

func analyzerMethod(endpoint string, normalize Normalizer) Method {
	return Method{
		Name:      "y2mate",
		Build:     postFormCall(endpoint, analyzerForm, true),
		Normalize: normalize,
	}
}

// parseAnalyzer decodes the body and picks the best mp4 rendition
func parseAnalyzer(body []byte) (analyzerResponse, rendition, error) {
	var resp analyzerResponse
	if err := decode(body, &resp); err != nil {
		return resp, rendition{}, err
	}
	if !resp.Links.Set {
		return resp, rendition{}, ErrNotUsable
	}
	best, ok := bestRendition(resp.Links.Value.MP4)
	if !ok {
		return resp, rendition{}, ErrNotUsable
	}
	return resp, best, nil
}

func normalizeFacebookAnalyzer(body []byte, originalURL string) (VideoResult, error) {
	resp, best, err := parseAnalyzer(body)
	if err != nil {
		return VideoResult{}, err
	}
	return Facebook.build(media{
		Title:     resp.Title.String(),
		Author:    resp.Author.String(),
		Duration:  resp.T.String(),
		Quality:   qualityLabel(best.Key),
		VideoURL:  best.Format.URL.String(),
		Thumbnail: resp.Thumb.String(),
		Formats:   resp.Links.Value.MP4.formats(),
	}, originalURL)
}

func normalizeYouTubeAnalyzer(body []byte, originalURL string) (VideoResult, error) {
	resp, best, err := parseAnalyzer(body)
	if err != nil {
		return VideoResult{}, err
	}

	thumbnail := resp.Thumb.String()
	if id := YouTubeVideoID(originalURL); id != "" {
		thumbnail = YouTubeThumbnail(id)
	}

	return YouTube.build(media{
		Title:     resp.Title.String(),
		Author:    resp.Channel.String(),
		Duration:  resp.T.String(),
		Quality:   qualityLabel(best.Key),
		VideoURL:  best.Format.URL.String(),
		Thumbnail: thumbnail,
		Formats:   resp.Links.Value.MP4.formats(),
	}, originalURL)
}
