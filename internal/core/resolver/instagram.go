package resolver

import (
	"errors"
	"net/url"
)

var errMissingAPIKey = errors.New("rapidapi key not configured")

// saveig: {"title":..,"data":[{"url":..,"author":..,"cover":..}]}
type saveIGResponse struct {
	Title looseString       `json:"title"`
	Data  list[saveIGMedia] `json:"data"`
}

type saveIGMedia struct {
	URL    looseString `json:"url"`
	Author looseString `json:"author"`
	Cover  looseString `json:"cover"`
}

// normalizeSaveIG uses the first media item only
func normalizeSaveIG(body []byte, originalURL string) (VideoResult, error) {
	var resp saveIGResponse
	if err := decode(body, &resp); err != nil {
		return VideoResult{}, err
	}
	if len(resp.Data) == 0 {
		return VideoResult{}, ErrNotUsable
	}
	item := resp.Data[0]
	return Instagram.build(media{
		Title:     resp.Title.String(),
		Author:    item.Author.String(),
		Quality:   "HD",
		VideoURL:  item.URL.String(),
		Thumbnail: item.Cover.String(),
	}, originalURL)
}

// rapidapi: {"media": "https://.." | ["https://..", ..], "title":..,"author":..,"duration":..,"thumbnail":..}
type rapidAPIResponse struct {
	Media     stringOrList `json:"media"`
	Title     looseString  `json:"title"`
	Author    looseString  `json:"author"`
	Duration  looseString  `json:"duration"`
	Thumbnail looseString  `json:"thumbnail"`
}

func normalizeRapidAPI(body []byte, originalURL string) (VideoResult, error) {
	var resp rapidAPIResponse
	if err := decode(body, &resp); err != nil {
		return VideoResult{}, err
	}
	return Instagram.build(media{
		Title:     resp.Title.String(),
		Author:    resp.Author.String(),
		Duration:  resp.Duration.String(),
		Quality:   "HD",
		VideoURL:  resp.Media.First(),
		Thumbnail: resp.Thumbnail.String(),
	}, originalURL)
}

// instadownloader: {"video":..,"title":..,"author":..,"duration":..,"thumbnail":..}
type instaDownloaderResponse struct {
	Video     looseString `json:"video"`
	Title     looseString `json:"title"`
	Author    looseString `json:"author"`
	Duration  looseString `json:"duration"`
	Thumbnail looseString `json:"thumbnail"`
}

func normalizeInstaDownloader(body []byte, originalURL string) (VideoResult, error) {
	var resp instaDownloaderResponse
	if err := decode(body, &resp); err != nil {
		return VideoResult{}, err
	}
	return Instagram.build(media{
		Title:     resp.Title.String(),
		Author:    resp.Author.String(),
		Duration:  resp.Duration.String(),
		Quality:   "HD",
		VideoURL:  resp.Video.String(),
		Thumbnail: resp.Thumbnail.String(),
	}, originalURL)
}

// rapidAPICall adds the RapidAPI key and host headers; without a key the method is skipped
func rapidAPICall(endpoint, apiKey string) func(string) (Call, error) {
	host := ""
	if u, err := url.Parse(endpoint); err == nil {
		host = u.Host
	}
	inner := getCall(endpoint, nil, map[string]string{
		"X-RapidAPI-Key":  apiKey,
		"X-RapidAPI-Host": host,
	})
	return func(sourceURL string) (Call, error) {
		if apiKey == "" {
			return Call{}, errMissingAPIKey
		}
		return inner(sourceURL)
	}
}

func instagramMethods(e Endpoints, rapidAPIKey string) []Method {
	return []Method{
		{
			Name: "saveig",
			Build: postFormCall(e.SaveIG, func(sourceURL string) url.Values {
				return url.Values{"q": {sourceURL}, "t": {"media"}, "lang": {"en"}}
			}, true),
			Normalize: normalizeSaveIG,
		},
		{
			Name:      "rapidapi",
			Build:     rapidAPICall(e.InstagramRapidAPI, rapidAPIKey),
			Normalize: normalizeRapidAPI,
		},
		{
			Name:      "instadownloader",
			Build:     getCall(e.InstaDownloader, nil, nil),
			Normalize: normalizeInstaDownloader,
		},
	}
}
