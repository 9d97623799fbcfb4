package resolver

// savefrom: {"url":..,"thumb":..,"meta":{"title":..,"author":..,"duration":..}}
type saveFromResponse struct {
	URL   looseString          `json:"url"`
	Thumb looseString          `json:"thumb"`
	Meta  object[saveFromMeta] `json:"meta"`
}

type saveFromMeta struct {
	Title    looseString `json:"title"`
	Author   looseString `json:"author"`
	Duration looseString `json:"duration"`
}

func normalizeSaveFrom(body []byte, originalURL string) (VideoResult, error) {
	var resp saveFromResponse
	if err := decode(body, &resp); err != nil {
		return VideoResult{}, err
	}
	meta := resp.Meta.Value
	return Facebook.build(media{
		Title:     meta.Title.String(),
		Author:    meta.Author.String(),
		Duration:  meta.Duration.String(),
		Quality:   "HD",
		VideoURL:  resp.URL.String(),
		Thumbnail: resp.Thumb.String(),
	}, originalURL)
}

// fbdownloader: {"links":{"hd":..,"sd":..},"title":..,"author":..,"duration":..,"thumbnail":..}
type fbDownloaderResponse struct {
	Links     object[fbDownloaderLinks] `json:"links"`
	Title     looseString               `json:"title"`
	Author    looseString               `json:"author"`
	Duration  looseString               `json:"duration"`
	Thumbnail looseString               `json:"thumbnail"`
}

type fbDownloaderLinks struct {
	HD looseString `json:"hd"`
	SD looseString `json:"sd"`
}

// normalizeFBDownloader prefers the HD link and falls back to SD
func normalizeFBDownloader(body []byte, originalURL string) (VideoResult, error) {
	var resp fbDownloaderResponse
	if err := decode(body, &resp); err != nil {
		return VideoResult{}, err
	}

	quality, videoURL := "HD", resp.Links.Value.HD.String()
	if videoURL == "" {
		quality, videoURL = "SD", resp.Links.Value.SD.String()
	}

	return Facebook.build(media{
		Title:     resp.Title.String(),
		Author:    resp.Author.String(),
		Duration:  resp.Duration.String(),
		Quality:   quality,
		VideoURL:  videoURL,
		Thumbnail: resp.Thumbnail.String(),
	}, originalURL)
}

func facebookMethods(e Endpoints) []Method {
	return []Method{
		analyzerMethod(e.Analyzer, normalizeFacebookAnalyzer),
		{
			Name:      "savefrom",
			Build:     getCall(e.SaveFrom, nil, nil),
			Normalize: normalizeSaveFrom,
		},
		{
			Name:      "fbdownloader",
			Build:     getCall(e.FBDownloader, nil, nil),
			Normalize: normalizeFBDownloader,
		},
	}
}
