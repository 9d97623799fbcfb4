package resolver

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// tikwm: {"code":0,"data":{"hdplay":..,"play":..,"title":..,"author":{"nickname":..},"duration":12,"cover":..}}
type tikwmResponse struct {
	Code looseString       `json:"code"`
	Data object[tikwmData] `json:"data"`
}

type tikwmData struct {
	HDPlay   looseString         `json:"hdplay"`
	Play     looseString         `json:"play"`
	Title    looseString         `json:"title"`
	Author   object[tikwmAuthor] `json:"author"`
	Duration looseString         `json:"duration"`
	Cover    looseString         `json:"cover"`
}

type tikwmAuthor struct {
	Nickname looseString `json:"nickname"`
}

func normalizeTikWM(body []byte, originalURL string) (VideoResult, error) {
	var resp tikwmResponse
	if err := decode(body, &resp); err != nil {
		return VideoResult{}, err
	}
	if resp.Code.String() != "0" || !resp.Data.Set {
		return VideoResult{}, ErrNotUsable
	}

	d := resp.Data.Value
	videoURL := d.HDPlay.String()
	if videoURL == "" {
		videoURL = d.Play.String()
	}

	duration := ""
	if s := d.Duration.String(); s != "" {
		duration = wholeSeconds(s) + "s"
	}

	return TikTok.build(media{
		Title:       d.Title.String(),
		Author:      d.Author.Value.Nickname.String(),
		Duration:    duration,
		Quality:     "HD",
		VideoURL:    videoURL,
		Thumbnail:   d.Cover.String(),
		NoWatermark: boolPtr(true),
	}, originalURL)
}

// tikmate: {"video_url":..,"author_name":..,"watermark":false}
type tikmateResponse struct {
	VideoURL   looseString `json:"video_url"`
	AuthorName looseString `json:"author_name"`
	Watermark  *looseBool  `json:"watermark"`
}

func normalizeTikMate(body []byte, originalURL string) (VideoResult, error) {
	var resp tikmateResponse
	if err := decode(body, &resp); err != nil {
		return VideoResult{}, err
	}

	noWatermark := true
	if resp.Watermark != nil {
		noWatermark = !bool(*resp.Watermark)
	}

	return TikTok.build(media{
		Author:      resp.AuthorName.String(),
		Duration:    "15-60s",
		Quality:     "HD",
		VideoURL:    resp.VideoURL.String(),
		NoWatermark: boolPtr(noWatermark),
	}, originalURL)
}

func tiktokMethods(e Endpoints) []Method {
	return []Method{
		{
			Name:      "tikwm",
			Build:     getCall(e.TikWM, url.Values{"hd": {"1"}}, nil),
			Normalize: normalizeTikWM,
		},
		{
			Name:      "tikmate",
			Build:     getCall(e.TikMate, nil, nil),
			Normalize: normalizeTikMate,
		},
	}
}

// wholeSeconds drops a zero fraction so 12.0 renders as 12
func wholeSeconds(s string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1e15 {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}
