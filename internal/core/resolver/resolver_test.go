package resolver

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/guiyumin/vlink/internal/core/requester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var endpoints = DefaultEndpoints()

func newTestRouter(fake *fakeRequester, rapidKey string) *Router {
	return NewRouter(fake, Options{Endpoints: endpoints, RapidAPIKey: rapidKey})
}

func resolve(t *testing.T, fake *fakeRequester, platform, sourceURL string) VideoResult {
	t.Helper()
	res, err := newTestRouter(fake, "").Route(platform)
	require.NoError(t, err)
	return res.Resolve(context.Background(), sourceURL)
}

func TestTikTokPrimary(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.TikWM: ok(`{"code":0,"data":{"hdplay":"https://x/video.mp4","title":"T","author":{"nickname":"A"},"duration":12,"cover":"https://x/c.jpg"}}`),
	})

	result := resolve(t, fake, "tiktok", "https://www.tiktok.com/@a/video/1")

	require.True(t, result.Usable())
	assert.Equal(t, TikTok, result.Platform)
	assert.Equal(t, "T", result.Title)
	assert.Equal(t, "A", result.Author)
	assert.Equal(t, "12s", result.Duration)
	assert.Equal(t, "HD", result.Quality)
	assert.Equal(t, "https://x/video.mp4", result.VideoURL)
	assert.Equal(t, "https://x/c.jpg", result.Thumbnail)
	assert.Equal(t, "https://www.tiktok.com/@a/video/1", result.OriginalURL)
	require.NotNil(t, result.NoWatermark)
	assert.True(t, *result.NoWatermark)

	// tikmate must not be consulted after a success
	require.Len(t, fake.calls, 1)
	u, err := url.Parse(fake.calls[0].URL)
	require.NoError(t, err)
	assert.Equal(t, "1", u.Query().Get("hd"))
	assert.Equal(t, "https://www.tiktok.com/@a/video/1", u.Query().Get("url"))
	assert.Equal(t, http.MethodGet, fake.calls[0].Method)
}

func TestTikTokDurationSeconds(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`12`, "12s"},
		{`12.0`, "12s"},
		{`"30"`, "30s"},
		{`12.5`, "12.5s"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			fake := newFake(map[string]requester.Outcome{
				endpoints.TikWM: ok(`{"code":0,"data":{"play":"https://x/v.mp4","duration":` + tt.raw + `}}`),
			})

			result := resolve(t, fake, "tiktok", "https://www.tiktok.com/@a/video/1")

			require.True(t, result.Usable())
			assert.Equal(t, tt.want, result.Duration)
		})
	}
}

func TestTikTokFallsBackToPlay(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.TikWM: ok(`{"code":"0","data":{"play":"https://x/sd.mp4"}}`),
	})

	result := resolve(t, fake, "tiktok", "https://vm.tiktok.com/x")

	require.True(t, result.Usable())
	assert.Equal(t, "https://x/sd.mp4", result.VideoURL)
	assert.Equal(t, "TikTok Video", result.Title)
	assert.Equal(t, "TikTok User", result.Author)
	assert.Equal(t, "N/A", result.Duration)
}

func TestTikTokSecondaryAfterBadCode(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.TikWM:   ok(`{"code":-1,"msg":"Url parsing is failed!"}`),
		endpoints.TikMate: ok(`{"video_url":"https://m/v.mp4","author_name":"N","watermark":true}`),
	})

	result := resolve(t, fake, "tiktok", "https://tiktok.com/v/2")

	require.True(t, result.Usable())
	assert.Equal(t, "https://m/v.mp4", result.VideoURL)
	assert.Equal(t, "N", result.Author)
	assert.Equal(t, "TikTok Video", result.Title)
	assert.Equal(t, "15-60s", result.Duration)
	require.NotNil(t, result.NoWatermark)
	assert.False(t, *result.NoWatermark)
	assert.Len(t, fake.calls, 2)
}

func TestTikMateWatermarkDefaultsToClean(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.TikMate: ok(`{"video_url":"https://m/v.mp4"}`),
	})

	result := resolve(t, fake, "tiktok", "https://tiktok.com/v/3")

	require.True(t, result.Usable())
	require.NotNil(t, result.NoWatermark)
	assert.True(t, *result.NoWatermark)
}

func TestTikTokExhausted(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.TikWM:   ok(`<html>blocked</html>`),
		endpoints.TikMate: status(503),
	})

	result := resolve(t, fake, "tiktok", "https://tiktok.com/v/4")

	assert.False(t, result.Success)
	assert.Equal(t, "Could not fetch TikTok video. Please try another link.", result.Error)
	assert.Len(t, fake.calls, 2)
}

func TestFacebookFallbackChain(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.Analyzer: status(500),
		endpoints.SaveFrom: ok(`{"url":"https://y/v.mp4","meta":{"title":"F"}}`),
	})

	result := resolve(t, fake, "facebook", "https://www.facebook.com/watch?v=9")

	require.True(t, result.Usable())
	assert.Equal(t, "https://y/v.mp4", result.VideoURL)
	assert.Equal(t, "F", result.Title)
	assert.Equal(t, "HD", result.Quality)
	assert.Equal(t, "Facebook User", result.Author)
	assert.Equal(t, "N/A", result.Duration)
	urls := fake.urls()
	require.Len(t, urls, 2)
	assert.Equal(t, endpoints.Analyzer, urls[0])
	assert.True(t, strings.HasPrefix(urls[1], endpoints.SaveFrom))
}

func TestFacebookAnalyzerPicksGreatestQuality(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.Analyzer: ok(`{"title":"Clip","author":"Page","t":"1:05","thumb":"https://t/1.jpg","links":{"mp4":{"360":{"url":"u1","size":"3 MB"},"720":{"url":"u2"},"1080":{"url":"u3"}}}}`),
	})

	result := resolve(t, fake, "facebook", "https://fb.watch/abc")

	require.True(t, result.Usable())
	assert.Equal(t, "u3", result.VideoURL)
	assert.Equal(t, "1080p", result.Quality)
	assert.Equal(t, "Page", result.Author)
	assert.Equal(t, "1:05", result.Duration)
	assert.Equal(t, "https://t/1.jpg", result.Thumbnail)
	require.Len(t, result.Formats, 3)
	assert.Equal(t, "3 MB", result.Formats["360"].Size)

	call := fake.calls[0]
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "XMLHttpRequest", call.Headers["X-Requested-With"])
	form, err := url.ParseQuery(call.Body)
	require.NoError(t, err)
	assert.Equal(t, "https://fb.watch/abc", form.Get("k_query"))
	assert.Equal(t, "home", form.Get("k_page"))
	assert.Equal(t, "en", form.Get("hl"))
	assert.Equal(t, "1", form.Get("q_auto"))
}

func TestFacebookAnalyzerArrayRenditions(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.Analyzer: ok(`{"title":"Clip","links":{"mp4":[{"url":"https://a/1080.mp4","q":"1080p"},{"url":"https://a/360.mp4","q":"360p"}]}}`),
	})

	result := resolve(t, fake, "facebook", "https://fb.watch/abc")

	require.True(t, result.Usable())
	assert.Equal(t, "https://a/1080.mp4", result.VideoURL)
	assert.Equal(t, "1080p", result.Quality)
	require.Len(t, result.Formats, 2)
	assert.Equal(t, "https://a/360.mp4", result.Formats["360p"].URL)
}

func TestFacebookAnalyzerSingleRenditionHasNoFormats(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.Analyzer: ok(`{"title":"Clip","links":{"mp4":{"720":{"url":"https://a/720.mp4"}}}}`),
	})

	result := resolve(t, fake, "facebook", "https://fb.watch/abc")

	require.True(t, result.Usable())
	assert.Equal(t, "720p", result.Quality)
	assert.Nil(t, result.Formats)
}

func TestFacebookAnalyzerWithoutLinksFallsThrough(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.Analyzer:     ok(`{"title":"Clip","links":{"mp4":{}}}`),
		endpoints.SaveFrom:     ok(`{"url":""}`),
		endpoints.FBDownloader: ok(`{"links":{"sd":"https://f/sd.mp4"},"title":"Low"}`),
	})

	result := resolve(t, fake, "facebook", "https://facebook.com/v/1")

	require.True(t, result.Usable())
	assert.Equal(t, "https://f/sd.mp4", result.VideoURL)
	assert.Equal(t, "SD", result.Quality)
	assert.Equal(t, "Low", result.Title)
	assert.Len(t, fake.calls, 3)
}

func TestFBDownloaderPrefersHD(t *testing.T) {
	body := []byte(`{"links":{"hd":"https://f/hd.mp4","sd":"https://f/sd.mp4"}}`)
	result, err := normalizeFBDownloader(body, "https://facebook.com/v/1")
	require.NoError(t, err)
	assert.Equal(t, "https://f/hd.mp4", result.VideoURL)
	assert.Equal(t, "HD", result.Quality)
}

func TestFacebookExhausted(t *testing.T) {
	fake := newFake(nil)

	result := resolve(t, fake, "facebook", "https://facebook.com/v/1")

	assert.False(t, result.Success)
	assert.Equal(t, "Could not fetch Facebook video. Try a different link.", result.Error)
	assert.Len(t, fake.calls, 3)
}

func TestInstagramSkipsKeyedMethodWithoutKey(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.SaveIG:          ok(`{"data":[]}`),
		endpoints.InstaDownloader: ok(`{"video":"https://i/v.mp4"}`),
	})

	result := resolve(t, fake, "instagram", "https://www.instagram.com/reel/x")

	require.True(t, result.Usable())
	assert.Equal(t, "https://i/v.mp4", result.VideoURL)
	assert.Equal(t, "Instagram Video", result.Title)
	assert.Equal(t, "Instagram User", result.Author)
	// rapidapi never reached the network
	assert.Len(t, fake.calls, 2)
}

func TestInstagramKeyedMethod(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.InstagramRapidAPI: ok(`{"media":["https://r/1.mp4","https://r/2.mp4"],"title":"Reel"}`),
	})
	res, err := newTestRouter(fake, "secret").Route("instagram")
	require.NoError(t, err)

	result := res.Resolve(context.Background(), "https://instagram.com/p/1")

	require.True(t, result.Usable())
	assert.Equal(t, "https://r/1.mp4", result.VideoURL)
	assert.Equal(t, "Reel", result.Title)
	require.Len(t, fake.calls, 2)
	call := fake.calls[1]
	assert.Equal(t, "secret", call.Headers["X-RapidAPI-Key"])
	assert.Equal(t, "instagram-downloader-download-instagram-videos-stories.p.rapidapi.com", call.Headers["X-RapidAPI-Host"])
}

func TestSaveIGUsesFirstItem(t *testing.T) {
	body := []byte(`{"title":"Post","data":[{"url":"https://s/1.mp4","author":"me","cover":"https://s/c.jpg"},{"url":"https://s/2.mp4"}]}`)
	result, err := normalizeSaveIG(body, "https://instagram.com/p/1")
	require.NoError(t, err)
	assert.Equal(t, "https://s/1.mp4", result.VideoURL)
	assert.Equal(t, "me", result.Author)
	assert.Equal(t, "Post", result.Title)
	assert.Equal(t, "https://s/c.jpg", result.Thumbnail)
}

func TestRapidAPISingleMedia(t *testing.T) {
	result, err := normalizeRapidAPI([]byte(`{"media":"https://r/one.mp4"}`), "u")
	require.NoError(t, err)
	assert.Equal(t, "https://r/one.mp4", result.VideoURL)

	_, err = normalizeRapidAPI([]byte(`{"media":[]}`), "u")
	assert.ErrorIs(t, err, ErrNotUsable)
}

func TestInstagramExhausted(t *testing.T) {
	result := resolve(t, newFake(nil), "instagram", "https://instagram.com/p/1")
	assert.False(t, result.Success)
	assert.Equal(t, "Could not fetch Instagram video", result.Error)
}

func TestYouTubeDownloadTrigger(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.LoaderTo: ok(`{"success":true,"download_url":"https://l/v.mp4","title":"Song"}`),
	})

	result := resolve(t, fake, "youtube", "https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	require.True(t, result.Usable())
	assert.Equal(t, "https://l/v.mp4", result.VideoURL)
	assert.Equal(t, "Song", result.Title)
	assert.Equal(t, "YouTube Channel", result.Author)
	assert.Equal(t, "HD", result.Quality)

	form, err := url.ParseQuery(fake.calls[0].Body)
	require.NoError(t, err)
	assert.Equal(t, "mp4", form.Get("format"))
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", form.Get("url"))
}

func TestYouTubeThumbnailDerivation(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.LoaderTo: ok(`{"success":false,"download_url":"https://l/ignored.mp4"}`),
		endpoints.Analyzer: ok(`{"title":"Y","channel":"C","links":{"mp4":{"360":{"url":"u1"},"720":{"url":"u2"},"1080":{"url":"u3"}}}}`),
	})

	result := resolve(t, fake, "youtube", "https://youtu.be/abc123")

	require.True(t, result.Usable())
	assert.Equal(t, "https://img.youtube.com/vi/abc123/maxresdefault.jpg", result.Thumbnail)
	assert.Equal(t, "u3", result.VideoURL)
	assert.Equal(t, "1080p", result.Quality)
	assert.Equal(t, "C", result.Author)
	assert.Len(t, fake.calls, 2)
}

func TestYouTubeThirdMethodUsesFirstEntry(t *testing.T) {
	fake := newFake(map[string]requester.Outcome{
		endpoints.YT5s: ok(`{"title":"Z","links":{"mp4":[{"url":"https://y/first.mp4"},{"url":"https://y/second.mp4"}]}}`),
	})

	result := resolve(t, fake, "youtube", "https://youtube.com/shorts/s1")

	require.True(t, result.Usable())
	assert.Equal(t, "https://y/first.mp4", result.VideoURL)
	assert.Equal(t, "HD", result.Quality)
	assert.Empty(t, fake.calls[2].Headers["X-Requested-With"])
}

func TestYouTubeExhausted(t *testing.T) {
	result := resolve(t, newFake(nil), "youtube", "https://youtu.be/x")
	assert.False(t, result.Success)
	assert.Equal(t, "Could not fetch YouTube video", result.Error)
}

func TestResolveStopsOnCancelledContext(t *testing.T) {
	fake := newFake(nil)
	res, err := newTestRouter(fake, "").Route("facebook")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := res.Resolve(ctx, "https://facebook.com/v/1")

	assert.False(t, result.Success)
	assert.Empty(t, fake.calls)
}

func TestAttemptClassification(t *testing.T) {
	var buf bytes.Buffer
	fake := newFake(map[string]requester.Outcome{
		endpoints.TikMate: status(429),
	})
	r := NewResolver(TikTok, fake, log.New(&buf, "", 0), tiktokMethods(endpoints)...)

	_, err := r.attempt(context.Background(), r.methods[0], "u")
	var attemptErr *AttemptError
	require.True(t, errors.As(err, &attemptErr))
	assert.Equal(t, KindTransport, attemptErr.Kind)
	assert.ErrorIs(t, err, errUnreachable)

	_, err = r.attempt(context.Background(), r.methods[1], "u")
	require.True(t, errors.As(err, &attemptErr))
	assert.Equal(t, KindShape, attemptErr.Kind)
	assert.Equal(t, "tikmate", attemptErr.Method)

	r.Resolve(context.Background(), "u")
	assert.Contains(t, buf.String(), "[tiktok] tikwm (transport)")
	assert.Contains(t, buf.String(), "[tiktok] tikmate (shape): unexpected status 429")
}

func TestMalformedBodies(t *testing.T) {
	tests := []struct {
		name      string
		normalize Normalizer
		body      string
	}{
		{"tikwm html", normalizeTikWM, `<!DOCTYPE html>`},
		{"tikwm empty", normalizeTikWM, ``},
		{"tikwm array data", normalizeTikWM, `{"code":0,"data":[]}`},
		{"tikwm no urls", normalizeTikWM, `{"code":0,"data":{"title":"x"}}`},
		{"tikmate string", normalizeTikMate, `"ok"`},
		{"analyzer links string", normalizeFacebookAnalyzer, `{"links":"none"}`},
		{"analyzer mp4 without urls", normalizeFacebookAnalyzer, `{"links":{"mp4":{"720":{"size":"1 MB"}}}}`},
		{"savefrom meta only", normalizeSaveFrom, `{"meta":{"title":"x"}}`},
		{"fbdownloader empty links", normalizeFBDownloader, `{"links":{}}`},
		{"saveig data object", normalizeSaveIG, `{"data":{"url":"x"}}`},
		{"saveig item without url", normalizeSaveIG, `{"data":[{"author":"a"}]}`},
		{"rapidapi null media", normalizeRapidAPI, `{"media":null}`},
		{"instadownloader nested video", normalizeInstaDownloader, `{"video":{"src":"x"}}`},
		{"loader.to failed", normalizeLoaderTo, `{"success":false}`},
		{"loader.to no url", normalizeLoaderTo, `{"success":true}`},
		{"youtube analyzer null", normalizeYouTubeAnalyzer, `null`},
		{"yt5s empty list", normalizeYT5s, `{"links":{"mp4":[]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.normalize([]byte(tt.body), "https://example.com/post")
			assert.Error(t, err)
			assert.False(t, result.Usable())
		})
	}
}
