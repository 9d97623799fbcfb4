package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoute(t *testing.T) {
	router := newTestRouter(newFake(nil), "")

	tests := []struct {
		identifier string
		platform   Platform
		methods    []string
	}{
		{"tiktok", TikTok, []string{"tikwm", "tikmate"}},
		{"FaceBook", Facebook, []string{"y2mate", "savefrom", "fbdownloader"}},
		{" instagram ", Instagram, []string{"saveig", "rapidapi", "instadownloader"}},
		{"YOUTUBE", YouTube, []string{"loader.to", "y2mate", "yt5s"}},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			res, err := router.Route(tt.identifier)
			require.NoError(t, err)
			assert.Equal(t, tt.platform, res.Platform())
			assert.Equal(t, tt.methods, res.Methods())
		})
	}
}

func TestRouteUnsupported(t *testing.T) {
	fake := newFake(nil)
	router := newTestRouter(fake, "")

	for _, id := range []string{"vimeo", "", "tik tok"} {
		_, err := router.Route(id)
		assert.ErrorIs(t, err, ErrUnsupportedPlatform, id)
	}
	assert.Empty(t, fake.calls)
}

func TestRouterPlatforms(t *testing.T) {
	router := newTestRouter(newFake(nil), "")
	assert.Equal(t, []Platform{TikTok, Facebook, Instagram, YouTube}, router.Platforms())
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
		ok   bool
	}{
		{"https://www.tiktok.com/@user/video/123", TikTok, true},
		{"https://vm.tiktok.com/ZMabc/", TikTok, true},
		{"https://m.facebook.com/watch/?v=1", Facebook, true},
		{"https://fb.watch/abc/", Facebook, true},
		{"https://www.instagram.com/reel/xyz/", Instagram, true},
		{"youtu.be/abc123", YouTube, true},
		{"https://WWW.YouTube.com/watch?v=1", YouTube, true},
		{"https://vimeo.com/1", "", false},
		{"not a url at all", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := DetectPlatform(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestYouTubeVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"},
		{"https://youtu.be/abc123", "abc123"},
		{"https://youtu.be/abc123?si=share", "abc123"},
		{"https://www.youtube.com/embed/xyz?start=1", "xyz"},
		{"https://youtube.com/shorts/s1", "s1"},
		{"https://www.youtube.com/watch?feature=share&v=q9", "q9"},
		{"https://example.com/watch?v=nope", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, YouTubeVideoID(tt.url))
		})
	}
}
