package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbedURL(t *testing.T) {
	const want = "https://www.youtube.com/embed/abc123"

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"watch", "https://www.youtube.com/watch?v=abc123", want},
		{"watch with extra params", "https://www.youtube.com/watch?v=abc123&t=42s", want},
		{"watch param not first", "https://www.youtube.com/watch?feature=share&v=abc123", want},
		{"short link", "https://youtu.be/abc123", want},
		{"short link with query", "https://youtu.be/abc123?si=xyz", want},
		{"short link with v param", "https://youtu.be/abc123?v=zzz", want},
		{"v param on another host", "https://example.com/page?v=abc123", ""},
		{"shorts", "https://www.youtube.com/shorts/abc123", want},
		{"surrounding space", "  https://youtu.be/abc123\n", want},
		{"already embedded", "https://www.youtube.com/embed/abc123?start=10", "https://www.youtube.com/embed/abc123?start=10"},
		{"empty", "", ""},
		{"whitespace", "   \t", ""},
		{"home page", "https://youtube.com/", ""},
		{"not a video link", "https://example.com/video.mp4", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EmbedURL(tt.raw))
		})
	}
}

func TestEmbedURLDeterministic(t *testing.T) {
	in := "https://youtu.be/abc123"
	assert.Equal(t, EmbedURL(in), EmbedURL(in))
	assert.Equal(t, EmbedURL("https://www.youtube.com/watch?v=abc123"), EmbedURL(in))
}
