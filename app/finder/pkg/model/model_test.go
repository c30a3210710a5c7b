package model

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestTopics(t *testing.T) {
	all := Topics()
	require.Len(t, all, 7)
	require.Equal(t, "Helmet of Salvation", all[0].Label)
	require.Equal(t, "Backs Protected by Glory of God", all[6].Label)

	// 修改副本不影响目录
	all[0].Label = "changed"
	require.Equal(t, "Helmet of Salvation", Topics()[0].Label)

	topic, ok := LookupTopic("Shield of Faith")
	require.True(t, ok)
	require.Equal(t, "Strengthening your faith", topic.Hint)

	_, ok = LookupTopic("shield of faith")
	require.False(t, ok)
}

func TestWatchURL(t *testing.T) {
	require.Equal(t, "https://www.youtube.com/watch?v=abc123", WatchURL("abc123"))
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "short", in: "short text", want: "short text..."},
		{name: "empty", in: "", want: "..."},
		{name: "exact", in: strings.Repeat("a", 120), want: strings.Repeat("a", 120) + "..."},
		{name: "long", in: strings.Repeat("b", 300), want: strings.Repeat("b", 120) + "..."},
		{name: "multibyte", in: strings.Repeat("信", 200), want: strings.Repeat("信", 120) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Preview(tt.in)
			require.Equal(t, tt.want, got)
			require.True(t, utf8.ValidString(got))
			require.LessOrEqual(t, utf8.RuneCountInString(got), PreviewLength+len(PreviewSuffix))
		})
	}
}

func TestVideoID(t *testing.T) {
	tests := map[string]string{
		"https://www.youtube.com/watch?v=abc":         "abc",
		"https://youtube.com/watch?v=abc&t=10s":       "abc",
		"https://m.youtube.com/watch?v=xyz":           "xyz",
		"https://youtu.be/abc?si=share":               "abc",
		"https://www.youtube.com/embed/abc":           "abc",
		"https://www.youtube.com/shorts/short1/":      "short1",
		"https://www.youtube-nocookie.com/embed/priv": "priv",
		"https://vimeo.com/12345":                     "",
		"https://www.youtube.com/channel/UC123":       "",
		"not a url at all":                            "",
		"":                                            "",
	}
	for in, want := range tests {
		require.Equal(t, want, VideoID(in), in)
	}
}

func TestEmbedURL(t *testing.T) {
	require.Equal(t, "https://www.youtube.com/embed/abc", EmbedURL("https://youtube.com/watch?v=abc"))
	require.Equal(t, "", EmbedURL("https://example.com/video.mp4"))
}
