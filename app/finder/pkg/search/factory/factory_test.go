package factory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/armor_finder/app/finder/pkg/config"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/searxng"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/tavily"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/youtube"
)

func TestNewSearcher(t *testing.T) {
	cfg := &config.Config{}
	_, err := NewSearcher(cfg)
	require.ErrorIs(t, err, config.ErrMissingYouTubeKey)

	cfg.Search.YouTube.APIKey = "yt"
	s, err := NewSearcher(cfg)
	require.NoError(t, err)
	require.IsType(t, &youtube.Client{}, s)

	cfg.Search.Provider = "tavily"
	_, err = NewSearcher(cfg)
	require.Error(t, err)
	cfg.Search.Tavily.APIKey = "tvly"
	s, err = NewSearcher(cfg)
	require.NoError(t, err)
	require.IsType(t, &tavily.Client{}, s)

	cfg.Search.Provider = "searxng"
	_, err = NewSearcher(cfg)
	require.Error(t, err)
	cfg.Search.SearXNG.BaseURL = "http://localhost:8888"
	s, err = NewSearcher(cfg)
	require.NoError(t, err)
	require.IsType(t, &searxng.Client{}, s)

	cfg.Search.Provider = "duckduckgo"
	_, err = NewSearcher(cfg)
	require.EqualError(t, err, "unknown search provider: duckduckgo")
}
