package factory

import (
	"fmt"

	"github.com/iWorld-y/armor_finder/app/finder/pkg/config"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/search"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/searxng"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/tavily"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/youtube"
)

// NewSearcher 根据配置创建搜索实例，未指定 provider 时使用 YouTube
func NewSearcher(cfg *config.Config) (search.Searcher, error) {
	provider := cfg.Search.Provider
	if provider == "" {
		provider = config.DefaultSearchProvider
	}

	switch provider {
	case "youtube":
		yt := cfg.Search.YouTube
		if yt.APIKey == "" {
			return nil, config.ErrMissingYouTubeKey
		}
		return youtube.NewClient(yt.BaseURL, yt.APIKey, yt.Timeout), nil

	case "tavily":
		if cfg.Search.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Search.Tavily.BaseURL, cfg.Search.Tavily.APIKey, cfg.Search.Tavily.Timeout), nil

	case "searxng":
		baseURL := cfg.Search.SearXNG.BaseURL
		if baseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(baseURL, cfg.Search.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
