package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/armor_finder/app/display/internal/conf"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/config"
	finderLogger "github.com/iWorld-y/armor_finder/app/finder/pkg/logger"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/resolver"
)

// NewFinderConfig 将 internal/conf.Finder 转换为 pkg/config.Config，并用环境变量补齐密钥
func NewFinderConfig(c *conf.Finder) (*config.Config, error) {
	cfg := &config.Config{}
	if c == nil {
		c = &conf.Finder{}
	}

	if c.Llm != nil {
		cfg.LLM = config.LLMConfig{
			BaseURL:     c.Llm.BaseUrl,
			APIKey:      c.Llm.ApiKey,
			Model:       c.Llm.Model,
			Temperature: c.Llm.Temperature,
			MaxTokens:   int(c.Llm.MaxTokens),
			Timeout:     int(c.Llm.Timeout),
		}
	}
	if s := c.Search; s != nil {
		cfg.Search.Provider = s.Provider
		cfg.Search.MaxResults = int(s.MaxResults)
		if s.Youtube != nil {
			cfg.Search.YouTube = config.YouTubeConfig{
				APIKey:  s.Youtube.ApiKey,
				BaseURL: s.Youtube.BaseUrl,
				Timeout: int(s.Youtube.Timeout),
			}
		}
		if s.Tavily != nil {
			cfg.Search.Tavily = config.TavilyConfig{
				APIKey:  s.Tavily.ApiKey,
				BaseURL: s.Tavily.BaseUrl,
				Timeout: int(s.Tavily.Timeout),
			}
		}
		if s.Searxng != nil {
			cfg.Search.SearXNG = config.SearXNGConfig{
				BaseURL: s.Searxng.BaseUrl,
				Timeout: int(s.Searxng.Timeout),
			}
		}
	}
	if c.Log != nil {
		cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
	}
	if c.Concurrency != nil {
		cfg.Concurrency = config.ConcurrencyConfig{
			QPS: int(c.Concurrency.Qps),
			RPM: int(c.Concurrency.Rpm),
		}
	}
	if c.Breaker != nil {
		cfg.Breaker = config.BreakerConfig{
			FailureThreshold: int(c.Breaker.FailureThreshold),
			Timeout:          int(c.Breaker.Timeout),
		}
	}
	if c.Db != nil {
		cfg.DB = config.DBConfig{
			Host:     c.Db.Host,
			Port:     int(c.Db.Port),
			User:     c.Db.User,
			Password: c.Db.Password,
			Name:     c.Db.Name,
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewFinderResolver 初始化推荐解析器
func NewFinderResolver(cfg *config.Config, logger log.Logger) (*resolver.Resolver, func(), error) {
	helper := log.NewHelper(logger)

	// 初始化日志
	if err := finderLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		helper.Errorf("Failed to init finder logger: %v", err)
		_ = finderLogger.InitLogger("info", "") // 降级处理
	}

	r, err := resolver.NewFromConfig(context.Background(), cfg)
	if err != nil {
		helper.Errorf("Failed to init resolver: %v", err)
		return nil, nil, err
	}

	cleanup := func() {
		helper.Info("Cleaning up finder resolver")
	}
	return r, cleanup, nil
}
