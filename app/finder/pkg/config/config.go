package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 环境变量名称，优先级高于配置文件
const (
	EnvLLMAPIKey     = "GROQ_API_KEY"
	EnvYouTubeAPIKey = "YOUTUBE_API_KEY"
	EnvTavilyAPIKey  = "TAVILY_API_KEY"
)

// 默认值
const (
	DefaultLLMBaseURL      = "https://api.groq.com/openai/v1"
	DefaultLLMModel        = "llama3-70b-8192"
	DefaultTemperature     = float32(0.7)
	DefaultMaxTokens       = 1000
	DefaultLLMTimeout      = 60
	DefaultSearchProvider  = "youtube"
	DefaultMaxResults      = 6
	DefaultSearchTimeout   = 30
	DefaultBreakerFailures = 5
	DefaultBreakerTimeout  = 60
)

var (
	// ErrMissingLLMKey LLM API Key 未配置
	ErrMissingLLMKey = fmt.Errorf("missing %s: set llm.api_key or the environment variable", EnvLLMAPIKey)
	// ErrMissingYouTubeKey YouTube API Key 未配置
	ErrMissingYouTubeKey = fmt.Errorf("missing %s: set search.youtube.api_key or the environment variable", EnvYouTubeAPIKey)
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Breaker     BreakerConfig     `yaml:"breaker"`
	DB          DBConfig          `yaml:"db"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	Temperature *float32 `yaml:"temperature"` // 未配置时为 0.7，允许显式配置 0
	MaxTokens   int      `yaml:"max_tokens"`
	Timeout     int      `yaml:"timeout"` // 秒
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider   string        `yaml:"provider"`
	MaxResults int           `yaml:"max_results"`
	YouTube    YouTubeConfig `yaml:"youtube"`
	Tavily     TavilyConfig  `yaml:"tavily"`
	SearXNG    SearXNGConfig `yaml:"searxng"`
}

// YouTubeConfig YouTube Data API 配置
type YouTubeConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置，RPM 为 0 时不限流
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// BreakerConfig LLM 熔断配置
type BreakerConfig struct {
	FailureThreshold int `yaml:"failure_threshold"`
	Timeout          int `yaml:"timeout"` // 熔断后多少秒进入半开状态
}

// DBConfig 数据库相关配置，Host 为空时不记录历史
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// GetTemperature 返回采样温度，未配置时使用默认值
func (c LLMConfig) GetTemperature() float32 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

// Default 返回只包含默认值的配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load 按 .env -> 配置文件 -> 环境变量 的顺序组装配置并校验。
// 配置文件不存在时只使用默认值和环境变量。
func Load(path string) (*Config, error) {
	// .env 是可选的
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv 使用环境变量覆盖密钥
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLLMAPIKey); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(EnvYouTubeAPIKey); v != "" {
		c.Search.YouTube.APIKey = v
	}
	if v := os.Getenv(EnvTavilyAPIKey); v != "" {
		c.Search.Tavily.APIKey = v
	}
}

// Validate 填充默认值并检查必需的密钥
func (c *Config) Validate() error {
	c.applyDefaults()

	if c.LLM.APIKey == "" {
		return ErrMissingLLMKey
	}

	switch c.Search.Provider {
	case "youtube":
		if c.Search.YouTube.APIKey == "" {
			return ErrMissingYouTubeKey
		}
	case "tavily":
		if c.Search.Tavily.APIKey == "" {
			return fmt.Errorf("missing %s: set search.tavily.api_key or the environment variable", EnvTavilyAPIKey)
		}
	case "searxng":
		if c.Search.SearXNG.BaseURL == "" {
			return errors.New("searxng base url is missing")
		}
	default:
		return fmt.Errorf("unknown search provider: %s", c.Search.Provider)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = DefaultLLMBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultLLMModel
	}
	if c.LLM.Temperature == nil {
		t := DefaultTemperature
		c.LLM.Temperature = &t
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = DefaultMaxTokens
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = DefaultLLMTimeout
	}
	if c.Search.Provider == "" {
		c.Search.Provider = DefaultSearchProvider
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = DefaultMaxResults
	}
	if c.Search.YouTube.Timeout == 0 {
		c.Search.YouTube.Timeout = DefaultSearchTimeout
	}
	if c.Search.Tavily.Timeout == 0 {
		c.Search.Tavily.Timeout = DefaultSearchTimeout
	}
	if c.Search.SearXNG.Timeout == 0 {
		c.Search.SearXNG.Timeout = DefaultSearchTimeout
	}
	if c.Concurrency.QPS == 0 {
		c.Concurrency.QPS = 1
	}
	if c.Breaker.FailureThreshold == 0 {
		c.Breaker.FailureThreshold = DefaultBreakerFailures
	}
	if c.Breaker.Timeout == 0 {
		c.Breaker.Timeout = DefaultBreakerTimeout
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
}
