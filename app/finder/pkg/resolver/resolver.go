package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/gg/gson"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/armor_finder/app/finder/pkg/config"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/logger"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/metrics"
	dm "github.com/iWorld-y/armor_finder/app/finder/pkg/model"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/search"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/search/factory"
)

// VideoCount 每次请求推荐的视频数量
const VideoCount = 6

// Source 推荐结果来源
type Source string

const (
	SourceLLM    Source = "llm"
	SourceSearch Source = "search"
	SourceNone   Source = "none"
)

var (
	// ErrEmptyReply LLM 返回空内容
	ErrEmptyReply = errors.New("llm returned an empty reply")
	// ErrMalformedReply LLM 返回的内容不是视频数组
	ErrMalformedReply = errors.New("llm reply is not a JSON array of videos")
	// ErrRateLimited 限流等待失败
	ErrRateLimited = errors.New("llm rate limit wait failed")
)

// Suggestion LLM 推荐尝试的结果。Reason 非空表示需要回退到搜索
type Suggestion struct {
	Videos []dm.VideoRecommendation
	Reason error
}

// NeedsFallback 是否需要回退到搜索
func (s Suggestion) NeedsFallback() bool {
	return s.Reason != nil
}

// Result 一次完整解析的结果
type Result struct {
	Topic          string
	Videos         []dm.VideoRecommendation
	Source         Source
	FallbackReason error
	Elapsed        time.Duration
}

// Record 转换为可持久化的解析记录
func (r Result) Record() *dm.Resolution {
	rec := &dm.Resolution{
		Topic:      r.Topic,
		Source:     string(r.Source),
		VideoCount: len(r.Videos),
		LatencyMS:  r.Elapsed.Milliseconds(),
		Videos:     r.Videos,
	}
	if r.FallbackReason != nil {
		rec.FailureReason = r.FallbackReason.Error()
	}
	return rec
}

// Resolver 根据主题推荐视频：先问 LLM，失败则回退到视频搜索
type Resolver struct {
	chatModel   model.BaseChatModel
	searcher    search.Searcher
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[*schema.Message]
	modelName   string
	temperature float32
	maxTokens   int
	maxResults  int
}

// New 使用外部注入的 ChatModel 与 Searcher 创建 Resolver
func New(cfg *config.Config, chatModel model.BaseChatModel, searcher search.Searcher) *Resolver {
	limit := rate.Inf
	if cfg.Concurrency.RPM > 0 {
		limit = rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	}
	burst := cfg.Concurrency.QPS
	if burst <= 0 {
		burst = 1
	}

	maxResults := cfg.Search.MaxResults
	if maxResults <= 0 {
		maxResults = VideoCount
	}
	temperature := cfg.LLM.GetTemperature()
	maxTokens := cfg.LLM.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.DefaultMaxTokens
	}

	return &Resolver{
		chatModel:   chatModel,
		searcher:    searcher,
		limiter:     rate.NewLimiter(limit, burst),
		breaker:     newBreaker(cfg.Breaker),
		modelName:   cfg.LLM.Model,
		temperature: temperature,
		maxTokens:   maxTokens,
		maxResults:  maxResults,
	}
}

// NewFromConfig 按配置初始化 LLM 与搜索客户端
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Resolver, error) {
	temperature := cfg.LLM.GetTemperature()
	maxTokens := cfg.LLM.MaxTokens
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		Timeout:     time.Duration(cfg.LLM.Timeout) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}

	searcher, err := factory.NewSearcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}

	logger.Log.Infof("推荐解析器已就绪: model=%s, search=%s", cfg.LLM.Model, cfg.Search.Provider)
	return New(cfg, chatModel, searcher), nil
}

func newBreaker(cfg config.BreakerConfig) *gobreaker.CircuitBreaker[*schema.Message] {
	threshold := uint32(cfg.FailureThreshold)
	if threshold == 0 {
		threshold = config.DefaultBreakerFailures
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = config.DefaultBreakerTimeout * time.Second
	}

	return gobreaker.NewCircuitBreaker[*schema.Message](gobreaker.Settings{
		Name:        "llm-chat",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// 调用方取消不算 LLM 故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warnf("熔断器 [%s] 状态变化: %s -> %s", name, from, to)
			switch to {
			case gobreaker.StateClosed:
				metrics.LLMBreakerState.Set(0)
			case gobreaker.StateHalfOpen:
				metrics.LLMBreakerState.Set(1)
			case gobreaker.StateOpen:
				metrics.LLMBreakerState.Set(2)
			}
		},
	})
}

// Recommend 返回主题的推荐视频，从不失败；空切片表示没有找到
func (r *Resolver) Recommend(ctx context.Context, topic string) []dm.VideoRecommendation {
	return r.Resolve(ctx, topic).Videos
}

// Resolve 执行完整的两步解析，并返回结果来源
func (r *Resolver) Resolve(ctx context.Context, topic string) Result {
	start := time.Now()
	res := r.resolve(ctx, topic)
	res.Elapsed = time.Since(start)

	metrics.ResolutionsTotal.WithLabelValues(string(res.Source)).Inc()
	metrics.ResolutionDuration.WithLabelValues(string(res.Source)).Observe(res.Elapsed.Seconds())
	logger.Log.WithFields(logrus.Fields{
		"topic":  topic,
		"source": res.Source,
		"videos": len(res.Videos),
	}).Infof("推荐解析完成，耗时 %s", res.Elapsed.Round(time.Millisecond))
	return res
}

func (r *Resolver) resolve(ctx context.Context, topic string) Result {
	suggestion := r.Suggest(ctx, topic)
	if !suggestion.NeedsFallback() {
		return Result{Topic: topic, Videos: suggestion.Videos, Source: SourceLLM}
	}

	metrics.FallbacksTotal.WithLabelValues(reasonLabel(suggestion.Reason)).Inc()
	logger.Log.Warnf("LLM 未返回有效 JSON，回退到视频搜索 [%s]: %v", topic, suggestion.Reason)

	videos, err := r.Fallback(ctx, topic)
	if err != nil {
		metrics.SearchErrorsTotal.Inc()
		logger.Log.Errorf("视频搜索失败 [%s]: %v", topic, err)
		return Result{Topic: topic, Videos: []dm.VideoRecommendation{}, Source: SourceNone, FallbackReason: suggestion.Reason}
	}
	return Result{Topic: topic, Videos: videos, Source: SourceSearch, FallbackReason: suggestion.Reason}
}

// Suggest 询问 LLM 并解析回复。任何错误都转换为需要回退的 Suggestion
func (r *Resolver) Suggest(ctx context.Context, topic string) Suggestion {
	if r.chatModel == nil {
		return Suggestion{Reason: errors.New("llm is not configured")}
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return Suggestion{Reason: fmt.Errorf("%w: %v", ErrRateLimited, err)}
	}

	messages := []*schema.Message{
		{Role: schema.User, Content: BuildPrompt(topic)},
	}
	opts := []model.Option{
		model.WithTemperature(r.temperature),
		model.WithMaxTokens(r.maxTokens),
	}
	if r.modelName != "" {
		opts = append(opts, model.WithModel(r.modelName))
	}

	resp, err := r.breaker.Execute(func() (*schema.Message, error) {
		return r.chatModel.Generate(ctx, messages, opts...)
	})
	if err != nil {
		return Suggestion{Reason: fmt.Errorf("llm chat failed: %w", err)}
	}
	if resp == nil {
		return Suggestion{Reason: ErrEmptyReply}
	}

	videos, err := ParseVideos(resp.Content)
	if err != nil {
		logger.Log.Debugf("LLM 原始回复 [%s]: %s", topic, resp.Content)
		return Suggestion{Reason: err}
	}
	return Suggestion{Videos: videos}
}

// Fallback 直接用主题关键词搜索视频
func (r *Resolver) Fallback(ctx context.Context, topic string) ([]dm.VideoRecommendation, error) {
	if r.searcher == nil {
		return nil, errors.New("searcher is not configured")
	}

	resp, err := r.searcher.Search(ctx, &search.Request{
		Query:      topic,
		Kind:       search.KindVideo,
		MaxResults: r.maxResults,
	})
	if err != nil {
		return nil, err
	}
	if logger.Log.IsLevelEnabled(logrus.DebugLevel) {
		logger.Log.Debugf("视频搜索 [%s] 成功: %s", topic, gson.ToString(resp))
	}

	videos := make([]dm.VideoRecommendation, 0, len(resp.Results))
	for _, item := range resp.Results {
		if item.VideoID == "" {
			continue
		}
		videos = append(videos, dm.VideoRecommendation{
			Title:       item.Title,
			URL:         dm.WatchURL(item.VideoID),
			Description: dm.Preview(item.Description),
		})
		if len(videos) >= r.maxResults {
			break
		}
	}
	return videos, nil
}

// BuildPrompt 构造推荐 Prompt
func BuildPrompt(topic string) string {
	return fmt.Sprintf(
		"Recommend %d recent Christian YouTube videos for mature believers "+
			"focused on the '%s' topic. Return JSON array of objects with "+
			"'title', 'url', 'description'. Ensure videos are real, recent, and relevant.",
		VideoCount, topic)
}

// ParseVideos 解析 LLM 回复。允许外层包裹 ```json 代码块，
// 其余内容必须是每项都带 title 和 url 的 JSON 数组
func ParseVideos(content string) ([]dm.VideoRecommendation, error) {
	cleanContent := strings.TrimSpace(content)
	cleanContent = strings.TrimPrefix(cleanContent, "```json")
	cleanContent = strings.TrimPrefix(cleanContent, "```")
	cleanContent = strings.TrimSuffix(cleanContent, "```")
	cleanContent = strings.TrimSpace(cleanContent)
	if cleanContent == "" {
		return nil, ErrEmptyReply
	}

	var videos []dm.VideoRecommendation
	if err := json.Unmarshal([]byte(cleanContent), &videos); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	// JSON null 会被解码成 nil
	if videos == nil {
		return nil, ErrMalformedReply
	}
	for i, v := range videos {
		if strings.TrimSpace(v.Title) == "" || strings.TrimSpace(v.URL) == "" {
			return nil, fmt.Errorf("%w: item %d has no title or url", ErrMalformedReply, i)
		}
	}
	return videos, nil
}

func reasonLabel(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrMalformedReply), errors.Is(err, ErrEmptyReply):
		return "unparsable"
	default:
		return "llm_error"
	}
}
