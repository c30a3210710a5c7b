package biz

import (
	"context"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/armor_finder/app/finder/pkg/model"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/resolver"
)

// 错误原因码
const (
	ReasonTopicRequired   = "TOPIC_REQUIRED"
	ReasonTopicUnknown    = "TOPIC_UNKNOWN"
	ReasonHistoryDisabled = "HISTORY_DISABLED"
)

var (
	ErrTopicRequired   = errors.BadRequest(ReasonTopicRequired, "topic is required")
	ErrHistoryDisabled = errors.ServiceUnavailable(ReasonHistoryDisabled, "recommendation history is not configured")
)

const defaultHistoryLimit = 20

// Resolver 主题到视频列表的解析
type Resolver interface {
	Resolve(ctx context.Context, topic string) resolver.Result
}

// HistoryRepo 推荐历史的存储，Enabled 为 false 时不落库
type HistoryRepo interface {
	Enabled() bool
	Save(ctx context.Context, r *model.Resolution) error
	List(ctx context.Context, limit int) ([]*model.Resolution, error)
}

type RecommendUseCase struct {
	resolver Resolver
	repo     HistoryRepo
	log      *log.Helper
}

func NewRecommendUseCase(r Resolver, repo HistoryRepo, logger log.Logger) *RecommendUseCase {
	return &RecommendUseCase{resolver: r, repo: repo, log: log.NewHelper(logger)}
}

// Topics 返回主题目录
func (uc *RecommendUseCase) Topics() []model.Topic {
	return model.Topics()
}

// Recommend 校验主题后解析，解析本身从不失败
func (uc *RecommendUseCase) Recommend(ctx context.Context, topic string) (resolver.Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return resolver.Result{}, ErrTopicRequired
	}
	if _, ok := model.LookupTopic(topic); !ok {
		return resolver.Result{}, errors.BadRequest(ReasonTopicUnknown, "unknown topic: "+topic)
	}

	res := uc.resolver.Resolve(ctx, topic)
	if uc.repo.Enabled() {
		if err := uc.repo.Save(ctx, res.Record()); err != nil {
			uc.log.WithContext(ctx).Errorf("save resolution for %q: %v", topic, err)
		}
	}
	return res, nil
}

// History 返回最近的推荐记录
func (uc *RecommendUseCase) History(ctx context.Context, limit int) ([]*model.Resolution, error) {
	if !uc.repo.Enabled() {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return uc.repo.List(ctx, limit)
}
