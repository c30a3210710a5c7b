package service

import (
	"bytes"
	"context"
	nethttp "net/http"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/armor_finder/app/display/internal/biz"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/model"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/render"
)

type FinderService struct {
	uc  *biz.RecommendUseCase
	log *log.Helper
}

func NewFinderService(uc *biz.RecommendUseCase, logger log.Logger) *FinderService {
	return &FinderService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

func (s *FinderService) ListTopics(ctx context.Context, req *ListTopicsRequest) (*ListTopicsReply, error) {
	return &ListTopicsReply{Topics: s.uc.Topics()}, nil
}

func (s *FinderService) Recommend(ctx context.Context, req *RecommendRequest) (*RecommendReply, error) {
	res, err := s.uc.Recommend(ctx, req.Topic)
	if err != nil {
		return nil, err
	}
	videos := res.Videos
	if videos == nil {
		videos = []model.VideoRecommendation{}
	}
	return &RecommendReply{
		Topic:  res.Topic,
		Source: string(res.Source),
		Videos: videos,
	}, nil
}

func (s *FinderService) ListHistory(ctx context.Context, req *ListHistoryRequest) (*ListHistoryReply, error) {
	list, err := s.uc.History(ctx, int(req.Limit))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*model.Resolution{}
	}
	return &ListHistoryReply{Resolutions: list}, nil
}

// Page 渲染推荐页面，带 topic 参数时先解析再渲染
func (s *FinderService) Page(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.URL.Path != "/" {
		nethttp.NotFound(w, r)
		return
	}

	topic := r.URL.Query().Get("topic")
	page := render.NewPage(topic, nil, false)
	if topic != "" {
		res, err := s.uc.Recommend(r.Context(), topic)
		if err != nil {
			page.Notice = errors.FromError(err).Message
		} else {
			page = render.NewPage(topic, res.Videos, true)
		}
	}

	var buf bytes.Buffer
	if err := render.Render(&buf, page); err != nil {
		s.log.WithContext(r.Context()).Errorf("render page: %v", err)
		nethttp.Error(w, "failed to render page", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
