package service

import (
	"context"

	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/armor_finder/app/finder/pkg/model"
)

const (
	OperationFinderListTopics  = "/finder.v1.Finder/ListTopics"
	OperationFinderRecommend   = "/finder.v1.Finder/Recommend"
	OperationFinderListHistory = "/finder.v1.Finder/ListHistory"
)

type ListTopicsRequest struct{}

type ListTopicsReply struct {
	Topics []model.Topic `json:"topics"`
}

type RecommendRequest struct {
	Topic string `json:"topic"`
}

type RecommendReply struct {
	Topic  string                      `json:"topic"`
	Source string                      `json:"source"`
	Videos []model.VideoRecommendation `json:"videos"`
}

type ListHistoryRequest struct {
	Limit int32 `json:"limit"`
}

type ListHistoryReply struct {
	Resolutions []*model.Resolution `json:"resolutions"`
}

type FinderHTTPServer interface {
	ListTopics(context.Context, *ListTopicsRequest) (*ListTopicsReply, error)
	Recommend(context.Context, *RecommendRequest) (*RecommendReply, error)
	ListHistory(context.Context, *ListHistoryRequest) (*ListHistoryReply, error)
}

func RegisterFinderHTTPServer(s *http.Server, srv FinderHTTPServer) {
	r := s.Route("/")
	r.GET("/api/v1/topics", _Finder_ListTopics0_HTTP_Handler(srv))
	r.POST("/api/v1/recommendations", _Finder_Recommend0_HTTP_Handler(srv))
	r.GET("/api/v1/history", _Finder_ListHistory0_HTTP_Handler(srv))
}

func _Finder_ListTopics0_HTTP_Handler(srv FinderHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ListTopicsRequest
		http.SetOperation(ctx, OperationFinderListTopics)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListTopics(ctx, req.(*ListTopicsRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*ListTopicsReply)
		return ctx.Result(200, reply)
	}
}

func _Finder_Recommend0_HTTP_Handler(srv FinderHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in RecommendRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationFinderRecommend)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Recommend(ctx, req.(*RecommendRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*RecommendReply)
		return ctx.Result(200, reply)
	}
}

func _Finder_ListHistory0_HTTP_Handler(srv FinderHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ListHistoryRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationFinderListHistory)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListHistory(ctx, req.(*ListHistoryRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*ListHistoryReply)
		return ctx.Result(200, reply)
	}
}
