package search

import "context"

// KindVideo 只搜索视频
const KindVideo = "video"

// Searcher 定义通用的视频搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用搜索请求
type Request struct {
	Query      string
	Kind       string // 结果类型过滤，目前只有 "video"
	MaxResults int
}

// Response 通用搜索响应
type Response struct {
	Results []Result
}

// Result 单条搜索结果，VideoID 为空表示无法识别为 YouTube 视频
type Result struct {
	Title       string
	URL         string
	VideoID     string
	Description string
	Channel     string
	PublishedAt string
}
