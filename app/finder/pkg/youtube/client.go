package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/iWorld-y/armor_finder/app/finder/pkg/model"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/search"
)

// DefaultBaseURL YouTube Data API v3 地址
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Client YouTube Data API 客户端
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient 创建一个新的 YouTube 客户端，baseURL 为空时使用官方地址
func NewClient(baseURL, apiKey string, timeout int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: t},
	}
}

// Ensure Client implements search.Searcher
var _ search.Searcher = (*Client)(nil)

// SearchResponse search 接口响应
type SearchResponse struct {
	Items    []SearchItem   `json:"items"`
	PageInfo SearchPageInfo `json:"pageInfo"`
}

// SearchPageInfo 分页信息
type SearchPageInfo struct {
	TotalResults   int `json:"totalResults"`
	ResultsPerPage int `json:"resultsPerPage"`
}

// SearchItem 单条搜索结果
type SearchItem struct {
	ID      SearchID      `json:"id"`
	Snippet SearchSnippet `json:"snippet"`
}

// SearchID 结果标识，type=video 时 VideoID 有值
type SearchID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

// SearchSnippet 结果摘要
type SearchSnippet struct {
	PublishedAt  string `json:"publishedAt"`
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

// Search 执行搜索
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	u, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	kind := req.Kind
	if kind == "" {
		kind = search.KindVideo
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 6
	}

	q := u.Query()
	q.Set("part", "snippet")
	q.Set("q", req.Query)
	q.Set("type", kind)
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("youtube api error (status %d): %s", res.StatusCode, string(body))
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	results := make([]search.Result, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		r := search.Result{
			Title:       item.Snippet.Title,
			VideoID:     item.ID.VideoID,
			Description: item.Snippet.Description,
			Channel:     item.Snippet.ChannelTitle,
			PublishedAt: item.Snippet.PublishedAt,
		}
		if r.VideoID != "" {
			r.URL = model.WatchURL(r.VideoID)
		}
		results = append(results, r)
	}

	return &search.Response{Results: results}, nil
}
