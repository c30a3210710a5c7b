package model

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// PreviewLength 搜索结果描述截断长度（按字符计）
const PreviewLength = 120

// PreviewSuffix 截断后追加的省略标记
const PreviewSuffix = "..."

const (
	watchURLPrefix = "https://www.youtube.com/watch?v="
	embedURLPrefix = "https://www.youtube.com/embed/"
)

// Topic 可选主题，Hint 仅用于展示
type Topic struct {
	Label string `json:"label"`
	Hint  string `json:"hint"`
}

var topics = []Topic{
	{Label: "Helmet of Salvation", Hint: "Foundations of being a Christian"},
	{Label: "Breastplate of Righteousness", Hint: "Teachings on righteousness"},
	{Label: "Belt of Truth", Hint: "Living in truth"},
	{Label: "Sword of the Spirit", Hint: "Using the Word in daily life"},
	{Label: "Shield of Faith", Hint: "Strengthening your faith"},
	{Label: "Feet Shod with Gospel of Peace", Hint: "Walking in peace"},
	{Label: "Backs Protected by Glory of God", Hint: "Protection and guidance"},
}

// Topics 按展示顺序返回全部主题的副本
func Topics() []Topic {
	out := make([]Topic, len(topics))
	copy(out, topics)
	return out
}

// LookupTopic 按名称查找主题
func LookupTopic(label string) (Topic, bool) {
	for _, t := range topics {
		if t.Label == label {
			return t, true
		}
	}
	return Topic{}, false
}

// VideoRecommendation 单条视频推荐
type VideoRecommendation struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Resolution 一次推荐解析的记录
type Resolution struct {
	ID            int64                 `json:"id"`
	Topic         string                `json:"topic"`
	Source        string                `json:"source"`
	VideoCount    int                   `json:"video_count"`
	FailureReason string                `json:"failure_reason,omitempty"`
	LatencyMS     int64                 `json:"latency_ms"`
	Videos        []VideoRecommendation `json:"videos"`
	CreatedAt     time.Time             `json:"created_at"`
}

// WatchURL 根据视频 ID 构造标准播放地址
func WatchURL(videoID string) string {
	return watchURLPrefix + videoID
}

// Preview 截断描述到 PreviewLength 个字符并追加省略标记
func Preview(desc string) string {
	if utf8.RuneCountInString(desc) > PreviewLength {
		runes := []rune(desc)
		desc = string(runes[:PreviewLength])
	}
	return desc + PreviewSuffix
}

// VideoID 从 YouTube 链接中提取视频 ID，不是 YouTube 链接时返回空字符串
func VideoID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")

	switch host {
	case "youtu.be":
		return firstSegment(u.Path)
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if u.Path == "/watch" {
			return u.Query().Get("v")
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/", "/v/"} {
			if strings.HasPrefix(u.Path, prefix) {
				return firstSegment(strings.TrimPrefix(u.Path, prefix))
			}
		}
	}
	return ""
}

// EmbedURL 把播放地址转换成可嵌入的播放器地址
func EmbedURL(raw string) string {
	id := VideoID(raw)
	if id == "" {
		return ""
	}
	return embedURLPrefix + url.PathEscape(id)
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}
