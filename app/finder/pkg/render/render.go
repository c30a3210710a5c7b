package render

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/iWorld-y/armor_finder/app/finder/pkg/model"
)

// NoResultsNotice 没有结果时展示的提示
const NoResultsNotice = "No videos found. Try another topic or check your API keys."

// Card 结果网格中的一张视频卡片
type Card struct {
	Title       string
	Description string
	URL         string
	EmbedURL    string // 为空时只展示链接
}

// Page 页面渲染数据
type Page struct {
	Date        string
	Topics      []model.Topic
	Selected    string
	Hint        string
	Interactive bool // 是否展示选择表单，静态导出时关闭
	Searched    bool
	Notice      string
	Cards       []Card
}

// NewPage 构造页面数据，selected 为空表示还没有发起推荐
func NewPage(selected string, videos []model.VideoRecommendation, searched bool) Page {
	p := Page{
		Date:        time.Now().Format("2006-01-02"),
		Topics:      model.Topics(),
		Selected:    selected,
		Interactive: true,
		Searched:    searched,
	}
	if t, ok := model.LookupTopic(selected); ok {
		p.Hint = t.Hint
	}
	for _, v := range videos {
		p.Cards = append(p.Cards, Card{
			Title:       v.Title,
			Description: v.Description,
			URL:         v.URL,
			EmbedURL:    model.EmbedURL(v.URL),
		})
	}
	if searched && len(p.Cards) == 0 {
		p.Notice = NoResultsNotice
	}
	return p
}

// Render 渲染页面
func Render(w io.Writer, p Page) error {
	return pageTpl.Execute(w, p)
}

// WriteFile 渲染页面到文件，必要时创建目录
func WriteFile(path string, p Page) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return Render(f, p)
}

var pageTpl = template.Must(template.New("page").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>⚔️ Armor of God Content Finder</title>
    <style>
        :root {
            --primary-color: #667eea;
            --bg-color: #f8fafc;
            --card-bg: #ffffff;
            --text-main: #1e293b;
            --text-secondary: #64748b;
            --border-color: #e2e8f0;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            background-color: var(--bg-color);
            color: var(--text-main);
            line-height: 1.6;
            margin: 0;
            padding: 20px;
        }
        .container { max-width: 1100px; margin: 0 auto; }
        header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            padding: 20px; border-radius: 12px; color: white; text-align: center; margin-bottom: 30px;
        }
        header h1 { margin: 0 0 10px 0; }
        .picker { display: flex; gap: 12px; align-items: center; flex-wrap: wrap; margin-bottom: 10px; }
        .picker select { padding: 8px; border-radius: 8px; border: 1px solid var(--border-color); min-width: 280px; }
        .picker button {
            padding: 8px 18px; border: none; border-radius: 8px; cursor: pointer;
            background: var(--primary-color); color: white; font-weight: bold;
        }
        .help { color: var(--text-secondary); font-size: 0.9rem; margin-bottom: 24px; }
        .success { background: #dcfce7; color: #166534; padding: 10px 16px; border-radius: 8px; margin-bottom: 20px; }
        .warning { background: #fef9c3; color: #854d0e; padding: 10px 16px; border-radius: 8px; margin-bottom: 20px; }
        .grid { display: grid; gap: 24px; grid-template-columns: 1fr; }
        @media (min-width: 768px) { .grid { grid-template-columns: 1fr 1fr; } }
        .card {
            background: var(--card-bg); border-radius: 12px; padding: 20px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.05); border: 1px solid var(--border-color);
        }
        .card h3 { margin-top: 0; }
        .card .desc { font-style: italic; color: var(--text-secondary); }
        .player { position: relative; padding-top: 56.25%; }
        .player iframe { position: absolute; top: 0; left: 0; width: 100%; height: 100%; border: 0; border-radius: 8px; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>⚔️ Full Armor of God Video Recommendations</h1>
            <p>Click on a topic and get spiritually enriching Christian videos!</p>
        </header>

        {{if .Interactive}}
        <form class="picker" method="get" action="/">
            <label for="topic">Select an Armor of God topic:</label>
            <select id="topic" name="topic">
                {{range .Topics}}
                <option value="{{.Label}}" title="{{.Hint}}" {{if eq .Label $.Selected}}selected{{end}}>{{.Label}}</option>
                {{end}}
            </select>
            <button type="submit">Recommend Videos</button>
        </form>
        <div class="help">Each topic relates to a spiritual aspect. Videos are curated for mature Christians.</div>
        {{end}}

        {{if .Notice}}
        <div class="warning">{{.Notice}}</div>
        {{else if .Cards}}
        <div class="success">🎬 Recommended videos for: {{.Selected}}{{if .Hint}} ({{.Hint}}){{end}}</div>
        <div class="grid">
            {{range .Cards}}
            <div class="card">
                <h3>{{.Title}}</h3>
                <p class="desc">{{.Description}}</p>
                {{if .EmbedURL}}
                <div class="player">
                    <iframe src="{{.EmbedURL}}" title="{{.Title}}" allow="accelerometer; encrypted-media; gyroscope; picture-in-picture" allowfullscreen></iframe>
                </div>
                {{end}}
                <p><a href="{{.URL}}" target="_blank" rel="noopener">{{.URL}}</a></p>
            </div>
            {{end}}
        </div>
        {{end}}

        <p class="help">{{.Date}}</p>
    </div>
</body>
</html>
`
