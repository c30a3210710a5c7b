package resolver

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/armor_finder/app/finder/pkg/config"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/logger"
	dm "github.com/iWorld-y/armor_finder/app/finder/pkg/model"
	"github.com/iWorld-y/armor_finder/app/finder/pkg/search"
)

type stubChatModel struct {
	reply    string
	err      error
	calls    int
	messages []*schema.Message
	opts     *model.Options
}

func (s *stubChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	s.calls++
	s.messages = input
	s.opts = model.GetCommonOptions(nil, opts...)
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func (s *stubChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

type stubSearcher struct {
	resp  *search.Response
	err   error
	calls int
	req   *search.Request
}

func (s *stubSearcher) Search(_ context.Context, req *search.Request) (*search.Response, error) {
	s.calls++
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.LLM.APIKey = "llm"
	cfg.Search.YouTube.APIKey = "yt"
	return cfg
}

func searchResults(ids ...string) *search.Response {
	resp := &search.Response{}
	for _, id := range ids {
		resp.Results = append(resp.Results, search.Result{
			Title:       "Video " + id,
			VideoID:     id,
			Description: "About " + id,
		})
	}
	return resp
}

func TestResolve_LLMValidJSON(t *testing.T) {
	chat := &stubChatModel{reply: `[{"title":"T","url":"https://youtube.com/watch?v=abc","description":"D"}]`}
	searcher := &stubSearcher{}
	r := New(testConfig(), chat, searcher)

	res := r.Resolve(context.Background(), "Shield of Faith")

	require.Equal(t, SourceLLM, res.Source)
	require.NoError(t, res.FallbackReason)
	require.Equal(t, []dm.VideoRecommendation{
		{Title: "T", URL: "https://youtube.com/watch?v=abc", Description: "D"},
	}, res.Videos)
	require.Zero(t, searcher.calls)

	require.Equal(t, 1, chat.calls)
	require.Len(t, chat.messages, 1)
	require.Equal(t, schema.User, chat.messages[0].Role)
	require.Contains(t, chat.messages[0].Content, "'Shield of Faith'")
	require.Contains(t, chat.messages[0].Content, "JSON array")
	require.NotNil(t, chat.opts.Temperature)
	require.InDelta(t, 0.7, *chat.opts.Temperature, 1e-6)
	require.NotNil(t, chat.opts.MaxTokens)
	require.Equal(t, 1000, *chat.opts.MaxTokens)
	require.NotNil(t, chat.opts.Model)
	require.Equal(t, "llama3-70b-8192", *chat.opts.Model)
}

func TestResolve_NonJSONFallsBackToSearch(t *testing.T) {
	chat := &stubChatModel{reply: "not json"}
	searcher := &stubSearcher{resp: searchResults("v1", "v2")}
	r := New(testConfig(), chat, searcher)

	res := r.Resolve(context.Background(), "Belt of Truth")

	require.Equal(t, SourceSearch, res.Source)
	require.ErrorIs(t, res.FallbackReason, ErrMalformedReply)
	require.Equal(t, 1, searcher.calls)
	require.Equal(t, "Belt of Truth", searcher.req.Query)
	require.Equal(t, search.KindVideo, searcher.req.Kind)
	require.Equal(t, 6, searcher.req.MaxResults)

	direct, err := r.Fallback(context.Background(), "Belt of Truth")
	require.NoError(t, err)
	require.Equal(t, direct, res.Videos)
	require.Equal(t, []dm.VideoRecommendation{
		{Title: "Video v1", URL: "https://www.youtube.com/watch?v=v1", Description: "About v1..."},
		{Title: "Video v2", URL: "https://www.youtube.com/watch?v=v2", Description: "About v2..."},
	}, res.Videos)
}

func TestResolve_LLMErrorFallsBack(t *testing.T) {
	chat := &stubChatModel{err: errors.New("dial tcp: i/o timeout")}
	searcher := &stubSearcher{resp: searchResults("x1")}
	r := New(testConfig(), chat, searcher)

	res := r.Resolve(context.Background(), "Sword of the Spirit")
	require.Equal(t, SourceSearch, res.Source)
	require.Len(t, res.Videos, 1)
	require.Contains(t, res.FallbackReason.Error(), "i/o timeout")
}

func TestResolve_BothFailReturnsEmpty(t *testing.T) {
	chat := &stubChatModel{err: errors.New("boom")}
	searcher := &stubSearcher{err: errors.New("youtube api error (status 403)")}
	r := New(testConfig(), chat, searcher)

	res := r.Resolve(context.Background(), "Helmet of Salvation")
	require.Equal(t, SourceNone, res.Source)
	require.NotNil(t, res.Videos)
	require.Empty(t, res.Videos)

	videos := r.Recommend(context.Background(), "Helmet of Salvation")
	require.NotNil(t, videos)
	require.Empty(t, videos)
}

func TestResolve_AnyTopicNeverFails(t *testing.T) {
	r := New(testConfig(), nil, nil)
	for _, topic := range []string{"", "Unknown topic", strings.Repeat("x", 1000), "'; DROP TABLE"} {
		videos := r.Recommend(context.Background(), topic)
		require.NotNil(t, videos)
		require.Empty(t, videos)
	}
}

func TestFallback_TruncatesAndSkips(t *testing.T) {
	long := strings.Repeat("é", 500)
	resp := &search.Response{Results: []search.Result{
		{Title: "Channel", VideoID: ""},
		{Title: "Long", VideoID: "long1", Description: long},
	}}
	for i := 0; i < 10; i++ {
		resp.Results = append(resp.Results, search.Result{Title: "More", VideoID: "m" + string(rune('a'+i))})
	}
	r := New(testConfig(), &stubChatModel{reply: "nope"}, &stubSearcher{resp: resp})

	videos := r.Recommend(context.Background(), "Feet Shod with Gospel of Peace")
	require.Len(t, videos, VideoCount)
	require.Equal(t, "Long", videos[0].Title)
	for _, v := range videos {
		require.True(t, strings.HasPrefix(v.URL, "https://www.youtube.com/watch?v="))
		require.LessOrEqual(t, utf8.RuneCountInString(v.Description), 123)
		require.True(t, strings.HasSuffix(v.Description, "..."))
	}
	require.Equal(t, "https://www.youtube.com/watch?v=long1", videos[0].URL)
}

func TestSuggest_BreakerOpenSkipsLLM(t *testing.T) {
	cfg := testConfig()
	cfg.Breaker.FailureThreshold = 1
	chat := &stubChatModel{err: errors.New("503 service unavailable")}
	searcher := &stubSearcher{resp: searchResults("b1")}
	r := New(cfg, chat, searcher)

	first := r.Resolve(context.Background(), "Belt of Truth")
	require.Equal(t, SourceSearch, first.Source)
	require.Equal(t, 1, chat.calls)

	second := r.Resolve(context.Background(), "Belt of Truth")
	require.Equal(t, SourceSearch, second.Source)
	require.Equal(t, 1, chat.calls)
	require.Equal(t, "breaker_open", reasonLabel(second.FallbackReason))
}

func TestSuggest_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chat := &stubChatModel{reply: `[]`}
	r := New(testConfig(), chat, &stubSearcher{resp: searchResults("c1")})

	s := r.Suggest(ctx, "Shield of Faith")
	require.True(t, s.NeedsFallback())
	require.ErrorIs(t, s.Reason, ErrRateLimited)
	require.Zero(t, chat.calls)
}

func TestParseVideos(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []dm.VideoRecommendation
		wantErr error
	}{
		{
			name:    "plain array",
			content: `[{"title":"A","url":"https://youtu.be/a","description":"d"}]`,
			want:    []dm.VideoRecommendation{{Title: "A", URL: "https://youtu.be/a", Description: "d"}},
		},
		{
			name:    "fenced",
			content: "```json\n[{\"title\":\"A\",\"url\":\"https://youtu.be/a\"}]\n```",
			want:    []dm.VideoRecommendation{{Title: "A", URL: "https://youtu.be/a"}},
		},
		{name: "empty array", content: "[]", want: []dm.VideoRecommendation{}},
		{name: "blank", content: "  ", wantErr: ErrEmptyReply},
		{name: "prose", content: "Here are some videos you might enjoy", wantErr: ErrMalformedReply},
		{name: "object", content: `{"title":"A","url":"u"}`, wantErr: ErrMalformedReply},
		{name: "null", content: "null", wantErr: ErrMalformedReply},
		{name: "missing url", content: `[{"title":"A","description":"d"}]`, wantErr: ErrMalformedReply},
		{name: "wrong types", content: `[{"title":1,"url":2}]`, wantErr: ErrMalformedReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVideos(tt.content)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Belt of Truth")
	require.Equal(t, "Recommend 6 recent Christian YouTube videos for mature believers focused on the 'Belt of Truth' topic. "+
		"Return JSON array of objects with 'title', 'url', 'description'. Ensure videos are real, recent, and relevant.", p)
}

func TestResult_Record(t *testing.T) {
	res := Result{
		Topic:          "Belt of Truth",
		Source:         SourceSearch,
		FallbackReason: ErrMalformedReply,
		Elapsed:        1500 * time.Millisecond,
		Videos:         []dm.VideoRecommendation{{Title: "T", URL: "u"}},
	}
	rec := res.Record()
	require.Equal(t, "search", rec.Source)
	require.Equal(t, 1, rec.VideoCount)
	require.Equal(t, int64(1500), rec.LatencyMS)
	require.Equal(t, ErrMalformedReply.Error(), rec.FailureReason)

	ok := Result{Topic: "Shield of Faith", Source: SourceLLM}.Record()
	require.Empty(t, ok.FailureReason)
	require.Zero(t, ok.VideoCount)
}

func TestSuggest_ZeroTemperature(t *testing.T) {
	cfg := testConfig()
	zero := float32(0)
	cfg.LLM.Temperature = &zero
	chat := &stubChatModel{reply: `[]`}

	s := New(cfg, chat, &stubSearcher{}).Suggest(context.Background(), "Shield of Faith")
	require.False(t, s.NeedsFallback())
	require.NotNil(t, chat.opts.Temperature)
	require.Zero(t, *chat.opts.Temperature)
}

func TestFallback_DumpsResponseOnlyAtDebug(t *testing.T) {
	var buf bytes.Buffer
	out, level := logger.Log.Out, logger.Log.GetLevel()
	logger.Log.SetOutput(&buf)
	defer func() {
		logger.Log.SetOutput(out)
		logger.Log.SetLevel(level)
	}()

	r := New(testConfig(), nil, &stubSearcher{resp: searchResults("dbg1")})

	logger.Log.SetLevel(logrus.InfoLevel)
	_, err := r.Fallback(context.Background(), "Belt of Truth")
	require.NoError(t, err)
	require.NotContains(t, buf.String(), "dbg1")

	logger.Log.SetLevel(logrus.DebugLevel)
	_, err = r.Fallback(context.Background(), "Belt of Truth")
	require.NoError(t, err)
	require.Contains(t, buf.String(), "dbg1")
}
