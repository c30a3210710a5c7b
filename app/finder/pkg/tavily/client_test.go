package tavily

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/armor_finder/app/finder/pkg/search"
)

func TestClient_Search(t *testing.T) {
	var got SearchRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"query":"Sword of the Spirit","results":[
			{"title":"Sword 1","url":"https://www.youtube.com/watch?v=s1","content":"desc 1"},
			{"title":"Channel page","url":"https://www.youtube.com/@church","content":"not a video"},
			{"title":"Sword 2","url":"https://youtu.be/s2","content":"desc 2","published_date":"2025-02-02"}
		]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, "tvly-key", 0).Search(context.Background(), &search.Request{Query: "Sword of the Spirit", Kind: search.KindVideo, MaxResults: 6})
	require.NoError(t, err)

	require.Equal(t, "Bearer tvly-key", auth)
	require.Equal(t, "Sword of the Spirit", got.Query)
	require.Equal(t, []string{"youtube.com"}, got.IncludeDomains)
	require.Equal(t, 6, got.MaxResults)
	require.Equal(t, "basic", got.SearchDepth)

	require.Len(t, resp.Results, 2)
	require.Equal(t, "s1", resp.Results[0].VideoID)
	require.Equal(t, "desc 1", resp.Results[0].Description)
	require.Equal(t, "s2", resp.Results[1].VideoID)
	require.Equal(t, "2025-02-02", resp.Results[1].PublishedAt)
}

func TestClient_Search_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "bad", 0).Search(context.Background(), &search.Request{Query: "x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 401")
}

func TestClient_Search_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, "tvly-key", 1)
	require.Equal(t, time.Second, c.client.Timeout)

	done := make(chan error, 1)
	go func() {
		_, err := c.Search(context.Background(), &search.Request{Query: "Belt of Truth", Kind: search.KindVideo})
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("search did not time out")
	}
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	require.Equal(t, 30*time.Second, NewClient("", "k", 0).client.Timeout)
}
