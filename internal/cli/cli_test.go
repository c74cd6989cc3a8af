package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ObiAU/syncview/internal/models"
	"github.com/ObiAU/syncview/internal/recommend"
)

func setBackendEnv(t *testing.T, apiURL string) {
	t.Helper()
	t.Setenv("SYNCVIEW_API_URL", apiURL)
	t.Setenv("REMOTE_MODE", "backend")
	t.Setenv("TOPICS_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DIGEST_SIZE", "")
	t.Setenv("TRANSLATE_WORKERS", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newsBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/news/news", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "BBC", r.URL.Query().Get("source"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"articles": []models.ArticleSummary{
				{Title: "Quiet day in the park", Link: "https://news.test/quiet"},
				{Title: "Stock market rally lifts bank shares", Link: "https://news.test/market"},
			},
		})
	})
	mux.HandleFunc("/api/translate", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]string{"translated_text": "[" + body["target_lang"] + "] " + body["text"]})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123")
	t.Cleanup(func() { SetVersionInfo("dev", "none") })

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "syncview 1.2.3 (commit: abc123)\n", out)
}

func TestTopics(t *testing.T) {
	setBackendEnv(t, "http://localhost:0")

	out, err := run(t, "topics")
	require.NoError(t, err)

	var topics []recommend.Topic
	require.NoError(t, json.Unmarshal([]byte(out), &topics))
	require.Len(t, topics, len(recommend.DefaultTopics))
	assert.Equal(t, recommend.DefaultTopics[0].Name, topics[0].Name)
}

func TestNews(t *testing.T) {
	setBackendEnv(t, newsBackend(t).URL)

	out, err := run(t, "news")
	require.NoError(t, err)

	var articles []models.ArticleSummary
	require.NoError(t, json.Unmarshal([]byte(out), &articles))
	require.Len(t, articles, 2)
	assert.Empty(t, articles[0].TitleKo)
}

func TestNews_TranslateAndRank(t *testing.T) {
	setBackendEnv(t, newsBackend(t).URL)

	out, err := run(t, "news", "--translate", "ko", "--topic", "경제", "--limit", "1")
	require.NoError(t, err)

	var ranked []recommend.Scored
	require.NoError(t, json.Unmarshal([]byte(out), &ranked))
	require.Len(t, ranked, 1)
	assert.Equal(t, "https://news.test/market", ranked[0].Article.Link)
	assert.Equal(t, "[ko] Stock market rally lifts bank shares", ranked[0].Article.TitleKo)
	assert.Greater(t, ranked[0].Score, 0.0)
}

func TestNews_UnknownTopic(t *testing.T) {
	setBackendEnv(t, newsBackend(t).URL)

	_, err := run(t, "news", "--topic", "astrology")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown topic")
}

func TestInvalidConfiguration(t *testing.T) {
	setBackendEnv(t, "http://localhost:0")
	t.Setenv("REMOTE_MODE", "carrier-pigeon")

	_, err := run(t, "topics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestEnrich_RequiresURL(t *testing.T) {
	_, err := run(t, "enrich")
	require.Error(t, err)
}
