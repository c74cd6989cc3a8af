package aggregator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ObiAU/syncview/internal/cache"
	"github.com/ObiAU/syncview/internal/models"
	"github.com/ObiAU/syncview/internal/remote"
	"github.com/ObiAU/syncview/internal/remote/remotetest"
)

type delivery struct {
	chatID int64
	url    string
	title  string
}

type fakeNotifier struct {
	subs []models.Subscription
	err  error

	mu   sync.Mutex
	sent []delivery
}

func (n *fakeNotifier) Subscriptions() []models.Subscription {
	return n.subs
}

func (n *fakeNotifier) SendArticle(_ context.Context, chatID int64, title string, article *models.EnrichedArticle) error {
	if n.err != nil {
		return n.err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, delivery{chatID: chatID, url: article.URL, title: title})
	return nil
}

func (n *fakeNotifier) deliveries() []delivery {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]delivery(nil), n.sent...)
}

func digestFake() *remotetest.Fake {
	fake := happyFake()
	fake.NewsFunc = func(_ context.Context, source string) ([]models.ArticleSummary, error) {
		if source == "CNN" {
			return nil, errors.New("feed down")
		}
		return []models.ArticleSummary{
			{Title: "Cup final tonight", Link: "https://bbc.co.uk/sport"},
			{Title: "Stocks and bonds slide as inflation bites", Link: "https://bbc.co.uk/markets"},
			{Title: "Bank profit jumps", Link: "https://bbc.co.uk/bank"},
			{Title: "Oil trade deal", Link: "https://bbc.co.uk/oil"},
		}, nil
	}
	return fake
}

func TestProcessDigests_SendsTopUnsentArticles(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{subs: []models.Subscription{
		{ChatID: 1, Topic: "경제"},
		{ChatID: 2, Topic: "경제", Source: "CNN"},
	}}
	fake := digestFake()
	agg, _ := newTestAggregator(t, fake, WithNotifier(notifier), WithDigest(time.Hour, 2, time.Hour))

	require.NoError(t, agg.processDigests(context.Background()))

	assert.Equal(t, []delivery{
		{chatID: 1, url: "https://bbc.co.uk/markets"},
		{chatID: 1, url: "https://bbc.co.uk/bank"},
	}, notifier.deliveries())
	assert.Equal(t, 1, fake.CountWith(remote.OpNews, "BBC"))

	require.NoError(t, agg.processDigests(context.Background()))
	assert.Equal(t, []delivery{
		{chatID: 1, url: "https://bbc.co.uk/markets"},
		{chatID: 1, url: "https://bbc.co.uk/bank"},
		{chatID: 1, url: "https://bbc.co.uk/oil"},
	}, notifier.deliveries(), "already delivered articles are skipped")

	_, marked := agg.GetCached(SentKey(1, "https://bbc.co.uk/oil"))
	assert.True(t, marked)
}

func TestProcessDigests_UntitledDetailGetsFeedHeadline(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{subs: []models.Subscription{{ChatID: 1, Topic: "경제"}}}
	fake := digestFake()
	fake.DetailFunc = func(_ context.Context, url string) (models.ArticleDetail, error) {
		return models.ArticleDetail{Content: "Body text for " + url, URL: url}, nil
	}
	agg, c := newTestAggregator(t, fake, WithNotifier(notifier), WithDigest(time.Hour, 1, time.Hour))

	require.NoError(t, agg.processDigests(context.Background()))

	require.Len(t, notifier.deliveries(), 1)
	assert.Equal(t, "Stocks and bonds slide as inflation bites", notifier.deliveries()[0].title)

	detail, ok := cache.GetAs[models.ArticleDetail](c, remote.DetailKey("https://bbc.co.uk/markets"))
	require.True(t, ok)
	assert.Empty(t, detail.Title)
}

func TestProcessDigests_SentMarkersSurviveCacheClear(t *testing.T) {
	t.Parallel()

	sent := cache.New(cache.WithSweepInterval(time.Hour))
	t.Cleanup(sent.Close)

	notifier := &fakeNotifier{subs: []models.Subscription{{ChatID: 1, Topic: "경제"}}}
	agg, _ := newTestAggregator(t, digestFake(), WithNotifier(notifier), WithSentMarkers(sent),
		WithDigest(time.Hour, 1, time.Hour))

	require.NoError(t, agg.processDigests(context.Background()))
	agg.ClearCache()
	require.NoError(t, agg.processDigests(context.Background()))

	assert.Equal(t, []string{"https://bbc.co.uk/markets", "https://bbc.co.uk/bank"}, urls(notifier.deliveries()))
	_, marked := sent.Get(SentKey(1, "https://bbc.co.uk/markets"))
	assert.True(t, marked)
	_, shared := agg.GetCached(SentKey(1, "https://bbc.co.uk/markets"))
	assert.False(t, shared)
}

func urls(deliveries []delivery) []string {
	out := make([]string, len(deliveries))
	for i, d := range deliveries {
		out[i] = d.url
	}
	return out
}

func TestProcessDigests_SendFailureIsReported(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{
		subs: []models.Subscription{{ChatID: 1, Topic: "경제"}},
		err:  errors.New("chat not found"),
	}
	agg, _ := newTestAggregator(t, digestFake(), WithNotifier(notifier))

	err := agg.processDigests(context.Background())
	require.Error(t, err)

	_, marked := agg.GetCached(SentKey(1, "https://bbc.co.uk/markets"))
	assert.False(t, marked)
}

func TestRun_StopsOnCancel(t *testing.T) {
	notifier := &fakeNotifier{subs: []models.Subscription{{ChatID: 1, Topic: "경제"}}}
	agg, _ := newTestAggregator(t, digestFake(), WithNotifier(notifier), WithDigest(5*time.Millisecond, 1, time.Hour))

	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- agg.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(notifier.deliveries()) >= 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, true, agg.Stats()["running"])

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, false, agg.Stats()["running"])
}
