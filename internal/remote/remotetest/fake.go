// Package remotetest provides a scriptable remote.Operations for tests.
package remotetest

import (
	"context"
	"sync"

	"github.com/ObiAU/syncview/internal/models"
	"github.com/ObiAU/syncview/internal/remote"
)

// Call records one invocation of the fake.
type Call struct {
	Op   string
	Args []string
}

// Fake is a remote.Operations whose results are set per operation. Unset
// functions return zero values.
type Fake struct {
	NewsFunc      func(ctx context.Context, source string) ([]models.ArticleSummary, error)
	DetailFunc    func(ctx context.Context, url string) (models.ArticleDetail, error)
	SummaryFunc   func(ctx context.Context, url string) (string, error)
	TranslateFunc func(ctx context.Context, text, targetLang string) (string, error)
	SentimentFunc func(ctx context.Context, text string) (*models.Sentiment, error)

	mu    sync.Mutex
	calls []Call
}

func (f *Fake) record(op string, args ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Args: args})
}

// Calls returns a copy of all recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Count returns how many times op was called.
func (f *Fake) Count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, call := range f.calls {
		if call.Op == op {
			n++
		}
	}
	return n
}

// CountWith returns how many times op was called with args.
func (f *Fake) CountWith(op string, args ...string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, call := range f.calls {
		if call.Op != op || len(call.Args) != len(args) {
			continue
		}
		match := true
		for i := range args {
			if call.Args[i] != args[i] {
				match = false
				break
			}
		}
		if match {
			n++
		}
	}
	return n
}

func (f *Fake) FetchNews(ctx context.Context, source string) ([]models.ArticleSummary, error) {
	f.record(remote.OpNews, source)
	if f.NewsFunc == nil {
		return nil, nil
	}
	return f.NewsFunc(ctx, source)
}

func (f *Fake) FetchDetail(ctx context.Context, url string) (models.ArticleDetail, error) {
	f.record(remote.OpDetail, url)
	if f.DetailFunc == nil {
		return models.ArticleDetail{}, nil
	}
	return f.DetailFunc(ctx, url)
}

func (f *Fake) FetchSummary(ctx context.Context, url string) (string, error) {
	f.record(remote.OpSummary, url)
	if f.SummaryFunc == nil {
		return "", nil
	}
	return f.SummaryFunc(ctx, url)
}

func (f *Fake) Translate(ctx context.Context, text, targetLang string) (string, error) {
	f.record(remote.OpTranslate, text, targetLang)
	if f.TranslateFunc == nil {
		return "", nil
	}
	return f.TranslateFunc(ctx, text, targetLang)
}

func (f *Fake) AnalyzeSentiment(ctx context.Context, text string) (*models.Sentiment, error) {
	f.record(remote.OpSentiment, text)
	if f.SentimentFunc == nil {
		return nil, nil
	}
	return f.SentimentFunc(ctx, text)
}

var _ remote.Operations = (*Fake)(nil)
