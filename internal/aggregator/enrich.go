package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ObiAU/syncview/internal/models"
)

// Enrichment branches that may degrade.
const (
	BranchSentiment        = "sentiment"
	BranchSummaryTranslate = "summary_translation"
	BranchContentTranslate = "content_translation"
)

var ErrEmptyURL = errors.New("article url is required")

// Degradation records a branch of an enrichment that failed and was
// replaced by its default value.
type Degradation struct {
	URL    string
	Branch string
	Err    error
}

func (d *Degradation) Error() string {
	return fmt.Sprintf("%s degraded for %s: %v", d.Branch, d.URL, d.Err)
}

func (d *Degradation) Unwrap() error {
	return d.Err
}

// Enrich builds the enriched view of the article at url.
//
// Detail and summary are fetched together and either both succeed or the
// first error is returned as is. Sentiment and the two translations then run
// together; any of them failing leaves its field empty and does not fail the
// call.
func (a *Aggregator) Enrich(ctx context.Context, url string) (*models.EnrichedArticle, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrEmptyURL
	}

	var (
		detail  models.ArticleDetail
		summary string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail, err = a.ops.FetchDetail(gctx, url)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = a.ops.FetchSummary(gctx, url)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	target := models.TargetText(summary, detail)

	var (
		wg        sync.WaitGroup
		sentiment *models.Sentiment
		summaryKo string
		contentKo string
	)

	branch := func(name string, run func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(); err != nil {
				a.degrade(&Degradation{URL: url, Branch: name, Err: err})
			}
		}()
	}

	if strings.TrimSpace(target) != "" {
		branch(BranchSentiment, func() error {
			result, err := a.ops.AnalyzeSentiment(ctx, target)
			if err != nil {
				return err
			}
			sentiment = result
			return nil
		})
	}
	if strings.TrimSpace(summary) != "" {
		branch(BranchSummaryTranslate, func() error {
			text, err := a.ops.Translate(ctx, summary, a.targetLang)
			if err != nil {
				return err
			}
			summaryKo = text
			return nil
		})
	}
	if strings.TrimSpace(detail.Content) != "" {
		branch(BranchContentTranslate, func() error {
			text, err := a.ops.Translate(ctx, detail.Content, a.targetLang)
			if err != nil {
				return err
			}
			contentKo = text
			return nil
		})
	}
	wg.Wait()

	return &models.EnrichedArticle{
		ArticleDetail: detail,
		URL:           url,
		Summary:       summary,
		SummaryKo:     summaryKo,
		ContentKo:     contentKo,
		Sentiment:     sentiment,
	}, nil
}

func (a *Aggregator) degrade(d *Degradation) {
	a.degradations.Add(1)
	a.logger.Warn().
		Err(d.Err).
		Str("url", d.URL).
		Str("branch", d.Branch).
		Msg("enrichment degraded")
}
