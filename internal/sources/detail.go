package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/ObiAU/syncview/internal/models"
	"github.com/ObiAU/syncview/internal/remote"
)

const (
	maxContentRunes = 3000
	maxPageBytes    = 5 << 20
)

// Extractor downloads article pages and extracts their readable text.
type Extractor struct {
	client *http.Client
}

func NewExtractor(httpClient *http.Client) *Extractor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Extractor{client: httpClient}
}

// FetchDetail returns the readable body of the page at articleURL, capped at
// 3000 characters.
func (e *Extractor) FetchDetail(ctx context.Context, articleURL string) (models.ArticleDetail, error) {
	pageURL, err := url.Parse(articleURL)
	if err != nil || pageURL.Host == "" {
		return models.ArticleDetail{}, remote.NewStatusError(remote.OpDetail, http.StatusBadRequest,
			fmt.Sprintf("invalid article url: %s", articleURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return models.ArticleDetail{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return models.ArticleDetail{}, fmt.Errorf("fetching article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ArticleDetail{}, remote.NewStatusError(remote.OpDetail, http.StatusBadGateway,
			fmt.Sprintf("%s returned status %d", pageURL.Host, resp.StatusCode))
	}

	finalURL := resp.Request.URL
	extracted, err := readability.FromReader(io.LimitReader(resp.Body, maxPageBytes), finalURL)
	if err != nil {
		return models.ArticleDetail{}, fmt.Errorf("readability extraction failed: %w", err)
	}

	source := strings.TrimSpace(extracted.SiteName)
	if source == "" {
		source = finalURL.Hostname()
	}

	return models.ArticleDetail{
		Title:       strings.TrimSpace(extracted.Title),
		Content:     truncate(normalizeSpace(extracted.TextContent), maxContentRunes),
		Description: normalizeSpace(extracted.Excerpt),
		ImageURL:    extracted.Image,
		Source:      source,
		URL:         finalURL.String(),
	}, nil
}
