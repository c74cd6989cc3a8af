package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ObiAU/syncview/internal/models"
	"github.com/ObiAU/syncview/internal/remote"
)

const maxFeedItems = 20

// Feed describes one supported news source.
type Feed struct {
	Name    string
	URL     string
	Aliases []string
	// TitleSuffix is trimmed from item titles, e.g. " - CNN".
	TitleSuffix string
	// OmitSummary drops the feed's item summaries.
	OmitSummary bool
}

var DefaultFeeds = []Feed{
	{
		Name: "BBC",
		URL:  "http://feeds.bbci.co.uk/news/world/rss.xml",
	},
	{
		Name:    "Reuters",
		URL:     "https://www.reutersagency.com/feed/?taxonomy=best-topics&post_type=best",
		Aliases: []string{"reuters (로이터)", "로이터"},
	},
	{
		Name:        "CNN",
		URL:         "http://rss.cnn.com/rss/edition.rss",
		TitleSuffix: " - CNN",
		OmitSummary: true,
	},
}

type FeedClient struct {
	parser *gofeed.Parser
	feeds  []Feed
}

// NewFeedClient creates a client for feeds. A nil httpClient gets a default
// client with a 30 second timeout.
func NewFeedClient(feeds []Feed, httpClient *http.Client) *FeedClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	parser := gofeed.NewParser()
	parser.Client = httpClient
	parser.UserAgent = userAgent

	return &FeedClient{parser: parser, feeds: feeds}
}

// Lookup finds a feed by name or alias, ignoring case.
func (c *FeedClient) Lookup(source string) (Feed, bool) {
	source = strings.ToLower(strings.TrimSpace(source))
	for _, feed := range c.feeds {
		if strings.ToLower(feed.Name) == source {
			return feed, true
		}
		for _, alias := range feed.Aliases {
			if strings.ToLower(alias) == source {
				return feed, true
			}
		}
	}
	return Feed{}, false
}

// Names lists the supported source names.
func (c *FeedClient) Names() []string {
	names := make([]string, len(c.feeds))
	for i, feed := range c.feeds {
		names[i] = feed.Name
	}
	return names
}

// FetchNews returns up to 20 items of the named source's feed.
func (c *FeedClient) FetchNews(ctx context.Context, source string) ([]models.ArticleSummary, error) {
	feed, ok := c.Lookup(source)
	if !ok {
		return nil, remote.NewStatusError(remote.OpNews, http.StatusBadRequest,
			fmt.Sprintf("unsupported source: %s (choose one of %s)", source, strings.Join(c.Names(), ", ")))
	}

	parsed, err := c.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s feed: %w", feed.Name, err)
	}

	count := min(len(parsed.Items), maxFeedItems)
	articles := make([]models.ArticleSummary, 0, count)
	for _, item := range parsed.Items[:count] {
		articles = append(articles, feed.article(item))
	}

	return articles, nil
}

func (f Feed) article(item *gofeed.Item) models.ArticleSummary {
	title := strings.TrimSpace(item.Title)
	if f.TitleSuffix != "" {
		title, _, _ = strings.Cut(title, f.TitleSuffix)
		title = strings.TrimSpace(title)
	}
	if title == "" {
		title = "Untitled"
	}

	var summary string
	if !f.OmitSummary {
		summary = item.Description
		if summary == "" {
			summary = item.Content
		}
		summary = stripHTML(summary)
	}

	article := models.ArticleSummary{
		Title:     title,
		Link:      item.Link,
		Summary:   summary,
		Published: item.Published,
		Source:    f.Name,
	}
	if item.Image != nil {
		article.ImageURL = item.Image.URL
	}

	return article
}
