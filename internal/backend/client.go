package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ObiAU/syncview/internal/models"
	"github.com/ObiAU/syncview/internal/remote"
)

const defaultTimeout = 120 * time.Second

// Client calls the SyncView backend API.
type Client struct {
	baseURL string
	client  *http.Client
}

type newsResponse struct {
	Articles []models.ArticleSummary `json:"articles"`
	Message  string                  `json:"message,omitempty"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	TranslatedText *string `json:"translated_text"`
}

type sentimentRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Msg string `json:"msg"`
}

// NewClient creates a backend client for baseURL. A nil httpClient gets a
// default client with a generous timeout for slow model-backed endpoints.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

func (c *Client) FetchNews(ctx context.Context, source string) ([]models.ArticleSummary, error) {
	query := url.Values{"source": {source}}

	var resp newsResponse
	if err := c.do(ctx, remote.OpNews, http.MethodGet, "/news/news?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Articles == nil {
		return []models.ArticleSummary{}, nil
	}

	return resp.Articles, nil
}

func (c *Client) FetchDetail(ctx context.Context, articleURL string) (models.ArticleDetail, error) {
	query := url.Values{"url": {articleURL}}

	var detail models.ArticleDetail
	if err := c.do(ctx, remote.OpDetail, http.MethodGet, "/news/detail?"+query.Encode(), nil, &detail); err != nil {
		return models.ArticleDetail{}, err
	}

	return detail, nil
}

// FetchSummary accepts either {"summary": "..."} or a bare JSON string.
func (c *Client) FetchSummary(ctx context.Context, articleURL string) (string, error) {
	query := url.Values{"url": {articleURL}}

	var raw json.RawMessage
	if err := c.do(ctx, remote.OpSummary, http.MethodGet, "/news/summary?"+query.Encode(), nil, &raw); err != nil {
		return "", err
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	var resp summaryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &remote.Error{Op: remote.OpSummary, Message: "invalid summary response", Err: err}
	}

	return resp.Summary, nil
}

func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	body := translateRequest{Text: text, SourceLang: "en", TargetLang: targetLang}

	var resp translateResponse
	if err := c.do(ctx, remote.OpTranslate, http.MethodPost, "/api/translate", body, &resp); err != nil {
		return "", err
	}
	if resp.TranslatedText == nil {
		return "", &remote.Error{Op: remote.OpTranslate, Message: "translation response missing translated_text"}
	}

	return *resp.TranslatedText, nil
}

// AnalyzeSentiment returns nil when the backend answers with JSON null.
func (c *Client) AnalyzeSentiment(ctx context.Context, text string) (*models.Sentiment, error) {
	var sentiment *models.Sentiment
	if err := c.do(ctx, remote.OpSentiment, http.MethodPost, "/news/sentiment", sentimentRequest{Text: text}, &sentiment); err != nil {
		return nil, err
	}

	return sentiment, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &remote.Error{Op: op, Message: "failed to encode request", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &remote.Error{Op: op, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &remote.Error{Op: op, Message: fmt.Sprintf("request failed: %v", err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return remote.NewStatusError(op, resp.StatusCode, readDetail(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &remote.Error{Op: op, Status: resp.StatusCode, Message: "invalid response body", Err: err}
	}

	return nil
}

// readDetail extracts "detail" from an error body. A validation list
// contributes its "msg" entries joined with "; ".
func readDetail(body io.Reader) string {
	var resp errorResponse
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&resp); err != nil {
		return ""
	}

	var detail string
	if err := json.Unmarshal(resp.Detail, &detail); err == nil {
		return strings.TrimSpace(detail)
	}

	var issues []validationIssue
	if err := json.Unmarshal(resp.Detail, &issues); err != nil {
		return ""
	}

	messages := make([]string, 0, len(issues))
	for _, issue := range issues {
		if msg := strings.TrimSpace(issue.Msg); msg != "" {
			messages = append(messages, msg)
		}
	}
	return strings.Join(messages, "; ")
}

var _ remote.Operations = (*Client)(nil)
