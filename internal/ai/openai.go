package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/ObiAU/syncview/internal/models"
	"github.com/ObiAU/syncview/internal/remote"
)

const (
	DefaultModel = string(openai.ChatModelGPT4oMini)

	maxInputRunes = 4000
)

var languageNames = map[string]string{
	"ko": "Korean",
	"en": "English",
	"ja": "Japanese",
	"zh": "Chinese",
}

// OpenAIClient performs translation, sentiment analysis and summarisation
// with a chat completion model.
type OpenAIClient struct {
	client openai.Client
	model  string
}

type sentimentResponse struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

func NewOpenAIClient(apiKey, model string, options ...option.RequestOption) *OpenAIClient {
	if model == "" {
		model = DefaultModel
	}

	options = append([]option.RequestOption{option.WithAPIKey(apiKey)}, options...)
	return &OpenAIClient{
		client: openai.NewClient(options...),
		model:  model,
	}
}

// Translate translates English text into targetLang.
func (c *OpenAIClient) Translate(ctx context.Context, text, targetLang string) (string, error) {
	language, ok := languageNames[targetLang]
	if !ok {
		return "", remote.NewStatusError(remote.OpTranslate, http.StatusBadRequest,
			fmt.Sprintf("unsupported target language: %s", targetLang))
	}

	system := fmt.Sprintf("You are a professional news translator. Translate the user's English news text into natural %s. "+
		"Keep names, numbers and quotes accurate. Reply with the translation only.", language)

	content, err := c.complete(ctx, system, truncate(text, maxInputRunes), 2000)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}

	return content, nil
}

// AnalyzeSentiment classifies text as positive, negative or neutral.
func (c *OpenAIClient) AnalyzeSentiment(ctx context.Context, text string) (*models.Sentiment, error) {
	system := `You are a news sentiment analyst. Classify the overall tone of the user's news text.
Respond with JSON only: {"sentiment": "positive" | "negative" | "neutral", "score": 0.0-1.0}
where score is your confidence.`

	content, err := c.complete(ctx, system, truncate(text, maxInputRunes), 100)
	if err != nil {
		return nil, fmt.Errorf("sentiment analysis failed: %w", err)
	}

	var resp sentimentResponse
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse openai response: %w", err)
	}

	return NewSentiment(resp.Sentiment, resp.Score), nil
}

// Summarize condenses an article body into two or three sentences in the
// article's language.
func (c *OpenAIClient) Summarize(ctx context.Context, text string) (string, error) {
	system := "You are a news editor. Summarise the user's article in two or three sentences, in the article's language. " +
		"Reply with the summary only."

	content, err := c.complete(ctx, system, truncate(text, maxInputRunes), 300)
	if err != nil {
		return "", fmt.Errorf("summarisation failed: %w", err)
	}

	return content, nil
}

func (c *OpenAIClient) complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response from openai")
	}

	return content, nil
}

func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
