package telegram

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/ObiAU/syncview/internal/models"
	"github.com/ObiAU/syncview/internal/recommend"
)

const defaultSource = "BBC"

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot manages topic subscriptions over Telegram and delivers enriched
// articles to subscribed chats.
type Bot struct {
	api        *tgbotapi.BotAPI
	sender     sender
	webhookURL string
	index      *recommend.Index
	sources    []string
	logger     zerolog.Logger

	subscriptions map[int64]models.Subscription
	mu            sync.RWMutex
}

// NewBot connects to the Bot API with token. sources lists the news source
// names users may subscribe to.
func NewBot(token, webhookURL string, index *recommend.Index, sources []string, logger zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	b := newBot(api, index, sources, logger)
	b.api = api
	b.webhookURL = webhookURL
	return b, nil
}

func newBot(s sender, index *recommend.Index, sources []string, logger zerolog.Logger) *Bot {
	return &Bot{
		sender:        s,
		index:         index,
		sources:       sources,
		logger:        logger,
		subscriptions: make(map[int64]models.Subscription),
	}
}

// Start registers the webhook with Telegram. Updates then arrive through
// HandleWebhook.
func (b *Bot) Start(ctx context.Context) error {
	webhook, err := tgbotapi.NewWebhook(b.webhookURL)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}

	if _, err := b.api.Request(webhook); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	info, err := b.api.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("failed to get webhook info: %w", err)
	}

	if info.LastErrorDate != 0 {
		b.logger.Warn().Str("error", info.LastErrorMessage).Msg("telegram webhook reported an error")
	}

	b.logger.Info().Str("webhook", b.webhookURL).Msg("telegram webhook registered")
	return nil
}

// HandleWebhook decodes one update from r and processes it.
func (b *Bot) HandleWebhook(ctx context.Context, r *http.Request) error {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		return err
	}

	b.handleUpdate(ctx, *update)
	return nil
}

func (b *Bot) handleUpdate(_ context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	chatID := msg.Chat.ID
	if !msg.IsCommand() {
		b.handleUnknownCommand(chatID)
		return
	}

	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}

	switch msg.Command() {
	case "start":
		b.handleStart(chatID)
	case "subscribe":
		b.handleSubscribe(userID, chatID, msg.CommandArguments())
	case "unsubscribe":
		b.handleUnsubscribe(chatID)
	case "list":
		b.handleList(chatID)
	case "topics":
		b.handleTopics(chatID)
	case "help":
		b.handleHelp(chatID)
	default:
		b.handleUnknownCommand(chatID)
	}
}

func (b *Bot) handleStart(chatID int64) {
	b.sendMessage(chatID, fmt.Sprintf(`Welcome to SyncView! 📰

I send you translated news digests for the topics you follow.

/subscribe topic=경제 source=BBC
/topics - Available topics
/list - Your subscription
/help - Show help

Topics: %s`, html.EscapeString(strings.Join(b.index.Topics(), ", "))))
}

func (b *Bot) handleSubscribe(userID, chatID int64, args string) {
	sub := models.Subscription{
		ChatID: chatID,
		UserID: userID,
		Source: defaultSource,
	}

	for _, part := range strings.Fields(args) {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}

		switch strings.ToLower(key) {
		case "topic":
			sub.Topic = value
		case "source":
			sub.Source = value
		}
	}

	if !b.index.Has(sub.Topic) {
		b.sendMessage(chatID, fmt.Sprintf("Unknown topic. Use: /subscribe topic=경제 source=BBC\n\nTopics: %s",
			html.EscapeString(strings.Join(b.index.Topics(), ", "))))
		return
	}

	source, ok := b.lookupSource(sub.Source)
	if !ok {
		b.sendMessage(chatID, fmt.Sprintf("Unknown source. Choose one of: %s", html.EscapeString(strings.Join(b.sources, ", "))))
		return
	}
	sub.Source = source

	b.mu.Lock()
	b.subscriptions[chatID] = sub
	b.mu.Unlock()

	b.logger.Info().Int64("chat_id", chatID).Str("topic", sub.Topic).Str("source", sub.Source).Msg("subscription saved")
	b.sendMessage(chatID, fmt.Sprintf("Subscribed! 🎯\n\nTopic: %s\nSource: %s",
		html.EscapeString(sub.Topic), html.EscapeString(sub.Source)))
}

func (b *Bot) handleUnsubscribe(chatID int64) {
	b.mu.Lock()
	_, existed := b.subscriptions[chatID]
	delete(b.subscriptions, chatID)
	b.mu.Unlock()

	if !existed {
		b.sendMessage(chatID, "You have no subscription.")
		return
	}
	b.sendMessage(chatID, "Unsubscribed. You will no longer receive digests.")
}

func (b *Bot) handleList(chatID int64) {
	b.mu.RLock()
	sub, exists := b.subscriptions[chatID]
	b.mu.RUnlock()

	if !exists {
		b.sendMessage(chatID, "No subscription configured. Use /subscribe topic=경제 source=BBC to create one.")
		return
	}

	b.sendMessage(chatID, fmt.Sprintf("Your subscription: 📋\n\nTopic: %s\nSource: %s",
		html.EscapeString(sub.Topic), html.EscapeString(sub.Source)))
}

func (b *Bot) handleTopics(chatID int64) {
	var sb strings.Builder
	sb.WriteString("Available topics:\n")
	for _, topic := range b.index.Topics() {
		sb.WriteString("• " + html.EscapeString(topic) + "\n")
	}
	b.sendMessage(chatID, sb.String())
}

func (b *Bot) handleHelp(chatID int64) {
	b.sendMessage(chatID, fmt.Sprintf(`SyncView Help 📖

Commands:
/start - Welcome message
/subscribe topic=&lt;topic&gt; source=&lt;source&gt; - Follow a topic
/unsubscribe - Stop digests
/list - Show your subscription
/topics - List topics
/help - Show this help

Sources: %s`, html.EscapeString(strings.Join(b.sources, ", "))))
}

func (b *Bot) handleUnknownCommand(chatID int64) {
	b.sendMessage(chatID, "Unknown command. Use /help for available commands.")
}

// Subscriptions returns a snapshot of all subscriptions ordered by chat.
func (b *Bot) Subscriptions() []models.Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := make([]models.Subscription, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ChatID < subs[j].ChatID })
	return subs
}

// SendArticle delivers one enriched article to chatID under the headline
// title, or the article's own title when title is empty.
func (b *Bot) SendArticle(_ context.Context, chatID int64, title string, article *models.EnrichedArticle) error {
	msg := tgbotapi.NewMessage(chatID, formatArticle(title, article))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := b.sender.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (b *Bot) lookupSource(source string) (string, bool) {
	for _, name := range b.sources {
		if strings.EqualFold(name, source) {
			return name, true
		}
	}
	return "", false
}

func formatArticle(title string, article *models.EnrichedArticle) string {
	var sb strings.Builder

	if title == "" {
		title = article.Title
	}
	sb.WriteString("📰 <b>" + html.EscapeString(title) + "</b>\n\n")

	if article.Sentiment != nil {
		sb.WriteString(fmt.Sprintf("%s Sentiment: %s (%.0f%%)\n\n",
			sentimentEmoji(article.Sentiment.Sentiment),
			html.EscapeString(article.Sentiment.Label),
			article.Sentiment.Score*100))
	}

	summary := article.SummaryKo
	if summary == "" {
		summary = article.Summary
	}
	if summary != "" {
		sb.WriteString("📝 " + html.EscapeString(summary) + "\n\n")
	}

	sb.WriteString(fmt.Sprintf(`🔗 <a href="%s">Read more</a>`, html.EscapeString(article.URL)))
	if article.Source != "" {
		sb.WriteString("\n\nSource: " + html.EscapeString(article.Source))
	}

	return sb.String()
}

func sentimentEmoji(sentiment string) string {
	switch sentiment {
	case "positive":
		return "😊"
	case "negative":
		return "😟"
	default:
		return "😐"
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send telegram message")
	}
}
