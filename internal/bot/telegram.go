package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"sentiment-dashboard/internal/history"
	"sentiment-dashboard/internal/present"
	"sentiment-dashboard/internal/service"
	"sentiment-dashboard/internal/storage"
	"sentiment-dashboard/pkg/logger"
)

var log = logger.WithComponent("telegram")

const replyTimeout = 30 * time.Second

// Replies builds the bot's answers. Each chat gets its own storage
// namespace, so /history shows only that chat's searches.
type Replies struct {
	analyses *service.Registry
	market   *service.MarketService
	storage  storage.Namespacer
	loc      *time.Location
}

func NewReplies(analyses *service.Registry, market *service.MarketService, store storage.Namespacer) *Replies {
	return &Replies{analyses: analyses, market: market, storage: store, loc: time.Local}
}

// Namespace is the storage namespace of a chat.
func Namespace(chatID int64) string {
	return fmt.Sprintf("telegram:%d", chatID)
}

func (r *Replies) Analyze(ctx context.Context, chatID int64, args []string) string {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return "Usage: /analyze bitcoin"
	}

	out, err := r.analyses.Get(Namespace(chatID)).Analyze(ctx, query)
	if err != nil || out.Result == nil {
		return fmt.Sprintf("%s\n%s", out.Notice.Title, out.Notice.Message)
	}

	a := out.Result
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", strings.ToUpper(a.Crypto))
	fmt.Fprintf(&b, "Sentiment: %s\n", present.SentimentLabel(a.Sentiment))
	fmt.Fprintf(&b, "Recommendation: %s\n", strings.ToUpper(string(a.Recommendation)))
	fmt.Fprintf(&b, "Confidence: %s\n", present.Confidence(a.Confidence))
	fmt.Fprintf(&b, "News: %d positive, %d neutral, %d negative",
		a.Stats.PositiveNews, a.Stats.NeutralNews(), a.Stats.NegativeNews)
	for _, reason := range a.Reasons {
		fmt.Fprintf(&b, "\n- %s", reason)
	}
	return b.String()
}

func (r *Replies) History(ctx context.Context, chatID int64) string {
	scope, err := r.storage.Namespace(Namespace(chatID))
	if err != nil {
		return "History is unavailable right now."
	}
	entries := history.New(scope).Load(ctx)
	if len(entries) == 0 {
		return "No searches yet. Try /analyze bitcoin"
	}

	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "Recent searches:")
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s (%s) %s",
			e.Crypto, present.SentimentLabel(e.Sentiment), present.Timestamp(e.Timestamp, r.loc)))
	}
	return strings.Join(lines, "\n")
}

func (r *Replies) Market(ctx context.Context) string {
	snap, fallback := r.market.Snapshot(ctx)
	msg := fmt.Sprintf(
		"Market cap: %s\n24h volume: %s\nBTC dominance: %s\nTrend: %s",
		present.Billions(snap.MarketCap), present.Billions(snap.Volume24h),
		present.Dominance(snap.BTCDominance), present.Sparkline(snap.TrendData.Values),
	)
	if fallback {
		msg += "\n(sample data, live stats unavailable)"
	}
	return msg
}

// StartTelegramBot starts long polling in the background. An empty token
// disables the bot.
func StartTelegramBot(token string, replies *Replies) (*tele.Bot, error) {
	if token == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	b.Handle("/start", func(c tele.Context) error {
		return c.Send("Commands:\n/analyze <crypto>\n/history\n/market")
	})
	b.Handle("/analyze", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()
		return c.Send(replies.Analyze(ctx, c.Chat().ID, c.Args()))
	})
	b.Handle("/history", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()
		return c.Send(replies.History(ctx, c.Chat().ID))
	})
	b.Handle("/market", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()
		return c.Send(replies.Market(ctx))
	})

	log.Info("telegram bot started")
	go b.Start()
	return b, nil
}
