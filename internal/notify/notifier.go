package notify

import (
	"fmt"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stock_bot/internal/modules/config"
	health "stock_bot/internal/modules/health/service"
)

// Notifier reports decisions, rejections and fills to the operator.
type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// Telegram: нотифайер в один чат; команды только на чтение.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	log    *zap.Logger
}

func NewTelegram(token string, chatID int64, log *zap.Logger) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: b, chatID: chatID, log: log}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		t.log.Warn("telegram send failed", zap.Error(err))
	}
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// Stdout: заглушка, всё пишет в лог.
type Stdout struct {
	log *zap.Logger
}

func NewStdout(log *zap.Logger) *Stdout { return &Stdout{log: log} }

func (s *Stdout) Send(msg string)                  { s.log.Info(msg, zap.String("channel", "notify")) }
func (s *Stdout) Sendf(format string, args ...any) { s.Send(fmt.Sprintf(format, args...)) }

// New picks Telegram when a token is configured, stdout otherwise.
func New(cfg *config.Config, log *zap.Logger) Notifier {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		return NewStdout(log)
	}
	tg, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
	if err != nil {
		log.Warn("telegram unavailable, falling back to stdout", zap.Error(err))
		return NewStdout(log)
	}
	return tg
}

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(New),
		fx.Invoke(func(lc fx.Lifecycle, n Notifier, state *health.State) {
			listen(lc, n, state)
		}),
	)
}
