package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stock_bot/internal/models"
)

// StatusSource is what the read-only chat commands can see.
type StatusSource interface {
	Ready() bool
	Cycles() int64
	LastCycle() time.Time
	LastError() string
	Positions() []models.Position
}

// Reply renders the answer to a chat command; unknown commands get the help text.
func Reply(command string, src StatusSource) string {
	switch command {
	case "status":
		var b strings.Builder
		fmt.Fprintf(&b, "📊 ready=%t cycles=%d positions=%d\n", src.Ready(), src.Cycles(), len(src.Positions()))
		if last := src.LastCycle(); !last.IsZero() {
			fmt.Fprintf(&b, "last cycle: %s\n", last.Format(time.DateTime))
		}
		if e := src.LastError(); e != "" {
			fmt.Fprintf(&b, "last error: %s\n", e)
		}
		return strings.TrimRight(b.String(), "\n")
	case "positions":
		ps := src.Positions()
		if len(ps) == 0 {
			return "📭 Открытых позиций нет"
		}
		var b strings.Builder
		b.WriteString("📊 Открытые позиции:\n")
		for _, p := range ps {
			fmt.Fprintf(&b, "- %s %s [%s] qty=%d @ %d peak=%.2f%%\n",
				p.Code, p.Name, p.State(), p.Quantity, p.BuyPrice, p.PeakProfit)
		}
		return strings.TrimRight(b.String(), "\n")
	default:
		return "/status - состояние цикла\n/positions - открытые позиции"
	}
}

// Listen answers /status and /positions from the configured chat until ctx is done.
func (t *Telegram) Listen(ctx context.Context, src StatusSource) {
	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			// чужие чаты игнорируем
			if msg == nil || !msg.IsCommand() || msg.Chat == nil || msg.Chat.ID != t.chatID {
				continue
			}
			t.log.Debug("telegram command", zap.String("command", msg.Command()))
			t.Send(Reply(msg.Command(), src))
		}
	}
}

func listen(lc fx.Lifecycle, n Notifier, src StatusSource) {
	tg, ok := n.(*Telegram)
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go tg.Listen(ctx, src)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
