package runner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stock_bot/internal/journal"
	"stock_bot/internal/models"
	"stock_bot/internal/modules/config"
	gateway "stock_bot/internal/modules/gateway/service"
	health "stock_bot/internal/modules/health/service"
	strategy "stock_bot/internal/modules/strategy/service"
	"stock_bot/internal/notify"
	"stock_bot/internal/runner/sessions"
)

// Watchlist is the session's candidate list, selected once.
type Watchlist interface {
	Refresh(ctx context.Context) error
	Candidates() []models.Candidate
}

// Runner: единственный цикл принятия решений: покупки, потом продажи.
type Runner struct {
	cfg    config.Trading
	gw     gateway.Gateway
	engine strategy.Engine
	watch  Watchlist
	book   *sessions.Book

	journal journal.Journal
	n       notify.Notifier
	state   *health.State
	log     *zap.Logger

	now      func() time.Time
	selected bool
	cycles   int
}

func New(
	cfg *config.Config,
	gw gateway.Gateway,
	engine strategy.Engine,
	watch Watchlist,
	j journal.Journal,
	n notify.Notifier,
	state *health.State,
	log *zap.Logger,
) *Runner {
	book := sessions.NewBook(sessions.RiskConfig{
		HalfTarget:     cfg.Trading.ProfitTargetHalf,
		FullTarget:     cfg.Trading.ProfitTargetFull,
		StopLoss:       cfg.Trading.StopLoss,
		TrailingMargin: cfg.Trading.TrailingMargin,
		Trailing:       engine.Traits().TrailingStop,
		SessionClose:   cfg.Trading.SessionClose,
		Location:       cfg.Location(),
	})
	return &Runner{
		cfg:     cfg.Trading,
		gw:      gw,
		engine:  engine,
		watch:   watch,
		book:    book,
		journal: j,
		n:       n,
		state:   state,
		log:     log,
		now:     time.Now,
	}
}

// SetClock replaces the wall clock.
func (r *Runner) SetClock(now func() time.Time) { r.now = now }

func (r *Runner) Book() *sessions.Book { return r.book }

// Run loops until ctx is cancelled. A cancelled ctx never interrupts a running cycle:
// cycles run on a detached context and the loop only stops between them.
func (r *Runner) Run(ctx context.Context) {
	work := context.WithoutCancel(ctx)
	r.log.Info("runner started",
		zap.String("strategy", string(r.engine.Name())),
		zap.Duration("interval", r.cfg.Interval),
		zap.Int("max_stocks", r.cfg.MaxStocks))

	for ctx.Err() == nil {
		wait := r.cfg.Interval
		if err := r.Cycle(work); err != nil {
			r.log.Error("cycle failed", zap.Error(err), zap.Duration("backoff", r.cfg.ErrorBackoff))
			r.n.Sendf("⚠️ cycle failed: %v (retry in %s)", err, r.cfg.ErrorBackoff)
			wait = r.cfg.ErrorBackoff
		}
		if !sleepCtx(ctx, wait) {
			break
		}
	}
	r.log.Info("runner stopped", zap.Int("cycles", r.cycles), zap.Int("open_positions", r.book.Len()))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
