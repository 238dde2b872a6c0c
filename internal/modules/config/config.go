package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"stock_bot/internal/models"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"

	defaultConfigPath = "configs/values_local.yaml"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB         string `yaml:"db_dsn"`
	SQLitePath string `yaml:"sqlite_path"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"logging"`

	Tracing struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"tracing"`

	Health struct {
		Addr string `yaml:"addr"`
	} `yaml:"health"`

	Gateway  Gateway  `yaml:"gateway"`
	Trading  Trading  `yaml:"trading"`
	Strategy Strategy `yaml:"strategy"`
}

type Gateway struct {
	Mode    string        `yaml:"mode"` // live | paper
	BaseURL string        `yaml:"base_url"`
	WSURL   string        `yaml:"ws_url"`
	Account string        `yaml:"account"`
	Timeout time.Duration `yaml:"timeout"`

	// стартовый депозит для paper-режима
	PaperCash int64 `yaml:"paper_cash"`
}

// Trading: risk policy and loop timing.
type Trading struct {
	MaxStocks          int     `yaml:"max_stocks"`
	InvestmentPerStock int64   `yaml:"investment_per_stock"`
	ProfitTargetHalf   float64 `yaml:"profit_target_half"`
	ProfitTargetFull   float64 `yaml:"profit_target_full"`
	StopLoss           float64 `yaml:"stop_loss"`
	TrailingMargin     float64 `yaml:"trailing_margin"`

	Market      string `yaml:"market"` // 000 all, 001 KOSPI, 101 KOSDAQ
	TargetCount int    `yaml:"target_count"`
	ScanDepth   int    `yaml:"scan_depth"`

	Interval     time.Duration `yaml:"interval"`
	ErrorBackoff time.Duration `yaml:"error_backoff"`
	SessionClose string        `yaml:"session_close"` // "15:15"
	Timezone     string        `yaml:"timezone"`
}

type Strategy struct {
	Variant models.StrategyType `yaml:"variant"`

	Bollinger struct {
		Period int     `yaml:"period"`
		K      float64 `yaml:"k"`
	} `yaml:"bollinger"`

	RSI struct {
		Period       int     `yaml:"period"`
		Oversold     float64 `yaml:"oversold"`
		DeepCutoff   float64 `yaml:"deep_cutoff"`
		DeepRatio    float64 `yaml:"deep_ratio"`
		ShallowRatio float64 `yaml:"shallow_ratio"`
	} `yaml:"rsi"`

	Scalping struct {
		MinTurnover  int64   `yaml:"min_turnover"`
		MinChangePct float64 `yaml:"min_change_pct"`
		PriceRatio   float64 `yaml:"price_ratio"`
	} `yaml:"scalping"`

	Breakout struct {
		BaseK            float64 `yaml:"base_k"`
		VolumeMultiplier float64 `yaml:"volume_multiplier"`
		Adaptive         bool    `yaml:"adaptive"`
	} `yaml:"breakout"`
}

// Default returns the configuration used when a key is absent from the file.
func Default() Config {
	var c Config
	c.Logging.Level = "info"
	c.Logging.MaxSizeMB = 50
	c.Logging.MaxBackups = 5
	c.Health.Addr = ":8080"
	c.SQLitePath = ""

	c.Gateway.Mode = "live"
	c.Gateway.Timeout = 10 * time.Second
	c.Gateway.PaperCash = 10_000_000

	c.Trading = Trading{
		MaxStocks:          5,
		InvestmentPerStock: 1_000_000,
		ProfitTargetHalf:   1.0,
		ProfitTargetFull:   1.5,
		StopLoss:           -1.5,
		TrailingMargin:     2.0,
		Market:             "101",
		TargetCount:        15,
		ScanDepth:          50,
		Interval:           30 * time.Second,
		ErrorBackoff:       60 * time.Second,
		SessionClose:       "15:15",
		Timezone:           "Asia/Seoul",
	}

	c.Strategy.Variant = models.StrategyBollinger
	c.Strategy.Bollinger.Period = 20
	c.Strategy.Bollinger.K = 2
	c.Strategy.RSI.Period = 14
	c.Strategy.RSI.Oversold = 30
	c.Strategy.RSI.DeepCutoff = 35
	c.Strategy.RSI.DeepRatio = 0.98
	c.Strategy.RSI.ShallowRatio = 0.95
	c.Strategy.Scalping.MinTurnover = 10_000_000_000
	c.Strategy.Scalping.MinChangePct = 2.0
	c.Strategy.Scalping.PriceRatio = 1.01
	c.Strategy.Breakout.BaseK = 0.5
	c.Strategy.Breakout.VolumeMultiplier = 1.5
	c.Strategy.Breakout.Adaptive = true
	return c
}

// NewConfig: defaults -> yaml file -> env -> CLI flags.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("bot", pflag.ContinueOnError)
	RegisterFlags(flags)
	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	return Load(flags)
}

// RegisterFlags declares the CLI surface.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "path to yaml config (overrides CONFIG_FILE)")
	flags.String("strategy", "", "strategy variant: bollinger | rsi | scalping | breakout")
	flags.Int("max-stocks", 0, "max simultaneously held stocks")
	flags.Int64("investment", 0, "investment budget per stock")
	flags.Bool("paper", false, "use the simulated paper gateway")
}

// Load builds the config from the file named by flags/env and applies overrides.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	path := v.GetString("config")
	if path == "" {
		path = getenvDefault(configFilePathENV, defaultConfigPath)
	}

	cfg := Default()
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyEnv(&cfg)

	if s := v.GetString("strategy"); s != "" {
		cfg.Strategy.Variant = models.StrategyType(strings.ToLower(s))
	}
	if n := v.GetInt("max-stocks"); n > 0 {
		cfg.Trading.MaxStocks = n
	}
	if n := v.GetInt64("investment"); n > 0 {
		cfg.Trading.InvestmentPerStock = n
	}
	if v.GetBool("paper") {
		cfg.Gateway.Mode = "paper"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if token := os.Getenv(tokenTelegramENV); token != "" {
		cfg.Telegram.Token = token
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		cfg.DB = dsn
	}
	if v := os.Getenv("STRATEGY"); v != "" {
		cfg.Strategy.Variant = models.StrategyType(strings.ToLower(v))
	}

	t := &cfg.Trading
	t.MaxStocks = intFromEnv("MAX_STOCKS", t.MaxStocks)
	t.InvestmentPerStock = int64(intFromEnv("INVESTMENT_PER_STOCK", int(t.InvestmentPerStock)))
	t.ProfitTargetHalf = floatFromEnv("PROFIT_TARGET_HALF", t.ProfitTargetHalf)
	t.ProfitTargetFull = floatFromEnv("PROFIT_TARGET_FULL", t.ProfitTargetFull)
	t.StopLoss = floatFromEnv("STOP_LOSS", t.StopLoss)
	t.TrailingMargin = floatFromEnv("TRAILING_MARGIN", t.TrailingMargin)
	t.Interval = durationFromEnv("CYCLE_INTERVAL", t.Interval)
	t.ErrorBackoff = durationFromEnv("ERROR_BACKOFF", t.ErrorBackoff)
	cfg.Gateway.BaseURL = getenvDefault("GATEWAY_URL", cfg.Gateway.BaseURL)
	cfg.Gateway.Account = getenvDefault("GATEWAY_ACCOUNT", cfg.Gateway.Account)
}

// Validate rejects inconsistent risk and loop settings.
func (c *Config) Validate() error {
	t := c.Trading
	switch {
	case !c.Strategy.Variant.Valid():
		return fmt.Errorf("unknown strategy variant %q", c.Strategy.Variant)
	case t.MaxStocks <= 0:
		return fmt.Errorf("max_stocks must be > 0")
	case t.InvestmentPerStock <= 0:
		return fmt.Errorf("investment_per_stock must be > 0")
	case t.StopLoss >= 0:
		return fmt.Errorf("stop_loss must be negative, got %.2f", t.StopLoss)
	case t.ProfitTargetHalf <= 0 || t.ProfitTargetFull < t.ProfitTargetHalf:
		return fmt.Errorf("profit targets must satisfy 0 < half <= full")
	case t.TrailingMargin < 0:
		return fmt.Errorf("trailing_margin must be >= 0")
	case t.TargetCount <= 0 || t.ScanDepth <= 0:
		return fmt.Errorf("target_count and scan_depth must be > 0")
	case t.Interval <= 0:
		return fmt.Errorf("interval must be > 0")
	case t.ErrorBackoff <= t.Interval:
		return fmt.Errorf("error_backoff (%s) must exceed interval (%s)", t.ErrorBackoff, t.Interval)
	case c.Gateway.Mode != "live" && c.Gateway.Mode != "paper":
		return fmt.Errorf("gateway.mode must be live or paper, got %q", c.Gateway.Mode)
	}
	if _, err := time.LoadLocation(t.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", t.Timezone, err)
	}
	if _, err := time.Parse("15:04", t.SessionClose); err != nil {
		return fmt.Errorf("session_close %q: %w", t.SessionClose, err)
	}
	return nil
}

// Location of the exchange clock; Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Trading.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
