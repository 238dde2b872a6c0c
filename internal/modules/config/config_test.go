package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_bot/internal/models"
	"stock_bot/internal/modules/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
gateway:
  mode: paper
trading:
  max_stocks: 3
  interval: 10s
  error_backoff: 45s
strategy:
  variant: rsi
`)
	t.Setenv("CONFIG_FILE", path)

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Trading.MaxStocks)
	assert.Equal(t, 10*time.Second, cfg.Trading.Interval)
	assert.Equal(t, 45*time.Second, cfg.Trading.ErrorBackoff)
	assert.Equal(t, models.StrategyRSI, cfg.Strategy.Variant)
	assert.Equal(t, "paper", cfg.Gateway.Mode)
	// untouched keys keep their defaults
	assert.Equal(t, int64(1_000_000), cfg.Trading.InvestmentPerStock)
	assert.Equal(t, 14, cfg.Strategy.RSI.Period)
}

func TestLoad_FlagsWinOverEnv(t *testing.T) {
	path := writeConfig(t, "gateway:\n  mode: live\n")
	t.Setenv("MAX_STOCKS", "7")
	t.Setenv("STRATEGY", "scalping")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	require.NoError(t, flags.Parse([]string{
		"--config", path,
		"--strategy", "Breakout",
		"--investment", "500000",
		"--paper",
	}))

	cfg, err := config.Load(flags)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyBreakout, cfg.Strategy.Variant)
	assert.Equal(t, 7, cfg.Trading.MaxStocks)
	assert.Equal(t, int64(500_000), cfg.Trading.InvestmentPerStock)
	assert.Equal(t, "paper", cfg.Gateway.Mode)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := config.Load(nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"unknown variant", func(c *config.Config) { c.Strategy.Variant = "macd" }},
		{"zero max stocks", func(c *config.Config) { c.Trading.MaxStocks = 0 }},
		{"positive stop", func(c *config.Config) { c.Trading.StopLoss = 1 }},
		{"half above full", func(c *config.Config) { c.Trading.ProfitTargetHalf = 2 }},
		{"backoff not above interval", func(c *config.Config) { c.Trading.ErrorBackoff = c.Trading.Interval }},
		{"bad mode", func(c *config.Config) { c.Gateway.Mode = "sim" }},
		{"bad close", func(c *config.Config) { c.Trading.SessionClose = "3pm" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := config.Default()
	assert.NoError(t, cfg.Validate())
}
