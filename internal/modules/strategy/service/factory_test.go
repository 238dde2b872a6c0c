package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_bot/internal/models"
	"stock_bot/internal/modules/config"
	"stock_bot/internal/modules/strategy/service"
)

func TestNewEngine(t *testing.T) {
	for _, variant := range []models.StrategyType{
		models.StrategyBollinger, models.StrategyRSI, models.StrategyScalping, models.StrategyBreakout,
	} {
		cfg := config.Default()
		cfg.Strategy.Variant = variant
		e, err := service.NewEngine(&cfg)
		require.NoError(t, err)
		assert.Equal(t, variant, e.Name())
	}

	cfg := config.Default()
	cfg.Strategy.Variant = "momentum"
	_, err := service.NewEngine(&cfg)
	assert.Error(t, err)
}
