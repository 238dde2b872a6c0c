package service_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stock_bot/internal/models"
	"stock_bot/internal/modules/config"
	"stock_bot/internal/modules/gateway/service"
)

func newClient(t *testing.T, h http.HandlerFunc) *service.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Gateway.BaseURL = srv.URL
	cfg.Gateway.Account = "8012345611"
	return service.NewClient(&cfg, zap.NewNop())
}

func TestClient_DailyBars(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/bars", r.URL.Path)
		switch r.URL.Query().Get("code") {
		case "005930":
			_, _ = io.WriteString(w, `{"code":"0","data":[
				{"date":"20240305","open":"12,100","high":"12,600","low":"12,000","close":"+12,500","volume":"2000"},
				{"date":"20240304","open":"12,000","high":"12,200","low":"11,900","close":"-12,100","volume":"1500"}]}`)
		case "empty":
			_, _ = io.WriteString(w, `{"code":"0","data":[]}`)
		default:
			_, _ = io.WriteString(w, `{"code":"0","data":[{"date":"20240305","open":"","high":"1","low":"1","close":"1","volume":"1"}]}`)
		}
	})

	bars, err := c.DailyBars(context.Background(), "005930")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, int64(12_500), bars[0].Close, "most recent first")
	assert.Equal(t, int64(12_100), bars[1].Close)

	_, err = c.DailyBars(context.Background(), "empty")
	assert.True(t, errors.Is(err, service.ErrDataUnavailable))

	_, err = c.DailyBars(context.Background(), "broken")
	assert.True(t, errors.Is(err, service.ErrDataUnavailable))
}

func TestClient_CurrentPrice(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("code") == "down" {
			http.Error(w, "bridge down", http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"code":"0","data":{"price":"-12,340"}}`)
	})

	px, err := c.CurrentPrice(context.Background(), "005930")
	require.NoError(t, err)
	assert.Equal(t, int64(12_340), px)

	_, err = c.CurrentPrice(context.Background(), "down")
	assert.True(t, errors.Is(err, service.ErrQuoteUnavailable))
}

func TestClient_Balance(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "8012345611", r.URL.Query().Get("account"))
		_, _ = io.WriteString(w, `{"code":"0","data":{
			"deposit":"000005000000","total_buy":"1,000,000","total_eval":"1,015,000",
			"total_profit":"+15,000","total_profit_rate":"1.50",
			"stocks":[
				{"code":"A005930","name":"삼성전자","quantity":"81","buy_price":"12,300","current_price":"-12,500","profit":"16200","profit_rate":"1.62"},
				{"code":"A035720","name":"카카오","quantity":"0","buy_price":"50,000","current_price":"50,000","profit":"","profit_rate":""}]}}`)
	})

	acc, err := c.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000), acc.Cash)
	assert.Equal(t, 1.5, acc.TotalProfitRate)
	require.Len(t, acc.Holdings, 1, "zero quantity rows are dropped")
	h := acc.Holdings[0]
	assert.Equal(t, "005930", h.Code)
	assert.Equal(t, int64(81), h.Quantity)
	assert.Equal(t, int64(12_500), h.CurrentPrice)
	assert.Equal(t, 1.62, h.ProfitRate)
}

func TestClient_PlaceOrder(t *testing.T) {
	var got map[string]any
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, sonic.Unmarshal(body, &got))
		if got["code"] == "999999" {
			_, _ = io.WriteString(w, `{"code":"0","data":{"result":"-308","order_no":""}}`)
			return
		}
		_, _ = io.WriteString(w, `{"code":"0","data":{"result":"0","order_no":"0001"}}`)
	})

	res, err := c.PlaceOrder(context.Background(), models.OrderIntent{
		ID: "abc", Side: models.SideSell, Code: "005930", Quantity: 40, Price: 12_500, Kind: models.OrderMarket,
	})
	require.NoError(t, err)
	assert.Equal(t, service.ResultAccepted, res)
	assert.Equal(t, "2", got["order_type"])
	assert.Equal(t, "03", got["hoga"])
	assert.Equal(t, float64(0), got["price"], "market orders carry no price")
	assert.Equal(t, "abc", got["client_id"])

	res, err = c.PlaceOrder(context.Background(), models.OrderIntent{
		ID: "def", Side: models.SideBuy, Code: "999999", Quantity: 1, Price: 1_000, Kind: models.OrderLimit,
	})
	require.NoError(t, err)
	assert.Equal(t, -308, res)
	assert.Equal(t, "00", got["hoga"])
}

func TestClient_BridgeErrorAndRanking(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/rank/turnover":
			assert.Equal(t, "101", r.URL.Query().Get("market"))
			_, _ = io.WriteString(w, `{"code":"0","data":[
				{"code":"005930","name":"A","price":"+12,500","trade_amount":"987,654","change_rate":"+2.45"},
				{"code":"","name":"bad","price":"1","trade_amount":"1","change_rate":"1"},
				{"code":"035720","name":"B","price":"-50,000","trade_amount":"500,000","change_rate":"-1.10"}]}`)
		default:
			_, _ = io.WriteString(w, `{"code":"-100","msg":"session expired"}`)
		}
	})

	ranking, err := c.TurnoverRanking(context.Background(), "101")
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, "005930", ranking[0].Code)
	assert.Equal(t, int64(987_654), ranking[0].TradedValue)
	assert.Equal(t, -1.10, ranking[1].ChangeRatePct)

	_, err = c.Balance(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")
}
