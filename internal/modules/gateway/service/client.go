package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"stock_bot/internal/models"
	"stock_bot/internal/modules/config"
)

const barsPerRequest = 100

// Client talks to the broker REST bridge. Every response is {"code":"0","msg":"","data":...}.
type Client struct {
	baseURL string
	account string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(cfg *config.Config, log *zap.Logger) *Client {
	timeout := cfg.Gateway.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.Gateway.BaseURL, "/"),
		account: cfg.Gateway.Account,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type envelope[T any] struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

func call[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (T, error) {
	var zero T

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return zero, errors.Wrap(err, "marshal request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return zero, errors.Wrap(err, "new request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return zero, errors.Errorf("%s %s: http %d: %s", method, path, resp.StatusCode, string(data))
	}

	var r envelope[T]
	if err := sonic.Unmarshal(data, &r); err != nil {
		return zero, errors.Wrapf(err, "%s %s decode", method, path)
	}
	if r.Code != "0" {
		return zero, errors.Errorf("%s %s: bridge error code=%s msg=%s", method, path, r.Code, r.Msg)
	}
	return r.Data, nil
}

// DailyBars: most-recent-first, as the bridge sends them.
func (c *Client) DailyBars(ctx context.Context, code string) ([]models.Bar, error) {
	rows, err := call[[]rawBar](ctx, c, http.MethodGet, "/v1/bars",
		url.Values{"code": {code}, "count": {strconv.Itoa(barsPerRequest)}}, nil)
	if err != nil {
		return nil, errors.Wrapf(ErrDataUnavailable, "%s: %v", code, err)
	}
	if len(rows) == 0 {
		return nil, errors.Wrapf(ErrDataUnavailable, "%s: empty history", code)
	}

	bars := make([]models.Bar, 0, len(rows))
	for _, r := range rows {
		b, err := r.toBar()
		if err != nil {
			return nil, errors.Wrapf(ErrDataUnavailable, "%s: %v", code, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func (c *Client) CurrentPrice(ctx context.Context, code string) (int64, error) {
	q, err := call[struct {
		Price string `json:"price"`
	}](ctx, c, http.MethodGet, "/v1/quote", url.Values{"code": {code}}, nil)
	if err != nil {
		return 0, errors.Wrapf(ErrQuoteUnavailable, "%s: %v", code, err)
	}
	px, err := parseAbsInt(q.Price)
	if err != nil || px <= 0 {
		return 0, errors.Wrapf(ErrQuoteUnavailable, "%s: bad price %q", code, q.Price)
	}
	return px, nil
}

func (c *Client) Balance(ctx context.Context) (models.Account, error) {
	raw, err := call[rawBalance](ctx, c, http.MethodGet, "/v1/balance", url.Values{"account": {c.account}}, nil)
	if err != nil {
		return models.Account{}, err
	}
	return raw.toAccount()
}

func (c *Client) PendingOrders(ctx context.Context, side models.Side) ([]models.PendingOrder, error) {
	rows, err := call[[]rawPending](ctx, c, http.MethodGet, "/v1/orders/pending",
		url.Values{"account": {c.account}, "side": {sideCode(side)}}, nil)
	if err != nil {
		return nil, err
	}

	out := make([]models.PendingOrder, 0, len(rows))
	for _, r := range rows {
		p, err := r.toPending()
		if err != nil {
			c.log.Warn("skip malformed pending order", zap.String("order_no", r.OrderNo), zap.Error(err))
			continue
		}
		if p.Side != side || p.Remaining <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type orderRequest struct {
	Account   string `json:"account"`
	OrderType string `json:"order_type"` // 1 new buy, 2 new sell
	Code      string `json:"code"`
	Quantity  int64  `json:"quantity"`
	Price     int64  `json:"price"`
	Hoga      string `json:"hoga"`
	ClientID  string `json:"client_id"`
}

// PlaceOrder returns the broker result code; transport failures come back as errors.
func (c *Client) PlaceOrder(ctx context.Context, intent models.OrderIntent) (int, error) {
	price := intent.Price
	if intent.Kind == models.OrderMarket {
		price = 0
	}
	res, err := call[struct {
		Result  string `json:"result"`
		OrderNo string `json:"order_no"`
	}](ctx, c, http.MethodPost, "/v1/orders", nil, orderRequest{
		Account:   c.account,
		OrderType: sideCode(intent.Side),
		Code:      intent.Code,
		Quantity:  intent.Quantity,
		Price:     price,
		Hoga:      kindCode(intent.Kind),
		ClientID:  intent.ID,
	})
	if err != nil {
		return 0, err
	}

	code, err := strconv.Atoi(clean(res.Result))
	if err != nil {
		return 0, errors.Wrapf(err, "order result %q", res.Result)
	}
	c.log.Debug("order placed",
		zap.String("intent", intent.ID),
		zap.String("order_no", res.OrderNo),
		zap.Int("result", code))
	return code, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	_, err := call[struct{}](ctx, c, http.MethodPost, "/v1/orders/cancel", nil, map[string]string{
		"account":  c.account,
		"order_no": orderID,
	})
	return err
}

func (c *Client) TurnoverRanking(ctx context.Context, market string) ([]models.Candidate, error) {
	rows, err := call[[]rawRank](ctx, c, http.MethodGet, "/v1/rank/turnover", url.Values{"market": {market}}, nil)
	if err != nil {
		return nil, err
	}

	out := make([]models.Candidate, 0, len(rows))
	for _, r := range rows {
		cand, err := r.toCandidate()
		if err != nil {
			c.log.Warn("skip malformed ranking row", zap.String("code", r.Code), zap.Error(err))
			continue
		}
		out = append(out, cand)
	}
	return out, nil
}

func (c *Client) StockName(ctx context.Context, code string) (string, error) {
	res, err := call[struct {
		Name string `json:"name"`
	}](ctx, c, http.MethodGet, "/v1/stocks/name", url.Values{"code": {code}}, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Name), nil
}
