package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"stock_bot/internal/models"
)

// FillHandler receives every parsed execution notice.
type FillHandler func(ctx context.Context, f models.Fill)

// Stream reads execution notices (order accepted / partially filled / filled) from the bridge websocket.
type Stream struct {
	url    string
	dialer *websocket.Dialer
	log    *zap.Logger

	onConnect func(bool)
}

func NewStream(url string, log *zap.Logger) *Stream {
	return &Stream{
		url:    url,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:    log,
	}
}

// OnConnect is called with true after every successful dial and false after every drop.
func (s *Stream) OnConnect(fn func(bool)) { s.onConnect = fn }

type noticeFrame struct {
	Type string `json:"type"`
	Data struct {
		OrderNo  string `json:"order_no"`
		Code     string `json:"code"`
		Side     string `json:"side"`
		Quantity string `json:"quantity"`
		Price    string `json:"price"`
		Status   string `json:"status"`
		Time     string `json:"time"` // HHMMSS
	} `json:"data"`
}

// parseNotice converts one frame; ok is false for pings and foreign frames.
func parseNotice(msg []byte, now time.Time) (models.Fill, bool) {
	var frame noticeFrame
	if err := sonic.Unmarshal(msg, &frame); err != nil {
		return models.Fill{}, false
	}
	if frame.Type != "chejan" {
		return models.Fill{}, false
	}
	d := frame.Data
	f := models.Fill{
		OrderID: strings.TrimSpace(d.OrderNo),
		Code:    normalizeCode(d.Code),
		Status:  strings.TrimSpace(d.Status),
		At:      now,
	}
	switch strings.TrimSpace(d.Side) {
	case "1", "+매수", "buy":
		f.Side = models.SideBuy
	case "2", "-매도", "sell":
		f.Side = models.SideSell
	default:
		return models.Fill{}, false
	}
	var err error
	if f.Quantity, err = parseInt(d.Quantity); err != nil {
		return models.Fill{}, false
	}
	f.Price, _ = parseAbsInt(d.Price)
	if t, err := time.ParseInLocation("150405", strings.TrimSpace(d.Time), now.Location()); err == nil {
		f.At = time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), t.Second(), 0, now.Location())
	}
	return f, f.Code != ""
}

// Run reconnects until ctx is done.
func (s *Stream) Run(ctx context.Context, handle FillHandler) {
	for {
		s.log.Info("stream connect", zap.String("url", s.url))
		conn, _, err := s.dialer.DialContext(ctx, s.url, http.Header{})
		if err != nil {
			s.log.Warn("stream dial failed", zap.Error(err))
			if !sleepCtx(ctx, time.Second) {
				return
			}
			continue
		}
		s.connected(true)

		// закрываем соединение при остановке, чтобы разблокировать ReadMessage
		stop := make(chan struct{})
		go func() {
			t := time.NewTicker(20 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					_ = conn.Close()
					return
				case <-stop:
					return
				case <-t.C:
					_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					s.log.Warn("stream read failed", zap.Error(err))
				}
				break
			}
			if fill, ok := parseNotice(msg, time.Now()); ok {
				handle(ctx, fill)
			}
		}
		close(stop)
		_ = conn.Close()
		s.connected(false)

		if !sleepCtx(ctx, time.Second) {
			return
		}
	}
}

func (s *Stream) connected(v bool) {
	if s.onConnect != nil {
		s.onConnect(v)
	}
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
