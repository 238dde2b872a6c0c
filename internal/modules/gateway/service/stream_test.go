package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stock_bot/internal/models"
	"stock_bot/internal/modules/gateway/service"
)

func TestStream_DeliversFillsAndStops(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"pong"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(
			`{"type":"chejan","data":{"order_no":"77","code":"A005930","side":"2","quantity":"5","price":"-70,100","status":"filled","time":"101502"}}`))
		// держим соединение, пока клиент не закроет
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	s := service.NewStream("ws"+strings.TrimPrefix(srv.URL, "http"), zap.NewNop())
	var connected atomic.Bool
	s.OnConnect(connected.Store)

	ctx, cancel := context.WithCancel(context.Background())
	fills := make(chan models.Fill, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, func(_ context.Context, f models.Fill) { fills <- f })
	}()

	select {
	case f := <-fills:
		assert.Equal(t, "77", f.OrderID)
		assert.Equal(t, "005930", f.Code)
		assert.Equal(t, models.SideSell, f.Side)
		assert.Equal(t, int64(5), f.Quantity)
		assert.Equal(t, int64(70_100), f.Price)
		assert.Equal(t, 10, f.At.Hour())
	case <-time.After(5 * time.Second):
		t.Fatal("no fill delivered")
	}
	assert.True(t, connected.Load())

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop")
	}
	assert.False(t, connected.Load())
	require.Empty(t, fills)
}
