package health_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_bot/internal/modules/health"
	"stock_bot/internal/modules/health/service"
)

func TestProbes(t *testing.T) {
	state := service.NewState()
	mux := health.NewMux(state)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	state.SetReady(true)
	state.CycleDone(time.Unix(1_700_000_000, 0), 3, errors.New("balance: timeout"))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Cycles        int64  `json:"cycles"`
		OpenPositions int64  `json:"openPositions"`
		LastCycleUnix int64  `json:"lastCycleUnix"`
		LastError     string `json:"lastError"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Cycles)
	assert.Equal(t, int64(3), body.OpenPositions)
	assert.Equal(t, int64(1_700_000_000), body.LastCycleUnix)
	assert.Equal(t, "balance: timeout", body.LastError)

	state.CycleDone(time.Unix(1_700_000_030, 0), 2, nil)
	assert.Empty(t, state.LastError())
	assert.Equal(t, int64(2), state.Cycles())
}
