package journal_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_bot/internal/journal"
	"stock_bot/internal/models"
)

func TestSQLite_RecordAndRead(t *testing.T) {
	j, err := journal.NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	at := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

	buy := models.OrderIntent{ID: "b-1", Side: models.SideBuy, Code: "005930", Quantity: 81, Price: 12_300, Kind: models.OrderLimit, Reason: "signal"}
	sell := models.OrderIntent{ID: "s-1", Side: models.SideSell, Code: "005930", Quantity: 40, Kind: models.OrderMarket, Reason: "stop_loss"}

	require.NoError(t, j.Record(ctx, journal.NewEntry(buy, at, 0, nil)))
	require.NoError(t, j.Record(ctx, journal.NewEntry(sell, at.Add(time.Minute), -308, errors.New("rejected"))))
	require.NoError(t, j.Record(ctx, journal.NewEntry(models.OrderIntent{ID: "x", Side: models.SideBuy, Code: "035720", Quantity: 1, Price: 1, Kind: models.OrderLimit}, at, 0, nil)))

	entries, err := j.ByCode(ctx, "005930")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "b-1", entries[0].IntentID)
	assert.Equal(t, models.SideBuy, entries[0].Side)
	assert.Equal(t, int64(12_300), entries[0].Price)
	assert.Equal(t, models.OrderLimit, entries[0].Kind)
	assert.True(t, at.Equal(entries[0].At))
	assert.Empty(t, entries[0].Error)

	assert.Equal(t, models.OrderMarket, entries[1].Kind)
	assert.Equal(t, -308, entries[1].Result)
	assert.Equal(t, "rejected", entries[1].Error)
}

func TestNop(t *testing.T) {
	var j journal.Journal = journal.Nop{}
	assert.NoError(t, j.Record(context.Background(), journal.Entry{}))
	assert.NoError(t, j.Close())
}
