package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogRecorder_EmitsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	recorder := NewSlogRecorder(slog.New(slog.NewJSONHandler(&buf, nil)))

	recorder.Record(context.Background(), Event{
		Time:   time.Now(),
		Phase:  PhaseRequest,
		Method: "POST",
		URL:    "https://testnet.binancefuture.com/fapi/v1/order",
		Query:  "symbol=BTCUSDT&side=BUY",
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "request", line["phase"])
	assert.Equal(t, "POST", line["method"])
	assert.Equal(t, "symbol=BTCUSDT&side=BUY", line["query"])
}

func TestSlogRecorder_ErrorPhaseLogsAtError(t *testing.T) {
	var buf bytes.Buffer
	recorder := NewSlogRecorder(slog.New(slog.NewJSONHandler(&buf, nil)))

	recorder.Record(context.Background(), Event{
		Time:  time.Now(),
		Phase: PhaseError,
		Note:  "connection refused",
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ERROR", line["level"])
	assert.Equal(t, "connection refused", line["note"])
}

type countingRecorder struct {
	events []Event
}

func (c *countingRecorder) Record(_ context.Context, event Event) {
	c.events = append(c.events, event)
}

func TestMultiRecorder_FansOut(t *testing.T) {
	first := &countingRecorder{}
	second := &countingRecorder{}
	multi := NewMultiRecorder(first, second)

	event := Event{Phase: PhaseResponse, Status: 200}
	multi.Record(context.Background(), event)

	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	assert.Equal(t, event, first.events[0])
	assert.Equal(t, event, second.events[0])
}

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	connStr := os.Getenv("ORDERFLUX_AUDIT_PG")
	if connStr == "" {
		t.Skip("ORDERFLUX_AUDIT_PG not set")
	}

	store, err := NewPostgresStore(connStr, slog.Default())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	store.Record(ctx, Event{
		Time:   now,
		Phase:  PhaseRequest,
		Method: "POST",
		URL:    "https://testnet.binancefuture.com/fapi/v1/order",
		Query:  "symbol=BTCUSDT&side=BUY&timestamp=1700000000000",
	})

	events, err := store.Events(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	assert.Equal(t, PhaseRequest, last.Phase)
	assert.Equal(t, "POST", last.Method)
	assert.NotContains(t, last.Query, "signature")
}
