package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(level LogLevel) (*MarketLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultLoggerConfig()
	cfg.Output = buf
	cfg.Level = level
	return NewLogger(cfg), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestMarketLogger_ScopedAttributes(t *testing.T) {
	l, buf := newBufferedLogger(LogLevelInfo)
	l.WithComponent("bank").WithActor("bank-1").WithContext("run", 7).Info("account opened", "owner", "bidder-1", "balance", 5000)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "account opened", lines[0]["msg"])
	assert.Equal(t, "bank", lines[0]["component"])
	assert.Equal(t, "bank-1", lines[0]["actor"])
	assert.Equal(t, "bidder-1", lines[0]["owner"])
	assert.EqualValues(t, 5000, lines[0]["balance"])
	assert.EqualValues(t, 7, lines[0]["run"])
}

func TestMarketLogger_LevelGate(t *testing.T) {
	l, buf := newBufferedLogger(LogLevelWarn)
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "w", lines[0]["msg"])
	assert.Equal(t, "e", lines[1]["msg"])
}

func TestErrorWithStack(t *testing.T) {
	l, buf := newBufferedLogger(LogLevelInfo)
	ErrorWithStack(l, errors.New("boom"), "behavior panicked", "behavior", "close-auctions")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "boom", lines[0]["error"])
	assert.Equal(t, "close-auctions", lines[0]["behavior"])
	assert.NotEmpty(t, lines[0]["stack_trace"])
}

func TestLogDelivery(t *testing.T) {
	l, buf := newBufferedLogger(LogLevelDebug)
	LogDelivery(l, "BID", "PROPOSE", "bidder-1", 1, 2)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "message routed", lines[0]["msg"])
	assert.Equal(t, "BID", lines[0]["kind"])
	assert.EqualValues(t, 1, lines[0]["delivered"])
	assert.EqualValues(t, 2, lines[0]["dropped"])

	l, buf = newBufferedLogger(LogLevelInfo)
	LogDelivery(l, "BID", "PROPOSE", "bidder-1", 0, 1)
	assert.Empty(t, buf.String())
}

func TestMarketLogger_CloneIsolation(t *testing.T) {
	base, buf := newBufferedLogger(LogLevelInfo)
	_ = base.WithContext("k", "v")
	base.Info("plain")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	_, has := lines[0]["k"]
	assert.False(t, has)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{"debug": LogLevelDebug, "INFO": LogLevelInfo, "warning": LogLevelWarn, "error": LogLevelError, "": LogLevelInfo} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestScoped(t *testing.T) {
	assert.Equal(t, NoOpLogger{}, Scoped(nil, "c", "a"))
	assert.Equal(t, NoOpLogger{}, Scoped(NoOpLogger{}, "c", "a"))

	l, _ := newBufferedLogger(LogLevelInfo)
	scoped, ok := Scoped(l, "auctioneer", "auctioneer-1").(*MarketLogger)
	require.True(t, ok)
	assert.Equal(t, "auctioneer", scoped.component)
	assert.Equal(t, "auctioneer-1", scoped.actor)
}

func TestZapAdapter(t *testing.T) {
	z, err := NewZapLogger(LogLevelDebug, "json")
	require.NoError(t, err)
	scoped := z.With("component", "engine")
	scoped.Debug("spawned", "actor", "bank-1")
	scoped.Info("ok")
	var _ Logger = scoped
}
