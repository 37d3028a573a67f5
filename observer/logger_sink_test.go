package observer

import (
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/hupe1980/agentmarket/core"
)

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Debug(msg string, args ...any) { m.Called(msg, args) }
func (m *mockLogger) Info(msg string, args ...any)  { m.Called(msg, args) }
func (m *mockLogger) Warn(msg string, args ...any)  { m.Called(msg, args) }
func (m *mockLogger) Error(msg string, args ...any) { m.Called(msg, args) }

func TestLoggerSink(t *testing.T) {
	l := &mockLogger{}
	l.On("Info", "auction won", []any{"item", "ITEM-1", "winner", "b1", "price", 300.0}).Once()
	l.On("Info", "auction failed", []any{"item", "ITEM-2", "price", 250.0}).Once()
	l.On("Warn", "violation recorded", []any(nil)).Once()
	l.On("Debug", "market statistics", mock.Anything).Once()

	s := NewLoggerSink(l)
	s.AuctionEnd("ITEM-1", "b1", 300)
	s.AuctionEnd("ITEM-2", "", 250)
	s.Log("violation recorded", core.SeverityWarning)
	s.Statistics(2, 8, 1200)

	l.AssertExpectations(t)
}
