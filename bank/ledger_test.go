package bank

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentmarket/core"
)

func fixedNow() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

func newLedger(t *testing.T, owner core.Address, balance float64) *Ledger {
	t.Helper()

	l := NewLedger(fixedNow)
	require.NoError(t, l.Open(owner, balance))

	return l
}

func TestLedger_Open(t *testing.T) {
	l := newLedger(t, "b1", 1000)

	assert.ErrorIs(t, l.Open("b1", 10), ErrAccountExists)
	assert.ErrorIs(t, l.Open("b2", -1), ErrInvalidAmount)
	assert.True(t, l.Has("b1"))
	assert.False(t, l.Has("b2"))
	assert.Equal(t, 1, l.Len())

	_, _, err := l.Balance("nobody")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestLedger_RejectsNonFiniteAmounts(t *testing.T) {
	l := newLedger(t, "b1", 1000)
	require.NoError(t, l.Block("b1", 100))

	acct, err := l.Account("b1")
	require.NoError(t, err)

	before := acct.Snapshot()

	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.ErrorIs(t, l.Block("b1", amount), ErrInvalidAmount)
		_, err := l.Release("b1", amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.ErrorIs(t, l.Debit("b1", amount), ErrInvalidAmount)
		assert.ErrorIs(t, l.Credit("b1", amount), ErrInvalidAmount)
		assert.ErrorIs(t, l.Settle("b1", amount, 100), ErrInvalidAmount)
		assert.ErrorIs(t, l.Settle("b1", 50, amount), ErrInvalidAmount)

		_, err = l.CheckSolvency("b1", amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}

	assert.Equal(t, before, acct.Snapshot())

	assert.ErrorIs(t, l.Open("b2", math.NaN()), ErrInvalidAmount)
	assert.ErrorIs(t, l.Open("b3", math.Inf(1)), ErrInvalidAmount)
}

func TestLedger_BlockAndRelease(t *testing.T) {
	l := newLedger(t, "b1", 1000)

	require.NoError(t, l.Block("b1", 600))

	ok, err := l.CheckSolvency("b1", 500)
	require.NoError(t, err)
	assert.False(t, ok, "solvency uses available funds")

	assert.ErrorIs(t, l.Block("b1", 500), ErrInsufficientFunds)

	released, err := l.Release("b1", 1000)
	require.NoError(t, err)
	assert.Equal(t, 600.0, released, "release is clamped to the hold")

	balance, available, err := l.Balance("b1")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, balance)
	assert.Equal(t, 1000.0, available)
}

func TestLedger_DebitFailsWithoutStateChange(t *testing.T) {
	l := newLedger(t, "b1", 1000)
	require.NoError(t, l.Block("b1", 800))

	before := l.Accounts()[0]
	assert.ErrorIs(t, l.Debit("b1", 300), ErrInsufficientFunds)

	after := l.Accounts()[0]
	assert.Equal(t, before, after)

	require.NoError(t, l.Debit("b1", 200))
	balance, available, _ := l.Balance("b1")
	assert.Equal(t, 800.0, balance)
	assert.Equal(t, 0.0, available)
}

func TestLedger_Settle(t *testing.T) {
	l := newLedger(t, "b1", 1000)
	require.NoError(t, l.Block("b1", 700))

	require.NoError(t, l.Settle("b1", 700, 700))

	s := l.Accounts()[0]
	assert.Equal(t, 300.0, s.Balance)
	assert.Equal(t, 0.0, s.Blocked)
}

func TestLedger_SettleRestoresHoldOnFailure(t *testing.T) {
	l := newLedger(t, "b1", 1000)
	require.NoError(t, l.Block("b1", 400))
	require.NoError(t, l.Block("b1", 500))

	// the payment of 1200 cannot be covered even after releasing 400
	assert.ErrorIs(t, l.Settle("b1", 1200, 400), ErrInsufficientFunds)

	s := l.Accounts()[0]
	assert.Equal(t, 1000.0, s.Balance)
	assert.Equal(t, 900.0, s.Blocked)
}

func TestLedger_CreditAndTransactions(t *testing.T) {
	l := newLedger(t, "b1", 100)
	require.NoError(t, l.Credit("b1", 50))
	assert.ErrorIs(t, l.Credit("b1", 0), ErrInvalidAmount)
	assert.ErrorIs(t, l.Credit("x", 10), ErrAccountNotFound)

	a, err := l.Account("b1")
	require.NoError(t, err)

	txs := a.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, TxOpen, txs[0].Type)
	assert.Equal(t, TxCredit, txs[1].Type)
	assert.Equal(t, 150.0, txs[1].Balance)
	assert.Equal(t, fixedNow(), txs[1].Timestamp)
}

func TestLedger_InvariantHoldsForAnySequence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("0 <= blocked <= balance after every operation", prop.ForAll(
		func(ops []int, amounts []float64, initial float64) bool {
			l := NewLedger(fixedNow)
			if err := l.Open("b1", initial); err != nil {
				return false
			}

			for i := 0; i < len(ops) && i < len(amounts); i++ {
				amount := amounts[i]

				switch ops[i] {
				case 0:
					_ = l.Block("b1", amount)
				case 1:
					_, _ = l.Release("b1", amount)
				case 2:
					_ = l.Debit("b1", amount)
				case 3:
					_ = l.Credit("b1", amount)
				case 4:
					_ = l.Settle("b1", amount, amount)
				case 5:
					_ = l.Settle("b1", amount, amount/2)
				}

				s := l.Accounts()[0]
				if s.Blocked < 0 || s.Blocked > s.Balance+1e-9 || s.Balance < -1e-9 {
					return false
				}
			}

			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
		gen.SliceOf(gen.Float64Range(1, 3000)),
		gen.Float64Range(0, 10000),
	))

	properties.TestingRun(t)
}
