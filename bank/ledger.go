package bank

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/agentmarket/core"
)

var (
	// ErrAccountNotFound is returned for operations on an unknown owner.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when opening a second account for an owner.
	ErrAccountExists = errors.New("account already exists")
	// ErrInsufficientFunds is returned when the available balance does not
	// cover an amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount is returned for non-positive amounts.
	ErrInvalidAmount = errors.New("invalid amount")
)

// TxType classifies a ledger transaction.
type TxType string

const (
	TxOpen    TxType = "OPEN"
	TxCredit  TxType = "CREDIT"
	TxBlock   TxType = "BLOCK"
	TxRelease TxType = "RELEASE"
	TxDebit   TxType = "DEBIT"
)

// Transaction is one entry of an account log. Balance and Blocked are the
// account figures after the transaction.
type Transaction struct {
	Type      TxType
	Amount    float64
	Balance   float64
	Blocked   float64
	Timestamp time.Time
}

// Account holds the funds of one owner. All fields are guarded by mu.
//
// Invariants:
//   - 0 ≤ blocked ≤ balance
//   - every mutation appends exactly one Transaction
type Account struct {
	Owner core.Address

	mu           sync.Mutex
	balance      float64
	blocked      float64
	transactions []Transaction
}

// AccountSnapshot is a consistent copy of an account's figures.
type AccountSnapshot struct {
	Owner        core.Address
	Balance      float64
	Blocked      float64
	Available    float64
	Transactions int
}

func (a *Account) available() float64 { return a.balance - a.blocked }

func (a *Account) record(t TxType, amount float64, now time.Time) {
	a.transactions = append(a.transactions, Transaction{
		Type:      t,
		Amount:    amount,
		Balance:   a.balance,
		Blocked:   a.blocked,
		Timestamp: now,
	})
}

// Snapshot returns the current figures.
func (a *Account) Snapshot() AccountSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	return AccountSnapshot{
		Owner:        a.Owner,
		Balance:      a.balance,
		Blocked:      a.blocked,
		Available:    a.available(),
		Transactions: len(a.transactions),
	}
}

// Transactions returns a copy of the account log.
func (a *Account) Transactions() []Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.transactions)
}

// Ledger is the set of accounts kept by the bank. The account table is
// guarded by an RWMutex and each account by its own mutex, so operations on
// different accounts never contend.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[core.Address]*Account
	order    []core.Address
	now      func() time.Time
}

// NewLedger creates an empty ledger stamping transactions with now. A nil
// now uses the wall clock.
func NewLedger(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}

	return &Ledger{accounts: make(map[core.Address]*Account), now: now}
}

// Open creates an account for owner with an initial balance.
func (l *Ledger) Open(owner core.Address, initial float64) error {
	if initial < 0 || !finite(initial) {
		return fmt.Errorf("%w: initial balance %v", ErrInvalidAmount, initial)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[owner]; ok {
		return fmt.Errorf("%w: %s", ErrAccountExists, owner)
	}

	a := &Account{Owner: owner, balance: initial}
	a.record(TxOpen, initial, l.now())

	l.accounts[owner] = a
	l.order = append(l.order, owner)

	return nil
}

// Has reports whether owner has an account.
func (l *Ledger) Has(owner core.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.accounts[owner]

	return ok
}

// Account returns the account of owner.
func (l *Ledger) Account(owner core.Address) (*Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.accounts[owner]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, owner)
	}

	return a, nil
}

// Len returns the number of accounts.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.accounts)
}

// Accounts returns snapshots of every account in opening order.
func (l *Ledger) Accounts() []AccountSnapshot {
	l.mu.RLock()
	accounts := make([]*Account, 0, len(l.order))
	for _, owner := range l.order {
		accounts = append(accounts, l.accounts[owner])
	}
	l.mu.RUnlock()

	out := make([]AccountSnapshot, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Snapshot())
	}

	return out
}

// with runs fn on owner's account under its lock.
func (l *Ledger) with(owner core.Address, amount float64, fn func(a *Account, now time.Time) error) error {
	if amount <= 0 || !finite(amount) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	a, err := l.Account(owner)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return fn(a, l.now())
}

// CheckSolvency reports whether owner's available balance covers amount.
func (l *Ledger) CheckSolvency(owner core.Address, amount float64) (bool, error) {
	solvent := false

	err := l.with(owner, amount, func(a *Account, _ time.Time) error {
		solvent = a.available() >= amount
		return nil
	})

	return solvent, err
}

// Block holds amount of owner's available balance.
func (l *Ledger) Block(owner core.Address, amount float64) error {
	return l.with(owner, amount, func(a *Account, now time.Time) error {
		if a.available() < amount {
			return fmt.Errorf("%w: %s needs %.2f, has %.2f", ErrInsufficientFunds, owner, amount, a.available())
		}

		a.blocked += amount
		a.record(TxBlock, amount, now)

		return nil
	})
}

// Release frees up to amount of owner's held funds and returns the amount
// actually released.
func (l *Ledger) Release(owner core.Address, amount float64) (float64, error) {
	var released float64

	err := l.with(owner, amount, func(a *Account, now time.Time) error {
		released = min(amount, a.blocked)
		if released == 0 {
			return nil
		}

		a.blocked -= released
		a.record(TxRelease, released, now)

		return nil
	})

	return released, err
}

// Debit removes amount from owner's balance. It fails without any state
// change unless the available balance covers amount.
func (l *Ledger) Debit(owner core.Address, amount float64) error {
	return l.with(owner, amount, func(a *Account, now time.Time) error {
		return debit(a, owner, amount, now)
	})
}

func debit(a *Account, owner core.Address, amount float64, now time.Time) error {
	if a.available() < amount {
		return fmt.Errorf("%w: %s needs %.2f, has %.2f", ErrInsufficientFunds, owner, amount, a.available())
	}

	a.balance -= amount
	a.record(TxDebit, amount, now)

	return nil
}

// Credit adds amount to owner's balance.
func (l *Ledger) Credit(owner core.Address, amount float64) error {
	return l.with(owner, amount, func(a *Account, now time.Time) error {
		a.balance += amount
		a.record(TxCredit, amount, now)

		return nil
	})
}

// Settle converts a hold into a payment: it releases up to release and then
// debits amount, as one step. If the debit fails the hold is restored and
// the account is left as it was, apart from the logged transactions.
func (l *Ledger) Settle(owner core.Address, amount, release float64) error {
	if !finite(release) {
		return fmt.Errorf("%w: release %v", ErrInvalidAmount, release)
	}

	return l.with(owner, amount, func(a *Account, now time.Time) error {
		released := min(max(release, 0), a.blocked)
		if released > 0 {
			a.blocked -= released
			a.record(TxRelease, released, now)
		}

		if err := debit(a, owner, amount, now); err != nil {
			if released > 0 {
				a.blocked += released
				a.record(TxBlock, released, now)
			}

			return err
		}

		return nil
	})
}

// Balance returns owner's balance and available funds.
func (l *Ledger) Balance(owner core.Address) (balance, available float64, err error) {
	a, err := l.Account(owner)
	if err != nil {
		return 0, 0, err
	}

	s := a.Snapshot()

	return s.Balance, s.Available, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
