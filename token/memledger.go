package token

import (
	"sync"

	"github.com/holiman/uint256"
)

// MemLedger is an in-memory Ledger implementation. It backs tests and local
// engines that do not settle against an external chain.
type MemLedger struct {
	mu       sync.Mutex
	balances map[Address]map[Address]*uint256.Int // token → account → balance
}

// Compile-time interface check.
var _ Ledger = (*MemLedger)(nil)

// NewMemLedger creates an empty in-memory ledger.
func NewMemLedger() *MemLedger {
	return &MemLedger{balances: make(map[Address]map[Address]*uint256.Int)}
}

// Mint credits amount of tok to account out of thin air.
func (l *MemLedger) Mint(tok, account Address, amount *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balanceRef(tok, account).Add(l.balanceRef(tok, account), amount)
}

// Transfer moves amount of tok between accounts. A zero amount is a no-op
// that still validates its arguments.
func (l *MemLedger) Transfer(tok, from, to Address, amount *uint256.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	if from.IsZero() || to.IsZero() {
		return ErrZeroAddress
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	src := l.balanceRef(tok, from)
	if src.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	src.Sub(src, amount)
	dst := l.balanceRef(tok, to)
	dst.Add(dst, amount)
	return nil
}

// BalanceOf returns a copy of the account's balance of tok.
func (l *MemLedger) BalanceOf(tok, account Address) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceRef(tok, account).Clone()
}

// balanceRef returns the live balance entry, creating it if absent.
// Callers must hold l.mu.
func (l *MemLedger) balanceRef(tok, account Address) *uint256.Int {
	accounts := l.balances[tok]
	if accounts == nil {
		accounts = make(map[Address]*uint256.Int)
		l.balances[tok] = accounts
	}
	b := accounts[account]
	if b == nil {
		b = new(uint256.Int)
		accounts[account] = b
	}
	return b
}
