package token

import "github.com/holiman/uint256"

// MockLedger is a test double for Ledger.
// All function fields must be set before the corresponding method is called.
type MockLedger struct {
	TransferFn  func(tok, from, to Address, amount *uint256.Int) error
	BalanceOfFn func(tok, account Address) *uint256.Int
}

func (m *MockLedger) Transfer(tok, from, to Address, amount *uint256.Int) error {
	return m.TransferFn(tok, from, to, amount)
}

func (m *MockLedger) BalanceOf(tok, account Address) *uint256.Int {
	return m.BalanceOfFn(tok, account)
}
