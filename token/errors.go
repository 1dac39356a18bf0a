package token

import "errors"

var (
	// ErrInvalidAddress indicates a malformed address string.
	ErrInvalidAddress = errors.New("token: invalid address")

	// ErrZeroAddress indicates a transfer to or from the zero address.
	ErrZeroAddress = errors.New("token: zero address")

	// ErrNilAmount indicates a nil amount was passed to a ledger operation.
	ErrNilAmount = errors.New("token: nil amount")

	// ErrInsufficientFunds indicates the from account cannot cover the transfer.
	ErrInsufficientFunds = errors.New("token: insufficient funds")
)
