// Package token defines the value-transfer boundary of the launch engine.
//
// The engine never talks to a chain or token contract directly. Everything it
// needs from the outside world is the Ledger interface below: an atomic
// move-value primitive and a balance query, keyed by token identity. A call
// either succeeds in full or fails with no effect.
package token

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

// AddressSize is the length of a ledger account address in bytes.
const AddressSize = 20

// Address identifies an account (or a token) on the external ledger.
type Address [AddressSize]byte

// ZeroAddress is the all-zero address. It is never a valid participant,
// issuer, or token identity.
var ZeroAddress Address

// IsZero reports whether the address is the all-zero address.
func (a Address) IsZero() bool { return a == ZeroAddress }

// String returns the address as lowercase hex.
func (a Address) String() string { return hex.EncodeToString(a[:]) }

// AddressFromHex parses a 40-character hex string into an Address.
func AddressFromHex(s string) (Address, error) {
	var a Address
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(b) != AddressSize {
		return a, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, AddressSize, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// Ledger is the external value-transfer primitive.
//
// Transfer moves amount of tok from one account to another. The from account
// is explicit: the engine passes its own account for payouts and the
// depositor's account for pulls. Implementations must be all-or-nothing; a
// returned error means no value moved.
type Ledger interface {
	Transfer(tok, from, to Address, amount *uint256.Int) error
	BalanceOf(tok, account Address) *uint256.Int
}
