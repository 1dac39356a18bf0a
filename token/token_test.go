package token

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAddr(seed byte) Address {
	var a Address
	for i := range a {
		a[i] = seed
	}
	return a
}

func TestAddressFromHex(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid", strings.Repeat("ab", 20), false},
		{"too short", "abcd", true},
		{"too long", strings.Repeat("ab", 21), true},
		{"not hex", strings.Repeat("zz", 20), true},
		{"empty", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := AddressFromHex(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.in, a.String())
		})
	}
}

func TestAddressIsZero(t *testing.T) {
	assert.True(t, ZeroAddress.IsZero())
	assert.False(t, makeAddr(0x01).IsZero())
}

func TestMemLedger_MintAndBalance(t *testing.T) {
	l := NewMemLedger()
	tok := makeAddr(0x10)
	acct := makeAddr(0xAA)

	assert.True(t, l.BalanceOf(tok, acct).IsZero())

	l.Mint(tok, acct, uint256.NewInt(500))
	l.Mint(tok, acct, uint256.NewInt(250))
	assert.Equal(t, uint64(750), l.BalanceOf(tok, acct).Uint64())

	// Returned balance is a copy; mutating it must not affect the ledger.
	l.BalanceOf(tok, acct).Clear()
	assert.Equal(t, uint64(750), l.BalanceOf(tok, acct).Uint64())
}

func TestMemLedger_Transfer(t *testing.T) {
	tok := makeAddr(0x10)
	alice := makeAddr(0xAA)
	bob := makeAddr(0xBB)

	tests := []struct {
		name    string
		from    Address
		to      Address
		amount  *uint256.Int
		wantErr error
	}{
		{"ok", alice, bob, uint256.NewInt(100), nil},
		{"full balance", alice, bob, uint256.NewInt(1000), nil},
		{"zero amount", alice, bob, uint256.NewInt(0), nil},
		{"insufficient", alice, bob, uint256.NewInt(1001), ErrInsufficientFunds},
		{"from zero address", ZeroAddress, bob, uint256.NewInt(1), ErrZeroAddress},
		{"to zero address", alice, ZeroAddress, uint256.NewInt(1), ErrZeroAddress},
		{"nil amount", alice, bob, nil, ErrNilAmount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := NewMemLedger()
			l.Mint(tok, alice, uint256.NewInt(1000))

			err := l.Transfer(tok, tc.from, tc.to, tc.amount)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				// Failed transfers must not move value.
				assert.Equal(t, uint64(1000), l.BalanceOf(tok, alice).Uint64())
				assert.True(t, l.BalanceOf(tok, bob).IsZero())
				return
			}
			require.NoError(t, err)

			total := new(uint256.Int).Add(l.BalanceOf(tok, alice), l.BalanceOf(tok, bob))
			assert.Equal(t, uint64(1000), total.Uint64())
			assert.Equal(t, tc.amount.Uint64(), l.BalanceOf(tok, bob).Uint64())
		})
	}
}

func TestMemLedger_TokensAreIndependent(t *testing.T) {
	l := NewMemLedger()
	tokA := makeAddr(0x10)
	tokB := makeAddr(0x20)
	acct := makeAddr(0xAA)

	l.Mint(tokA, acct, uint256.NewInt(7))
	assert.Equal(t, uint64(7), l.BalanceOf(tokA, acct).Uint64())
	assert.True(t, l.BalanceOf(tokB, acct).IsZero())
}
