package sale

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/openlaunch/liblaunch-go/token"
)

// Config is the immutable parameter set of one sale. It is frozen at
// Initialize and never changes afterwards.
type Config struct {
	Issuer       token.Address // receives proceeds, deposits the issued token
	IssuedToken  token.Address // token being sold
	PaymentToken token.Address // token the public deposits

	IssuedTokenAmount *uint256.Int // total supply offered for sale
	Price             *uint256.Int // payment per issued token, 1e18 fixed point
	MinDeposit        *uint256.Int // floor for a participant's first deposit

	DepositStart    int64 // unix seconds; zero means uninitialized
	DepositDuration int64 // seconds
	LaunchTime      int64 // unix seconds

	IssuedTokenDecimals uint8
}

// validate checks the parameters against the current time. It returns the
// first error found.
func (c Config) validate(now int64) error {
	if c.Issuer.IsZero() {
		return ErrInvalidIssuer
	}
	if c.IssuedToken.IsZero() {
		return fmt.Errorf("%w: zero issued token", ErrInvalidIssuer)
	}
	if c.PaymentToken.IsZero() {
		return fmt.Errorf("%w: zero payment token", ErrInvalidIssuer)
	}
	if c.DepositStart == 0 || c.DepositStart <= now {
		return ErrInvalidStartTime
	}
	if c.DepositDuration <= 0 {
		return fmt.Errorf("%w: non-positive deposit duration", ErrInvalidStartTime)
	}
	if c.LaunchTime < c.DepositStart+c.DepositDuration {
		return fmt.Errorf("%w: launch before deposit window closes", ErrInvalidStartTime)
	}
	if c.IssuedTokenAmount == nil || c.IssuedTokenAmount.IsZero() {
		return fmt.Errorf("%w: zero issued token amount", ErrInvalidAmount)
	}
	if c.Price == nil || c.Price.IsZero() {
		return fmt.Errorf("%w: zero price", ErrInvalidAmount)
	}
	return nil
}

// targetRaised derives the payment-token amount that exactly buys out the
// issued supply at the configured price:
//
//	targetRaised = issuedTokenAmount * price / 10^issuedTokenDecimals
//
// Computed once at Initialize and never recomputed with different rounding.
func (c Config) targetRaised() (*uint256.Int, error) {
	pow := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(c.IssuedTokenDecimals)))
	target, err := mulDiv(c.IssuedTokenAmount, c.Price, pow)
	if err != nil {
		return nil, fmt.Errorf("%w: target raised", err)
	}
	return target, nil
}

// clone deep-copies the config, normalizing nil amounts to zero.
func (c Config) clone() Config {
	out := c
	out.IssuedTokenAmount = cloneOrZero(c.IssuedTokenAmount)
	out.Price = cloneOrZero(c.Price)
	out.MinDeposit = cloneOrZero(c.MinDeposit)
	return out
}

func cloneOrZero(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}
	return x.Clone()
}
