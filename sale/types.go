package sale

import (
	"github.com/holiman/uint256"

	"github.com/openlaunch/liblaunch-go/token"
)

// UserInfo is one participant's record. Balance grows only through Deposit
// and is zeroed only by EmergencyWithdraw. Allocation and Refunds stay
// recomputable until frozen by a claim or a bulk allocation pass; the claim
// flags consume exactly once.
type UserInfo struct {
	Balance    *uint256.Int
	Allocation *uint256.Int
	Refunds    *uint256.Int

	// AllocationSet marks Allocation as frozen, distinguishing a frozen
	// zero from a not-yet-materialized value.
	AllocationSet     bool
	HasClaimedTokens  bool
	HasClaimedRefunds bool
}

func newUserInfo() *UserInfo {
	return &UserInfo{
		Balance:    new(uint256.Int),
		Allocation: new(uint256.Int),
		Refunds:    new(uint256.Int),
	}
}

// Clone deep-copies the record. Nil amounts (e.g. zeroes elided by a gob
// round trip) come back as zero values.
func (u *UserInfo) Clone() *UserInfo {
	return &UserInfo{
		Balance:           cloneOrZero(u.Balance),
		Allocation:        cloneOrZero(u.Allocation),
		Refunds:           cloneOrZero(u.Refunds),
		AllocationSet:     u.AllocationSet,
		HasClaimedTokens:  u.HasClaimedTokens,
		HasClaimedRefunds: u.HasClaimedRefunds,
	}
}

// Distribution is the three-way split of the settlement pool.
// Fees + IssuerCharged + Refunds == TotalRaised exactly.
type Distribution struct {
	TotalRaised   *uint256.Int
	Fees          *uint256.Int
	IssuerCharged *uint256.Int
	Refunds       *uint256.Int
}

// Controller is the capability an instance holds over its creating factory:
// who may run owner-gated operations and where fees go. It is resolved once
// at Initialize rather than re-derived per call.
type Controller interface {
	Owner() token.Address
	FeeCollector() token.Address
}
