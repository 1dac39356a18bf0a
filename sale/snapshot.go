package sale

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/openlaunch/liblaunch-go/token"
)

// Snapshot is the full mutable state of an instance, exported for
// persistence. Amounts are deep copies; mutating a snapshot never touches
// the instance it came from.
type Snapshot struct {
	Config       Config
	Account      token.Address
	TargetRaised *uint256.Int
	Reserve      *uint256.Int
	SettledPool  *uint256.Int // nil until latched at SaleEnded

	Participants []token.Address
	Users        map[token.Address]*UserInfo

	IssuedTokenDeposited bool
	IssuerCharged        bool
	FeeCharged           bool
	UnsoldWithdrawn      bool
	Stopped              bool
}

// Snapshot exports the instance state.
func (i *Instance) Snapshot() *Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()

	users := make(map[token.Address]*UserInfo, len(i.users))
	for addr, u := range i.users {
		users[addr] = u.Clone()
	}
	participants := make([]token.Address, len(i.participants))
	copy(participants, i.participants)

	snap := &Snapshot{
		Config:               i.cfg.clone(),
		Account:              i.account,
		TargetRaised:         cloneOrZero(i.targetRaised),
		Reserve:              i.reserve.Clone(),
		Participants:         participants,
		Users:                users,
		IssuedTokenDeposited: i.issuedTokenDeposited,
		IssuerCharged:        i.issuerCharged,
		FeeCharged:           i.feeCharged,
		UnsoldWithdrawn:      i.unsoldWithdrawn,
		Stopped:              i.stopped,
	}
	if i.settled != nil {
		snap.SettledPool = i.settled.Clone()
	}
	return snap
}

// Restore rebuilds an instance from a snapshot. The ledger, controller, and
// clock are runtime collaborators and are supplied fresh.
func Restore(snap *Snapshot, ledger token.Ledger, controller Controller, clock Clock, opts ...Option) (*Instance, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrNotInitialized)
	}
	if len(snap.Participants) != len(snap.Users) {
		return nil, fmt.Errorf("%w: %d participants, %d user records",
			ErrCorruptSnapshot, len(snap.Participants), len(snap.Users))
	}

	i := NewInstance(ledger, snap.Account, clock, opts...)
	i.cfg = snap.Config.clone()
	i.targetRaised = cloneOrZero(snap.TargetRaised)
	i.controller = controller
	i.initialized = snap.Config.DepositStart != 0
	i.reserve = cloneOrZero(snap.Reserve)
	if snap.SettledPool != nil {
		i.settled = snap.SettledPool.Clone()
	}
	i.participants = make([]token.Address, len(snap.Participants))
	copy(i.participants, snap.Participants)
	for addr, u := range snap.Users {
		if u == nil {
			return nil, fmt.Errorf("%w: nil user record for %s", ErrCorruptSnapshot, addr)
		}
		i.users[addr] = u.Clone()
	}
	i.issuedTokenDeposited = snap.IssuedTokenDeposited
	i.issuerCharged = snap.IssuerCharged
	i.feeCharged = snap.FeeCharged
	i.unsoldWithdrawn = snap.UnsoldWithdrawn
	i.stopped = snap.Stopped
	return i, nil
}
