package sale

import (
	"github.com/holiman/uint256"

	"github.com/openlaunch/liblaunch-go/token"
)

// Read surface. Everything here is a copy; callers cannot reach the live
// ledger state.

// Account returns the instance's custody account on the ledger.
func (i *Instance) Account() token.Address { return i.account }

// Issuer returns the configured issuer address.
func (i *Instance) Issuer() token.Address {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cfg.Issuer
}

// IssuedToken returns the identity of the token being sold.
func (i *Instance) IssuedToken() token.Address {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cfg.IssuedToken
}

// PaymentToken returns the identity of the deposit token.
func (i *Instance) PaymentToken() token.Address {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cfg.PaymentToken
}

// Config returns a deep copy of the frozen configuration.
func (i *Instance) Config() Config {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cfg.clone()
}

// TargetRaised returns the payment amount that exactly buys out the supply.
func (i *Instance) TargetRaised() *uint256.Int {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.targetRaised == nil {
		return new(uint256.Int)
	}
	return i.targetRaised.Clone()
}

// Reserve returns the pooled payment-token reserve.
func (i *Instance) Reserve() *uint256.Int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.reserve.Clone()
}

// CurrentPhase classifies the instance against its clock.
func (i *Instance) CurrentPhase() Phase {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.phaseNow()
}

// ParticipantCount returns the number of registered participants.
func (i *Instance) ParticipantCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.participants)
}

// Participants returns the registry in first-deposit order.
func (i *Instance) Participants() []token.Address {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]token.Address, len(i.participants))
	copy(out, i.participants)
	return out
}

// UserInfoOf returns a copy of the user's record, if any.
func (i *Instance) UserInfoOf(user token.Address) (UserInfo, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	u := i.users[user]
	if u == nil {
		return UserInfo{}, false
	}
	return *u.Clone(), true
}

// IssuedTokenDeposited reports whether the issuer has funded the sale.
func (i *Instance) IssuedTokenDeposited() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.issuedTokenDeposited
}

// Stopped reports whether the emergency stop is active.
func (i *Instance) Stopped() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stopped
}

// Initialized reports whether Initialize has run.
func (i *Instance) Initialized() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.initialized
}
