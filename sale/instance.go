// Package sale implements the lifecycle of a single token-sale instance: a
// time-gated phase machine over an issuer's deposited supply, a public
// deposit ledger, the fee/issuer/refund settlement split, and exactly-once
// claim and withdrawal paths.
//
// All amounts are 256-bit integers in the tokens' native smallest units;
// prices are 1e18 fixed point. Every operation is serialized by the instance
// mutex and is all-or-nothing: state is finalized before any outbound
// transfer, and a rejected transfer rolls the mutation back.
package sale

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/openlaunch/liblaunch-go/audit"
	"github.com/openlaunch/liblaunch-go/token"
)

// Instance is one sale's full state: configuration, deposit ledger, one-shot
// settlement flags, and participant registry.
type Instance struct {
	mu sync.Mutex

	cfg          Config
	targetRaised *uint256.Int
	controller   Controller
	ledger       token.Ledger
	account      token.Address // the instance's own ledger account
	clock        Clock
	trail        *audit.Recorder

	initialized bool

	// reserve is the authoritative running total of payment token owed to
	// this instance's accounting. It is never the raw ledger balance.
	reserve *uint256.Int

	// settled latches reserve on first access at or after SaleEnded. All
	// settlement ratios divide by this figure, so refund and emergency
	// decrements to reserve never shift a denominator.
	settled *uint256.Int

	users        map[token.Address]*UserInfo
	participants []token.Address // append-only, first-deposit order

	issuedTokenDeposited bool
	issuerCharged        bool
	feeCharged           bool
	unsoldWithdrawn      bool
	stopped              bool
}

// Option configures an Instance at construction.
type Option func(*Instance)

// WithAudit records every ledger-mutating operation to rec.
func WithAudit(rec *audit.Recorder) Option {
	return func(i *Instance) { i.trail = rec }
}

// NewInstance creates an uninitialized instance whose custody account on the
// ledger is account. A nil clock means the system clock.
func NewInstance(ledger token.Ledger, account token.Address, clock Clock, opts ...Option) *Instance {
	if clock == nil {
		clock = SystemClock
	}
	i := &Instance{
		ledger:  ledger,
		account: account,
		clock:   clock,
		reserve: new(uint256.Int),
		users:   make(map[token.Address]*UserInfo),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Initialize freezes the sale configuration and resolves the controller
// capability. Callable exactly once, and only with a deposit window that
// opens strictly in the future.
func (i *Instance) Initialize(controller Controller, cfg Config) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.initialized {
		return ErrAlreadyInitialized
	}
	if controller == nil {
		return fmt.Errorf("%w: nil controller", ErrUnauthorized)
	}
	if err := cfg.validate(i.now()); err != nil {
		return err
	}
	target, err := cfg.targetRaised()
	if err != nil {
		return err
	}

	i.cfg = cfg.clone()
	i.targetRaised = target
	i.controller = controller
	i.initialized = true
	return nil
}

// DepositIssuedToken moves the full configured supply from the issuer into
// instance custody. Issuer-only, Prepare phase, exactly once, and only for
// an amount exactly equal to the configured supply.
func (i *Instance) DepositIssuedToken(caller token.Address, amount *uint256.Int) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.initialized {
		return ErrNotInitialized
	}
	if ph := i.phaseNow(); ph != PhasePrepare {
		return wrongPhase("issuer deposit", ph)
	}
	if caller != i.cfg.Issuer {
		return fmt.Errorf("%w: issuer only", ErrUnauthorized)
	}
	if i.issuedTokenDeposited {
		return fmt.Errorf("%w: issued token already deposited", ErrAlreadyCharged)
	}
	if amount == nil || amount.Cmp(i.cfg.IssuedTokenAmount) != 0 {
		return fmt.Errorf("%w: must deposit exactly the configured supply", ErrInvalidAmount)
	}

	i.issuedTokenDeposited = true
	if err := i.ledger.Transfer(i.cfg.IssuedToken, caller, i.account, amount); err != nil {
		i.issuedTokenDeposited = false
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	i.record("issuer_deposit", caller, amount)
	return nil
}

// Deposit adds amount to the caller's balance and the pooled reserve, then
// pulls the payment token. A first deposit must clear the configured
// minimum and appends the caller to the participant registry exactly once.
func (i *Instance) Deposit(caller token.Address, amount *uint256.Int) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.initialized {
		return ErrNotInitialized
	}
	if ph := i.phaseNow(); ph != PhaseDeposit {
		return wrongPhase("deposit", ph)
	}
	if i.stopped {
		return ErrStopped
	}
	if !i.issuedTokenDeposited {
		return fmt.Errorf("%w: issued token not deposited", ErrNotInitialized)
	}
	if amount == nil || amount.IsZero() {
		return fmt.Errorf("%w: zero deposit", ErrInvalidAmount)
	}

	u, appended := i.users[caller], false
	if u == nil {
		u = newUserInfo()
	}
	if u.Balance.IsZero() && amount.Cmp(i.cfg.MinDeposit) < 0 {
		return fmt.Errorf("%w: below minimum deposit", ErrInvalidAmount)
	}
	if _, known := i.users[caller]; !known {
		// An address that drained its balance and returns is already
		// registered and must not be appended again.
		i.users[caller] = u
		i.participants = append(i.participants, caller)
		appended = true
	}

	u.Balance.Add(u.Balance, amount)
	i.reserve.Add(i.reserve, amount)

	if err := i.ledger.Transfer(i.cfg.PaymentToken, caller, i.account, amount); err != nil {
		u.Balance.Sub(u.Balance, amount)
		i.reserve.Sub(i.reserve, amount)
		if appended {
			i.participants = i.participants[:len(i.participants)-1]
			delete(i.users, caller)
		}
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	i.record("deposit", caller, amount)
	return nil
}

// FundsDistribution returns the fee/issuer/refund split of the settlement
// pool. Callable at any time; before SaleEnded it tracks the live reserve,
// after it the latched settlement figure.
func (i *Instance) FundsDistribution() (Distribution, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.distribution()
}

// UserAllocation returns the issued-token amount the user would receive at
// settlement. Frozen values (claimed or bulk-set) are returned as stored;
// otherwise the figure is recomputed from the pooled ledger.
func (i *Instance) UserAllocation(user token.Address) (*uint256.Int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	u := i.users[user]
	if u == nil {
		return new(uint256.Int), nil
	}
	if u.AllocationSet {
		return u.Allocation.Clone(), nil
	}
	return i.computeAllocation(u)
}

// UserRefunds returns the user's pro-rata share of the pooled refunds
// figure, or the frozen value once the user has claimed.
func (i *Instance) UserRefunds(user token.Address) (*uint256.Int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	u := i.users[user]
	if u == nil {
		return new(uint256.Int), nil
	}
	if u.HasClaimedRefunds {
		return u.Refunds.Clone(), nil
	}
	return i.computeRefund(u)
}

// Refund pays the caller their share of the pooled refunds. Legal from
// SaleEnded onward, once per user, and only when there is something to pay.
func (i *Instance) Refund(caller token.Address) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.initialized {
		return ErrNotInitialized
	}
	if i.stopped {
		return ErrStopped
	}
	if ph := i.phaseNow(); ph < PhaseSaleEnded {
		return wrongPhase("refund", ph)
	}
	d, err := i.distribution()
	if err != nil {
		return err
	}
	if d.Refunds.IsZero() {
		return ErrNoRefunds
	}
	u := i.users[caller]
	if u == nil {
		return ErrNoRefunds
	}
	if u.HasClaimedRefunds {
		return fmt.Errorf("%w: refunds", ErrAlreadyClaimed)
	}
	share, err := i.computeRefund(u)
	if err != nil {
		return err
	}
	if share.IsZero() {
		return ErrNoRefunds
	}

	// Finalize before paying so a nested call observes post-claim state.
	u.Refunds.Set(share)
	u.HasClaimedRefunds = true
	i.reserve.Sub(i.reserve, share)

	if _, err := i.payOut(i.cfg.PaymentToken, caller, share); err != nil {
		u.Refunds.Clear()
		u.HasClaimedRefunds = false
		i.reserve.Add(i.reserve, share)
		return err
	}
	i.record("refund", caller, share)
	return nil
}

// ClaimTokens pays the caller their issued-token allocation. Launch phase
// only, once per user, and only for a nonzero allocation.
func (i *Instance) ClaimTokens(caller token.Address) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.initialized {
		return ErrNotInitialized
	}
	if i.stopped {
		return ErrStopped
	}
	if ph := i.phaseNow(); ph != PhaseLaunch {
		return wrongPhase("claim tokens", ph)
	}
	u := i.users[caller]
	if u == nil {
		return ErrNoAllocation
	}
	if u.HasClaimedTokens {
		return fmt.Errorf("%w: tokens", ErrAlreadyClaimed)
	}
	alloc := u.Allocation.Clone()
	if !u.AllocationSet {
		var err error
		alloc, err = i.computeAllocation(u)
		if err != nil {
			return err
		}
	}
	if alloc.IsZero() {
		return ErrNoAllocation
	}

	prevAlloc, prevSet := u.Allocation.Clone(), u.AllocationSet
	u.Allocation.Set(alloc)
	u.AllocationSet = true
	u.HasClaimedTokens = true

	if _, err := i.payOut(i.cfg.IssuedToken, caller, alloc); err != nil {
		u.Allocation.Set(prevAlloc)
		u.AllocationSet = prevSet
		u.HasClaimedTokens = false
		return err
	}
	i.record("claim_tokens", caller, alloc)
	return nil
}

// ChargeRaised pays the issuer their proceeds. Issuer-only, from SaleEnded
// onward, once.
func (i *Instance) ChargeRaised(caller token.Address) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.initialized {
		return ErrNotInitialized
	}
	if caller != i.cfg.Issuer {
		return fmt.Errorf("%w: issuer only", ErrUnauthorized)
	}
	if i.stopped {
		return ErrStopped
	}
	if ph := i.phaseNow(); ph < PhaseSaleEnded {
		return wrongPhase("charge raised", ph)
	}
	if i.issuerCharged {
		return fmt.Errorf("%w: raised", ErrAlreadyCharged)
	}
	d, err := i.distribution()
	if err != nil {
		return err
	}

	i.issuerCharged = true
	if _, err := i.payOut(i.cfg.PaymentToken, caller, d.IssuerCharged); err != nil {
		i.issuerCharged = false
		return err
	}
	i.record("charge_raised", caller, d.IssuerCharged)
	return nil
}

// ChargeFees pays the protocol fee to the controller's fee collector.
// Controller-owner-only, from SaleEnded onward, once.
func (i *Instance) ChargeFees(caller token.Address) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.initialized {
		return ErrNotInitialized
	}
	if err := i.requireOwner(caller); err != nil {
		return err
	}
	if i.stopped {
		return ErrStopped
	}
	if ph := i.phaseNow(); ph < PhaseSaleEnded {
		return wrongPhase("charge fees", ph)
	}
	if i.feeCharged {
		return fmt.Errorf("%w: fees", ErrAlreadyCharged)
	}
	d, err := i.distribution()
	if err != nil {
		return err
	}

	i.feeCharged = true
	if _, err := i.payOut(i.cfg.PaymentToken, i.controller.FeeCollector(), d.Fees); err != nil {
		i.feeCharged = false
		return err
	}
	i.record("charge_fees", caller, d.Fees)
	return nil
}

// WithdrawUnsoldIssuedToken returns the unsold remainder of the supply to
// the issuer. Issuer-only, Launch phase, once.
func (i *Instance) WithdrawUnsoldIssuedToken(caller token.Address) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.initialized {
		return ErrNotInitialized
	}
	if caller != i.cfg.Issuer {
		return fmt.Errorf("%w: issuer only", ErrUnauthorized)
	}
	if i.stopped {
		return ErrStopped
	}
	if ph := i.phaseNow(); ph != PhaseLaunch {
		return wrongPhase("withdraw unsold", ph)
	}
	if i.unsoldWithdrawn {
		return fmt.Errorf("%w: unsold tokens", ErrAlreadyCharged)
	}
	d, err := i.distribution()
	if err != nil {
		return err
	}
	sold, err := soldTokens(i.cfg.IssuedTokenAmount, d.IssuerCharged, i.targetRaised)
	if err != nil {
		return err
	}
	unsold := new(uint256.Int).Sub(i.cfg.IssuedTokenAmount, sold)
	if unsold.IsZero() {
		return fmt.Errorf("%w: supply fully sold", ErrNoAllocation)
	}

	i.unsoldWithdrawn = true
	if _, err := i.payOut(i.cfg.IssuedToken, caller, unsold); err != nil {
		i.unsoldWithdrawn = false
		return err
	}
	i.record("withdraw_unsold", caller, unsold)
	return nil
}

// AllowEmergencyWithdraw permanently stops the sale; EmergencyWithdraw
// becomes the only payout path. Controller-owner-only; there is no resume.
func (i *Instance) AllowEmergencyWithdraw(caller token.Address) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.initialized {
		return ErrNotInitialized
	}
	if err := i.requireOwner(caller); err != nil {
		return err
	}
	if i.stopped {
		return fmt.Errorf("%w: already stopped", ErrStopped)
	}
	i.stopped = true
	i.record("allow_emergency_withdraw", caller, new(uint256.Int))
	return nil
}

// EmergencyWithdraw returns the caller's raw deposited balance, bypassing
// settlement entirely. Legal only while stopped; zeroes the balance and
// decrements the reserve by exactly that amount.
func (i *Instance) EmergencyWithdraw(caller token.Address) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.initialized {
		return ErrNotInitialized
	}
	if !i.stopped {
		return ErrNotStopped
	}
	u := i.users[caller]
	if u == nil || u.Balance.IsZero() {
		return fmt.Errorf("%w: no balance", ErrInvalidAmount)
	}

	amount := u.Balance.Clone()
	u.Balance.Clear()
	i.reserve.Sub(i.reserve, amount)

	if _, err := i.payOut(i.cfg.PaymentToken, caller, amount); err != nil {
		u.Balance.Set(amount)
		i.reserve.Add(i.reserve, amount)
		return err
	}
	i.record("emergency_withdraw", caller, amount)
	return nil
}

// SetAllocations freezes the computed allocation of every participant in
// [start, end), a resource-bounded batch alternative to lazy computation at
// claim time. Controller-owner-only, from SaleEnded onward. Participants who
// already claimed keep their frozen value.
func (i *Instance) SetAllocations(caller token.Address, start, end int) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.initialized {
		return ErrNotInitialized
	}
	if err := i.requireOwner(caller); err != nil {
		return err
	}
	if i.stopped {
		return ErrStopped
	}
	if ph := i.phaseNow(); ph < PhaseSaleEnded {
		return wrongPhase("set allocations", ph)
	}
	if start < 0 || end < start || end > len(i.participants) {
		return fmt.Errorf("%w: [%d,%d) of %d", ErrInvalidRange, start, end, len(i.participants))
	}

	for _, addr := range i.participants[start:end] {
		u := i.users[addr]
		if u.HasClaimedTokens {
			continue
		}
		alloc, err := i.computeAllocation(u)
		if err != nil {
			return err
		}
		u.Allocation.Set(alloc)
		u.AllocationSet = true
	}
	return nil
}

// SetAllAllocations freezes every participant's allocation in one pass.
func (i *Instance) SetAllAllocations(caller token.Address) error {
	i.mu.Lock()
	n := len(i.participants)
	i.mu.Unlock()
	return i.SetAllocations(caller, 0, n)
}

// Skim sweeps any excess of the instance's raw payment-token balance over
// the pooled reserve to the controller's fee collector. The reserve itself
// is untouched.
func (i *Instance) Skim(caller token.Address) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.initialized {
		return ErrNotInitialized
	}
	bal := i.ledger.BalanceOf(i.cfg.PaymentToken, i.account)
	if bal.Cmp(i.reserve) <= 0 {
		return fmt.Errorf("%w: nothing to skim", ErrInvalidAmount)
	}
	excess := new(uint256.Int).Sub(bal, i.reserve)
	if err := i.ledger.Transfer(i.cfg.PaymentToken, i.account, i.controller.FeeCollector(), excess); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	i.record("skim", caller, excess)
	return nil
}

// ---------------------------------------------------------------------------
// Internal helpers. All require i.mu held.
// ---------------------------------------------------------------------------

func (i *Instance) now() int64 { return i.clock.Now().Unix() }

func (i *Instance) phaseNow() Phase { return PhaseAt(i.cfg, i.now()) }

func wrongPhase(op string, ph Phase) error {
	return fmt.Errorf("%w: %s not allowed in %s", ErrWrongPhase, op, ph)
}

func (i *Instance) requireOwner(caller token.Address) error {
	if i.controller == nil || caller != i.controller.Owner() {
		return fmt.Errorf("%w: controller owner only", ErrUnauthorized)
	}
	return nil
}

// settlementPool returns the figure every settlement ratio divides by: the
// live reserve until the deposit window closes, then the reserve as latched
// on first access at or after SaleEnded.
func (i *Instance) settlementPool() *uint256.Int {
	if i.settled == nil && i.phaseNow() >= PhaseSaleEnded {
		i.settled = i.reserve.Clone()
	}
	if i.settled != nil {
		return i.settled
	}
	return i.reserve
}

func (i *Instance) distribution() (Distribution, error) {
	if !i.initialized {
		return Distribution{}, ErrNotInitialized
	}
	return fundsSplit(i.settlementPool(), i.targetRaised)
}

func (i *Instance) computeAllocation(u *UserInfo) (*uint256.Int, error) {
	pool := i.settlementPool()
	if pool.IsZero() {
		return new(uint256.Int), nil
	}
	d, err := i.distribution()
	if err != nil {
		return nil, err
	}
	sold, err := soldTokens(i.cfg.IssuedTokenAmount, d.IssuerCharged, i.targetRaised)
	if err != nil {
		return nil, err
	}
	return proRata(sold, u.Balance, pool)
}

func (i *Instance) computeRefund(u *UserInfo) (*uint256.Int, error) {
	pool := i.settlementPool()
	if pool.IsZero() {
		return new(uint256.Int), nil
	}
	d, err := i.distribution()
	if err != nil {
		return nil, err
	}
	return proRata(d.Refunds, u.Balance, pool)
}

// payOut transfers at most the instance's current balance of tok, a clamp
// against reserve/balance drift. Returns the amount actually paid.
func (i *Instance) payOut(tok, to token.Address, amount *uint256.Int) (*uint256.Int, error) {
	pay := amount.Clone()
	if bal := i.ledger.BalanceOf(tok, i.account); pay.Cmp(bal) > 0 {
		pay.Set(bal)
	}
	if pay.IsZero() {
		return pay, nil
	}
	if err := i.ledger.Transfer(tok, i.account, to, pay); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return pay, nil
}

func (i *Instance) record(action string, actor token.Address, amount *uint256.Int) {
	if i.trail == nil {
		return
	}
	_ = i.trail.Record(audit.Event{
		Sale:   i.cfg.IssuedToken.String(),
		Actor:  actor.String(),
		Action: action,
		Amount: amount.Dec(),
	})
}
