// Package aggregate composes paginated read views across every sale instance
// a factory recognizes, optionally joined with one participant's state. It
// only reads; nothing here mutates an instance.
package aggregate

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/openlaunch/liblaunch-go/launchpad"
	"github.com/openlaunch/liblaunch-go/sale"
	"github.com/openlaunch/liblaunch-go/token"
)

// InstanceView is the public display state of one sale.
type InstanceView struct {
	Issuer       token.Address
	IssuedToken  token.Address
	PaymentToken token.Address

	IssuedTokenAmount *uint256.Int
	Price             *uint256.Int
	MinDeposit        *uint256.Int
	TargetRaised      *uint256.Int
	Reserve           *uint256.Int

	DepositStart        int64
	DepositDuration     int64
	LaunchTime          int64
	IssuedTokenDecimals uint8

	Participants   int
	Phase          sale.Phase
	FundedByIssuer bool
	Stopped        bool
}

// UserView is one participant's state within a sale.
type UserView struct {
	Balance    *uint256.Int
	Allocation *uint256.Int
	Refunds    *uint256.Int

	HasClaimedTokens  bool
	HasClaimedRefunds bool
}

// InstanceUserView joins a sale's public view with one user's state.
type InstanceUserView struct {
	InstanceView
	User UserView
}

// Aggregator walks a factory's registry slots.
type Aggregator struct {
	reg *launchpad.Factory
	log zerolog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger attaches a logger; listings are logged at debug level.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Aggregator) { a.log = log }
}

// New creates an aggregator over reg.
func New(reg *launchpad.Factory, opts ...Option) *Aggregator {
	a := &Aggregator{reg: reg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ListAll returns up to limit instance views starting at registry slot
// offset. Slots the registry no longer recognizes are skipped, and skipped
// slots do not count against limit.
func (a *Aggregator) ListAll(offset, limit int) ([]InstanceView, error) {
	views := make([]InstanceView, 0, limit)
	err := a.walk(offset, limit, func(inst *sale.Instance) error {
		views = append(views, viewOf(inst))
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.log.Debug().Int("offset", offset).Int("limit", limit).Int("returned", len(views)).
		Msg("listed sale instances")
	return views, nil
}

// ListAllForUser is ListAll joined with user's per-instance state.
func (a *Aggregator) ListAllForUser(offset, limit int, user token.Address) ([]InstanceUserView, error) {
	views := make([]InstanceUserView, 0, limit)
	err := a.walk(offset, limit, func(inst *sale.Instance) error {
		uv, err := userViewOf(inst, user)
		if err != nil {
			return err
		}
		views = append(views, InstanceUserView{InstanceView: viewOf(inst), User: uv})
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.log.Debug().Int("offset", offset).Int("limit", limit).Int("returned", len(views)).
		Stringer("user", user).Msg("listed sale instances for user")
	return views, nil
}

// walk visits up to limit recognized instances starting at slot offset.
func (a *Aggregator) walk(offset, limit int, visit func(*sale.Instance) error) error {
	if offset < 0 {
		return fmt.Errorf("%w: negative offset", ErrInvalidPage)
	}
	if limit <= 0 {
		return fmt.Errorf("%w: non-positive limit", ErrInvalidPage)
	}

	total := a.reg.Count()
	taken := 0
	for i := offset; i < total && taken < limit; i++ {
		inst := a.reg.InstanceAt(i)
		if inst == nil || a.reg.IsModel(inst) || !a.reg.IsKnown(inst) {
			continue
		}
		if err := visit(inst); err != nil {
			return err
		}
		taken++
	}
	return nil
}

func viewOf(inst *sale.Instance) InstanceView {
	cfg := inst.Config()
	return InstanceView{
		Issuer:              cfg.Issuer,
		IssuedToken:         cfg.IssuedToken,
		PaymentToken:        cfg.PaymentToken,
		IssuedTokenAmount:   cfg.IssuedTokenAmount,
		Price:               cfg.Price,
		MinDeposit:          cfg.MinDeposit,
		TargetRaised:        inst.TargetRaised(),
		Reserve:             inst.Reserve(),
		DepositStart:        cfg.DepositStart,
		DepositDuration:     cfg.DepositDuration,
		LaunchTime:          cfg.LaunchTime,
		IssuedTokenDecimals: cfg.IssuedTokenDecimals,
		Participants:        inst.ParticipantCount(),
		Phase:               inst.CurrentPhase(),
		FundedByIssuer:      inst.IssuedTokenDeposited(),
		Stopped:             inst.Stopped(),
	}
}

func userViewOf(inst *sale.Instance, user token.Address) (UserView, error) {
	alloc, err := inst.UserAllocation(user)
	if err != nil {
		return UserView{}, err
	}
	refunds, err := inst.UserRefunds(user)
	if err != nil {
		return UserView{}, err
	}
	uv := UserView{Balance: new(uint256.Int), Allocation: alloc, Refunds: refunds}
	if u, ok := inst.UserInfoOf(user); ok {
		uv.Balance = u.Balance
		uv.HasClaimedTokens = u.HasClaimedTokens
		uv.HasClaimedRefunds = u.HasClaimedRefunds
	}
	return uv, nil
}
