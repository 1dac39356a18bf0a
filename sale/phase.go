package sale

import "time"

// Phase is the derived lifecycle stage of a sale instance. It is never
// stored; it is always recomputed from the clock, so for a fixed
// configuration it is non-decreasing as time advances.
type Phase uint8

const (
	// PhasePrepare covers everything before the deposit window opens,
	// including the uninitialized state.
	PhasePrepare Phase = iota

	// PhaseDeposit is the public deposit window.
	PhaseDeposit

	// PhaseSaleEnded is between window close and launch.
	PhaseSaleEnded

	// PhaseLaunch is terminal. Claims and withdrawals stay legal forever.
	PhaseLaunch
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePrepare:
		return "prepare"
	case PhaseDeposit:
		return "deposit"
	case PhaseSaleEnded:
		return "sale_ended"
	case PhaseLaunch:
		return "launch"
	default:
		return "unknown"
	}
}

// PhaseAt classifies the instant now (unix seconds) against the configured
// schedule. An unset DepositStart means the instance is still preparing.
func PhaseAt(cfg Config, now int64) Phase {
	switch {
	case cfg.DepositStart == 0 || now < cfg.DepositStart:
		return PhasePrepare
	case now < cfg.DepositStart+cfg.DepositDuration:
		return PhaseDeposit
	case now < cfg.LaunchTime:
		return PhaseSaleEnded
	default:
		return PhaseLaunch
	}
}

// Clock supplies the current time to an instance. Injecting it keeps phase
// classification a pure function of the reading.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)
