package sale

import "errors"

var (
	// ErrWrongPhase indicates an operation was invoked outside its legal phase set.
	ErrWrongPhase = errors.New("sale: wrong phase")

	// ErrAlreadyInitialized indicates Initialize was called twice.
	ErrAlreadyInitialized = errors.New("sale: already initialized")

	// ErrNotInitialized indicates the instance has not been initialized.
	ErrNotInitialized = errors.New("sale: not initialized")

	// ErrUnauthorized indicates the caller lacks the required capability.
	ErrUnauthorized = errors.New("sale: unauthorized")

	// ErrInvalidIssuer indicates the configured issuer address is invalid.
	ErrInvalidIssuer = errors.New("sale: invalid issuer")

	// ErrInvalidStartTime indicates the deposit schedule is invalid.
	ErrInvalidStartTime = errors.New("sale: invalid start time")

	// ErrInvalidAmount indicates a zero, below-minimum, or mismatched amount.
	ErrInvalidAmount = errors.New("sale: invalid amount")

	// ErrInvalidRange indicates a malformed participant sub-range.
	ErrInvalidRange = errors.New("sale: invalid participant range")

	// ErrAlreadyClaimed indicates the user's one-shot claim flag is consumed.
	ErrAlreadyClaimed = errors.New("sale: already claimed")

	// ErrAlreadyCharged indicates the instance's one-shot charge flag is consumed.
	ErrAlreadyCharged = errors.New("sale: already charged")

	// ErrNoRefunds indicates the pooled refunds figure, or the user's share of
	// it, is zero.
	ErrNoRefunds = errors.New("sale: no refunds available")

	// ErrNoAllocation indicates the user's computed allocation is zero.
	ErrNoAllocation = errors.New("sale: no allocation available")

	// ErrStopped indicates the instance is emergency-stopped.
	ErrStopped = errors.New("sale: stopped")

	// ErrNotStopped indicates the instance is not emergency-stopped.
	ErrNotStopped = errors.New("sale: not stopped")

	// ErrTransferFailed indicates the ledger rejected a transfer.
	ErrTransferFailed = errors.New("sale: transfer failed")

	// ErrAmountOverflow indicates 256-bit arithmetic overflowed.
	ErrAmountOverflow = errors.New("sale: amount overflow")

	// ErrCorruptSnapshot indicates a persisted snapshot is inconsistent.
	ErrCorruptSnapshot = errors.New("sale: corrupt snapshot")
)
