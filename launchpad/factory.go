// Package launchpad creates and indexes sale instances. The factory owns the
// controller capability every instance it creates resolves at initialization:
// the factory owner runs owner-gated operations, and the fee collector
// receives protocol fees and skimmed surplus.
package launchpad

import (
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/openlaunch/liblaunch-go/sale"
	"github.com/openlaunch/liblaunch-go/token"
)

// Factory clones a template sale instance per launch event and keeps the
// registry of all instances, one per issued token.
type Factory struct {
	mu sync.Mutex

	owner        token.Address
	feeCollector token.Address
	ledger       token.Ledger
	clock        sale.Clock
	opts         []sale.Option

	template *sale.Instance

	// instances is the ordinal slot list; slots keep their index forever.
	// known tracks which issued tokens are still recognized, so an
	// unregistered slot stays occupied but stops resolving.
	instances []*sale.Instance
	known     map[token.Address]*sale.Instance
}

// Compile-time capability check.
var _ sale.Controller = (*Factory)(nil)

// NewFactory creates a factory. Instances it creates inherit ledger, clock,
// and opts (a nil clock means the system clock).
func NewFactory(owner, feeCollector token.Address, ledger token.Ledger, clock sale.Clock, opts ...sale.Option) (*Factory, error) {
	if owner.IsZero() {
		return nil, fmt.Errorf("%w: zero owner", ErrInvalidFactory)
	}
	if feeCollector.IsZero() {
		return nil, fmt.Errorf("%w: zero fee collector", ErrInvalidFactory)
	}
	if ledger == nil {
		return nil, fmt.Errorf("%w: nil ledger", ErrInvalidFactory)
	}
	f := &Factory{
		owner:        owner,
		feeCollector: feeCollector,
		ledger:       ledger,
		clock:        clock,
		opts:         opts,
		known:        make(map[token.Address]*sale.Instance),
	}
	// The template is the cloning prototype. It is never initialized,
	// registered, or listed.
	f.template = sale.NewInstance(ledger, instanceAccount(token.ZeroAddress), clock, opts...)
	return f, nil
}

// Owner implements sale.Controller.
func (f *Factory) Owner() token.Address { return f.owner }

// FeeCollector implements sale.Controller.
func (f *Factory) FeeCollector() token.Address { return f.feeCollector }

// Create instantiates and initializes a sale for cfg and registers it under
// its issued-token identity. One instance per issued token.
func (f *Factory) Create(cfg sale.Config) (*sale.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, dup := f.known[cfg.IssuedToken]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateInstance, cfg.IssuedToken)
	}

	inst := sale.NewInstance(f.ledger, instanceAccount(cfg.IssuedToken), f.clock, f.opts...)
	if err := inst.Initialize(f, cfg); err != nil {
		return nil, err
	}

	f.instances = append(f.instances, inst)
	f.known[cfg.IssuedToken] = inst
	return inst, nil
}

// Register adds an externally built instance (e.g. restored from a store) to
// the registry. The instance must be initialized and its issued token free.
func (f *Factory) Register(inst *sale.Instance) error {
	if inst == nil || !inst.Initialized() {
		return fmt.Errorf("%w: uninitialized instance", ErrInvalidFactory)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tok := inst.IssuedToken()
	if _, dup := f.known[tok]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateInstance, tok)
	}
	f.instances = append(f.instances, inst)
	f.known[tok] = inst
	return nil
}

// Unregister removes recognition of the issued token's instance. Owner-only.
// The ordinal slot remains occupied, so readers walking slots must skip it.
func (f *Factory) Unregister(caller token.Address, issuedToken token.Address) error {
	if caller != f.owner {
		return ErrUnauthorized
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.known[issuedToken]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownInstance, issuedToken)
	}
	delete(f.known, issuedToken)
	return nil
}

// IsKnown reports whether the instance is currently recognized.
func (f *Factory) IsKnown(inst *sale.Instance) bool {
	if inst == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.known[inst.IssuedToken()] == inst
}

// IsModel reports whether the handle is the factory's cloning template.
func (f *Factory) IsModel(inst *sale.Instance) bool { return inst == f.template }

// Count returns the number of ordinal slots, including unregistered ones.
func (f *Factory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.instances)
}

// InstanceAt returns the slot at index, or nil if out of range. The handle
// may no longer be recognized; check IsKnown.
func (f *Factory) InstanceAt(index int) *sale.Instance {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.instances) {
		return nil
	}
	return f.instances[index]
}

// ByIssuedToken resolves a recognized instance by issued-token identity.
func (f *Factory) ByIssuedToken(tok token.Address) (*sale.Instance, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inst, ok := f.known[tok]
	return inst, ok
}

// List returns up to limit recognized instances starting at slot offset.
func (f *Factory) List(offset, limit int) []*sale.Instance {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*sale.Instance
	for i := offset; i >= 0 && i < len(f.instances) && len(out) < limit; i++ {
		inst := f.instances[i]
		if f.known[inst.IssuedToken()] != inst {
			continue
		}
		out = append(out, inst)
	}
	return out
}

// instanceAccount derives the custody account for an instance from its
// issued-token identity.
func instanceAccount(issuedToken token.Address) token.Address {
	sum := sha256.Sum256(append([]byte("launchpad/instance/"), issuedToken[:]...))
	var a token.Address
	copy(a[:], sum[:token.AddressSize])
	return a
}
