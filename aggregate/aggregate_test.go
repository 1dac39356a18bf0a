package aggregate

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlaunch/liblaunch-go/launchpad"
	"github.com/openlaunch/liblaunch-go/sale"
	"github.com/openlaunch/liblaunch-go/token"
)

type testClock struct{ now int64 }

func (c *testClock) Now() time.Time { return time.Unix(c.now, 0) }

func addr(seed byte) token.Address {
	var a token.Address
	for i := range a {
		a[i] = seed
	}
	return a
}

func e18(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1e18))
}

type harness struct {
	ledger *token.MemLedger
	clock  *testClock
	fact   *launchpad.Factory
	agg    *Aggregator
	issuer token.Address
	user   token.Address
}

// newHarness builds a factory with n registered sales, issued tokens
// addr(1)..addr(n), all on the same schedule.
func newHarness(t *testing.T, n byte) *harness {
	h := &harness{
		ledger: token.NewMemLedger(),
		clock:  &testClock{now: 500},
		issuer: addr(0x15),
		user:   addr(0xA1),
	}
	fact, err := launchpad.NewFactory(addr(0x0E), addr(0xFC), h.ledger, h.clock)
	require.NoError(t, err)
	h.fact = fact
	h.agg = New(fact)

	for seed := byte(1); seed <= n; seed++ {
		issuedToken := addr(seed)
		h.ledger.Mint(issuedToken, h.issuer, e18(1000))
		_, err := fact.Create(sale.Config{
			Issuer:              h.issuer,
			IssuedToken:         issuedToken,
			PaymentToken:        addr(0xEE),
			IssuedTokenAmount:   e18(1000),
			Price:               uint256.NewInt(1e18),
			MinDeposit:          e18(10),
			DepositStart:        1000,
			DepositDuration:     1000,
			LaunchTime:          3000,
			IssuedTokenDecimals: 18,
		})
		require.NoError(t, err)
	}
	return h
}

func TestListAll_Pagination(t *testing.T) {
	h := newHarness(t, 5)

	all, err := h.agg.ListAll(0, 10)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, addr(1), all[0].IssuedToken)
	assert.Equal(t, addr(5), all[4].IssuedToken)
	assert.Equal(t, e18(1000).Dec(), all[0].TargetRaised.Dec())
	assert.Equal(t, sale.PhasePrepare, all[0].Phase)

	page, err := h.agg.ListAll(2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, addr(3), page[0].IssuedToken)
	assert.Equal(t, addr(4), page[1].IssuedToken)

	tail, err := h.agg.ListAll(4, 10)
	require.NoError(t, err)
	require.Len(t, tail, 1)

	empty, err := h.agg.ListAll(5, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListAll_SkipsUnregisteredAndStaysRightSized(t *testing.T) {
	h := newHarness(t, 5)
	require.NoError(t, h.fact.Unregister(h.fact.Owner(), addr(2)))
	require.NoError(t, h.fact.Unregister(h.fact.Owner(), addr(3)))

	// Limit 3 from slot 0: skipped slots must not eat into the page.
	got, err := h.agg.ListAll(0, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, addr(1), got[0].IssuedToken)
	assert.Equal(t, addr(4), got[1].IssuedToken)
	assert.Equal(t, addr(5), got[2].IssuedToken)
}

func TestListAll_InvalidPage(t *testing.T) {
	h := newHarness(t, 1)

	_, err := h.agg.ListAll(-1, 5)
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = h.agg.ListAll(0, 0)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestListAllForUser(t *testing.T) {
	h := newHarness(t, 2)
	h.ledger.Mint(addr(0xEE), h.user, e18(5000))

	// Fund and run sale #1 into oversubscription for the user.
	inst, ok := h.fact.ByIssuedToken(addr(1))
	require.True(t, ok)
	require.NoError(t, inst.DepositIssuedToken(h.issuer, e18(1000)))
	h.clock.now = 1000
	require.NoError(t, inst.Deposit(h.user, e18(1200)))
	h.clock.now = 2000

	views, err := h.agg.ListAllForUser(0, 10, h.user)
	require.NoError(t, err)
	require.Len(t, views, 2)

	joined := views[0]
	assert.Equal(t, addr(1), joined.IssuedToken)
	assert.Equal(t, sale.PhaseSaleEnded, joined.Phase)
	assert.True(t, joined.FundedByIssuer)
	assert.Equal(t, e18(1200).Dec(), joined.User.Balance.Dec())
	assert.Equal(t, e18(1000).Dec(), joined.User.Allocation.Dec())
	assert.Equal(t, e18(176).Dec(), joined.User.Refunds.Dec())
	assert.False(t, joined.User.HasClaimedTokens)

	// The user never touched sale #2.
	assert.True(t, views[1].User.Balance.IsZero())
	assert.True(t, views[1].User.Allocation.IsZero())
}
