package sale

import "github.com/holiman/uint256"

const (
	// FeeRateBps is the protocol fee taken from the raise, in basis points.
	FeeRateBps = 200

	bpsDenominator = 10000
)

// mulDiv computes x * y / den with a full-width intermediate check.
// Division by zero follows uint256 semantics and yields zero.
func mulDiv(x, y, den *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrAmountOverflow
	}
	return z.Div(z, den), nil
}

// fundsSplit splits pool into fees, issuer proceeds, and refunds:
//
//	fees          = pool * FeeRateBps / 10000
//	issuerCharged = min(pool - fees, targetRaised)
//	refunds       = pool - issuerCharged - fees
//
// The three parts sum to pool exactly; truncation happens only in fees.
// Refunds are nonzero exactly when the raise net of fees strictly exceeds
// targetRaised.
func fundsSplit(pool, targetRaised *uint256.Int) (Distribution, error) {
	total := pool.Clone()
	fees, err := mulDiv(total, uint256.NewInt(FeeRateBps), uint256.NewInt(bpsDenominator))
	if err != nil {
		return Distribution{}, err
	}
	issuer := new(uint256.Int).Sub(total, fees)
	if issuer.Cmp(targetRaised) > 0 {
		issuer.Set(targetRaised)
	}
	refunds := new(uint256.Int).Sub(total, issuer)
	refunds.Sub(refunds, fees)
	return Distribution{
		TotalRaised:   total,
		Fees:          fees,
		IssuerCharged: issuer,
		Refunds:       refunds,
	}, nil
}

// soldTokens is the issued-token amount actually sold at settlement:
// issuedTokenAmount scaled by how much of the target was charged.
func soldTokens(issuedAmount, issuerCharged, targetRaised *uint256.Int) (*uint256.Int, error) {
	if targetRaised.IsZero() {
		return new(uint256.Int), nil
	}
	return mulDiv(issuedAmount, issuerCharged, targetRaised)
}

// proRata is holder's share of a pooled figure: total * balance / pool.
func proRata(total, balance, pool *uint256.Int) (*uint256.Int, error) {
	if pool.IsZero() || total.IsZero() {
		return new(uint256.Int), nil
	}
	return mulDiv(total, balance, pool)
}
