package ledger

import (
	"math/bits"

	"github.com/veilex/darkpool/internal/models"
)

// checkedAdd fails instead of wrapping. Balance math must never wrap.
func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrMathOverflow
	}
	return sum, nil
}

// checkedSub fails on underflow instead of wrapping.
func checkedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrMathOverflow
	}
	return diff, nil
}

// saturatingSub clamps at zero. Used only for lock counters, which are
// released best-effort and may already have been reduced.
func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// mulDiv returns a*b/den using a 128-bit intermediate, failing if the
// quotient does not fit in 64 bits.
func mulDiv(a, b, den uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi >= den {
		return 0, ErrMathOverflow
	}
	q, _ := bits.Div64(hi, lo, den)
	return q, nil
}

// LockAmount returns the balance a new order must reserve: the quote value
// of the order at its limit price for a buy, the base amount for a sell.
func LockAmount(amount, price uint64, isBuy bool) (uint64, error) {
	if !isBuy {
		return amount, nil
	}
	return mulDiv(amount, price, models.PriceScale)
}

// QuoteAmount converts a settlement's base amount to quote units:
// amount * price / PriceScale, truncating toward zero.
func QuoteAmount(s *models.TradeSettlement) (uint64, error) {
	return mulDiv(s.ExecutionAmount, s.ExecutionPrice, models.PriceScale)
}

// Fee returns the market's trading fee for a quote amount:
// quote * fee_rate_bps / 10_000, truncating toward zero.
func Fee(m *models.Market, quoteAmount uint64) (uint64, error) {
	return mulDiv(quoteAmount, uint64(m.FeeRateBps), models.FeeDenominator)
}
