package book

import (
	"github.com/veilex/darkpool/internal/models"
)

// Match runs one matching pass over the table. Both priority scans cover all
// slots unconditionally: best bid is the active buy with the highest price,
// best ask the active sell with the lowest price, ties broken by the earliest
// timestamp on both sides.
//
// A trade happens only when both sides exist, the bid price is at or above
// the ask price, and the owners differ (self-trade prevention: the pass does
// not look for a second-best counterparty, it simply produces no trade). The
// execution price is the floor midpoint of the two prices and the execution
// amount the smaller of the two sizes, so the smaller side is always fully
// filled and deactivated while the larger side rests on at its original
// price and timestamp.
//
// When no trade happens the input book is returned unchanged and the result
// is entirely zero-valued, indistinguishable in shape from a real one.
func Match(b models.OrderBook) (models.OrderBook, models.MatchResult) {
	bidIdx, askIdx := -1, -1
	var bidPrice, askPrice uint64
	var bidTime, askTime int64

	for i := 0; i < models.MaxOrders; i++ {
		s := &b.Slots[i]
		if !s.Active {
			continue
		}
		if s.Side {
			if bidIdx < 0 || s.Price > bidPrice || (s.Price == bidPrice && s.Timestamp < bidTime) {
				bidIdx, bidPrice, bidTime = i, s.Price, s.Timestamp
			}
		}
	}
	for i := 0; i < models.MaxOrders; i++ {
		s := &b.Slots[i]
		if !s.Active {
			continue
		}
		if !s.Side {
			if askIdx < 0 || s.Price < askPrice || (s.Price == askPrice && s.Timestamp < askTime) {
				askIdx, askPrice, askTime = i, s.Price, s.Timestamp
			}
		}
	}

	var result models.MatchResult

	if bidIdx < 0 || askIdx < 0 || bidPrice < askPrice {
		return b, result
	}

	bid := &b.Slots[bidIdx]
	ask := &b.Slots[askIdx]

	// Self-trade prevention: same owner on both sides means no trade and an
	// untouched book.
	if bid.Owner == ask.Owner {
		return b, result
	}

	executionPrice := midpoint(bidPrice, askPrice)
	executionAmount := bid.Amount
	if ask.Amount < executionAmount {
		executionAmount = ask.Amount
	}

	// The ask side is always the maker by this engine's convention,
	// independent of arrival order.
	result.Matched = true
	result.MakerOrderID = ask.OrderID
	result.TakerOrderID = bid.OrderID
	result.ExecutionPrice = executionPrice
	result.ExecutionAmount = executionAmount
	result.Maker = ask.Owner
	result.Taker = bid.Owner
	result.MakerIsBuy = false

	if bid.Amount <= executionAmount {
		b.Slots[bidIdx] = models.Order{}
		if b.OrderCount > 0 {
			b.OrderCount--
		}
	} else {
		bid.Amount -= executionAmount
	}

	if ask.Amount <= executionAmount {
		b.Slots[askIdx] = models.Order{}
		if b.OrderCount > 0 {
			b.OrderCount--
		}
	} else {
		ask.Amount -= executionAmount
	}

	return b, result
}

// midpoint returns floor((a+b)/2) without overflowing uint64.
func midpoint(a, b uint64) uint64 {
	return a/2 + b/2 + a&b&1
}
