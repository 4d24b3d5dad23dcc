// Package ledger turns revealed match results into settled balance
// transfers: pending-match capture on the market record, settlement-record
// creation, and the final custody movement with fee accounting. It also owns
// the position-locking rules that order admission relies on.
//
// Every operation is a pure snapshot-in/new-state-out transformation. A
// failed precondition returns the input unchanged; the surrounding
// transaction layer provides isolation.
package ledger

import (
	"github.com/veilex/darkpool/internal/models"
)

// CapturePendingMatch records a revealed match into the market's single
// pending-match slot. It fails with ErrNoMatch for an unmatched result and
// with ErrPendingMatch when a previous match has not yet been turned into a
// settlement record, so a pending match can never be silently overwritten.
func CapturePendingMatch(m models.Market, r models.MatchResult, now int64) (models.Market, error) {
	if !r.Matched {
		return m, ErrNoMatch
	}
	if m.HasPendingMatch {
		return m, ErrPendingMatch
	}

	m.PendingMaker = r.Maker
	m.PendingTaker = r.Taker
	m.PendingMakerOrderID = r.MakerOrderID
	m.PendingTakerOrderID = r.TakerOrderID
	m.PendingExecutionPrice = r.ExecutionPrice
	m.PendingExecutionAmount = r.ExecutionAmount
	m.PendingMatchedAt = now
	m.HasPendingMatch = true

	// One bid and one ask participated in the match, whether filled fully
	// or partially.
	if m.ActiveBids > 0 {
		m.ActiveBids--
	}
	if m.ActiveAsks > 0 {
		m.ActiveAsks--
	}
	return m, nil
}

// CreateSettlement materializes the pending match into a durable settlement
// record and clears the pending slot. Allocating the settlement here, in a
// separate step from capture, lets any caller retry record creation without
// re-running the match.
func CreateSettlement(m models.Market) (models.Market, models.TradeSettlement, error) {
	if !m.HasPendingMatch {
		return m, models.TradeSettlement{}, ErrNoMatch
	}

	m.SettlementCount++
	s := models.TradeSettlement{
		SettlementID:    m.SettlementCount,
		MarketID:        m.MarketID,
		Maker:           m.PendingMaker,
		Taker:           m.PendingTaker,
		MakerOrderID:    m.PendingMakerOrderID,
		TakerOrderID:    m.PendingTakerOrderID,
		ExecutionPrice:  m.PendingExecutionPrice,
		ExecutionAmount: m.PendingExecutionAmount,
		MakerIsBuy:      false, // the maker is always the ask side
		Settled:         false,
		MatchedAt:       m.PendingMatchedAt,
	}

	m.PendingMaker = models.Identity{}
	m.PendingTaker = models.Identity{}
	m.PendingMakerOrderID = 0
	m.PendingTakerOrderID = 0
	m.PendingExecutionPrice = 0
	m.PendingExecutionAmount = 0
	m.PendingMatchedAt = 0
	m.HasPendingMatch = false

	return m, s, nil
}

// SettleTrade applies the balance transfer for an unsettled settlement:
// the seller gives up base and receives quote minus the market fee, the
// buyer gives up quote and receives base. All deposited-balance math is
// checked; lock releases saturate. A second call on the same settlement
// fails with ErrAlreadySettled and changes nothing.
func SettleTrade(
	m models.Market,
	s models.TradeSettlement,
	maker, taker models.UserPosition,
	now int64,
) (models.TradeSettlement, models.UserPosition, models.UserPosition, error) {
	fail := func(err error) (models.TradeSettlement, models.UserPosition, models.UserPosition, error) {
		return s, maker, taker, err
	}

	if s.Settled {
		return fail(ErrAlreadySettled)
	}

	baseAmount := s.ExecutionAmount
	quoteAmount, err := QuoteAmount(&s)
	if err != nil {
		return fail(err)
	}
	fee, err := Fee(&m, quoteAmount)
	if err != nil {
		return fail(err)
	}
	quoteAfterFee := quoteAmount - fee // fee <= quoteAmount by construction

	buyer, seller := taker, maker
	if s.MakerIsBuy {
		buyer, seller = maker, taker
	}

	// The seller's base and the buyer's quote were locked when the orders
	// were admitted, so the deliverable check is against deposited totals.
	if seller.BaseDeposited < baseAmount {
		return fail(ErrInsufficientBalance)
	}
	if buyer.QuoteDeposited < quoteAmount {
		return fail(ErrInsufficientBalance)
	}

	// Compute every new balance before touching either position, so a fault
	// leaves both inputs untouched.
	sellerBase, err := checkedSub(seller.BaseDeposited, baseAmount)
	if err != nil {
		return fail(err)
	}
	sellerQuote, err := checkedAdd(seller.QuoteDeposited, quoteAfterFee)
	if err != nil {
		return fail(err)
	}
	buyerQuote, err := checkedSub(buyer.QuoteDeposited, quoteAmount)
	if err != nil {
		return fail(err)
	}
	buyerBase, err := checkedAdd(buyer.BaseDeposited, baseAmount)
	if err != nil {
		return fail(err)
	}

	// Seller: loses base, gains quote net of fee.
	seller.BaseDeposited = sellerBase
	seller.BaseLocked = saturatingSub(seller.BaseLocked, baseAmount)
	seller.QuoteDeposited = sellerQuote

	// Buyer: loses quote, gains base.
	buyer.QuoteDeposited = buyerQuote
	buyer.QuoteLocked = saturatingSub(buyer.QuoteLocked, quoteAmount)
	buyer.BaseDeposited = buyerBase

	s.Settled = true
	s.SettledAt = now

	if s.MakerIsBuy {
		return s, buyer, seller, nil
	}
	return s, seller, buyer, nil
}
