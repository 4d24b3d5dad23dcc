package ledger

import (
	"errors"
	"testing"

	"github.com/veilex/darkpool/internal/models"
)

func ident(b byte) models.Identity {
	var id models.Identity
	id[0] = b
	return id
}

func testMatch() models.MatchResult {
	return models.MatchResult{
		Matched:         true,
		MakerOrderID:    2,
		TakerOrderID:    1,
		ExecutionPrice:  99_500_000,
		ExecutionAmount: 3,
		Maker:           ident(2),
		Taker:           ident(1),
		MakerIsBuy:      false,
	}
}

func TestCapturePendingMatch(t *testing.T) {
	m := models.Market{MarketID: 1, ActiveBids: 2, ActiveAsks: 1}

	m, err := CapturePendingMatch(m, testMatch(), 1000)
	if err != nil {
		t.Fatalf("failed to capture match: %v", err)
	}

	if !m.HasPendingMatch {
		t.Fatal("expected pending match flag to be set")
	}
	if m.PendingMaker != ident(2) || m.PendingTaker != ident(1) {
		t.Error("expected pending identities from the match result")
	}
	if m.PendingExecutionPrice != 99_500_000 || m.PendingExecutionAmount != 3 {
		t.Error("expected pending execution terms from the match result")
	}
	if m.PendingMatchedAt != 1000 {
		t.Errorf("expected matched-at 1000, got %d", m.PendingMatchedAt)
	}
	if m.ActiveBids != 1 || m.ActiveAsks != 0 {
		t.Errorf("expected counters 1/0, got %d/%d", m.ActiveBids, m.ActiveAsks)
	}
}

func TestCapturePendingMatch_RejectsUnmatched(t *testing.T) {
	m := models.Market{MarketID: 1}
	before := m

	m, err := CapturePendingMatch(m, models.MatchResult{}, 1000)
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if m != before {
		t.Error("expected market to be unchanged")
	}
}

func TestCapturePendingMatch_RejectsSecondPending(t *testing.T) {
	m := models.Market{MarketID: 1, ActiveBids: 2, ActiveAsks: 2}

	m, err := CapturePendingMatch(m, testMatch(), 1000)
	if err != nil {
		t.Fatalf("failed to capture first match: %v", err)
	}

	before := m
	m, err = CapturePendingMatch(m, testMatch(), 2000)
	if !errors.Is(err, ErrPendingMatch) {
		t.Fatalf("expected ErrPendingMatch, got %v", err)
	}
	if m != before {
		t.Error("expected market to be unchanged after rejected capture")
	}
}

func TestCreateSettlement(t *testing.T) {
	m := models.Market{MarketID: 1, ActiveBids: 1, ActiveAsks: 1}
	m, err := CapturePendingMatch(m, testMatch(), 1000)
	if err != nil {
		t.Fatalf("failed to capture match: %v", err)
	}

	m, s, err := CreateSettlement(m)
	if err != nil {
		t.Fatalf("failed to create settlement: %v", err)
	}

	if s.SettlementID != 1 {
		t.Errorf("expected settlement ID 1, got %d", s.SettlementID)
	}
	if m.SettlementCount != 1 {
		t.Errorf("expected settlement count 1, got %d", m.SettlementCount)
	}
	if s.Maker != ident(2) || s.Taker != ident(1) {
		t.Error("expected identities copied from the pending match")
	}
	if s.ExecutionPrice != 99_500_000 || s.ExecutionAmount != 3 {
		t.Error("expected execution terms copied from the pending match")
	}
	if s.MakerIsBuy {
		t.Error("expected maker_is_buy=false")
	}
	if s.Settled {
		t.Error("expected settlement to start unsettled")
	}
	if s.MatchedAt != 1000 || s.SettledAt != 0 {
		t.Error("expected matched-at copied and settled-at zero")
	}

	// Pending slot must be fully cleared.
	if m.HasPendingMatch {
		t.Error("expected pending match flag to be cleared")
	}
	if !m.PendingMaker.IsZero() || !m.PendingTaker.IsZero() {
		t.Error("expected pending identities to be cleared")
	}
	if m.PendingExecutionPrice != 0 || m.PendingExecutionAmount != 0 || m.PendingMatchedAt != 0 {
		t.Error("expected pending execution fields to be cleared")
	}

	// A second match can now be captured.
	if _, err := CapturePendingMatch(m, testMatch(), 2000); err != nil {
		t.Errorf("expected capture to succeed after settlement creation: %v", err)
	}
}

func TestCreateSettlement_RequiresPendingMatch(t *testing.T) {
	m := models.Market{MarketID: 1}
	before := m

	m, _, err := CreateSettlement(m)
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if m != before {
		t.Error("expected market to be unchanged")
	}
}

func testSettlement() models.TradeSettlement {
	return models.TradeSettlement{
		SettlementID:    1,
		MarketID:        1,
		Maker:           ident(2), // seller
		Taker:           ident(1), // buyer
		MakerOrderID:    2,
		TakerOrderID:    1,
		ExecutionPrice:  99_500_000, // $99.50
		ExecutionAmount: 3_000_000, // 3 whole base units
		MakerIsBuy:      false,
		MatchedAt:       1000,
	}
}

func TestSettleTrade(t *testing.T) {
	m := models.Market{MarketID: 1, FeeRateBps: 30} // 0.3%
	s := testSettlement()

	// Maker sold 3 base units; taker bought them for 3 * 99.5 = 298.5 quote.
	maker := models.UserPosition{Owner: ident(2), BaseDeposited: 10_000_000, BaseLocked: 3_000_000}
	taker := models.UserPosition{Owner: ident(1), QuoteDeposited: 500_000_000, QuoteLocked: 300_000_000}

	s, maker, taker, err := SettleTrade(m, s, maker, taker, 2000)
	if err != nil {
		t.Fatalf("failed to settle trade: %v", err)
	}

	quoteAmount := uint64(298_500_000)
	fee := quoteAmount * 30 / 10_000 // 895_500

	// Seller (maker): base down by 3 units, quote up by quote minus fee.
	if maker.BaseDeposited != 7_000_000 {
		t.Errorf("expected maker base 7_000_000, got %d", maker.BaseDeposited)
	}
	if maker.BaseLocked != 0 {
		t.Errorf("expected maker base lock released, got %d", maker.BaseLocked)
	}
	if maker.QuoteDeposited != quoteAmount-fee {
		t.Errorf("expected maker quote %d, got %d", quoteAmount-fee, maker.QuoteDeposited)
	}

	// Buyer (taker): quote down by quote amount, base up by 3.
	if taker.QuoteDeposited != 500_000_000-quoteAmount {
		t.Errorf("expected taker quote %d, got %d", 500_000_000-quoteAmount, taker.QuoteDeposited)
	}
	if taker.QuoteLocked != 300_000_000-quoteAmount {
		t.Errorf("expected taker quote lock reduced, got %d", taker.QuoteLocked)
	}
	if taker.BaseDeposited != 3_000_000 {
		t.Errorf("expected taker base 3_000_000, got %d", taker.BaseDeposited)
	}

	if !s.Settled {
		t.Error("expected settlement to be marked settled")
	}
	if s.SettledAt != 2000 {
		t.Errorf("expected settled-at 2000, got %d", s.SettledAt)
	}
}

func TestSettleTrade_DoubleSettlementRejected(t *testing.T) {
	m := models.Market{MarketID: 1, FeeRateBps: 30}
	s := testSettlement()
	maker := models.UserPosition{Owner: ident(2), BaseDeposited: 10_000_000, BaseLocked: 3_000_000}
	taker := models.UserPosition{Owner: ident(1), QuoteDeposited: 500_000_000, QuoteLocked: 300_000_000}

	s, maker, taker, err := SettleTrade(m, s, maker, taker, 2000)
	if err != nil {
		t.Fatalf("failed to settle trade: %v", err)
	}

	makerBefore, takerBefore := maker, taker
	s2, maker, taker, err := SettleTrade(m, s, maker, taker, 3000)
	if !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
	if maker != makerBefore || taker != takerBefore {
		t.Error("expected no balance change on double settlement")
	}
	if s2.SettledAt != 2000 {
		t.Error("expected settled-at to be unchanged on double settlement")
	}
}

func TestSettleTrade_InsufficientBalances(t *testing.T) {
	m := models.Market{MarketID: 1, FeeRateBps: 30}

	tests := []struct {
		name  string
		maker models.UserPosition
		taker models.UserPosition
	}{
		{
			name:  "SellerShortOnBase",
			maker: models.UserPosition{Owner: ident(2), BaseDeposited: 2_000_000},
			taker: models.UserPosition{Owner: ident(1), QuoteDeposited: 500_000_000},
		},
		{
			name:  "BuyerShortOnQuote",
			maker: models.UserPosition{Owner: ident(2), BaseDeposited: 10_000_000},
			taker: models.UserPosition{Owner: ident(1), QuoteDeposited: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettlement()
			sOut, maker, taker, err := SettleTrade(m, s, tt.maker, tt.taker, 2000)
			if !errors.Is(err, ErrInsufficientBalance) {
				t.Fatalf("expected ErrInsufficientBalance, got %v", err)
			}
			if maker != tt.maker || taker != tt.taker {
				t.Error("expected positions to be unchanged on rejected settlement")
			}
			if sOut.Settled {
				t.Error("expected settlement to remain unsettled")
			}
		})
	}
}

func TestSettleTrade_MakerIsBuyer(t *testing.T) {
	m := models.Market{MarketID: 1, FeeRateBps: 0}
	s := testSettlement()
	s.MakerIsBuy = true // maker bought, so the taker is the seller

	maker := models.UserPosition{Owner: ident(2), QuoteDeposited: 400_000_000, QuoteLocked: 300_000_000}
	taker := models.UserPosition{Owner: ident(1), BaseDeposited: 5_000_000, BaseLocked: 3_000_000}

	_, maker, taker, err := SettleTrade(m, s, maker, taker, 2000)
	if err != nil {
		t.Fatalf("failed to settle trade: %v", err)
	}

	if maker.BaseDeposited != 3_000_000 {
		t.Errorf("expected maker (buyer) base 3_000_000, got %d", maker.BaseDeposited)
	}
	if taker.BaseDeposited != 2_000_000 {
		t.Errorf("expected taker (seller) base 2_000_000, got %d", taker.BaseDeposited)
	}
	if taker.QuoteDeposited != 298_500_000 {
		t.Errorf("expected taker (seller) quote 298_500_000, got %d", taker.QuoteDeposited)
	}
	if maker.QuoteDeposited != 400_000_000-298_500_000 {
		t.Errorf("expected maker (buyer) quote reduced, got %d", maker.QuoteDeposited)
	}
}

func TestQuoteAmount(t *testing.T) {
	s := testSettlement()
	quote, err := QuoteAmount(&s)
	if err != nil {
		t.Fatalf("failed to compute quote amount: %v", err)
	}
	if quote != 298_500_000 {
		t.Errorf("expected quote amount 298_500_000, got %d", quote)
	}

	// A product far beyond 64 bits after division must fault, not wrap.
	s.ExecutionAmount = ^uint64(0)
	s.ExecutionPrice = ^uint64(0)
	if _, err := QuoteAmount(&s); !errors.Is(err, ErrMathOverflow) {
		t.Errorf("expected ErrMathOverflow, got %v", err)
	}
}

func TestFee_Truncates(t *testing.T) {
	m := models.Market{FeeRateBps: 30}
	fee, err := Fee(&m, 999)
	if err != nil {
		t.Fatalf("failed to compute fee: %v", err)
	}
	if fee != 2 { // 999 * 30 / 10_000 = 2.997 -> 2
		t.Errorf("expected fee 2, got %d", fee)
	}
}
