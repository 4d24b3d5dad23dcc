package models

import (
	"encoding/hex"
	"fmt"
)

const (
	// MaxOrders is the fixed capacity of the order table. Every scan over the
	// table runs exactly this many iterations so that occupancy is never
	// observable through the shape of the computation.
	MaxOrders = 32

	// PriceScale is the fixed-point factor for prices: 1_000_000 scaled units
	// per unit of quote currency, e.g. $100.50 = 100_500_000.
	PriceScale = 1_000_000

	// FeeDenominator converts a fee rate in basis points to a fraction.
	FeeDenominator = 10_000
)

// Identity is an opaque 256-bit trader identity. Inside the engine it is only
// ever compared for equality; it is never interpreted or reconstructed.
type Identity [32]byte

// IsZero reports whether the identity is the all-zero value.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// String returns the hex encoding of the identity.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// IdentityFromHex parses a 64-character hex string into an Identity.
func IdentityFromHex(s string) (Identity, error) {
	var id Identity
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid identity: %w", err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("invalid identity: expected %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Order is one slot in the order table. When Active is false the remaining
// fields carry no meaning and must not influence any decision.
type Order struct {
	Price     uint64   // scaled by PriceScale
	Amount    uint64   // remaining size in base units
	Owner     Identity // equality-compared only
	OrderID   uint64
	Side      bool // true = buy
	Active    bool
	Timestamp int64 // submission time, tie-break only
}

// OrderBook is the fixed-capacity order table. It is a value type (array, no
// slices) so every operation takes a snapshot and returns a new state.
type OrderBook struct {
	Slots      [MaxOrders]Order
	OrderCount uint64 // number of slots with Active = true
}

// MatchResult is the only object whose fields cross the confidentiality
// boundary. When Matched is false every field holds its zero value, so an
// unmatched pass discloses nothing.
type MatchResult struct {
	Matched         bool
	MakerOrderID    uint64
	TakerOrderID    uint64
	ExecutionPrice  uint64
	ExecutionAmount uint64
	Maker           Identity
	Taker           Identity
	MakerIsBuy      bool
}

// Market holds the public aggregate state for one trading pair, including the
// single pending-match slot populated by a matching pass and drained by
// settlement creation.
type Market struct {
	MarketID   uint64
	Authority  Identity
	BaseVault  string
	QuoteVault string
	FeeRateBps uint16

	OrderCount      uint64 // source of order IDs, monotonic
	ActiveBids      uint32
	ActiveAsks      uint32
	SettlementCount uint64

	PendingMaker           Identity
	PendingTaker           Identity
	PendingMakerOrderID    uint64
	PendingTakerOrderID    uint64
	PendingExecutionPrice  uint64
	PendingExecutionAmount uint64
	PendingMatchedAt       int64
	HasPendingMatch        bool
}

// NextOrderID increments the market order counter and returns it.
func (m *Market) NextOrderID() uint64 {
	m.OrderCount++
	return m.OrderCount
}

// UserPosition is the custody record for one (market, owner) pair. Locked
// never exceeds deposited for either asset.
type UserPosition struct {
	Owner            Identity
	MarketID         uint64
	BaseDeposited    uint64
	QuoteDeposited   uint64
	BaseLocked       uint64
	QuoteLocked      uint64
	ActiveOrderCount uint32
}

// BaseAvailable returns base tokens not locked in open orders.
func (p *UserPosition) BaseAvailable() uint64 {
	if p.BaseLocked > p.BaseDeposited {
		return 0
	}
	return p.BaseDeposited - p.BaseLocked
}

// QuoteAvailable returns quote tokens not locked in open orders.
func (p *UserPosition) QuoteAvailable() uint64 {
	if p.QuoteLocked > p.QuoteDeposited {
		return 0
	}
	return p.QuoteDeposited - p.QuoteLocked
}

// TradeSettlement is the durable record of one completed match. It is created
// once from a pending match and mutated exactly once, when settled.
type TradeSettlement struct {
	SettlementID    uint64
	MarketID        uint64
	Maker           Identity
	Taker           Identity
	MakerOrderID    uint64
	TakerOrderID    uint64
	ExecutionPrice  uint64
	ExecutionAmount uint64
	MakerIsBuy      bool
	Settled         bool
	MatchedAt       int64
	SettledAt       int64
}
