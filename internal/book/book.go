// Package book implements the confidential order table: fixed-capacity slot
// storage, order admission, and the price/time-priority matching pass.
//
// Every operation walks the entire table with a fixed iteration count and no
// early exit, so the shape of the computation never depends on which slots
// are occupied or where a match was found.
package book

import (
	"github.com/veilex/darkpool/internal/models"
)

// Insert writes the order into the first free slot and marks it active. The
// scan always covers all MaxOrders slots. When the table is full the insert
// is a no-op and inserted is false; the caller must not advance any external
// counters in that case.
func Insert(b models.OrderBook, o models.Order) (models.OrderBook, bool) {
	target := -1
	for i := 0; i < models.MaxOrders; i++ {
		if target < 0 && !b.Slots[i].Active {
			target = i
		}
	}
	if target < 0 {
		return b, false
	}

	o.Active = true
	b.Slots[target] = o
	if b.OrderCount < models.MaxOrders {
		b.OrderCount++
	}
	return b, true
}

// Lookup returns the active slot holding orderID if it is owned by owner.
// The scan always covers the full table. It exists so that the admission
// caller can reconcile position locks on withdrawal; it discloses an order
// only to the identity that placed it.
func Lookup(b models.OrderBook, orderID uint64, owner models.Identity) (models.Order, bool) {
	target := -1
	for i := 0; i < models.MaxOrders; i++ {
		s := &b.Slots[i]
		if target < 0 && s.Active && s.OrderID == orderID && s.Owner == owner {
			target = i
		}
	}
	if target < 0 {
		return models.Order{}, false
	}
	return b.Slots[target], true
}

// Withdraw deactivates the slot holding orderID, provided the slot is active
// and owned by owner. Only the first matching slot is cleared; under correct
// operation at most one slot ever holds a given order ID. The scan always
// covers the full table. removed reports whether a slot was cleared.
func Withdraw(b models.OrderBook, orderID uint64, owner models.Identity) (models.OrderBook, bool) {
	target := -1
	for i := 0; i < models.MaxOrders; i++ {
		s := &b.Slots[i]
		if target < 0 && s.Active && s.OrderID == orderID && s.Owner == owner {
			target = i
		}
	}
	if target < 0 {
		return b, false
	}

	b.Slots[target] = models.Order{}
	if b.OrderCount > 0 {
		b.OrderCount--
	}
	return b, true
}
