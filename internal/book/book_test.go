package book

import (
	"testing"

	"github.com/veilex/darkpool/internal/models"
)

func ident(b byte) models.Identity {
	var id models.Identity
	id[0] = b
	return id
}

func TestInsert(t *testing.T) {
	var b models.OrderBook

	order := models.Order{
		Price:     100_000_000,
		Amount:    5,
		Owner:     ident(1),
		OrderID:   1,
		Side:      true,
		Timestamp: 10,
	}

	b, inserted := Insert(b, order)
	if !inserted {
		t.Fatal("expected insert into empty book to succeed")
	}
	if b.OrderCount != 1 {
		t.Errorf("expected order count 1, got %d", b.OrderCount)
	}
	if !b.Slots[0].Active {
		t.Error("expected first slot to be active")
	}
	if b.Slots[0].OrderID != 1 {
		t.Errorf("expected order 1 in first slot, got %d", b.Slots[0].OrderID)
	}
}

func TestInsert_ReusesFreedSlot(t *testing.T) {
	var b models.OrderBook

	for i := uint64(1); i <= 3; i++ {
		b, _ = Insert(b, models.Order{Price: 100, Amount: 1, Owner: ident(1), OrderID: i, Side: true})
	}

	b, removed := Withdraw(b, 2, ident(1))
	if !removed {
		t.Fatal("expected withdrawal of order 2 to succeed")
	}

	b, inserted := Insert(b, models.Order{Price: 200, Amount: 1, Owner: ident(2), OrderID: 4, Side: false})
	if !inserted {
		t.Fatal("expected insert to succeed")
	}

	// Order 4 should occupy the slot freed by order 2.
	if b.Slots[1].OrderID != 4 {
		t.Errorf("expected order 4 in freed slot, got %d", b.Slots[1].OrderID)
	}
	if b.OrderCount != 3 {
		t.Errorf("expected order count 3, got %d", b.OrderCount)
	}
}

func TestInsert_FullTable(t *testing.T) {
	var b models.OrderBook

	for i := 0; i < models.MaxOrders; i++ {
		var inserted bool
		b, inserted = Insert(b, models.Order{Price: 100, Amount: 1, Owner: ident(1), OrderID: uint64(i + 1), Side: true})
		if !inserted {
			t.Fatalf("expected insert %d to succeed", i+1)
		}
	}
	if b.OrderCount != models.MaxOrders {
		t.Fatalf("expected full table, got %d orders", b.OrderCount)
	}

	before := b
	b, inserted := Insert(b, models.Order{Price: 999, Amount: 9, Owner: ident(2), OrderID: 999, Side: true})
	if inserted {
		t.Error("expected insert into full table to be a no-op")
	}
	if b != before {
		t.Error("expected full table to be unchanged after rejected insert")
	}
}

func TestWithdraw(t *testing.T) {
	owner := ident(1)
	other := ident(2)

	var base models.OrderBook
	base, _ = Insert(base, models.Order{Price: 100, Amount: 1, Owner: owner, OrderID: 7, Side: true})

	tests := []struct {
		name        string
		orderID     uint64
		owner       models.Identity
		wantRemoved bool
	}{
		{"Success", 7, owner, true},
		{"WrongOwner", 7, other, false},
		{"UnknownOrder", 8, owner, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, removed := Withdraw(base, tt.orderID, tt.owner)
			if removed != tt.wantRemoved {
				t.Fatalf("expected removed=%v, got %v", tt.wantRemoved, removed)
			}
			if !tt.wantRemoved {
				if b != base {
					t.Error("expected book to be unchanged after failed withdrawal")
				}
				return
			}
			if b.Slots[0].Active {
				t.Error("expected slot to be inactive after withdrawal")
			}
			if (b.Slots[0] != models.Order{}) {
				t.Error("expected slot fields to be cleared after withdrawal")
			}
			if b.OrderCount != 0 {
				t.Errorf("expected order count 0, got %d", b.OrderCount)
			}
		})
	}
}

func TestWithdraw_OnlyFirstMatchingSlot(t *testing.T) {
	owner := ident(1)

	// Two slots with the same order ID should not occur under correct
	// operation; withdrawal must still deactivate only the first.
	var b models.OrderBook
	b.Slots[3] = models.Order{Price: 100, Amount: 1, Owner: owner, OrderID: 9, Side: true, Active: true}
	b.Slots[5] = models.Order{Price: 200, Amount: 2, Owner: owner, OrderID: 9, Side: true, Active: true}
	b.OrderCount = 2

	b, removed := Withdraw(b, 9, owner)
	if !removed {
		t.Fatal("expected withdrawal to succeed")
	}
	if b.Slots[3].Active {
		t.Error("expected first matching slot to be deactivated")
	}
	if !b.Slots[5].Active {
		t.Error("expected second matching slot to be untouched")
	}
	if b.OrderCount != 1 {
		t.Errorf("expected order count 1, got %d", b.OrderCount)
	}
}
