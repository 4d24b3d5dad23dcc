package ledger

import (
	"math"

	"github.com/veilex/darkpool/internal/models"
)

// LockForOrder reserves balance against a new order: quote for a buy, base
// for a sell. The reservation fails cleanly when available balance is short
// or the order count would overflow, leaving the position unchanged.
func LockForOrder(p models.UserPosition, amount uint64, isBuy bool) (models.UserPosition, error) {
	if p.ActiveOrderCount == math.MaxUint32 {
		return p, ErrTooManyOrders
	}

	if isBuy {
		if p.QuoteAvailable() < amount {
			return p, ErrInsufficientBalance
		}
		locked, err := checkedAdd(p.QuoteLocked, amount)
		if err != nil {
			return p, err
		}
		p.QuoteLocked = locked
	} else {
		if p.BaseAvailable() < amount {
			return p, ErrInsufficientBalance
		}
		locked, err := checkedAdd(p.BaseLocked, amount)
		if err != nil {
			return p, err
		}
		p.BaseLocked = locked
	}

	p.ActiveOrderCount++
	return p, nil
}

// UnlockForCancel releases a reservation after a withdrawal. The locked
// counters saturate at zero and the order count never goes negative, so a
// stray release cannot corrupt the position.
func UnlockForCancel(p models.UserPosition, amount uint64, isBuy bool) models.UserPosition {
	if isBuy {
		p.QuoteLocked = saturatingSub(p.QuoteLocked, amount)
	} else {
		p.BaseLocked = saturatingSub(p.BaseLocked, amount)
	}
	if p.ActiveOrderCount > 0 {
		p.ActiveOrderCount--
	}
	return p
}

// Deposit credits the position record at the custody interface. Moving the
// actual tokens is the custodian's job, not the ledger's.
func Deposit(p models.UserPosition, amount uint64, isBase bool) (models.UserPosition, error) {
	if amount == 0 {
		return p, ErrAmountTooSmall
	}
	if isBase {
		deposited, err := checkedAdd(p.BaseDeposited, amount)
		if err != nil {
			return p, err
		}
		p.BaseDeposited = deposited
	} else {
		deposited, err := checkedAdd(p.QuoteDeposited, amount)
		if err != nil {
			return p, err
		}
		p.QuoteDeposited = deposited
	}
	return p, nil
}

// WithdrawFunds debits the position record. Only balance not locked in open
// orders may leave.
func WithdrawFunds(p models.UserPosition, amount uint64, isBase bool) (models.UserPosition, error) {
	if amount == 0 {
		return p, ErrAmountTooSmall
	}
	if isBase {
		if p.BaseAvailable() < amount {
			return p, ErrInsufficientBalance
		}
		deposited, err := checkedSub(p.BaseDeposited, amount)
		if err != nil {
			return p, err
		}
		p.BaseDeposited = deposited
	} else {
		if p.QuoteAvailable() < amount {
			return p, ErrInsufficientBalance
		}
		deposited, err := checkedSub(p.QuoteDeposited, amount)
		if err != nil {
			return p, err
		}
		p.QuoteDeposited = deposited
	}
	return p, nil
}
