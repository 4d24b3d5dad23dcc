package ledger

import "errors"

// Precondition violations reject the operation with no state mutation.
// Arithmetic faults are surfaced separately and never produce a wrapped
// balance. Callers branch with errors.Is.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrMathOverflow        = errors.New("math overflow")
	ErrTooManyOrders       = errors.New("too many active orders")
	ErrOrderNotFound       = errors.New("order not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrBookFull            = errors.New("order book is full")
	ErrNoMatch             = errors.New("no matching orders")
	ErrPendingMatch        = errors.New("pending match already outstanding")
	ErrAlreadySettled      = errors.New("trade already settled")
	ErrAmountTooSmall      = errors.New("amount below minimum")
	ErrInvalidPrice        = errors.New("price out of valid range")
)
