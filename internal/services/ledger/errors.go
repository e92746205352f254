package ledger

import "errors"

// Service errors
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidFee          = errors.New("fee amount cannot be negative")
	ErrInvalidType         = errors.New("unknown transaction type")
	ErrInvalidCategory     = errors.New("unknown transaction category")
	ErrEmptyReference      = errors.New("reference is required")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrTransactionNotFound = errors.New("transaction not found")
)
