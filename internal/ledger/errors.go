package ledger

import "errors"

// Failure taxonomy surfaced by the ledger. Handlers map these onto HTTP
// status codes; everything else is a 500.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("stock would become negative")
	ErrConflict          = errors.New("conflicting concurrent write")
)
