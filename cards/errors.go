package cards

import "errors"

var (
	// ErrShoeExhausted is returned when drawing from an empty shoe
	ErrShoeExhausted = errors.New("shoe exhausted")

	// ErrInsufficientSupply is returned when removing a rank the shoe no longer holds
	ErrInsufficientSupply = errors.New("insufficient supply in shoe")

	ErrInvalidRank = errors.New("invalid rank")
)
