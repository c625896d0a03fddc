package service

import (
	"errors"

	"fabrication-service/internal/cart"
)

var (
	ErrCheckoutUnavailable = errors.New("checkout is temporarily unavailable")
	ErrCheckoutInProgress  = errors.New("a checkout for this session is already in progress")

	// Shared with the client-side cart so both ends report the same errors.
	ErrItemNotFound    = cart.ErrItemNotFound
	ErrInvalidQuantity = cart.ErrInvalidQuantity
)
