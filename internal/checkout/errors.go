package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrSessionMissing  = errors.New("no session found")
	ErrCartEmpty       = errors.New("cart is empty")
	ErrItemsProcessing = errors.New("some items are still processing, please wait for all items to complete")
	ErrItemsErrored    = errors.New("some items have errors, please remove them before checkout")
	ErrNoValidItems    = errors.New("no valid items in cart")
	ErrNetwork         = errors.New("order service unreachable")
)

// OrderCreationError is returned when the order service answered but refused
// or failed to create the order.
type OrderCreationError struct {
	StatusCode int
	Detail     string
}

func (e *OrderCreationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("order creation failed (%d): %s", e.StatusCode, e.Detail)
	}
	return "order creation failed: " + e.Detail
}
