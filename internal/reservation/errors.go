package reservation

import "errors"

var (
	// ErrNotFound covers both a missing reservation and a missing product.
	ErrNotFound = errors.New("reservation or product not found")

	// ErrNotAuthorized rejects a transition requested by anyone other than
	// the product's seller or an admin.
	ErrNotAuthorized = errors.New("not the owning seller")

	// ErrInvalidStatus rejects an unknown target status before any state
	// is read.
	ErrInvalidStatus = errors.New("unknown reservation status")

	// ErrInvalidQuantity rejects a non-positive reservation quantity.
	ErrInvalidQuantity = errors.New("quantity must be >= 1")

	// ErrInsufficientStock rejects reservation creation when the product
	// has fewer units than requested. The check is advisory: stock is not
	// held until the reservation is marked SOLD.
	ErrInsufficientStock = errors.New("not enough stock available")
)
