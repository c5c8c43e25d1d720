package notify

import (
	"fmt"

	"marketplace/internal/model"
)

// EventKind tags what happened to a reservation.
type EventKind string

const (
	KindReservationCreated EventKind = "reservation_created"
	KindStatusChanged      EventKind = "status_changed"
)

// Event is the seller-notification message written to Kafka after a
// reservation commit. EventID doubles as the Kafka key and the consumer's
// idempotence handle.
type Event struct {
	EventID        string                  `json:"event_id"`
	Kind           EventKind               `json:"kind"`
	ReservationID  uint                    `json:"reservation_id"`
	ProductID      uint                    `json:"product_id"`
	ProductName    string                  `json:"product_name"`
	SellerID       int64                   `json:"seller_id"`
	BuyerID        int64                   `json:"buyer_id"`
	Quantity       int64                   `json:"quantity"`
	Status         model.ReservationStatus `json:"status"`
	ContactChannel string                  `json:"contact_channel"`
}

// Validate does minimal field checks so the consumer never processes a
// dirty message.
func (e Event) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if e.Kind != KindReservationCreated && e.Kind != KindStatusChanged {
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.ReservationID == 0 {
		return fmt.Errorf("reservation_id is required")
	}
	if e.ProductID == 0 {
		return fmt.Errorf("product_id is required")
	}
	if e.SellerID <= 0 {
		return fmt.Errorf("seller_id is required")
	}
	if e.Quantity <= 0 {
		return fmt.Errorf("quantity must be > 0")
	}
	if !e.Status.Valid() {
		return fmt.Errorf("unknown status %q", e.Status)
	}
	return nil
}

// Message renders the admin-facing notification text.
func (e Event) Message() string {
	switch e.Kind {
	case KindReservationCreated:
		return fmt.Sprintf("buyer %d reserved %d x %q (reservation #%d)",
			e.BuyerID, e.Quantity, e.ProductName, e.ReservationID)
	default:
		return fmt.Sprintf("reservation #%d on %q is now %s",
			e.ReservationID, e.ProductName, e.Status)
	}
}
