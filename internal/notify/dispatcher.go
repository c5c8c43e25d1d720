package notify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"marketplace/internal/model"
)

// Publisher is what the dispatcher needs from the queue.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Dispatcher fires seller notifications after a reservation commit. It is
// strictly best-effort: the state transition is already durable, so a
// publish failure is logged and swallowed rather than surfaced as a false
// failure of the request.
type Dispatcher struct {
	pub            Publisher
	contactChannel string
}

// NewDispatcher builds a dispatcher. contactChannel names where the seller
// is reached (an email address template, a webhook — opaque here).
func NewDispatcher(pub Publisher, contactChannel string) *Dispatcher {
	return &Dispatcher{pub: pub, contactChannel: contactChannel}
}

// ReservationCreated announces a new PENDING reservation to the seller.
func (d *Dispatcher) ReservationCreated(ctx context.Context, prod *model.Product, res *model.Reservation) {
	d.publish(ctx, d.event(KindReservationCreated, prod, res))
}

// StatusChanged announces a committed status transition.
func (d *Dispatcher) StatusChanged(ctx context.Context, prod *model.Product, res *model.Reservation) {
	d.publish(ctx, d.event(KindStatusChanged, prod, res))
}

func (d *Dispatcher) event(kind EventKind, prod *model.Product, res *model.Reservation) Event {
	return Event{
		EventID:        uuid.New().String(),
		Kind:           kind,
		ReservationID:  res.ID,
		ProductID:      prod.ID,
		ProductName:    prod.Name,
		SellerID:       prod.SellerID,
		BuyerID:        res.BuyerID,
		Quantity:       res.Quantity,
		Status:         res.Status,
		ContactChannel: d.contactChannel,
	}
}

func (d *Dispatcher) publish(ctx context.Context, e Event) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := d.pub.Publish(pubCtx, e); err != nil {
		log.Printf("notify publish kind=%s reservation=%d: %v", e.Kind, e.ReservationID, err)
	}
}
