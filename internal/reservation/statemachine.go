package reservation

import (
	"github.com/google/uuid"

	"marketplace/internal/inventory"
	"marketplace/internal/model"
)

// Outcome is the state computed by a successful transition: the product's
// new quantity and derived flags, and the reservation's new status and
// review token. NoOp marks a same-status retry with nothing to persist.
type Outcome struct {
	ProductQuantity int64
	ProductSold     bool
	ProductReserved bool

	Status      model.ReservationStatus
	ReviewToken string

	NoOp bool
}

// Transition computes the result of moving res to newStatus against prod.
// It is pure: inputs are not mutated and no I/O happens here.
//
// Stock moves exactly once per SOLD entry/exit pair:
//   - entering SOLD deducts res.Quantity (rejected if it would oversell)
//     and issues the review token if the reservation has none yet;
//   - leaving SOLD restores res.Quantity;
//   - every other transition leaves quantity alone and only re-derives
//     the product's reserved flag from the new status.
//
// Transitioning to the current status succeeds as a no-op so that retries
// are safe: no delta is re-applied and no token is re-issued.
func Transition(res *model.Reservation, prod *model.Product, newStatus model.ReservationStatus) (Outcome, error) {
	if !newStatus.Valid() {
		return Outcome{}, ErrInvalidStatus
	}
	if !res.Status.Valid() {
		return Outcome{}, ErrInvalidStatus
	}

	if res.Status == newStatus {
		return Outcome{
			ProductQuantity: prod.Quantity,
			ProductSold:     prod.IsSold,
			ProductReserved: prod.IsReserved,
			Status:          res.Status,
			ReviewToken:     res.ReviewToken,
			NoOp:            true,
		}, nil
	}

	led := inventory.Ledger{Quantity: prod.Quantity}
	out := Outcome{
		Status:      newStatus,
		ReviewToken: res.ReviewToken,
	}

	switch {
	case newStatus == model.ReservationSold:
		// Sale completes: this is the only point stock is actually held.
		if err := led.Deduct(res.Quantity); err != nil {
			return Outcome{}, err
		}
		out.ProductQuantity = led.Quantity
		out.ProductSold = led.SoldOut()
		out.ProductReserved = false
		if out.ReviewToken == "" {
			out.ReviewToken = uuid.New().String()
		}

	case res.Status == model.ReservationSold:
		// Reversal: the seller undoes a sale, stock comes back.
		led.Restore(res.Quantity)
		out.ProductQuantity = led.Quantity
		out.ProductSold = false
		out.ProductReserved = newStatus.Holding()

	default:
		out.ProductQuantity = prod.Quantity
		out.ProductSold = prod.IsSold
		out.ProductReserved = newStatus.Holding()
	}

	return out, nil
}
