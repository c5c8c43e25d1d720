package reservation

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketplace/internal/model"
)

// Notifier receives post-commit side effects. Implementations are
// best-effort: the transition is already durable when they run, so they
// must never surface an error back into the request path.
type Notifier interface {
	ReservationCreated(ctx context.Context, prod *model.Product, res *model.Reservation)
	StatusChanged(ctx context.Context, prod *model.Product, res *model.Reservation)
}

// Actor is the authenticated caller, as trusted from the identity layer.
type Actor struct {
	UserID int64
	Admin  bool
}

// Service applies reservation operations against durable storage. Every
// mutation of Product.Quantity in the system goes through here, inside a
// single row-locked transaction, so concurrent transitions on the same
// product serialize instead of interleaving.
type Service struct {
	db     *gorm.DB
	events Notifier
}

func NewService(db *gorm.DB, events Notifier) *Service {
	return &Service{db: db, events: events}
}

// Create records a buyer's claim on quantity units of a product. The stock
// check here is advisory only; nothing is deducted until the reservation
// transitions to SOLD, so several PENDING reservations may coexist against
// the same units.
func (s *Service) Create(ctx context.Context, buyerID int64, productID uint, quantity int64) (*model.Reservation, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var (
		res  model.Reservation
		prod model.Product
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&prod, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if prod.Quantity < quantity {
			return ErrInsufficientStock
		}

		res = model.Reservation{
			BuyerID:   buyerID,
			ProductID: productID,
			Quantity:  quantity,
			Status:    model.ReservationPending,
		}
		if err := tx.Create(&res).Error; err != nil {
			return err
		}
		// A PENDING reservation now exists, so the flag is known true
		// without counting.
		return tx.Model(&prod).Update("is_reserved", true).Error
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.ReservationCreated(ctx, &prod, &res)
	}
	return &res, nil
}

// ApplyTransition moves a reservation to newStatus with all-or-nothing
// semantics. Reservation and product are read under row locks inside one
// transaction, the pure state machine computes the result against that
// fresh state, and both rows are written back before commit. On any
// rejection the transaction aborts with no persisted change.
func (s *Service) ApplyTransition(ctx context.Context, reservationID uint, newStatus model.ReservationStatus, actor Actor) (*model.Reservation, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	var (
		res  model.Reservation
		prod model.Product
		noop bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&res, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&prod, res.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !actor.Admin && prod.SellerID != actor.UserID {
			return ErrNotAuthorized
		}

		out, err := Transition(&res, &prod, newStatus)
		if err != nil {
			return err
		}
		if out.NoOp {
			noop = true
			return nil
		}

		if err := tx.Model(&prod).Updates(map[string]any{
			"quantity":    out.ProductQuantity,
			"is_sold":     out.ProductSold,
			"is_reserved": out.ProductReserved,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&res).Updates(map[string]any{
			"status":       out.Status,
			"review_token": out.ReviewToken,
		}).Error; err != nil {
			return err
		}

		res.Status = out.Status
		res.ReviewToken = out.ReviewToken
		prod.Quantity = out.ProductQuantity
		prod.IsSold = out.ProductSold
		prod.IsReserved = out.ProductReserved
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil && !noop {
		s.events.StatusChanged(ctx, &prod, &res)
	}
	return &res, nil
}

// Archive hides a reservation from the seller's working view. The row and
// its stock history survive, quantity and flags are untouched, and
// archiving an already-archived reservation is a no-op.
func (s *Service) Archive(ctx context.Context, reservationID uint, actor Actor) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res model.Reservation
		if err := tx.First(&res, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var prod model.Product
		if err := tx.First(&prod, res.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !actor.Admin && prod.SellerID != actor.UserID {
			return ErrNotAuthorized
		}
		if res.IsArchived {
			return nil
		}
		return tx.Model(&res).Update("is_archived", true).Error
	})
}

// Get loads one reservation by id. The review token is a one-time
// credential for the buyer's feedback submission, so it is redacted for
// everyone except the buyer, the owning seller, and admins.
func (s *Service) Get(ctx context.Context, reservationID uint, actor Actor) (*model.Reservation, error) {
	var res model.Reservation
	if err := s.db.WithContext(ctx).First(&res, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if actor.Admin || res.BuyerID == actor.UserID {
		return &res, nil
	}

	var prod model.Product
	if err := s.db.WithContext(ctx).First(&prod, res.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if prod.SellerID != actor.UserID {
		res.ReviewToken = ""
	}
	return &res, nil
}
