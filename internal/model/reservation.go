package model

import (
	"time"

	"gorm.io/gorm"
)

// ReservationStatus is the reservation lifecycle enum.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationSold      ReservationStatus = "SOLD"
	ReservationCanceled  ReservationStatus = "CANCELED"
)

// Valid reports whether s is one of the known lifecycle statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationSold, ReservationCanceled:
		return true
	}
	return false
}

// Holding reports whether the status counts as an active hold on stock
// for the purpose of the product's IsReserved flag.
func (s ReservationStatus) Holding() bool { return s == ReservationPending }

// Reservation is one buyer's claim on Quantity units of a product.
// Quantity is fixed at creation. ReviewToken is issued exactly once, on
// the first transition into SOLD; its presence witnesses that a sale
// completed at some point. Archived reservations are hidden from seller
// views but kept for stock-history auditability.
type Reservation struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	BuyerID   int64             `gorm:"not null;index" json:"buyer_id"`
	ProductID uint              `gorm:"not null;index" json:"product_id"`
	Quantity  int64             `gorm:"not null;default:1" json:"quantity"`
	Status    ReservationStatus `gorm:"size:16;not null;default:'PENDING';index" json:"status"`

	ReviewToken string `gorm:"size:64" json:"review_token,omitempty"`
	IsArchived  bool   `gorm:"not null;default:false;index" json:"is_archived"`
}

func (Reservation) TableName() string { return "reservations" }
