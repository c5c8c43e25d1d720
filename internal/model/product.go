package model

import (
	"time"

	"gorm.io/gorm"
)

// Product is a seller's listing. Quantity counts units still available for
// sale; IsSold and IsReserved are derived by the reservation state machine
// and are never written independently of a transition.
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SellerID   int64  `gorm:"not null;index" json:"seller_id"`
	Name       string `gorm:"size:128;not null" json:"name"`
	PriceCents int64  `gorm:"not null" json:"price_cents"`

	// Quantity is mutated solely by reservation transitions.
	Quantity   int64 `gorm:"not null;default:0" json:"quantity"`
	IsSold     bool  `gorm:"not null;default:false" json:"is_sold"`
	IsReserved bool  `gorm:"not null;default:false" json:"is_reserved"`
}

func (Product) TableName() string { return "products" }
