package model

import (
	"time"

	"gorm.io/gorm"
)

// Notification is the admin-facing record written by the notification
// consumer. EventID carries the dispatcher's event id; its unique index
// makes redelivered events idempotent at the storage layer.
type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	EventID        string `gorm:"size:64;uniqueIndex;not null" json:"event_id"`
	SellerID       int64  `gorm:"not null;index" json:"seller_id"`
	ReservationID  uint   `gorm:"not null;index" json:"reservation_id"`
	Message        string `gorm:"size:255;not null" json:"message"`
	ContactChannel string `gorm:"size:128" json:"contact_channel"`
}

func (Notification) TableName() string { return "notifications" }
