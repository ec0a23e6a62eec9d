package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ServiceCategory string

const (
	CategoryHousekeeping ServiceCategory = "HOUSEKEEPING"
	CategoryRoomService  ServiceCategory = "ROOM_SERVICE"
	CategoryLaundry      ServiceCategory = "LAUNDRY"
	CategoryMaintenance  ServiceCategory = "MAINTENANCE"
	CategoryOther        ServiceCategory = "OTHER"
)

func (c ServiceCategory) Valid() bool {
	switch c {
	case CategoryHousekeeping, CategoryRoomService, CategoryLaundry, CategoryMaintenance, CategoryOther:
		return true
	}
	return false
}

type ServiceRequestStatus string

const (
	RequestOpen      ServiceRequestStatus = "OPEN"
	RequestCompleted ServiceRequestStatus = "COMPLETED"
	RequestCancelled ServiceRequestStatus = "CANCELLED"
)

// ServiceRequest is a chargeable (or free) service tied to a stay. Completed
// requests that have not been billed are added to the checkout invoice.
type ServiceRequest struct {
	ID              uint                 `gorm:"primaryKey" json:"id"`
	HotelID         uint                 `gorm:"not null;index" json:"hotel_id"`
	ReservationID   uint                 `gorm:"not null;index" json:"reservation_id"`
	RoomID          uint                 `gorm:"not null" json:"room_id"`
	Category        ServiceCategory      `gorm:"size:20;not null" json:"category"`
	Description     string               `gorm:"size:255;not null" json:"description"`
	Amount          decimal.Decimal      `gorm:"type:decimal(12,2);not null;default:0" json:"amount"`
	Status          ServiceRequestStatus `gorm:"size:20;not null;index" json:"status"`
	BilledInvoiceID *uint                `json:"billed_invoice_id,omitempty"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}
