package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReservationStatus string

const (
	StatusConfirmed  ReservationStatus = "CONFIRMED"
	StatusCheckedIn  ReservationStatus = "CHECKED_IN"
	StatusCheckedOut ReservationStatus = "CHECKED_OUT"
	StatusCancelled  ReservationStatus = "CANCELLED"
	StatusNoShow     ReservationStatus = "NO_SHOW"
)

// Terminal states have no outgoing transitions.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCheckedOut || s == StatusCancelled || s == StatusNoShow
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPartial  PaymentStatus = "PARTIAL"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type Reservation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	HotelID           uint   `gorm:"column:hotel_id;not null;index" json:"hotel_id"`
	ReservationNumber string `gorm:"column:reservation_number;size:32;not null;uniqueIndex" json:"reservation_number"`
	RoomID            uint   `gorm:"column:room_id;not null;index:idx_reservation_room_dates" json:"room_id"`
	GuestID           uint   `gorm:"column:guest_id;not null;index" json:"guest_id"`

	CheckInDate  time.Time `gorm:"column:check_in_date;type:date;not null;index:idx_reservation_room_dates" json:"check_in_date"`
	CheckOutDate time.Time `gorm:"column:check_out_date;type:date;not null;index:idx_reservation_room_dates" json:"check_out_date"`
	Nights       int       `gorm:"column:nights;not null" json:"nights"`

	Adults   int `gorm:"column:adults;default:1" json:"adults"`
	Children int `gorm:"column:children;default:0" json:"children"`

	Currency    string          `gorm:"column:currency;size:3;not null" json:"currency"`
	RoomRate    decimal.Decimal `gorm:"column:room_rate;type:decimal(12,2);not null" json:"room_rate"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null" json:"total_amount"`

	Status        ReservationStatus `gorm:"column:status;size:20;not null;index" json:"status"`
	PaymentStatus PaymentStatus     `gorm:"column:payment_status;size:20;not null;default:PENDING" json:"payment_status"`

	ActualCheckInAt  *time.Time `gorm:"column:actual_check_in_at" json:"actual_check_in_at,omitempty"`
	ActualCheckOutAt *time.Time `gorm:"column:actual_check_out_at" json:"actual_check_out_at,omitempty"`
	CancelledAt      *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancelReason     string     `gorm:"column:cancel_reason;size:255" json:"cancel_reason,omitempty"`
	SpecialRequests  string     `gorm:"column:special_requests;type:text" json:"special_requests,omitempty"`

	Room  *Room  `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Guest *Guest `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
}

// CheckInRecord is written once per successful check-in.
type CheckInRecord struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ReservationID uint           `gorm:"index;not null" json:"reservation_id"`
	RoomID        uint           `gorm:"not null" json:"room_id"`
	KeyCardCount  int            `gorm:"not null" json:"key_card_count"`
	KeyCodes      datatypes.JSON `json:"key_codes"`
	Notes         string         `gorm:"type:text" json:"notes,omitempty"`
	CheckedInAt   time.Time      `gorm:"not null" json:"checked_in_at"`
}

// RoomCondition is recorded at check-out and decides the room's next status.
type RoomCondition string

const (
	ConditionClean            RoomCondition = "CLEAN"
	ConditionNeedsCleaning    RoomCondition = "NEEDS_CLEANING"
	ConditionNeedsMaintenance RoomCondition = "NEEDS_MAINTENANCE"
	ConditionOutOfOrder       RoomCondition = "OUT_OF_ORDER"
)

// NextRoomStatus maps a recorded condition to the post-stay room status.
// Unknown or empty conditions are treated as NEEDS_CLEANING.
func (c RoomCondition) NextRoomStatus() RoomStatus {
	switch c {
	case ConditionClean:
		return RoomAvailable
	case ConditionNeedsMaintenance:
		return RoomMaintenance
	case ConditionOutOfOrder:
		return RoomOutOfOrder
	default:
		return RoomCleaning
	}
}

type CheckOutRecord struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	ReservationID uint          `gorm:"index;not null" json:"reservation_id"`
	RoomID        uint          `gorm:"not null" json:"room_id"`
	RoomCondition RoomCondition `gorm:"size:20;not null" json:"room_condition"`
	RoomStatus    RoomStatus    `gorm:"size:20;not null" json:"room_status"`
	InvoiceID     *uint         `json:"invoice_id,omitempty"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	CheckedOutAt  time.Time     `gorm:"not null" json:"checked_out_at"`
}
