package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Hotel is the tenant every other record hangs off. Operations always
// receive the hotel id explicitly instead of looking up "the" hotel.
type Hotel struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	Address         string          `gorm:"type:text" json:"address"`
	Phone           string          `gorm:"size:50" json:"phone"`
	Email           string          `gorm:"size:150" json:"email"`
	Website         string          `gorm:"size:255" json:"website"`
	DefaultCurrency string          `gorm:"size:3;not null;default:USD" json:"default_currency"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	CheckInTime     string          `gorm:"size:5;default:14:00" json:"check_in_time"`
	CheckOutTime    string          `gorm:"size:5;default:12:00" json:"check_out_time"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Floor groups rooms physically; number is unique per hotel.
type Floor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	HotelID   uint      `gorm:"not null;uniqueIndex:idx_floor_hotel_number" json:"hotel_id"`
	Number    int       `gorm:"not null;uniqueIndex:idx_floor_hotel_number" json:"number"`
	Name      string    `gorm:"size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Sequence is a per-hotel monotonically increasing counter used for display
// numbers (reservations, invoices, payments). It is incremented under a row
// lock inside the transaction that consumes the value.
type Sequence struct {
	HotelID uint   `gorm:"primaryKey;autoIncrement:false" json:"hotel_id"`
	Name    string `gorm:"primaryKey;size:32" json:"name"`
	Value   int64  `gorm:"not null;default:0" json:"value"`
}
