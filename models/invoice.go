package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceSource string

const (
	SourceCheckout InvoiceSource = "CHECKOUT"
	SourcePOS      InvoiceSource = "POS"
	SourceManual   InvoiceSource = "MANUAL"
)

type InvoiceStatus string

const (
	InvoiceUnpaid   InvoiceStatus = "UNPAID"
	InvoicePartial  InvoiceStatus = "PARTIAL"
	InvoicePaid     InvoiceStatus = "PAID"
	InvoiceRefunded InvoiceStatus = "REFUNDED"
)

type ItemKind string

const (
	ItemRoom    ItemKind = "ROOM"
	ItemService ItemKind = "SERVICE"
	ItemCharge  ItemKind = "CHARGE"
	ItemPOS     ItemKind = "POS"
)

type Invoice struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PublicID uuid.UUID `gorm:"type:varchar(36);uniqueIndex;not null" json:"public_id"`

	HotelID       uint          `gorm:"not null;index" json:"hotel_id"`
	InvoiceNumber string        `gorm:"size:32;not null;uniqueIndex" json:"invoice_number"`
	ReservationID *uint         `gorm:"index" json:"reservation_id,omitempty"`
	GuestID       *uint         `gorm:"index" json:"guest_id,omitempty"`
	Source        InvoiceSource `gorm:"size:20;not null" json:"source"`
	Currency      string        `gorm:"size:3;not null" json:"currency"`

	TaxRate    decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_total"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount_paid"`

	Status   InvoiceStatus `gorm:"size:20;not null;index" json:"status"`
	IssuedAt time.Time     `gorm:"not null;index" json:"issued_at"`
	Notes    string        `gorm:"type:text" json:"notes,omitempty"`

	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Outstanding is what is still owed on the invoice.
func (inv Invoice) Outstanding() decimal.Decimal {
	return inv.Total.Sub(inv.AmountPaid)
}

type InvoiceItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	InvoiceID   uint            `gorm:"not null;index" json:"invoice_id"`
	Kind        ItemKind        `gorm:"size:20;not null" json:"kind"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
}

type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	PublicID      uuid.UUID       `gorm:"type:varchar(36);uniqueIndex;not null" json:"public_id"`
	InvoiceID     uint            `gorm:"not null;index" json:"invoice_id"`
	PaymentNumber string          `gorm:"size:32;not null;uniqueIndex" json:"payment_number"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method        string          `gorm:"size:30;not null" json:"method"`
	Reference     string          `gorm:"size:100" json:"reference,omitempty"`
	PaidAt        time.Time       `gorm:"not null" json:"paid_at"`
}
