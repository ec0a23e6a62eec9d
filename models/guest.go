package models

import (
	"strings"
	"time"
)

type Guest struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	HotelID uint `gorm:"index;not null" json:"hotel_id"`

	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null;index" json:"last_name"`
	Email     string `gorm:"size:150;index" json:"email"`
	Phone     string `gorm:"size:50" json:"phone"`

	DocumentType    string `gorm:"size:30" json:"document_type"`
	DocumentNumber  string `gorm:"size:64" json:"document_number"`
	DocumentCountry string `gorm:"size:3" json:"document_country"`

	Nationality string     `gorm:"size:3" json:"nationality"`
	DateOfBirth *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	VIPStatus   bool       `gorm:"column:vip_status;default:false" json:"vip_status"`
	Address     string     `gorm:"type:text" json:"address"`
	Notes       string     `gorm:"type:text" json:"notes"`
}

func (g Guest) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}
