package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RoomType is reference data: name, capacity and the nightly base rate per
// currency, stored as a JSON object such as {"USD": "120.00", "EUR": "110"}.
type RoomType struct {
	ID uint `gorm:"primaryKey" json:"id"`

	HotelID      uint           `gorm:"not null;index" json:"hotel_id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	MaxOccupancy int            `gorm:"column:max_occupancy;not null" json:"max_occupancy"`
	BaseRates    datatypes.JSON `gorm:"column:base_rates" json:"base_rates"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Rates decodes BaseRates. Currency keys are upper-cased.
func (rt RoomType) Rates() (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	if len(rt.BaseRates) == 0 {
		return out, nil
	}
	raw := map[string]decimal.Decimal{}
	if err := json.Unmarshal(rt.BaseRates, &raw); err != nil {
		return nil, err
	}
	for k, v := range raw {
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return out, nil
}

// RateFor returns the base nightly rate for currency, if one is configured.
func (rt RoomType) RateFor(currency string) (decimal.Decimal, bool) {
	rates, err := rt.Rates()
	if err != nil {
		return decimal.Zero, false
	}
	rate, ok := rates[strings.ToUpper(currency)]
	return rate, ok
}

// EncodeRates is the inverse of Rates.
func EncodeRates(rates map[string]decimal.Decimal) (datatypes.JSON, error) {
	norm := make(map[string]decimal.Decimal, len(rates))
	for k, v := range rates {
		norm[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	b, err := json.Marshal(norm)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
