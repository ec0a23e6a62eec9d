package models

import (
	"time"

	"gorm.io/gorm"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomOccupied    RoomStatus = "OCCUPIED"
	RoomCleaning    RoomStatus = "CLEANING"
	RoomMaintenance RoomStatus = "MAINTENANCE"
	RoomOutOfOrder  RoomStatus = "OUT_OF_ORDER"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomCleaning, RoomMaintenance, RoomOutOfOrder:
		return true
	}
	return false
}

// Sellable reports whether a room in this status may be offered for a stay.
// CLEANING rooms are sellable: housekeeping finishes before arrival.
func (s RoomStatus) Sellable() bool {
	return s != RoomMaintenance && s != RoomOutOfOrder
}

type Room struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	HotelID    uint       `gorm:"column:hotel_id;not null;uniqueIndex:idx_room_hotel_number" json:"hotel_id"`
	RoomNumber string     `gorm:"column:room_number;type:varchar(50);not null;uniqueIndex:idx_room_hotel_number" json:"room_number"`
	FloorID    *uint      `gorm:"column:floor_id" json:"floor_id,omitempty"`
	RoomTypeID uint       `gorm:"column:room_type_id;not null;index" json:"room_type_id"`
	Status     RoomStatus `gorm:"column:status;size:20;not null;default:AVAILABLE" json:"status"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`

	RoomType *RoomType `gorm:"foreignKey:RoomTypeID" json:"room_type,omitempty"`
	Floor    *Floor    `gorm:"foreignKey:FloorID" json:"floor,omitempty"`
}
