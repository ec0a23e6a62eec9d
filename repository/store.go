// Package repository is the storage boundary of the PMS. Services talk to a
// Store; GormStore backs it with MySQL or PostgreSQL and MemoryStore keeps
// everything in process for development and tests.
package repository

import (
	"context"
	"time"

	"hotel-pms/models"
)

type RoomFilter struct {
	RoomTypeID *uint
	FloorID    *uint
	Status     *models.RoomStatus
}

type GuestFilter struct {
	// Search matches first name, last name, email or document number.
	Search string
	VIP    *bool
}

type ReservationFilter struct {
	Statuses []models.ReservationStatus
	RoomID   *uint
	GuestID  *uint
	// StayFrom/StayTo select reservations whose [check_in, check_out)
	// interval overlaps [StayFrom, StayTo). Either bound may be zero.
	StayFrom time.Time
	StayTo   time.Time
}

type ServiceRequestFilter struct {
	ReservationID *uint
	Status        *models.ServiceRequestStatus
	UnbilledOnly  bool
}

type InvoiceFilter struct {
	ReservationID *uint
	Status        *models.InvoiceStatus
	IssuedFrom    time.Time
	IssuedTo      time.Time
}

// Store is implemented by GormStore and MemoryStore. Every lookup that takes
// a hotelID returns ErrNotFound for records owned by another hotel.
type Store interface {
	// Transaction runs fn against a Store bound to a single transaction.
	// Returning an error from fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	CreateHotel(ctx context.Context, hotel *models.Hotel) error
	GetHotel(ctx context.Context, id uint) (*models.Hotel, error)
	ListHotels(ctx context.Context) ([]models.Hotel, error)
	UpdateHotel(ctx context.Context, hotel *models.Hotel) error

	// NextSequence increments and returns the named per-hotel counter.
	NextSequence(ctx context.Context, hotelID uint, name string) (int64, error)

	CreateFloor(ctx context.Context, floor *models.Floor) error
	GetFloor(ctx context.Context, hotelID, id uint) (*models.Floor, error)
	ListFloors(ctx context.Context, hotelID uint) ([]models.Floor, error)

	CreateRoomType(ctx context.Context, rt *models.RoomType) error
	GetRoomType(ctx context.Context, hotelID, id uint) (*models.RoomType, error)
	ListRoomTypes(ctx context.Context, hotelID uint) ([]models.RoomType, error)
	DeleteRoomType(ctx context.Context, hotelID, id uint) error

	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, hotelID, id uint) (*models.Room, error)
	// LockRoom reads the room and holds a row lock on it until the
	// surrounding transaction ends.
	LockRoom(ctx context.Context, hotelID, id uint) (*models.Room, error)
	ListRooms(ctx context.Context, hotelID uint, f RoomFilter) ([]models.Room, error)
	UpdateRoom(ctx context.Context, room *models.Room) error
	SetRoomStatus(ctx context.Context, roomID uint, status models.RoomStatus) error
	DeleteRoom(ctx context.Context, hotelID, id uint) error

	CreateGuest(ctx context.Context, guest *models.Guest) error
	GetGuest(ctx context.Context, hotelID, id uint) (*models.Guest, error)
	ListGuests(ctx context.Context, hotelID uint, f GuestFilter) ([]models.Guest, error)
	UpdateGuest(ctx context.Context, guest *models.Guest) error

	CreateReservation(ctx context.Context, r *models.Reservation) error
	GetReservation(ctx context.Context, hotelID, id uint) (*models.Reservation, error)
	UpdateReservation(ctx context.Context, r *models.Reservation) error
	ListReservations(ctx context.Context, hotelID uint, f ReservationFilter) ([]models.Reservation, error)
	// FindOverlapping returns reservations on roomID whose stay overlaps
	// [checkIn, checkOut), skipping excludeID and any status in ignore.
	FindOverlapping(ctx context.Context, roomID uint, checkIn, checkOut time.Time, excludeID uint, ignore []models.ReservationStatus) ([]models.Reservation, error)

	CreateCheckInRecord(ctx context.Context, rec *models.CheckInRecord) error
	CreateCheckOutRecord(ctx context.Context, rec *models.CheckOutRecord) error

	CreateServiceRequest(ctx context.Context, req *models.ServiceRequest) error
	GetServiceRequest(ctx context.Context, hotelID, id uint) (*models.ServiceRequest, error)
	UpdateServiceRequest(ctx context.Context, req *models.ServiceRequest) error
	ListServiceRequests(ctx context.Context, hotelID uint, f ServiceRequestFilter) ([]models.ServiceRequest, error)

	// CreateInvoice inserts the invoice together with its items.
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	// GetInvoice loads items and payments.
	GetInvoice(ctx context.Context, hotelID, id uint) (*models.Invoice, error)
	// UpdateInvoice persists the header (totals, paid amount, status).
	UpdateInvoice(ctx context.Context, inv *models.Invoice) error
	ListInvoices(ctx context.Context, hotelID uint, f InvoiceFilter) ([]models.Invoice, error)
	CreatePayment(ctx context.Context, p *models.Payment) error
}
