package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-pms/models"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// ---------------------------
// Hotels & sequences
// ---------------------------

func (s *GormStore) CreateHotel(ctx context.Context, hotel *models.Hotel) error {
	return translate(s.db.WithContext(ctx).Create(hotel).Error, "create hotel")
}

func (s *GormStore) GetHotel(ctx context.Context, id uint) (*models.Hotel, error) {
	var hotel models.Hotel
	if err := s.db.WithContext(ctx).First(&hotel, id).Error; err != nil {
		return nil, translate(err, "get hotel")
	}
	return &hotel, nil
}

func (s *GormStore) ListHotels(ctx context.Context) ([]models.Hotel, error) {
	var hotels []models.Hotel
	err := s.db.WithContext(ctx).Order("id ASC").Find(&hotels).Error
	return hotels, translate(err, "list hotels")
}

func (s *GormStore) UpdateHotel(ctx context.Context, hotel *models.Hotel) error {
	return translate(s.db.WithContext(ctx).Save(hotel).Error, "update hotel")
}

func (s *GormStore) NextSequence(ctx context.Context, hotelID uint, name string) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq := models.Sequence{HotelID: hotelID, Name: name}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("hotel_id = ? AND name = ?", hotelID, name).
			First(&seq).Error; err != nil {
			return err
		}
		value = seq.Value + 1
		return tx.Model(&models.Sequence{}).
			Where("hotel_id = ? AND name = ?", hotelID, name).
			Update("value", value).Error
	})
	if err != nil {
		return 0, translate(err, "next sequence "+name)
	}
	return value, nil
}

// ---------------------------
// Floors & room types
// ---------------------------

func (s *GormStore) CreateFloor(ctx context.Context, floor *models.Floor) error {
	return translate(s.db.WithContext(ctx).Create(floor).Error, "create floor")
}

func (s *GormStore) GetFloor(ctx context.Context, hotelID, id uint) (*models.Floor, error) {
	var floor models.Floor
	if err := s.db.WithContext(ctx).Where("hotel_id = ?", hotelID).First(&floor, id).Error; err != nil {
		return nil, translate(err, "get floor")
	}
	return &floor, nil
}

func (s *GormStore) ListFloors(ctx context.Context, hotelID uint) ([]models.Floor, error) {
	var floors []models.Floor
	err := s.db.WithContext(ctx).Where("hotel_id = ?", hotelID).Order("number ASC").Find(&floors).Error
	return floors, translate(err, "list floors")
}

func (s *GormStore) CreateRoomType(ctx context.Context, rt *models.RoomType) error {
	return translate(s.db.WithContext(ctx).Create(rt).Error, "create room type")
}

func (s *GormStore) GetRoomType(ctx context.Context, hotelID, id uint) (*models.RoomType, error) {
	var rt models.RoomType
	if err := s.db.WithContext(ctx).Where("hotel_id = ?", hotelID).First(&rt, id).Error; err != nil {
		return nil, translate(err, "get room type")
	}
	return &rt, nil
}

func (s *GormStore) ListRoomTypes(ctx context.Context, hotelID uint) ([]models.RoomType, error) {
	var types []models.RoomType
	err := s.db.WithContext(ctx).Where("hotel_id = ?", hotelID).Order("id ASC").Find(&types).Error
	return types, translate(err, "list room types")
}

func (s *GormStore) DeleteRoomType(ctx context.Context, hotelID, id uint) error {
	res := s.db.WithContext(ctx).Where("hotel_id = ? AND id = ?", hotelID, id).Delete(&models.RoomType{})
	if res.Error != nil {
		return translate(res.Error, "delete room type")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "delete room type")
	}
	return nil
}

// ---------------------------
// Rooms
// ---------------------------

func (s *GormStore) CreateRoom(ctx context.Context, room *models.Room) error {
	return translate(s.db.WithContext(ctx).Create(room).Error, "create room")
}

func (s *GormStore) GetRoom(ctx context.Context, hotelID, id uint) (*models.Room, error) {
	var room models.Room
	if err := s.db.WithContext(ctx).
		Preload("RoomType").
		Preload("Floor").
		Where("hotel_id = ?", hotelID).
		First(&room, id).Error; err != nil {
		return nil, translate(err, "get room")
	}
	return &room, nil
}

func (s *GormStore) LockRoom(ctx context.Context, hotelID, id uint) (*models.Room, error) {
	var room models.Room
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("hotel_id = ?", hotelID).
		First(&room, id).Error; err != nil {
		return nil, translate(err, "lock room")
	}
	return &room, nil
}

func (s *GormStore) ListRooms(ctx context.Context, hotelID uint, f RoomFilter) ([]models.Room, error) {
	q := s.db.WithContext(ctx).Preload("RoomType").Where("hotel_id = ?", hotelID)
	if f.RoomTypeID != nil {
		q = q.Where("room_type_id = ?", *f.RoomTypeID)
	}
	if f.FloorID != nil {
		q = q.Where("floor_id = ?", *f.FloorID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	var rooms []models.Room
	err := q.Order("room_number ASC").Find(&rooms).Error
	return rooms, translate(err, "list rooms")
}

func (s *GormStore) UpdateRoom(ctx context.Context, room *models.Room) error {
	err := s.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND hotel_id = ?", room.ID, room.HotelID).
		Select("room_number", "floor_id", "room_type_id", "status", "notes").
		Updates(room).Error
	return translate(err, "update room")
}

func (s *GormStore) SetRoomStatus(ctx context.Context, roomID uint, status models.RoomStatus) error {
	err := s.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ?", roomID).
		Update("status", status).Error
	return translate(err, "set room status")
}

func (s *GormStore) DeleteRoom(ctx context.Context, hotelID, id uint) error {
	res := s.db.WithContext(ctx).Where("hotel_id = ? AND id = ?", hotelID, id).Delete(&models.Room{})
	if res.Error != nil {
		return translate(res.Error, "delete room")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "delete room")
	}
	return nil
}

// ---------------------------
// Guests
// ---------------------------

func (s *GormStore) CreateGuest(ctx context.Context, guest *models.Guest) error {
	return translate(s.db.WithContext(ctx).Create(guest).Error, "create guest")
}

func (s *GormStore) GetGuest(ctx context.Context, hotelID, id uint) (*models.Guest, error) {
	var guest models.Guest
	if err := s.db.WithContext(ctx).Where("hotel_id = ?", hotelID).First(&guest, id).Error; err != nil {
		return nil, translate(err, "get guest")
	}
	return &guest, nil
}

func (s *GormStore) ListGuests(ctx context.Context, hotelID uint, f GuestFilter) ([]models.Guest, error) {
	q := s.db.WithContext(ctx).Where("hotel_id = ?", hotelID)
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(document_number) LIKE ?",
			like, like, like, like,
		)
	}
	if f.VIP != nil {
		q = q.Where("vip_status = ?", *f.VIP)
	}
	var guests []models.Guest
	err := q.Order("id DESC").Find(&guests).Error
	return guests, translate(err, "list guests")
}

func (s *GormStore) UpdateGuest(ctx context.Context, guest *models.Guest) error {
	return translate(s.db.WithContext(ctx).Save(guest).Error, "update guest")
}

// ---------------------------
// Reservations
// ---------------------------

func (s *GormStore) CreateReservation(ctx context.Context, r *models.Reservation) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(r).Error, "create reservation")
}

func (s *GormStore) GetReservation(ctx context.Context, hotelID, id uint) (*models.Reservation, error) {
	var r models.Reservation
	if err := s.db.WithContext(ctx).
		Preload("Room").
		Preload("Guest").
		Where("hotel_id = ?", hotelID).
		First(&r, id).Error; err != nil {
		return nil, translate(err, "get reservation")
	}
	return &r, nil
}

func (s *GormStore) UpdateReservation(ctx context.Context, r *models.Reservation) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(r).Error, "update reservation")
}

func (s *GormStore) ListReservations(ctx context.Context, hotelID uint, f ReservationFilter) ([]models.Reservation, error) {
	q := s.db.WithContext(ctx).Preload("Guest").Preload("Room").Where("hotel_id = ?", hotelID)
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.RoomID != nil {
		q = q.Where("room_id = ?", *f.RoomID)
	}
	if f.GuestID != nil {
		q = q.Where("guest_id = ?", *f.GuestID)
	}
	if !f.StayTo.IsZero() {
		q = q.Where("check_in_date < ?", f.StayTo)
	}
	if !f.StayFrom.IsZero() {
		q = q.Where("check_out_date > ?", f.StayFrom)
	}
	var list []models.Reservation
	err := q.Order("check_in_date ASC, id ASC").Find(&list).Error
	return list, translate(err, "list reservations")
}

func (s *GormStore) FindOverlapping(ctx context.Context, roomID uint, checkIn, checkOut time.Time, excludeID uint, ignore []models.ReservationStatus) ([]models.Reservation, error) {
	// half-open overlap: existing.check_in < new.check_out AND new.check_in < existing.check_out
	q := s.db.WithContext(ctx).
		Where("room_id = ? AND check_in_date < ? AND check_out_date > ?", roomID, checkOut, checkIn)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if len(ignore) > 0 {
		q = q.Where("status NOT IN ?", ignore)
	}
	var list []models.Reservation
	err := q.Order("check_in_date ASC").Find(&list).Error
	return list, translate(err, "find overlapping reservations")
}

func (s *GormStore) CreateCheckInRecord(ctx context.Context, rec *models.CheckInRecord) error {
	return translate(s.db.WithContext(ctx).Create(rec).Error, "create check-in record")
}

func (s *GormStore) CreateCheckOutRecord(ctx context.Context, rec *models.CheckOutRecord) error {
	return translate(s.db.WithContext(ctx).Create(rec).Error, "create check-out record")
}

// ---------------------------
// Service requests
// ---------------------------

func (s *GormStore) CreateServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	return translate(s.db.WithContext(ctx).Create(req).Error, "create service request")
}

func (s *GormStore) GetServiceRequest(ctx context.Context, hotelID, id uint) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := s.db.WithContext(ctx).Where("hotel_id = ?", hotelID).First(&req, id).Error; err != nil {
		return nil, translate(err, "get service request")
	}
	return &req, nil
}

func (s *GormStore) UpdateServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	return translate(s.db.WithContext(ctx).Save(req).Error, "update service request")
}

func (s *GormStore) ListServiceRequests(ctx context.Context, hotelID uint, f ServiceRequestFilter) ([]models.ServiceRequest, error) {
	q := s.db.WithContext(ctx).Where("hotel_id = ?", hotelID)
	if f.ReservationID != nil {
		q = q.Where("reservation_id = ?", *f.ReservationID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.UnbilledOnly {
		q = q.Where("billed_invoice_id IS NULL")
	}
	var list []models.ServiceRequest
	err := q.Order("id ASC").Find(&list).Error
	return list, translate(err, "list service requests")
}

// ---------------------------
// Invoices & payments
// ---------------------------

func (s *GormStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	// items are inserted through the association
	return translate(s.db.WithContext(ctx).Omit("Payments").Create(inv).Error, "create invoice")
}

func (s *GormStore) GetInvoice(ctx context.Context, hotelID, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("hotel_id = ?", hotelID).
		First(&inv, id).Error; err != nil {
		return nil, translate(err, "get invoice")
	}
	return &inv, nil
}

func (s *GormStore) UpdateInvoice(ctx context.Context, inv *models.Invoice) error {
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"subtotal":    inv.Subtotal,
			"tax_total":   inv.TaxTotal,
			"total":       inv.Total,
			"amount_paid": inv.AmountPaid,
			"status":      inv.Status,
			"notes":       inv.Notes,
		}).Error
	return translate(err, "update invoice")
}

func (s *GormStore) ListInvoices(ctx context.Context, hotelID uint, f InvoiceFilter) ([]models.Invoice, error) {
	q := s.db.WithContext(ctx).Preload("Items").Where("hotel_id = ?", hotelID)
	if f.ReservationID != nil {
		q = q.Where("reservation_id = ?", *f.ReservationID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if !f.IssuedFrom.IsZero() {
		q = q.Where("issued_at >= ?", f.IssuedFrom)
	}
	if !f.IssuedTo.IsZero() {
		q = q.Where("issued_at < ?", f.IssuedTo)
	}
	var list []models.Invoice
	err := q.Order("issued_at ASC, id ASC").Find(&list).Error
	return list, translate(err, "list invoices")
}

func (s *GormStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	return translate(s.db.WithContext(ctx).Create(p).Error, "create payment")
}
