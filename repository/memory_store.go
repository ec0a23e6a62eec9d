package repository

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"hotel-pms/models"
)

type seqKey struct {
	hotelID uint
	name    string
}

type memData struct {
	ids          map[string]uint
	hotels       map[uint]models.Hotel
	sequences    map[seqKey]int64
	floors       map[uint]models.Floor
	roomTypes    map[uint]models.RoomType
	rooms        map[uint]models.Room
	guests       map[uint]models.Guest
	reservations map[uint]models.Reservation
	checkIns     map[uint]models.CheckInRecord
	checkOuts    map[uint]models.CheckOutRecord
	requests     map[uint]models.ServiceRequest
	invoices     map[uint]models.Invoice
	items        map[uint]models.InvoiceItem
	payments     map[uint]models.Payment
}

func newMemData() *memData {
	return &memData{
		ids:          map[string]uint{},
		hotels:       map[uint]models.Hotel{},
		sequences:    map[seqKey]int64{},
		floors:       map[uint]models.Floor{},
		roomTypes:    map[uint]models.RoomType{},
		rooms:        map[uint]models.Room{},
		guests:       map[uint]models.Guest{},
		reservations: map[uint]models.Reservation{},
		checkIns:     map[uint]models.CheckInRecord{},
		checkOuts:    map[uint]models.CheckOutRecord{},
		requests:     map[uint]models.ServiceRequest{},
		invoices:     map[uint]models.Invoice{},
		items:        map[uint]models.InvoiceItem{},
		payments:     map[uint]models.Payment{},
	}
}

func (d *memData) clone() *memData {
	return &memData{
		ids:          maps.Clone(d.ids),
		hotels:       maps.Clone(d.hotels),
		sequences:    maps.Clone(d.sequences),
		floors:       maps.Clone(d.floors),
		roomTypes:    maps.Clone(d.roomTypes),
		rooms:        maps.Clone(d.rooms),
		guests:       maps.Clone(d.guests),
		reservations: maps.Clone(d.reservations),
		checkIns:     maps.Clone(d.checkIns),
		checkOuts:    maps.Clone(d.checkOuts),
		requests:     maps.Clone(d.requests),
		invoices:     maps.Clone(d.invoices),
		items:        maps.Clone(d.items),
		payments:     maps.Clone(d.payments),
	}
}

func (d *memData) nextID(table string) uint {
	d.ids[table]++
	return d.ids[table]
}

// MemoryStore keeps all records in process. Transactions are serialised
// behind a single mutex and work on a copy that replaces the live data on
// commit, so a failed transaction leaves nothing behind.
type MemoryStore struct {
	mu   *sync.Mutex
	root *MemoryStore
	data *memData
	inTx bool
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{mu: &sync.Mutex{}, data: newMemData()}
	s.root = s
	return s
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &MemoryStore{mu: s.mu, root: s.root, data: s.root.data.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.root.data = tx.data
	return nil
}

func notFound(op string) error { return errors.Wrap(ErrNotFound, op) }

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

// ---------------------------
// Hotels & sequences
// ---------------------------

func (s *MemoryStore) CreateHotel(ctx context.Context, hotel *models.Hotel) error {
	defer s.lock()()
	hotel.ID = s.data.nextID("hotels")
	stamp(&hotel.CreatedAt, &hotel.UpdatedAt)
	s.data.hotels[hotel.ID] = *hotel
	return nil
}

func (s *MemoryStore) GetHotel(ctx context.Context, id uint) (*models.Hotel, error) {
	defer s.lock()()
	h, ok := s.data.hotels[id]
	if !ok {
		return nil, notFound("get hotel")
	}
	return &h, nil
}

func (s *MemoryStore) ListHotels(ctx context.Context) ([]models.Hotel, error) {
	defer s.lock()()
	out := make([]models.Hotel, 0, len(s.data.hotels))
	for _, h := range s.data.hotels {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateHotel(ctx context.Context, hotel *models.Hotel) error {
	defer s.lock()()
	if _, ok := s.data.hotels[hotel.ID]; !ok {
		return notFound("update hotel")
	}
	stamp(nil, &hotel.UpdatedAt)
	s.data.hotels[hotel.ID] = *hotel
	return nil
}

func (s *MemoryStore) NextSequence(ctx context.Context, hotelID uint, name string) (int64, error) {
	defer s.lock()()
	k := seqKey{hotelID: hotelID, name: name}
	s.data.sequences[k]++
	return s.data.sequences[k], nil
}

// ---------------------------
// Floors & room types
// ---------------------------

func (s *MemoryStore) CreateFloor(ctx context.Context, floor *models.Floor) error {
	defer s.lock()()
	for _, f := range s.data.floors {
		if f.HotelID == floor.HotelID && f.Number == floor.Number {
			return errors.Wrap(ErrDuplicate, "create floor")
		}
	}
	floor.ID = s.data.nextID("floors")
	stamp(&floor.CreatedAt, nil)
	s.data.floors[floor.ID] = *floor
	return nil
}

func (s *MemoryStore) GetFloor(ctx context.Context, hotelID, id uint) (*models.Floor, error) {
	defer s.lock()()
	f, ok := s.data.floors[id]
	if !ok || f.HotelID != hotelID {
		return nil, notFound("get floor")
	}
	return &f, nil
}

func (s *MemoryStore) ListFloors(ctx context.Context, hotelID uint) ([]models.Floor, error) {
	defer s.lock()()
	out := []models.Floor{}
	for _, f := range s.data.floors {
		if f.HotelID == hotelID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *MemoryStore) CreateRoomType(ctx context.Context, rt *models.RoomType) error {
	defer s.lock()()
	rt.ID = s.data.nextID("room_types")
	stamp(&rt.CreatedAt, nil)
	s.data.roomTypes[rt.ID] = *rt
	return nil
}

func (s *MemoryStore) GetRoomType(ctx context.Context, hotelID, id uint) (*models.RoomType, error) {
	defer s.lock()()
	rt, ok := s.data.roomTypes[id]
	if !ok || rt.HotelID != hotelID {
		return nil, notFound("get room type")
	}
	return &rt, nil
}

func (s *MemoryStore) ListRoomTypes(ctx context.Context, hotelID uint) ([]models.RoomType, error) {
	defer s.lock()()
	out := []models.RoomType{}
	for _, rt := range s.data.roomTypes {
		if rt.HotelID == hotelID {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) DeleteRoomType(ctx context.Context, hotelID, id uint) error {
	defer s.lock()()
	rt, ok := s.data.roomTypes[id]
	if !ok || rt.HotelID != hotelID {
		return notFound("delete room type")
	}
	delete(s.data.roomTypes, id)
	return nil
}

// ---------------------------
// Rooms
// ---------------------------

func (s *MemoryStore) withRoomRelations(room models.Room) models.Room {
	if rt, ok := s.data.roomTypes[room.RoomTypeID]; ok {
		room.RoomType = &rt
	}
	if room.FloorID != nil {
		if f, ok := s.data.floors[*room.FloorID]; ok {
			room.Floor = &f
		}
	}
	return room
}

func (s *MemoryStore) roomNumberTaken(hotelID uint, number string, exceptID uint) bool {
	for _, r := range s.data.rooms {
		if r.HotelID == hotelID && r.ID != exceptID && strings.EqualFold(r.RoomNumber, number) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateRoom(ctx context.Context, room *models.Room) error {
	defer s.lock()()
	if s.roomNumberTaken(room.HotelID, room.RoomNumber, 0) {
		return errors.Wrap(ErrDuplicate, "create room")
	}
	room.ID = s.data.nextID("rooms")
	stamp(&room.CreatedAt, &room.UpdatedAt)
	stored := *room
	stored.RoomType, stored.Floor = nil, nil
	s.data.rooms[room.ID] = stored
	return nil
}

func (s *MemoryStore) GetRoom(ctx context.Context, hotelID, id uint) (*models.Room, error) {
	defer s.lock()()
	r, ok := s.data.rooms[id]
	if !ok || r.HotelID != hotelID {
		return nil, notFound("get room")
	}
	r = s.withRoomRelations(r)
	return &r, nil
}

func (s *MemoryStore) LockRoom(ctx context.Context, hotelID, id uint) (*models.Room, error) {
	return s.GetRoom(ctx, hotelID, id)
}

func (s *MemoryStore) ListRooms(ctx context.Context, hotelID uint, f RoomFilter) ([]models.Room, error) {
	defer s.lock()()
	out := []models.Room{}
	for _, r := range s.data.rooms {
		if r.HotelID != hotelID {
			continue
		}
		if f.RoomTypeID != nil && r.RoomTypeID != *f.RoomTypeID {
			continue
		}
		if f.FloorID != nil && (r.FloorID == nil || *r.FloorID != *f.FloorID) {
			continue
		}
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		out = append(out, s.withRoomRelations(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out, nil
}

func (s *MemoryStore) UpdateRoom(ctx context.Context, room *models.Room) error {
	defer s.lock()()
	existing, ok := s.data.rooms[room.ID]
	if !ok || existing.HotelID != room.HotelID {
		return notFound("update room")
	}
	if s.roomNumberTaken(room.HotelID, room.RoomNumber, room.ID) {
		return errors.Wrap(ErrDuplicate, "update room")
	}
	existing.RoomNumber = room.RoomNumber
	existing.FloorID = room.FloorID
	existing.RoomTypeID = room.RoomTypeID
	existing.Status = room.Status
	existing.Notes = room.Notes
	stamp(nil, &existing.UpdatedAt)
	s.data.rooms[room.ID] = existing
	return nil
}

func (s *MemoryStore) SetRoomStatus(ctx context.Context, roomID uint, status models.RoomStatus) error {
	defer s.lock()()
	r, ok := s.data.rooms[roomID]
	if !ok {
		return notFound("set room status")
	}
	r.Status = status
	stamp(nil, &r.UpdatedAt)
	s.data.rooms[roomID] = r
	return nil
}

func (s *MemoryStore) DeleteRoom(ctx context.Context, hotelID, id uint) error {
	defer s.lock()()
	r, ok := s.data.rooms[id]
	if !ok || r.HotelID != hotelID {
		return notFound("delete room")
	}
	delete(s.data.rooms, id)
	return nil
}

// ---------------------------
// Guests
// ---------------------------

func (s *MemoryStore) CreateGuest(ctx context.Context, guest *models.Guest) error {
	defer s.lock()()
	guest.ID = s.data.nextID("guests")
	stamp(&guest.CreatedAt, &guest.UpdatedAt)
	s.data.guests[guest.ID] = *guest
	return nil
}

func (s *MemoryStore) GetGuest(ctx context.Context, hotelID, id uint) (*models.Guest, error) {
	defer s.lock()()
	g, ok := s.data.guests[id]
	if !ok || g.HotelID != hotelID {
		return nil, notFound("get guest")
	}
	return &g, nil
}

func (s *MemoryStore) ListGuests(ctx context.Context, hotelID uint, f GuestFilter) ([]models.Guest, error) {
	defer s.lock()()
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := []models.Guest{}
	for _, g := range s.data.guests {
		if g.HotelID != hotelID {
			continue
		}
		if f.VIP != nil && g.VIPStatus != *f.VIP {
			continue
		}
		if term != "" {
			hay := strings.ToLower(strings.Join([]string{g.FirstName, g.LastName, g.Email, g.DocumentNumber}, "\x00"))
			if !strings.Contains(hay, term) {
				continue
			}
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateGuest(ctx context.Context, guest *models.Guest) error {
	defer s.lock()()
	existing, ok := s.data.guests[guest.ID]
	if !ok || existing.HotelID != guest.HotelID {
		return notFound("update guest")
	}
	guest.CreatedAt = existing.CreatedAt
	stamp(nil, &guest.UpdatedAt)
	s.data.guests[guest.ID] = *guest
	return nil
}

// ---------------------------
// Reservations
// ---------------------------

func (s *MemoryStore) withReservationRelations(r models.Reservation) models.Reservation {
	if room, ok := s.data.rooms[r.RoomID]; ok {
		room = s.withRoomRelations(room)
		r.Room = &room
	}
	if g, ok := s.data.guests[r.GuestID]; ok {
		r.Guest = &g
	}
	return r
}

func (s *MemoryStore) CreateReservation(ctx context.Context, r *models.Reservation) error {
	defer s.lock()()
	for _, existing := range s.data.reservations {
		if existing.ReservationNumber == r.ReservationNumber {
			return errors.Wrap(ErrDuplicate, "create reservation")
		}
	}
	r.ID = s.data.nextID("reservations")
	stamp(&r.CreatedAt, &r.UpdatedAt)
	stored := *r
	stored.Room, stored.Guest = nil, nil
	s.data.reservations[r.ID] = stored
	return nil
}

func (s *MemoryStore) GetReservation(ctx context.Context, hotelID, id uint) (*models.Reservation, error) {
	defer s.lock()()
	r, ok := s.data.reservations[id]
	if !ok || r.HotelID != hotelID {
		return nil, notFound("get reservation")
	}
	r = s.withReservationRelations(r)
	return &r, nil
}

func (s *MemoryStore) UpdateReservation(ctx context.Context, r *models.Reservation) error {
	defer s.lock()()
	existing, ok := s.data.reservations[r.ID]
	if !ok {
		return notFound("update reservation")
	}
	r.CreatedAt = existing.CreatedAt
	stamp(nil, &r.UpdatedAt)
	stored := *r
	stored.Room, stored.Guest = nil, nil
	s.data.reservations[r.ID] = stored
	return nil
}

func statusIn(status models.ReservationStatus, set []models.ReservationStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func (s *MemoryStore) ListReservations(ctx context.Context, hotelID uint, f ReservationFilter) ([]models.Reservation, error) {
	defer s.lock()()
	out := []models.Reservation{}
	for _, r := range s.data.reservations {
		if r.HotelID != hotelID {
			continue
		}
		if len(f.Statuses) > 0 && !statusIn(r.Status, f.Statuses) {
			continue
		}
		if f.RoomID != nil && r.RoomID != *f.RoomID {
			continue
		}
		if f.GuestID != nil && r.GuestID != *f.GuestID {
			continue
		}
		if !f.StayTo.IsZero() && !r.CheckInDate.Before(f.StayTo) {
			continue
		}
		if !f.StayFrom.IsZero() && !r.CheckOutDate.After(f.StayFrom) {
			continue
		}
		out = append(out, s.withReservationRelations(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckInDate.Equal(out[j].CheckInDate) {
			return out[i].CheckInDate.Before(out[j].CheckInDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) FindOverlapping(ctx context.Context, roomID uint, checkIn, checkOut time.Time, excludeID uint, ignore []models.ReservationStatus) ([]models.Reservation, error) {
	defer s.lock()()
	out := []models.Reservation{}
	for _, r := range s.data.reservations {
		if r.RoomID != roomID || r.ID == excludeID || statusIn(r.Status, ignore) {
			continue
		}
		if r.CheckInDate.Before(checkOut) && checkIn.Before(r.CheckOutDate) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInDate.Before(out[j].CheckInDate) })
	return out, nil
}

func (s *MemoryStore) CreateCheckInRecord(ctx context.Context, rec *models.CheckInRecord) error {
	defer s.lock()()
	rec.ID = s.data.nextID("check_ins")
	s.data.checkIns[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) CreateCheckOutRecord(ctx context.Context, rec *models.CheckOutRecord) error {
	defer s.lock()()
	rec.ID = s.data.nextID("check_outs")
	s.data.checkOuts[rec.ID] = *rec
	return nil
}

// ---------------------------
// Service requests
// ---------------------------

func (s *MemoryStore) CreateServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	defer s.lock()()
	req.ID = s.data.nextID("service_requests")
	stamp(&req.CreatedAt, &req.UpdatedAt)
	s.data.requests[req.ID] = *req
	return nil
}

func (s *MemoryStore) GetServiceRequest(ctx context.Context, hotelID, id uint) (*models.ServiceRequest, error) {
	defer s.lock()()
	req, ok := s.data.requests[id]
	if !ok || req.HotelID != hotelID {
		return nil, notFound("get service request")
	}
	return &req, nil
}

func (s *MemoryStore) UpdateServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	defer s.lock()()
	if _, ok := s.data.requests[req.ID]; !ok {
		return notFound("update service request")
	}
	stamp(nil, &req.UpdatedAt)
	s.data.requests[req.ID] = *req
	return nil
}

func (s *MemoryStore) ListServiceRequests(ctx context.Context, hotelID uint, f ServiceRequestFilter) ([]models.ServiceRequest, error) {
	defer s.lock()()
	out := []models.ServiceRequest{}
	for _, req := range s.data.requests {
		if req.HotelID != hotelID {
			continue
		}
		if f.ReservationID != nil && req.ReservationID != *f.ReservationID {
			continue
		}
		if f.Status != nil && req.Status != *f.Status {
			continue
		}
		if f.UnbilledOnly && req.BilledInvoiceID != nil {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---------------------------
// Invoices & payments
// ---------------------------

func (s *MemoryStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	defer s.lock()()
	for _, existing := range s.data.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return errors.Wrap(ErrDuplicate, "create invoice")
		}
	}
	inv.ID = s.data.nextID("invoices")
	stamp(&inv.CreatedAt, &inv.UpdatedAt)
	for i := range inv.Items {
		inv.Items[i].ID = s.data.nextID("invoice_items")
		inv.Items[i].InvoiceID = inv.ID
		s.data.items[inv.Items[i].ID] = inv.Items[i]
	}
	header := *inv
	header.Items, header.Payments = nil, nil
	s.data.invoices[inv.ID] = header
	return nil
}

func (s *MemoryStore) invoiceItems(invoiceID uint) []models.InvoiceItem {
	out := []models.InvoiceItem{}
	for _, it := range s.data.items {
		if it.InvoiceID == invoiceID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) GetInvoice(ctx context.Context, hotelID, id uint) (*models.Invoice, error) {
	defer s.lock()()
	inv, ok := s.data.invoices[id]
	if !ok || inv.HotelID != hotelID {
		return nil, notFound("get invoice")
	}
	inv.Items = s.invoiceItems(id)
	inv.Payments = []models.Payment{}
	for _, p := range s.data.payments {
		if p.InvoiceID == id {
			inv.Payments = append(inv.Payments, p)
		}
	}
	sort.Slice(inv.Payments, func(i, j int) bool { return inv.Payments[i].ID < inv.Payments[j].ID })
	return &inv, nil
}

func (s *MemoryStore) UpdateInvoice(ctx context.Context, inv *models.Invoice) error {
	defer s.lock()()
	existing, ok := s.data.invoices[inv.ID]
	if !ok {
		return notFound("update invoice")
	}
	existing.Subtotal = inv.Subtotal
	existing.TaxTotal = inv.TaxTotal
	existing.Total = inv.Total
	existing.AmountPaid = inv.AmountPaid
	existing.Status = inv.Status
	existing.Notes = inv.Notes
	stamp(nil, &existing.UpdatedAt)
	s.data.invoices[inv.ID] = existing
	return nil
}

func (s *MemoryStore) ListInvoices(ctx context.Context, hotelID uint, f InvoiceFilter) ([]models.Invoice, error) {
	defer s.lock()()
	out := []models.Invoice{}
	for _, inv := range s.data.invoices {
		if inv.HotelID != hotelID {
			continue
		}
		if f.ReservationID != nil && (inv.ReservationID == nil || *inv.ReservationID != *f.ReservationID) {
			continue
		}
		if f.Status != nil && inv.Status != *f.Status {
			continue
		}
		if !f.IssuedFrom.IsZero() && inv.IssuedAt.Before(f.IssuedFrom) {
			continue
		}
		if !f.IssuedTo.IsZero() && !inv.IssuedAt.Before(f.IssuedTo) {
			continue
		}
		inv.Items = s.invoiceItems(inv.ID)
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].IssuedAt.Before(out[j].IssuedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	defer s.lock()()
	if _, ok := s.data.invoices[p.InvoiceID]; !ok {
		return errors.Wrap(ErrForeignKey, "create payment")
	}
	p.ID = s.data.nextID("payments")
	s.data.payments[p.ID] = *p
	return nil
}
