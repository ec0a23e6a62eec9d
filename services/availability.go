package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"hotel-pms/models"
	"hotel-pms/repository"
)

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back stays do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Policy holds the product switches for the reservation lifecycle. The
// zero value is the default behaviour.
type Policy struct {
	// ReleaseNoShows frees the room of a NO_SHOW reservation for rebooking.
	ReleaseNoShows bool
	// ForbidCancelAfterCheckIn disables CHECKED_IN -> CANCELLED.
	ForbidCancelAfterCheckIn bool
}

// NonBlocking lists the statuses that never hold a room.
func (p Policy) NonBlocking() []models.ReservationStatus {
	if p.ReleaseNoShows {
		return []models.ReservationStatus{models.StatusCancelled, models.StatusNoShow}
	}
	return []models.ReservationStatus{models.StatusCancelled}
}

// Blocks reports whether a reservation in status s occupies its room for
// its date range.
func (p Policy) Blocks(s models.ReservationStatus) bool {
	for _, nb := range p.NonBlocking() {
		if s == nb {
			return false
		}
	}
	return true
}

// Allowed reports whether the lifecycle permits from -> to.
func (p Policy) Allowed(from, to models.ReservationStatus) bool {
	switch from {
	case models.StatusConfirmed:
		return to == models.StatusCheckedIn || to == models.StatusCancelled || to == models.StatusNoShow
	case models.StatusCheckedIn:
		if to == models.StatusCheckedOut {
			return true
		}
		return to == models.StatusCancelled && !p.ForbidCancelAfterCheckIn
	}
	return false
}

// AvailabilityService answers "is this room free" and "what can I sell".
type AvailabilityService struct {
	deps Deps
}

func NewAvailabilityService(deps Deps) *AvailabilityService {
	return &AvailabilityService{deps: deps.withDefaults()}
}

// IsRoomAvailable reports whether no blocking reservation other than
// excludeID overlaps [checkIn, checkOut) on the room.
func (s *AvailabilityService) IsRoomAvailable(ctx context.Context, hotelID, roomID uint, checkIn, checkOut time.Time, excludeID uint) (bool, error) {
	if _, err := Nights(checkIn, checkOut); err != nil {
		return false, err
	}
	if _, err := s.deps.Store.GetRoom(ctx, hotelID, roomID); err != nil {
		return false, lookupError(err, "error.roomNotFound", "room not found", "get room")
	}
	clashes, err := s.deps.Store.FindOverlapping(ctx, roomID, checkIn, checkOut, excludeID, s.deps.Policy.NonBlocking())
	if err != nil {
		return false, internalError("find overlapping reservations", err)
	}
	return len(clashes) == 0, nil
}

type SearchQuery struct {
	CheckIn    time.Time
	CheckOut   time.Time
	Adults     int
	Children   int
	RoomTypeID *uint
	Currency   string
}

type AvailableRoom struct {
	ID         uint              `json:"id"`
	RoomNumber string            `json:"room_number"`
	FloorID    *uint             `json:"floor_id,omitempty"`
	Status     models.RoomStatus `json:"status"`
}

type RoomTypeAvailability struct {
	RoomTypeID   uint             `json:"room_type_id"`
	Name         string           `json:"name"`
	MaxOccupancy int              `json:"max_occupancy"`
	Currency     string           `json:"currency"`
	NightlyRate  *decimal.Decimal `json:"nightly_rate,omitempty"`
	TotalAmount  *decimal.Decimal `json:"total_amount,omitempty"`
	Nights       int              `json:"nights"`
	Rooms        []AvailableRoom  `json:"rooms"`
}

// Search lists, per room type, the sellable rooms that are free for the
// whole stay and fit the party.
func (s *AvailabilityService) Search(ctx context.Context, hotelID uint, q SearchQuery) ([]RoomTypeAvailability, error) {
	nights, err := Nights(q.CheckIn, q.CheckOut)
	if err != nil {
		return nil, err
	}
	if q.Adults < 0 || q.Children < 0 {
		return nil, validationError("error.invalidGuests", "adults and children must not be negative")
	}
	hotel, err := s.deps.Store.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, lookupError(err, "error.hotelNotFound", "hotel not found", "get hotel")
	}
	currency := q.Currency
	if currency == "" {
		currency = hotel.DefaultCurrency
	}

	types, err := s.deps.Store.ListRoomTypes(ctx, hotelID)
	if err != nil {
		return nil, internalError("list room types", err)
	}
	rooms, err := s.deps.Store.ListRooms(ctx, hotelID, repository.RoomFilter{RoomTypeID: q.RoomTypeID})
	if err != nil {
		return nil, internalError("list rooms", err)
	}

	busy := map[uint]bool{}
	active, err := s.deps.Store.ListReservations(ctx, hotelID, repository.ReservationFilter{StayFrom: q.CheckIn, StayTo: q.CheckOut})
	if err != nil {
		return nil, internalError("list reservations", err)
	}
	for _, r := range active {
		if s.deps.Policy.Blocks(r.Status) && Overlaps(r.CheckInDate, r.CheckOutDate, q.CheckIn, q.CheckOut) {
			busy[r.RoomID] = true
		}
	}

	byType := map[uint]*RoomTypeAvailability{}
	party := q.Adults + q.Children
	for _, rt := range types {
		if q.RoomTypeID != nil && rt.ID != *q.RoomTypeID {
			continue
		}
		if rt.MaxOccupancy < party {
			continue
		}
		entry := &RoomTypeAvailability{
			RoomTypeID:   rt.ID,
			Name:         rt.Name,
			MaxOccupancy: rt.MaxOccupancy,
			Currency:     currency,
			Nights:       nights,
			Rooms:        []AvailableRoom{},
		}
		if rate, ok := rt.RateFor(currency); ok {
			total := TotalAmount(rate, nights)
			entry.NightlyRate = &rate
			entry.TotalAmount = &total
		}
		byType[rt.ID] = entry
	}

	for _, room := range rooms {
		entry, ok := byType[room.RoomTypeID]
		if !ok || busy[room.ID] || !room.Status.Sellable() {
			continue
		}
		entry.Rooms = append(entry.Rooms, AvailableRoom{
			ID:         room.ID,
			RoomNumber: room.RoomNumber,
			FloorID:    room.FloorID,
			Status:     room.Status,
		})
	}

	out := make([]RoomTypeAvailability, 0, len(byType))
	for _, entry := range byType {
		if len(entry.Rooms) == 0 {
			continue
		}
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomTypeID < out[j].RoomTypeID })
	return out, nil
}

// ensureRoomFree fails with a conflict listing the clashing reservations
// when the room is taken for [checkIn, checkOut). Call it inside the
// transaction after the room row is locked.
func ensureRoomFree(ctx context.Context, tx repository.Store, policy Policy, roomID uint, checkIn, checkOut time.Time, excludeID uint) error {
	clashes, err := tx.FindOverlapping(ctx, roomID, checkIn, checkOut, excludeID, policy.NonBlocking())
	if err != nil {
		return internalError("find overlapping reservations", err)
	}
	if len(clashes) == 0 {
		return nil
	}
	conflicts := make([]map[string]interface{}, 0, len(clashes))
	for _, c := range clashes {
		conflicts = append(conflicts, map[string]interface{}{
			"reservation_id":     c.ID,
			"reservation_number": c.ReservationNumber,
			"check_in_date":      c.CheckInDate.Format("2006-01-02"),
			"check_out_date":     c.CheckOutDate.Format("2006-01-02"),
			"status":             c.Status,
		})
	}
	return conflictError("error.roomUnavailable", "room is not available for the requested dates",
		map[string]interface{}{"room_id": roomID, "conflicts": conflicts})
}
