package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"hotel-pms/models"
	"hotel-pms/repository"
	"hotel-pms/utils"
)

const seqReservation = "reservation"

// ReservationService owns booking, amendment, cancellation and no-show.
// Every write that can change which nights a room is held for runs under
// the room lock and inside one transaction that row-locks the room before
// re-checking overlaps.
type ReservationService struct {
	deps Deps
}

func NewReservationService(deps Deps) *ReservationService {
	return &ReservationService{deps: deps.withDefaults()}
}

type CreateReservationInput struct {
	RoomID          uint
	GuestID         uint
	CheckInDate     time.Time
	CheckOutDate    time.Time
	Adults          int
	Children        int
	RoomRate        *decimal.Decimal
	Currency        string
	SpecialRequests string
}

func (s *ReservationService) Create(ctx context.Context, hotelID uint, in CreateReservationInput) (*models.Reservation, error) {
	if in.RoomID == 0 {
		return nil, validationError("error.roomRequired", "room_id is required")
	}
	if in.GuestID == 0 {
		return nil, validationError("error.guestRequired", "guest_id is required")
	}
	checkIn, checkOut := utils.DateOnly(in.CheckInDate), utils.DateOnly(in.CheckOutDate)
	nights, err := Nights(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if in.Adults == 0 {
		in.Adults = 1
	}
	if in.Adults < 0 || in.Children < 0 {
		return nil, validationError("error.invalidGuests", "adults and children must not be negative")
	}

	hotel, err := s.deps.Store.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, lookupError(err, "error.hotelNotFound", "hotel not found", "get hotel")
	}
	if _, err := s.deps.Store.GetGuest(ctx, hotelID, in.GuestID); err != nil {
		return nil, lookupError(err, "error.guestNotFound", "guest not found", "get guest")
	}
	room, err := s.deps.Store.GetRoom(ctx, hotelID, in.RoomID)
	if err != nil {
		return nil, lookupError(err, "error.roomNotFound", "room not found", "get room")
	}
	currency := in.Currency
	if currency == "" {
		currency = hotel.DefaultCurrency
	}
	if err := checkOccupancy(room, in.Adults, in.Children); err != nil {
		return nil, err
	}
	rate, err := resolveRate(room, currency, in.RoomRate)
	if err != nil {
		return nil, err
	}

	res := &models.Reservation{
		HotelID:         hotelID,
		RoomID:          room.ID,
		GuestID:         in.GuestID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		Nights:          nights,
		Adults:          in.Adults,
		Children:        in.Children,
		Currency:        currency,
		RoomRate:        rate,
		TotalAmount:     TotalAmount(rate, nights),
		Status:          models.StatusConfirmed,
		PaymentStatus:   models.PaymentPending,
		SpecialRequests: in.SpecialRequests,
	}

	release, err := lockRooms(ctx, s.deps.Locker, hotelID, room.ID)
	if err != nil {
		return nil, internalError("acquire room lock", err)
	}
	defer release()

	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		locked, err := tx.LockRoom(ctx, hotelID, room.ID)
		if err != nil {
			return lookupError(err, "error.roomNotFound", "room not found", "lock room")
		}
		if !locked.Status.Sellable() {
			return roomOutOfServiceError(locked)
		}
		if err := ensureRoomFree(ctx, tx, s.deps.Policy, room.ID, checkIn, checkOut, 0); err != nil {
			return err
		}
		n, err := tx.NextSequence(ctx, hotelID, seqReservation)
		if err != nil {
			return internalError("next reservation number", err)
		}
		res.ReservationNumber = utils.DisplayNumber("RSV", n)
		if err := tx.CreateReservation(ctx, res); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, reservationWriteError(err, "create reservation")
	}

	s.deps.Log.WithField("hotel_id", hotelID).
		WithField("reservation_id", res.ID).
		WithField("room_id", res.RoomID).
		Infof("reservation %s created for %s -> %s", res.ReservationNumber, utils.FormatDate(checkIn), utils.FormatDate(checkOut))
	s.deps.publish(ctx, EventReservationCreated, newReservationEvent(res, s.deps.Now()))
	return s.Get(ctx, hotelID, res.ID)
}

func (s *ReservationService) Get(ctx context.Context, hotelID, id uint) (*models.Reservation, error) {
	r, err := s.deps.Store.GetReservation(ctx, hotelID, id)
	if err != nil {
		return nil, lookupError(err, "error.reservationNotFound", "reservation not found", "get reservation")
	}
	return r, nil
}

func (s *ReservationService) List(ctx context.Context, hotelID uint, f repository.ReservationFilter) ([]models.Reservation, error) {
	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, validationError("error.invalidStatus", "unknown reservation status "+string(st))
		}
	}
	out, err := s.deps.Store.ListReservations(ctx, hotelID, f)
	if err != nil {
		return nil, internalError("list reservations", err)
	}
	return out, nil
}

// UpdateReservationInput carries a partial update; nil fields are left
// unchanged.
type UpdateReservationInput struct {
	RoomID          *uint
	CheckInDate     *time.Time
	CheckOutDate    *time.Time
	Adults          *int
	Children        *int
	RoomRate        *decimal.Decimal
	Currency        *string
	SpecialRequests *string
}

func (in UpdateReservationInput) touchesStay() bool {
	return in.RoomID != nil || in.CheckInDate != nil || in.Adults != nil || in.Children != nil || in.Currency != nil
}

// Update amends a CONFIRMED reservation, or the check-out date, rate and
// special requests of a CHECKED_IN one. Availability is re-checked against
// every other reservation when the room or dates move.
func (s *ReservationService) Update(ctx context.Context, hotelID, id uint, in UpdateReservationInput) (*models.Reservation, error) {
	current, err := s.Get(ctx, hotelID, id)
	if err != nil {
		return nil, err
	}
	rooms := []uint{current.RoomID}
	if in.RoomID != nil {
		rooms = append(rooms, *in.RoomID)
	}
	release, err := lockRooms(ctx, s.deps.Locker, hotelID, rooms...)
	if err != nil {
		return nil, internalError("acquire room lock", err)
	}
	defer release()

	var updated *models.Reservation
	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		r, err := tx.GetReservation(ctx, hotelID, id)
		if err != nil {
			return lookupError(err, "error.reservationNotFound", "reservation not found", "get reservation")
		}
		switch r.Status {
		case models.StatusConfirmed:
		case models.StatusCheckedIn:
			if in.touchesStay() {
				return validationError("error.fieldLocked", "only check_out_date, room_rate and special_requests can change after check-in")
			}
		default:
			return conflictError("error.reservationClosed", "reservation can no longer be modified",
				map[string]interface{}{"status": r.Status})
		}

		oldRoom, oldIn, oldOut := r.RoomID, r.CheckInDate, r.CheckOutDate
		if in.RoomID != nil {
			r.RoomID = *in.RoomID
		}
		if in.CheckInDate != nil {
			r.CheckInDate = utils.DateOnly(*in.CheckInDate)
		}
		if in.CheckOutDate != nil {
			r.CheckOutDate = utils.DateOnly(*in.CheckOutDate)
		}
		if in.Adults != nil {
			r.Adults = *in.Adults
		}
		if in.Children != nil {
			r.Children = *in.Children
		}
		if in.SpecialRequests != nil {
			r.SpecialRequests = *in.SpecialRequests
		}
		if r.Adults < 1 || r.Children < 0 {
			return validationError("error.invalidGuests", "at least one adult is required and children must not be negative")
		}
		nights, err := Nights(r.CheckInDate, r.CheckOutDate)
		if err != nil {
			return err
		}

		room, err := tx.LockRoom(ctx, hotelID, r.RoomID)
		if err != nil {
			return lookupError(err, "error.roomNotFound", "room not found", "lock room")
		}
		if r.RoomID != oldRoom && !room.Status.Sellable() {
			return roomOutOfServiceError(room)
		}
		if err := checkOccupancy(room, r.Adults, r.Children); err != nil {
			return err
		}

		switch {
		case in.RoomRate != nil:
			if err := validRate(*in.RoomRate, "room_rate"); err != nil {
				return err
			}
			r.RoomRate = in.RoomRate.Round(2)
		case in.Currency != nil && *in.Currency != r.Currency:
			rate, err := resolveRate(room, *in.Currency, nil)
			if err != nil {
				return err
			}
			r.RoomRate = rate
		}
		if in.Currency != nil {
			r.Currency = *in.Currency
		}

		if r.RoomID != oldRoom || !r.CheckInDate.Equal(oldIn) || !r.CheckOutDate.Equal(oldOut) {
			if err := ensureRoomFree(ctx, tx, s.deps.Policy, r.RoomID, r.CheckInDate, r.CheckOutDate, r.ID); err != nil {
				return err
			}
		}
		r.Nights = nights
		r.TotalAmount = TotalAmount(r.RoomRate, nights)
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, reservationWriteError(err, "update reservation")
	}

	s.deps.Log.WithField("hotel_id", hotelID).WithField("reservation_id", id).Info("reservation updated")
	s.deps.publish(ctx, EventReservationUpdated, newReservationEvent(updated, s.deps.Now()))
	return s.Get(ctx, hotelID, id)
}

// Cancel moves a reservation to CANCELLED. A room that was occupied by the
// stay is handed to housekeeping.
func (s *ReservationService) Cancel(ctx context.Context, hotelID, id uint, reason string) (*models.Reservation, error) {
	current, err := s.Get(ctx, hotelID, id)
	if err != nil {
		return nil, err
	}
	release, err := lockRooms(ctx, s.deps.Locker, hotelID, current.RoomID)
	if err != nil {
		return nil, internalError("acquire room lock", err)
	}
	defer release()

	var cancelled *models.Reservation
	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		r, err := tx.GetReservation(ctx, hotelID, id)
		if err != nil {
			return lookupError(err, "error.reservationNotFound", "reservation not found", "get reservation")
		}
		if !s.deps.Policy.Allowed(r.Status, models.StatusCancelled) {
			return transitionError(r.Status, models.StatusCancelled, "reservation cannot be cancelled in status "+string(r.Status))
		}
		if r.Status == models.StatusCheckedIn {
			room, err := tx.LockRoom(ctx, hotelID, r.RoomID)
			if err != nil {
				return lookupError(err, "error.roomNotFound", "room not found", "lock room")
			}
			if room.Status == models.RoomOccupied {
				if err := tx.SetRoomStatus(ctx, room.ID, models.RoomCleaning); err != nil {
					return err
				}
			}
		}
		now := s.deps.Now()
		r.Status = models.StatusCancelled
		r.CancelledAt = &now
		r.CancelReason = reason
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return err
		}
		cancelled = r
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "cancel reservation")
	}

	s.deps.Log.WithField("hotel_id", hotelID).WithField("reservation_id", id).Info("reservation cancelled")
	s.deps.publish(ctx, EventReservationCancelled, newReservationEvent(cancelled, s.deps.Now()))
	return s.Get(ctx, hotelID, id)
}

// MarkNoShow flags a CONFIRMED reservation whose guest never arrived. The
// room keeps its status.
func (s *ReservationService) MarkNoShow(ctx context.Context, hotelID, id uint) (*models.Reservation, error) {
	var marked *models.Reservation
	err := s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		r, err := tx.GetReservation(ctx, hotelID, id)
		if err != nil {
			return lookupError(err, "error.reservationNotFound", "reservation not found", "get reservation")
		}
		if !s.deps.Policy.Allowed(r.Status, models.StatusNoShow) {
			return transitionError(r.Status, models.StatusNoShow, "only confirmed reservations can be marked as no-show")
		}
		r.Status = models.StatusNoShow
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return err
		}
		marked = r
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "mark no-show")
	}
	s.deps.Log.WithField("hotel_id", hotelID).WithField("reservation_id", id).Info("reservation marked no-show")
	s.deps.publish(ctx, EventReservationNoShow, newReservationEvent(marked, s.deps.Now()))
	return s.Get(ctx, hotelID, id)
}

func checkOccupancy(room *models.Room, adults, children int) error {
	if room.RoomType == nil {
		return nil
	}
	if adults+children > room.RoomType.MaxOccupancy {
		return validationError("error.occupancyExceeded", "party exceeds the room type's max occupancy")
	}
	return nil
}

// resolveRate returns the explicit rate, or the room type's base rate for
// currency when none is given.
func resolveRate(room *models.Room, currency string, explicit *decimal.Decimal) (decimal.Decimal, error) {
	if explicit != nil {
		if err := validRate(*explicit, "room_rate"); err != nil {
			return decimal.Zero, err
		}
		return explicit.Round(2), nil
	}
	if room.RoomType != nil {
		if rate, ok := room.RoomType.RateFor(currency); ok {
			return rate, nil
		}
	}
	return decimal.Zero, validationError("error.rateRequired", "room_rate is required: no base rate for "+currency)
}

func roomOutOfServiceError(room *models.Room) error {
	return conflictError("error.roomOutOfService", "room "+room.RoomNumber+" is not sellable",
		map[string]interface{}{"room_id": room.ID, "status": room.Status})
}

// reservationWriteError maps the storage backstops of a booking write.
func reservationWriteError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrOverlap):
		return conflictError("error.roomUnavailable", "room is not available for the requested dates", nil)
	case errors.Is(err, repository.ErrDuplicate):
		return conflictError("error.duplicateReservation", "reservation number already in use", nil)
	}
	return passThrough(err, op)
}
