package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"hotel-pms/models"
	"hotel-pms/repository"
	"hotel-pms/utils"
)

const maxKeyCards = 10

// StayService moves reservations through check-in and check-out and keeps
// the room status in step with them.
type StayService struct {
	deps    Deps
	billing *BillingService
}

func NewStayService(deps Deps, billing *BillingService) *StayService {
	deps = deps.withDefaults()
	if billing == nil {
		billing = NewBillingService(deps)
	}
	return &StayService{deps: deps, billing: billing}
}

type CheckInInput struct {
	// RoomID moves the guest to another room at arrival.
	RoomID       *uint
	KeyCardCount int
	Notes        string
}

type CheckInResult struct {
	Reservation *models.Reservation   `json:"reservation"`
	Record      *models.CheckInRecord `json:"check_in"`
	KeyCodes    []string              `json:"key_codes"`
}

func (s *StayService) CheckIn(ctx context.Context, hotelID, reservationID uint, in CheckInInput) (*CheckInResult, error) {
	if in.KeyCardCount == 0 {
		in.KeyCardCount = 1
	}
	if in.KeyCardCount < 1 || in.KeyCardCount > maxKeyCards {
		return nil, validationError("error.invalidKeyCardCount", fmt.Sprintf("key_card_count must be between 1 and %d", maxKeyCards))
	}
	current, err := s.deps.Store.GetReservation(ctx, hotelID, reservationID)
	if err != nil {
		return nil, lookupError(err, "error.reservationNotFound", "reservation not found", "get reservation")
	}
	if !s.deps.Policy.Allowed(current.Status, models.StatusCheckedIn) {
		return nil, checkInRejected(current.Status)
	}
	target := current.RoomID
	if in.RoomID != nil && *in.RoomID != 0 {
		target = *in.RoomID
	}

	release, err := lockRooms(ctx, s.deps.Locker, hotelID, current.RoomID, target)
	if err != nil {
		return nil, internalError("acquire room lock", err)
	}
	defer release()

	codes, err := utils.GenerateKeyCodes(in.KeyCardCount)
	if err != nil {
		return nil, internalError("generate key codes", err)
	}
	rawCodes, err := json.Marshal(codes)
	if err != nil {
		return nil, internalError("encode key codes", err)
	}

	var (
		checkedIn *models.Reservation
		record    *models.CheckInRecord
	)
	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		r, err := tx.GetReservation(ctx, hotelID, reservationID)
		if err != nil {
			return lookupError(err, "error.reservationNotFound", "reservation not found", "get reservation")
		}
		if !s.deps.Policy.Allowed(r.Status, models.StatusCheckedIn) {
			return checkInRejected(r.Status)
		}
		room, err := tx.LockRoom(ctx, hotelID, target)
		if err != nil {
			return lookupError(err, "error.roomNotFound", "room not found", "lock room")
		}
		if room.Status == models.RoomOccupied {
			return conflictError("error.roomOccupied", "room "+room.RoomNumber+" is occupied",
				map[string]interface{}{"room_id": room.ID})
		}
		if !room.Status.Sellable() {
			return roomOutOfServiceError(room)
		}
		if room.ID != r.RoomID {
			if err := checkOccupancy(room, r.Adults, r.Children); err != nil {
				return err
			}
			if err := ensureRoomFree(ctx, tx, s.deps.Policy, room.ID, r.CheckInDate, r.CheckOutDate, r.ID); err != nil {
				return err
			}
			r.RoomID = room.ID
		}

		now := s.deps.Now()
		record = &models.CheckInRecord{
			ReservationID: r.ID,
			RoomID:        room.ID,
			KeyCardCount:  in.KeyCardCount,
			KeyCodes:      datatypes.JSON(rawCodes),
			Notes:         in.Notes,
			CheckedInAt:   now,
		}
		if err := tx.CreateCheckInRecord(ctx, record); err != nil {
			return err
		}
		if err := tx.SetRoomStatus(ctx, room.ID, models.RoomOccupied); err != nil {
			return err
		}
		r.Status = models.StatusCheckedIn
		r.ActualCheckInAt = &now
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return err
		}
		checkedIn = r
		return nil
	})
	if err != nil {
		return nil, reservationWriteError(err, "check in")
	}

	s.deps.Log.WithField("hotel_id", hotelID).
		WithField("reservation_id", reservationID).
		WithField("room_id", checkedIn.RoomID).
		Infof("checked in with %d key card(s)", in.KeyCardCount)
	s.deps.publish(ctx, EventCheckedIn, newReservationEvent(checkedIn, s.deps.Now()))

	res, err := s.deps.Store.GetReservation(ctx, hotelID, reservationID)
	if err != nil {
		return nil, lookupError(err, "error.reservationNotFound", "reservation not found", "get reservation")
	}
	return &CheckInResult{Reservation: res, Record: record, KeyCodes: codes}, nil
}

func checkInRejected(status models.ReservationStatus) error {
	if status == models.StatusCheckedIn {
		return transitionError(status, models.StatusCheckedIn, "reservation is already checked in")
	}
	return transitionError(status, models.StatusCheckedIn, "only confirmed reservations can be checked in")
}

type CheckOutInput struct {
	Charges       []LineInput
	RoomCondition models.RoomCondition
	Notes         string
	// GenerateInvoice defaults to true.
	GenerateInvoice *bool
}

type CheckOutResult struct {
	Reservation *models.Reservation    `json:"reservation"`
	Record      *models.CheckOutRecord `json:"check_out"`
	Invoice     *models.Invoice        `json:"invoice,omitempty"`
}

// CheckOut closes the stay. The status change, the room's next status, the
// check-out record and the invoice commit together or not at all.
func (s *StayService) CheckOut(ctx context.Context, hotelID, reservationID uint, in CheckOutInput) (*CheckOutResult, error) {
	for i, c := range in.Charges {
		if err := c.validate(fmt.Sprintf("charges[%d]", i)); err != nil {
			return nil, err
		}
	}
	switch in.RoomCondition {
	case "":
		in.RoomCondition = models.ConditionNeedsCleaning
	case models.ConditionClean, models.ConditionNeedsCleaning, models.ConditionNeedsMaintenance, models.ConditionOutOfOrder:
	default:
		return nil, validationError("error.invalidRoomCondition", "unknown room_condition "+string(in.RoomCondition))
	}
	generate := in.GenerateInvoice == nil || *in.GenerateInvoice

	current, err := s.deps.Store.GetReservation(ctx, hotelID, reservationID)
	if err != nil {
		return nil, lookupError(err, "error.reservationNotFound", "reservation not found", "get reservation")
	}
	if !s.deps.Policy.Allowed(current.Status, models.StatusCheckedOut) {
		return nil, transitionError(current.Status, models.StatusCheckedOut, "only checked-in reservations can be checked out")
	}
	release, err := lockRooms(ctx, s.deps.Locker, hotelID, current.RoomID)
	if err != nil {
		return nil, internalError("acquire room lock", err)
	}
	defer release()

	var (
		checkedOut *models.Reservation
		record     *models.CheckOutRecord
		invoice    *models.Invoice
	)
	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		r, err := tx.GetReservation(ctx, hotelID, reservationID)
		if err != nil {
			return lookupError(err, "error.reservationNotFound", "reservation not found", "get reservation")
		}
		if !s.deps.Policy.Allowed(r.Status, models.StatusCheckedOut) {
			return transitionError(r.Status, models.StatusCheckedOut, "only checked-in reservations can be checked out")
		}
		room, err := tx.LockRoom(ctx, hotelID, r.RoomID)
		if err != nil {
			return lookupError(err, "error.roomNotFound", "room not found", "lock room")
		}
		next := in.RoomCondition.NextRoomStatus()
		if err := tx.SetRoomStatus(ctx, room.ID, next); err != nil {
			return err
		}

		if generate {
			invoice, err = s.billing.issueCheckoutInvoice(ctx, tx, r, room.RoomNumber, in.Charges)
			if err != nil {
				return err
			}
		}

		now := s.deps.Now()
		record = &models.CheckOutRecord{
			ReservationID: r.ID,
			RoomID:        room.ID,
			RoomCondition: in.RoomCondition,
			RoomStatus:    next,
			Notes:         in.Notes,
			CheckedOutAt:  now,
		}
		if invoice != nil {
			record.InvoiceID = &invoice.ID
		}
		if err := tx.CreateCheckOutRecord(ctx, record); err != nil {
			return err
		}
		r.Status = models.StatusCheckedOut
		r.ActualCheckOutAt = &now
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return err
		}
		checkedOut = r
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "check out")
	}

	entry := s.deps.Log.WithField("hotel_id", hotelID).
		WithField("reservation_id", reservationID).
		WithField("room_id", checkedOut.RoomID)
	entry.Infof("checked out, room -> %s", record.RoomStatus)
	s.deps.publish(ctx, EventCheckedOut, newReservationEvent(checkedOut, s.deps.Now()))

	out := &CheckOutResult{Record: record}
	if invoice != nil {
		entry.WithField("invoice_id", invoice.ID).Infof("checkout invoice %s total %s", invoice.InvoiceNumber, invoice.Total.StringFixed(2))
		s.deps.publish(ctx, EventInvoiceIssued, newInvoiceEvent(invoice, s.deps.Now()))
		if out.Invoice, err = s.billing.Get(ctx, hotelID, invoice.ID); err != nil {
			return nil, err
		}
	}
	if out.Reservation, err = s.deps.Store.GetReservation(ctx, hotelID, reservationID); err != nil {
		return nil, lookupError(err, "error.reservationNotFound", "reservation not found", "get reservation")
	}
	return out, nil
}
