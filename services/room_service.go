package services

import (
	"context"
	"errors"
	"strings"

	"hotel-pms/models"
	"hotel-pms/repository"
)

type RoomService struct {
	deps Deps
}

func NewRoomService(deps Deps) *RoomService {
	return &RoomService{deps: deps.withDefaults()}
}

type RoomInput struct {
	RoomNumber string
	FloorID    *uint
	RoomTypeID uint
	Status     models.RoomStatus
	Notes      string
}

func (s *RoomService) checkRefs(ctx context.Context, hotelID uint, floorID *uint, roomTypeID uint) error {
	if _, err := s.deps.Store.GetRoomType(ctx, hotelID, roomTypeID); err != nil {
		return lookupError(err, "error.roomTypeNotFound", "room type not found", "get room type")
	}
	if floorID != nil {
		if _, err := s.deps.Store.GetFloor(ctx, hotelID, *floorID); err != nil {
			return lookupError(err, "error.floorNotFound", "floor not found", "get floor")
		}
	}
	return nil
}

func (s *RoomService) Create(ctx context.Context, hotelID uint, in RoomInput) (*models.Room, error) {
	number := strings.TrimSpace(in.RoomNumber)
	if number == "" {
		return nil, validationError("error.roomNumberRequired", "room_number is required")
	}
	if in.Status == "" {
		in.Status = models.RoomAvailable
	}
	if !in.Status.Valid() || in.Status == models.RoomOccupied {
		return nil, validationError("error.invalidRoomStatus", "invalid initial room status "+string(in.Status))
	}
	if err := s.checkRefs(ctx, hotelID, in.FloorID, in.RoomTypeID); err != nil {
		return nil, err
	}
	room := &models.Room{
		HotelID:    hotelID,
		RoomNumber: number,
		FloorID:    in.FloorID,
		RoomTypeID: in.RoomTypeID,
		Status:     in.Status,
		Notes:      in.Notes,
	}
	if err := s.deps.Store.CreateRoom(ctx, room); err != nil {
		return nil, roomWriteError(err, "create room")
	}
	s.deps.Log.WithField("hotel_id", hotelID).WithField("room_id", room.ID).Infof("room %s created", number)
	return s.Get(ctx, hotelID, room.ID)
}

func (s *RoomService) List(ctx context.Context, hotelID uint, f repository.RoomFilter) ([]models.Room, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, validationError("error.invalidRoomStatus", "unknown room status "+string(*f.Status))
	}
	out, err := s.deps.Store.ListRooms(ctx, hotelID, f)
	if err != nil {
		return nil, internalError("list rooms", err)
	}
	return out, nil
}

func (s *RoomService) Get(ctx context.Context, hotelID, id uint) (*models.Room, error) {
	room, err := s.deps.Store.GetRoom(ctx, hotelID, id)
	if err != nil {
		return nil, lookupError(err, "error.roomNotFound", "room not found", "get room")
	}
	return room, nil
}

type UpdateRoomInput struct {
	RoomNumber *string
	FloorID    *uint
	RoomTypeID *uint
	Notes      *string
}

// Update edits the descriptive fields. Status has its own operation.
func (s *RoomService) Update(ctx context.Context, hotelID, id uint, in UpdateRoomInput) (*models.Room, error) {
	room, err := s.Get(ctx, hotelID, id)
	if err != nil {
		return nil, err
	}
	if in.RoomNumber != nil {
		room.RoomNumber = strings.TrimSpace(*in.RoomNumber)
		if room.RoomNumber == "" {
			return nil, validationError("error.roomNumberRequired", "room_number is required")
		}
	}
	if in.FloorID != nil {
		room.FloorID = in.FloorID
	}
	if in.RoomTypeID != nil {
		room.RoomTypeID = *in.RoomTypeID
	}
	if in.Notes != nil {
		room.Notes = *in.Notes
	}
	if err := s.checkRefs(ctx, hotelID, room.FloorID, room.RoomTypeID); err != nil {
		return nil, err
	}
	if err := s.deps.Store.UpdateRoom(ctx, room); err != nil {
		return nil, roomWriteError(err, "update room")
	}
	return s.Get(ctx, hotelID, id)
}

// UpdateStatus is the housekeeping status change. OCCUPIED is only set by
// check-in, and a room hosting a checked-in stay cannot be released here.
func (s *RoomService) UpdateStatus(ctx context.Context, hotelID, id uint, status models.RoomStatus, notes *string) (*models.Room, error) {
	if !status.Valid() {
		return nil, validationError("error.invalidRoomStatus", "unknown room status "+string(status))
	}
	if status == models.RoomOccupied {
		return nil, validationError("error.invalidRoomStatus", "OCCUPIED is set by check-in")
	}
	release, err := lockRooms(ctx, s.deps.Locker, hotelID, id)
	if err != nil {
		return nil, internalError("acquire room lock", err)
	}
	defer release()

	var previous models.RoomStatus
	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		room, err := tx.LockRoom(ctx, hotelID, id)
		if err != nil {
			return lookupError(err, "error.roomNotFound", "room not found", "lock room")
		}
		previous = room.Status
		if room.Status == models.RoomOccupied {
			inHouse, err := tx.ListReservations(ctx, hotelID, repository.ReservationFilter{
				RoomID:   &id,
				Statuses: []models.ReservationStatus{models.StatusCheckedIn},
			})
			if err != nil {
				return internalError("list reservations", err)
			}
			if len(inHouse) > 0 {
				return conflictError("error.roomInUse", "room has a checked-in guest",
					map[string]interface{}{"reservation_id": inHouse[0].ID})
			}
		}
		room.Status = status
		if notes != nil {
			room.Notes = *notes
		}
		return tx.UpdateRoom(ctx, room)
	})
	if err != nil {
		return nil, roomWriteError(err, "update room status")
	}
	s.deps.Log.WithField("hotel_id", hotelID).WithField("room_id", id).Infof("room status %s -> %s", previous, status)
	return s.Get(ctx, hotelID, id)
}

// Delete removes a room with no current or upcoming stays.
func (s *RoomService) Delete(ctx context.Context, hotelID, id uint) error {
	if _, err := s.Get(ctx, hotelID, id); err != nil {
		return err
	}
	active, err := s.deps.Store.ListReservations(ctx, hotelID, repository.ReservationFilter{
		RoomID:   &id,
		Statuses: []models.ReservationStatus{models.StatusConfirmed, models.StatusCheckedIn},
	})
	if err != nil {
		return internalError("list reservations", err)
	}
	if len(active) > 0 {
		return conflictError("error.roomInUse", "room has active reservations",
			map[string]interface{}{"reservations": len(active)})
	}
	if err := s.deps.Store.DeleteRoom(ctx, hotelID, id); err != nil {
		return roomWriteError(err, "delete room")
	}
	s.deps.Log.WithField("hotel_id", hotelID).WithField("room_id", id).Info("room deleted")
	return nil
}

func roomWriteError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return conflictError("error.roomNumberTaken", "room number already exists", nil)
	case errors.Is(err, repository.ErrNotFound):
		return notFoundError("error.roomNotFound", "room not found")
	case errors.Is(err, repository.ErrForeignKey):
		return conflictError("error.roomInUse", "room is still referenced", nil)
	}
	return passThrough(err, op)
}
