package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/models"
)

func TestMemoryStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	hotel := &models.Hotel{Name: "H"}
	require.NoError(t, s.CreateHotel(ctx, hotel))

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx Store) error {
		if _, err := tx.NextSequence(ctx, hotel.ID, "reservation"); err != nil {
			return err
		}
		if err := tx.CreateGuest(ctx, &models.Guest{HotelID: hotel.ID, FirstName: "A", LastName: "B"}); err != nil {
			return err
		}
		return boom
	})
	assert.Equal(t, boom, err)

	guests, err := s.ListGuests(ctx, hotel.ID, GuestFilter{})
	require.NoError(t, err)
	assert.Empty(t, guests)
	n, err := s.NextSequence(ctx, hotel.ID, "reservation")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "rolled back sequence values are reused")

	err = s.Transaction(ctx, func(tx Store) error {
		return tx.CreateGuest(ctx, &models.Guest{HotelID: hotel.ID, FirstName: "C", LastName: "D"})
	})
	require.NoError(t, err)
	guests, err = s.ListGuests(ctx, hotel.ID, GuestFilter{})
	require.NoError(t, err)
	assert.Len(t, guests, 1)
}

func TestMemoryStore_HotelScoping(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a, b := &models.Hotel{Name: "A"}, &models.Hotel{Name: "B"}
	require.NoError(t, s.CreateHotel(ctx, a))
	require.NoError(t, s.CreateHotel(ctx, b))

	rt := &models.RoomType{HotelID: a.ID, Name: "Std", MaxOccupancy: 2}
	require.NoError(t, s.CreateRoomType(ctx, rt))
	room := &models.Room{HotelID: a.ID, RoomNumber: "101", RoomTypeID: rt.ID, Status: models.RoomAvailable}
	require.NoError(t, s.CreateRoom(ctx, room))

	_, err := s.GetRoom(ctx, b.ID, room.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	got, err := s.GetRoom(ctx, a.ID, room.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RoomType)
	assert.Equal(t, "Std", got.RoomType.Name)

	// room numbers are unique per hotel only
	dup := &models.Room{HotelID: a.ID, RoomNumber: "101", RoomTypeID: rt.ID}
	assert.True(t, errors.Is(s.CreateRoom(ctx, dup), ErrDuplicate))
	other := &models.Room{HotelID: b.ID, RoomNumber: "101", RoomTypeID: rt.ID}
	assert.NoError(t, s.CreateRoom(ctx, other))
}

func TestMemoryStore_FindOverlapping(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	d := func(n int) time.Time { return time.Date(2024, 6, n, 0, 0, 0, 0, time.UTC) }

	mk := func(number string, in, out int, status models.ReservationStatus) *models.Reservation {
		r := &models.Reservation{HotelID: 1, RoomID: 7, ReservationNumber: number, CheckInDate: d(in), CheckOutDate: d(out), Status: status}
		require.NoError(t, s.CreateReservation(ctx, r))
		return r
	}
	a := mk("RSV-1", 1, 4, models.StatusConfirmed)
	mk("RSV-2", 4, 6, models.StatusCancelled)
	c := mk("RSV-3", 6, 8, models.StatusNoShow)

	got, err := s.FindOverlapping(ctx, 7, d(3), d(7), 0, []models.ReservationStatus{models.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, c.ID, got[1].ID)

	got, err = s.FindOverlapping(ctx, 7, d(3), d(7), a.ID, []models.ReservationStatus{models.StatusCancelled, models.StatusNoShow})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.FindOverlapping(ctx, 7, d(4), d(6), 0, nil)
	require.NoError(t, err)
	require.Len(t, got, 1, "only the cancelled one touches 4..6")

	assert.True(t, errors.Is(s.CreateReservation(ctx, &models.Reservation{ReservationNumber: "RSV-1"}), ErrDuplicate))
}
