package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/models"
	"hotel-pms/repository"
)

func TestHotel_CreateAndUpdate(t *testing.T) {
	f := newFixture(t, Policy{})

	h, err := f.svcs.Hotels.Create(f.ctx, HotelInput{Name: "  Seaside  ", DefaultCurrency: "eur"})
	require.NoError(t, err)
	assert.Equal(t, "Seaside", h.Name)
	assert.Equal(t, "EUR", h.DefaultCurrency)
	assert.Equal(t, "14:00", h.CheckInTime)
	assert.True(t, h.TaxRate.IsZero())

	_, err = f.svcs.Hotels.Create(f.ctx, HotelInput{Name: ""})
	requireKind(t, err, KindValidation, "error.nameRequired")
	_, err = f.svcs.Hotels.Create(f.ctx, HotelInput{Name: "X", TaxRate: decPtr("101")})
	requireKind(t, err, KindValidation, "error.invalidTaxRate")
	_, err = f.svcs.Hotels.Create(f.ctx, HotelInput{Name: "X", CheckInTime: "25:00"})
	requireKind(t, err, KindValidation, "error.invalidTime")

	h, err = f.svcs.Hotels.Update(f.ctx, h.ID, HotelInput{Name: "Seaside Inn", TaxRate: decPtr("7.5"), CheckOutTime: "11:00"})
	require.NoError(t, err)
	assert.True(t, dec("7.5").Equal(h.TaxRate))
	assert.Equal(t, "11:00", h.CheckOutTime)
	assert.Equal(t, "EUR", h.DefaultCurrency, "omitted currency is kept")

	_, err = f.svcs.Hotels.Get(f.ctx, 999)
	requireKind(t, err, KindNotFound, "error.hotelNotFound")

	all, err := f.svcs.Hotels.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestHotel_Floors(t *testing.T) {
	f := newFixture(t, Policy{})
	_, err := f.svcs.Hotels.CreateFloor(f.ctx, f.hotel.ID, 2, "Second")
	require.NoError(t, err)
	_, err = f.svcs.Hotels.CreateFloor(f.ctx, f.hotel.ID, 1, "First")
	require.NoError(t, err)
	_, err = f.svcs.Hotels.CreateFloor(f.ctx, f.hotel.ID, 1, "Again")
	requireKind(t, err, KindConflict, "error.floorExists")

	floors, err := f.svcs.Hotels.ListFloors(f.ctx, f.hotel.ID)
	require.NoError(t, err)
	require.Len(t, floors, 2)
	assert.Equal(t, 1, floors[0].Number)
}

func TestRoomType_CreateAndDelete(t *testing.T) {
	f := newFixture(t, Policy{})

	_, err := f.svcs.RoomTypes.Create(f.ctx, f.hotel.ID, RoomTypeInput{Name: "Bad", MaxOccupancy: 0})
	requireKind(t, err, KindValidation, "error.invalidOccupancy")
	_, err = f.svcs.RoomTypes.Create(f.ctx, f.hotel.ID, RoomTypeInput{Name: "Bad", MaxOccupancy: 1, BaseRates: map[string]decimal.Decimal{"DOLLARS": dec("1")}})
	requireKind(t, err, KindValidation, "error.invalidCurrency")

	rt, err := f.svcs.RoomTypes.Create(f.ctx, f.hotel.ID, RoomTypeInput{Name: "Loft", MaxOccupancy: 3, BaseRates: map[string]decimal.Decimal{"usd": dec("180")}})
	require.NoError(t, err)
	rate, ok := rt.RateFor("USD")
	require.True(t, ok)
	assert.True(t, dec("180").Equal(rate))

	err = f.svcs.RoomTypes.Delete(f.ctx, f.hotel.ID, f.standard.ID)
	requireKind(t, err, KindConflict, "error.roomTypeInUse")

	require.NoError(t, f.svcs.RoomTypes.Delete(f.ctx, f.hotel.ID, rt.ID))
	_, err = f.svcs.RoomTypes.Get(f.ctx, f.hotel.ID, rt.ID)
	requireKind(t, err, KindNotFound, "error.roomTypeNotFound")
}

func TestRoom_CreateUpdateDelete(t *testing.T) {
	f := newFixture(t, Policy{})

	_, err := f.svcs.Rooms.Create(f.ctx, f.hotel.ID, RoomInput{RoomNumber: "101", RoomTypeID: f.standard.ID})
	requireKind(t, err, KindConflict, "error.roomNumberTaken")
	_, err = f.svcs.Rooms.Create(f.ctx, f.hotel.ID, RoomInput{RoomNumber: "301", RoomTypeID: 999})
	requireKind(t, err, KindNotFound, "error.roomTypeNotFound")
	_, err = f.svcs.Rooms.Create(f.ctx, f.hotel.ID, RoomInput{RoomNumber: "301", RoomTypeID: f.standard.ID, Status: models.RoomOccupied})
	requireKind(t, err, KindValidation, "error.invalidRoomStatus")

	floor, err := f.svcs.Hotels.CreateFloor(f.ctx, f.hotel.ID, 3, "")
	require.NoError(t, err)
	room, err := f.svcs.Rooms.Create(f.ctx, f.hotel.ID, RoomInput{RoomNumber: "301", RoomTypeID: f.standard.ID, FloorID: &floor.ID})
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, room.Status)
	require.NotNil(t, room.RoomType)
	assert.Equal(t, "Standard", room.RoomType.Name)

	byFloor, err := f.svcs.Rooms.List(f.ctx, f.hotel.ID, repository.RoomFilter{FloorID: &floor.ID})
	require.NoError(t, err)
	require.Len(t, byFloor, 1)

	notes := "sea view"
	room, err = f.svcs.Rooms.Update(f.ctx, f.hotel.ID, room.ID, UpdateRoomInput{RoomTypeID: &f.suite.ID, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, f.suite.ID, room.RoomTypeID)
	assert.Equal(t, "sea view", room.Notes)

	taken := "102"
	_, err = f.svcs.Rooms.Update(f.ctx, f.hotel.ID, room.ID, UpdateRoomInput{RoomNumber: &taken})
	requireKind(t, err, KindConflict, "error.roomNumberTaken")

	f.mustBook(t, f.room101, "2024-06-01", "2024-06-02")
	err = f.svcs.Rooms.Delete(f.ctx, f.hotel.ID, f.room101.ID)
	requireKind(t, err, KindConflict, "error.roomInUse")

	require.NoError(t, f.svcs.Rooms.Delete(f.ctx, f.hotel.ID, room.ID))
	_, err = f.svcs.Rooms.Get(f.ctx, f.hotel.ID, room.ID)
	requireKind(t, err, KindNotFound, "error.roomNotFound")
}

func TestRoom_UpdateStatus(t *testing.T) {
	f := newFixture(t, Policy{})

	_, err := f.svcs.Rooms.UpdateStatus(f.ctx, f.hotel.ID, f.room101.ID, models.RoomOccupied, nil)
	requireKind(t, err, KindValidation, "error.invalidRoomStatus")
	_, err = f.svcs.Rooms.UpdateStatus(f.ctx, f.hotel.ID, f.room101.ID, "DIRTY", nil)
	requireKind(t, err, KindValidation, "error.invalidRoomStatus")

	notes := "carpet shampoo"
	room, err := f.svcs.Rooms.UpdateStatus(f.ctx, f.hotel.ID, f.room101.ID, models.RoomCleaning, &notes)
	require.NoError(t, err)
	assert.Equal(t, models.RoomCleaning, room.Status)
	assert.Equal(t, notes, room.Notes)

	r := f.mustBook(t, f.room101, "2024-06-01", "2024-06-02")
	_, err = f.svcs.Stays.CheckIn(f.ctx, f.hotel.ID, r.ID, CheckInInput{})
	require.NoError(t, err)

	// housekeeping cannot release a room with a guest in it
	_, err = f.svcs.Rooms.UpdateStatus(f.ctx, f.hotel.ID, f.room101.ID, models.RoomAvailable, nil)
	requireKind(t, err, KindConflict, "error.roomInUse")
	assert.Equal(t, models.RoomOccupied, f.roomStatus(t, f.room101.ID))

	occupied := models.RoomOccupied
	list, err := f.svcs.Rooms.List(f.ctx, f.hotel.ID, repository.RoomFilter{Status: &occupied})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "101", list[0].RoomNumber)
}

func TestGuest_CreateSearchUpdate(t *testing.T) {
	f := newFixture(t, Policy{})
	assert.Equal(t, "ada@example.com", f.guest.Email)

	dob := time.Date(1990, 3, 4, 15, 30, 0, 0, time.UTC)
	vip, err := f.svcs.Guests.Create(f.ctx, f.hotel.ID, GuestInput{
		FirstName: "Grace", LastName: "Hopper", Nationality: "us", DocumentNumber: "P123", VIPStatus: true, DateOfBirth: &dob,
	})
	require.NoError(t, err)
	assert.Equal(t, "US", vip.Nationality)
	require.NotNil(t, vip.DateOfBirth)
	assert.Equal(t, time.Date(1990, 3, 4, 0, 0, 0, 0, time.UTC), *vip.DateOfBirth)

	_, err = f.svcs.Guests.Create(f.ctx, f.hotel.ID, GuestInput{FirstName: "NoLast"})
	requireKind(t, err, KindValidation, "error.nameRequired")

	found, err := f.svcs.Guests.List(f.ctx, f.hotel.ID, repository.GuestFilter{Search: "p123"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, vip.ID, found[0].ID)

	yes := true
	found, err = f.svcs.Guests.List(f.ctx, f.hotel.ID, repository.GuestFilter{VIP: &yes})
	require.NoError(t, err)
	require.Len(t, found, 1)

	updated, err := f.svcs.Guests.Update(f.ctx, f.hotel.ID, f.guest.ID, GuestInput{FirstName: "Ada", LastName: "King", Phone: " +44 20 "})
	require.NoError(t, err)
	assert.Equal(t, "King", updated.LastName)
	assert.Equal(t, "+44 20", updated.Phone)
	assert.Empty(t, updated.Email, "update replaces the whole profile")

	_, err = f.svcs.Guests.Get(f.ctx, f.hotel.ID, 999)
	requireKind(t, err, KindNotFound, "error.guestNotFound")
}
