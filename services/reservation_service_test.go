package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/models"
	"hotel-pms/repository"
)

// Room 101: book 06-01 -> 06-04 at 100, reject 06-03 -> 06-05, accept
// 06-04 -> 06-06.
func TestReservation_BookingSequence(t *testing.T) {
	f := newFixture(t, Policy{})

	first := f.mustBook(t, f.room101, "2024-06-01", "2024-06-04")
	assert.Equal(t, models.StatusConfirmed, first.Status)
	assert.Equal(t, models.PaymentPending, first.PaymentStatus)
	assert.Equal(t, 3, first.Nights)
	assert.True(t, dec("100").Equal(first.RoomRate))
	assert.True(t, dec("300").Equal(first.TotalAmount))
	assert.Equal(t, "RSV-000001", first.ReservationNumber)
	assert.Equal(t, "USD", first.Currency)

	_, err := f.book(t, f.room101, "2024-06-03", "2024-06-05")
	se := requireKind(t, err, KindConflict, "error.roomUnavailable")
	conflicts, ok := se.Details["conflicts"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, conflicts, 1)
	assert.Equal(t, first.ID, conflicts[0]["reservation_id"])

	second := f.mustBook(t, f.room101, "2024-06-04", "2024-06-06")
	assert.Equal(t, "RSV-000002", second.ReservationNumber)
	assert.Equal(t, []string{EventReservationCreated, EventReservationCreated}, f.events.keys())
}

func TestReservation_CreateValidation(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx, hotelID := f.ctx, f.hotel.ID
	in := func(mod func(*CreateReservationInput)) CreateReservationInput {
		c := CreateReservationInput{
			RoomID:       f.room101.ID,
			GuestID:      f.guest.ID,
			CheckInDate:  day(t, "2024-06-01"),
			CheckOutDate: day(t, "2024-06-03"),
			Adults:       1,
		}
		mod(&c)
		return c
	}

	_, err := f.svcs.Reservations.Create(ctx, hotelID, in(func(c *CreateReservationInput) { c.CheckOutDate = c.CheckInDate }))
	requireKind(t, err, KindValidation, "error.invalidDates")

	_, err = f.svcs.Reservations.Create(ctx, hotelID, in(func(c *CreateReservationInput) { c.RoomID = 0 }))
	requireKind(t, err, KindValidation, "error.roomRequired")

	_, err = f.svcs.Reservations.Create(ctx, hotelID, in(func(c *CreateReservationInput) { c.Adults = 2; c.Children = 1 }))
	requireKind(t, err, KindValidation, "error.occupancyExceeded")

	_, err = f.svcs.Reservations.Create(ctx, hotelID, in(func(c *CreateReservationInput) { c.GuestID = 999 }))
	requireKind(t, err, KindNotFound, "error.guestNotFound")

	_, err = f.svcs.Reservations.Create(ctx, hotelID, in(func(c *CreateReservationInput) { c.RoomID = 999 }))
	requireKind(t, err, KindNotFound, "error.roomNotFound")

	_, err = f.svcs.Reservations.Create(ctx, hotelID, in(func(c *CreateReservationInput) { c.Currency = "GBP" }))
	requireKind(t, err, KindValidation, "error.rateRequired")

	_, err = f.svcs.Reservations.Create(ctx, hotelID, in(func(c *CreateReservationInput) { c.RoomRate = decPtr("-1") }))
	requireKind(t, err, KindValidation, "error.invalidRate")

	// another hotel's guest is not visible
	other, err := f.svcs.Hotels.Create(ctx, HotelInput{Name: "Other"})
	require.NoError(t, err)
	_, err = f.svcs.Reservations.Create(ctx, other.ID, in(func(c *CreateReservationInput) {}))
	requireKind(t, err, KindNotFound, "error.guestNotFound")

	list, err := f.svcs.Reservations.List(ctx, hotelID, repository.ReservationFilter{})
	require.NoError(t, err)
	assert.Empty(t, list, "rejected requests leave nothing behind")
}

func TestReservation_CreateExplicitRateAndCurrency(t *testing.T) {
	f := newFixture(t, Policy{})

	r, err := f.svcs.Reservations.Create(f.ctx, f.hotel.ID, CreateReservationInput{
		RoomID:       f.room101.ID,
		GuestID:      f.guest.ID,
		CheckInDate:  day(t, "2024-06-01"),
		CheckOutDate: day(t, "2024-06-04"),
		RoomRate:     decPtr("99.99"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Adults, "adults default to one")
	assert.True(t, dec("299.97").Equal(r.TotalAmount))

	r, err = f.svcs.Reservations.Create(f.ctx, f.hotel.ID, CreateReservationInput{
		RoomID:       f.room102.ID,
		GuestID:      f.guest.ID,
		CheckInDate:  day(t, "2024-06-01"),
		CheckOutDate: day(t, "2024-06-03"),
		Currency:     "EUR",
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", r.Currency)
	assert.True(t, dec("180").Equal(r.TotalAmount))
}

func TestReservation_OutOfServiceRoom(t *testing.T) {
	f := newFixture(t, Policy{})
	_, err := f.svcs.Rooms.UpdateStatus(f.ctx, f.hotel.ID, f.room101.ID, models.RoomOutOfOrder, nil)
	require.NoError(t, err)

	_, err = f.book(t, f.room101, "2024-06-01", "2024-06-02")
	requireKind(t, err, KindConflict, "error.roomOutOfService")

	// cleaning rooms are still sellable
	_, err = f.svcs.Rooms.UpdateStatus(f.ctx, f.hotel.ID, f.room101.ID, models.RoomCleaning, nil)
	require.NoError(t, err)
	f.mustBook(t, f.room101, "2024-06-01", "2024-06-02")
}

func TestReservation_ConcurrentDoubleBooking(t *testing.T) {
	f := newFixture(t, Policy{})

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			// staggered but overlapping ranges on the same room
			from := time.Date(2024, 7, 10+i%3, 0, 0, 0, 0, time.UTC)
			_, err := f.svcs.Reservations.Create(context.Background(), f.hotel.ID, CreateReservationInput{
				RoomID:       f.room101.ID,
				GuestID:      f.guest.ID,
				CheckInDate:  from,
				CheckOutDate: from.AddDate(0, 0, 3),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case KindOf(err) == KindConflict:
				conflicts++
			default:
				t.Errorf("attempt %d: unexpected error %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)

	list, err := f.svcs.Reservations.List(f.ctx, f.hotel.ID, repository.ReservationFilter{RoomID: &f.room101.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestReservation_NoOverlapInvariant(t *testing.T) {
	f := newFixture(t, Policy{})
	ranges := [][2]string{
		{"2024-08-01", "2024-08-05"},
		{"2024-08-04", "2024-08-06"},
		{"2024-08-05", "2024-08-07"},
		{"2024-07-30", "2024-08-02"},
		{"2024-08-07", "2024-08-08"},
		{"2024-08-06", "2024-08-09"},
	}
	for _, rg := range ranges {
		_, _ = f.book(t, f.room101, rg[0], rg[1])
	}
	list, err := f.svcs.Reservations.List(f.ctx, f.hotel.ID, repository.ReservationFilter{RoomID: &f.room101.ID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := range list {
		for j := i + 1; j < len(list); j++ {
			a, b := list[i], list[j]
			assert.False(t, Overlaps(a.CheckInDate, a.CheckOutDate, b.CheckInDate, b.CheckOutDate),
				fmt.Sprintf("%s overlaps %s", a.ReservationNumber, b.ReservationNumber))
		}
	}
}

func TestReservation_Update(t *testing.T) {
	f := newFixture(t, Policy{})
	r := f.mustBook(t, f.room101, "2024-06-01", "2024-06-04")
	f.mustBook(t, f.room102, "2024-06-01", "2024-06-03")

	newOut := day(t, "2024-06-06")
	updated, err := f.svcs.Reservations.Update(f.ctx, f.hotel.ID, r.ID, UpdateReservationInput{CheckOutDate: &newOut})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Nights)
	assert.True(t, dec("500").Equal(updated.TotalAmount))

	rate := dec("80")
	updated, err = f.svcs.Reservations.Update(f.ctx, f.hotel.ID, r.ID, UpdateReservationInput{RoomRate: &rate})
	require.NoError(t, err)
	assert.True(t, dec("400").Equal(updated.TotalAmount))

	// moving into a room that is taken on 06-01..06-03 fails
	_, err = f.svcs.Reservations.Update(f.ctx, f.hotel.ID, r.ID, UpdateReservationInput{RoomID: &f.room102.ID})
	requireKind(t, err, KindConflict, "error.roomUnavailable")

	badOut := day(t, "2024-06-01")
	_, err = f.svcs.Reservations.Update(f.ctx, f.hotel.ID, r.ID, UpdateReservationInput{CheckOutDate: &badOut})
	requireKind(t, err, KindValidation, "error.invalidDates")

	zero := 0
	_, err = f.svcs.Reservations.Update(f.ctx, f.hotel.ID, r.ID, UpdateReservationInput{Adults: &zero})
	requireKind(t, err, KindValidation, "error.invalidGuests")

	eur := "EUR"
	updated, err = f.svcs.Reservations.Update(f.ctx, f.hotel.ID, r.ID, UpdateReservationInput{Currency: &eur})
	require.NoError(t, err)
	assert.Equal(t, "EUR", updated.Currency)
	assert.True(t, dec("90").Equal(updated.RoomRate))
	assert.True(t, dec("450").Equal(updated.TotalAmount))

	got, err := f.svcs.Reservations.Get(f.ctx, f.hotel.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.TotalAmount.String(), got.TotalAmount.String())
}

func TestReservation_UpdateAfterCheckIn(t *testing.T) {
	f := newFixture(t, Policy{})
	r := f.mustBook(t, f.room101, "2024-06-01", "2024-06-04")
	_, err := f.svcs.Stays.CheckIn(f.ctx, f.hotel.ID, r.ID, CheckInInput{})
	require.NoError(t, err)

	newIn := day(t, "2024-06-02")
	_, err = f.svcs.Reservations.Update(f.ctx, f.hotel.ID, r.ID, UpdateReservationInput{CheckInDate: &newIn})
	requireKind(t, err, KindValidation, "error.fieldLocked")

	newOut := day(t, "2024-06-05")
	updated, err := f.svcs.Reservations.Update(f.ctx, f.hotel.ID, r.ID, UpdateReservationInput{CheckOutDate: &newOut})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Nights)
	assert.Equal(t, models.StatusCheckedIn, updated.Status)
}

func TestReservation_CancelFreesRoom(t *testing.T) {
	f := newFixture(t, Policy{})
	r := f.mustBook(t, f.room101, "2024-06-01", "2024-06-04")

	cancelled, err := f.svcs.Reservations.Cancel(f.ctx, f.hotel.ID, r.ID, "guest request")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "guest request", cancelled.CancelReason)
	require.NotNil(t, cancelled.CancelledAt)

	ok, err := f.svcs.Availability.IsRoomAvailable(f.ctx, f.hotel.ID, f.room101.ID, day(t, "2024-06-01"), day(t, "2024-06-04"), 0)
	require.NoError(t, err)
	assert.True(t, ok)

	out, err := f.svcs.Availability.Search(f.ctx, f.hotel.ID, SearchQuery{CheckIn: day(t, "2024-06-01"), CheckOut: day(t, "2024-06-04"), Adults: 1})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Len(t, out[0].Rooms, 2)

	_, err = f.svcs.Reservations.Cancel(f.ctx, f.hotel.ID, r.ID, "")
	requireKind(t, err, KindInvalidTransition, "error.invalidTransition")

	newOut := day(t, "2024-06-05")
	_, err = f.svcs.Reservations.Update(f.ctx, f.hotel.ID, r.ID, UpdateReservationInput{CheckOutDate: &newOut})
	requireKind(t, err, KindConflict, "error.reservationClosed")

	f.mustBook(t, f.room101, "2024-06-01", "2024-06-04")
}

func TestReservation_CancelAfterCheckIn(t *testing.T) {
	f := newFixture(t, Policy{})
	r := f.mustBook(t, f.room101, "2024-06-01", "2024-06-04")
	_, err := f.svcs.Stays.CheckIn(f.ctx, f.hotel.ID, r.ID, CheckInInput{})
	require.NoError(t, err)
	require.Equal(t, models.RoomOccupied, f.roomStatus(t, f.room101.ID))

	_, err = f.svcs.Reservations.Cancel(f.ctx, f.hotel.ID, r.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.RoomCleaning, f.roomStatus(t, f.room101.ID))

	strict := newFixture(t, Policy{ForbidCancelAfterCheckIn: true})
	r = strict.mustBook(t, strict.room101, "2024-06-01", "2024-06-04")
	_, err = strict.svcs.Stays.CheckIn(strict.ctx, strict.hotel.ID, r.ID, CheckInInput{})
	require.NoError(t, err)
	_, err = strict.svcs.Reservations.Cancel(strict.ctx, strict.hotel.ID, r.ID, "")
	requireKind(t, err, KindInvalidTransition, "")
	assert.Equal(t, models.RoomOccupied, strict.roomStatus(t, strict.room101.ID))
}

func TestReservation_MarkNoShow(t *testing.T) {
	f := newFixture(t, Policy{})
	r := f.mustBook(t, f.room101, "2024-06-01", "2024-06-04")

	marked, err := f.svcs.Reservations.MarkNoShow(f.ctx, f.hotel.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoShow, marked.Status)
	assert.Equal(t, models.RoomAvailable, f.roomStatus(t, f.room101.ID))

	_, err = f.svcs.Reservations.MarkNoShow(f.ctx, f.hotel.ID, r.ID)
	requireKind(t, err, KindInvalidTransition, "")

	_, err = f.svcs.Reservations.MarkNoShow(f.ctx, f.hotel.ID, 999)
	requireKind(t, err, KindNotFound, "error.reservationNotFound")
}

func TestReservation_ListFilters(t *testing.T) {
	f := newFixture(t, Policy{})
	a := f.mustBook(t, f.room101, "2024-06-01", "2024-06-04")
	f.mustBook(t, f.room102, "2024-06-10", "2024-06-12")
	_, err := f.svcs.Reservations.Cancel(f.ctx, f.hotel.ID, a.ID, "")
	require.NoError(t, err)

	list, err := f.svcs.Reservations.List(f.ctx, f.hotel.ID, repository.ReservationFilter{
		Statuses: []models.ReservationStatus{models.StatusConfirmed},
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.room102.ID, list[0].RoomID)

	list, err = f.svcs.Reservations.List(f.ctx, f.hotel.ID, repository.ReservationFilter{
		StayFrom: day(t, "2024-06-03"),
		StayTo:   day(t, "2024-06-05"),
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	_, err = f.svcs.Reservations.List(f.ctx, f.hotel.ID, repository.ReservationFilter{
		Statuses: []models.ReservationStatus{"BOGUS"},
	})
	requireKind(t, err, KindValidation, "error.invalidStatus")
}

func TestReservation_RatePrecision(t *testing.T) {
	f := newFixture(t, Policy{})
	in := CreateReservationInput{
		RoomID:       f.room101.ID,
		GuestID:      f.guest.ID,
		CheckInDate:  day(t, "2024-06-01"),
		CheckOutDate: day(t, "2024-06-04"),
		Adults:       1,
	}

	in.RoomRate = decPtr("33.335")
	_, err := f.svcs.Reservations.Create(f.ctx, f.hotel.ID, in)
	requireKind(t, err, KindValidation, "error.invalidRate")

	// trailing zeros are still whole cents
	in.RoomRate = decPtr("33.330")
	r, err := f.svcs.Reservations.Create(f.ctx, f.hotel.ID, in)
	require.NoError(t, err)
	assert.True(t, dec("33.33").Equal(r.RoomRate))
	assert.True(t, r.RoomRate.Mul(dec("3")).Equal(r.TotalAmount), "total %s", r.TotalAmount)

	_, err = f.svcs.Reservations.Update(f.ctx, f.hotel.ID, r.ID, UpdateReservationInput{RoomRate: decPtr("12.345")})
	requireKind(t, err, KindValidation, "error.invalidRate")
	got, err := f.svcs.Reservations.Get(f.ctx, f.hotel.ID, r.ID)
	require.NoError(t, err)
	assert.True(t, dec("99.99").Equal(got.TotalAmount), "rejected update leaves the total alone")

	_, err = f.svcs.RoomTypes.Create(f.ctx, f.hotel.ID, RoomTypeInput{
		Name: "Deluxe", MaxOccupancy: 2,
		BaseRates: map[string]decimal.Decimal{"USD": dec("149.999")},
	})
	requireKind(t, err, KindValidation, "error.invalidRate")
}
