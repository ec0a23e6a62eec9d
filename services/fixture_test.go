package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"hotel-pms/models"
	"hotel-pms/repository"
	"hotel-pms/utils"
)

type recordedEvent struct {
	key     string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{key: key, payload: payload})
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.key)
	}
	return out
}

type fixture struct {
	ctx    context.Context
	store  *repository.MemoryStore
	svcs   *Services
	events *recordingPublisher

	hotel    *models.Hotel
	standard *models.RoomType
	suite    *models.RoomType
	room101  *models.Room
	room102  *models.Room
	room201  *models.Room
	guest    *models.Guest
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(s)
	require.NoError(t, err)
	return d
}

// newFixture builds a hotel with a 10% tax rate, a Standard type (2 guests,
// 100 USD) holding rooms 101 and 102, and a Suite type (4 guests, 250 USD)
// holding room 201.
func newFixture(t *testing.T, policy Policy) *fixture {
	t.Helper()
	f := &fixture{
		ctx:    context.Background(),
		store:  repository.NewMemoryStore(),
		events: &recordingPublisher{},
	}
	f.svcs = New(Deps{
		Store:  f.store,
		Events: f.events,
		Log:    quietLogger(),
		Policy: policy,
	})

	var err error
	f.hotel, err = f.svcs.Hotels.Create(f.ctx, HotelInput{Name: "Test Hotel", DefaultCurrency: "USD", TaxRate: decPtr("10")})
	require.NoError(t, err)

	f.standard, err = f.svcs.RoomTypes.Create(f.ctx, f.hotel.ID, RoomTypeInput{
		Name: "Standard", MaxOccupancy: 2,
		BaseRates: map[string]decimal.Decimal{"USD": dec("100"), "EUR": dec("90")},
	})
	require.NoError(t, err)
	f.suite, err = f.svcs.RoomTypes.Create(f.ctx, f.hotel.ID, RoomTypeInput{
		Name: "Suite", MaxOccupancy: 4,
		BaseRates: map[string]decimal.Decimal{"USD": dec("250")},
	})
	require.NoError(t, err)

	f.room101 = f.mustRoom(t, "101", f.standard.ID)
	f.room102 = f.mustRoom(t, "102", f.standard.ID)
	f.room201 = f.mustRoom(t, "201", f.suite.ID)

	f.guest, err = f.svcs.Guests.Create(f.ctx, f.hotel.ID, GuestInput{FirstName: "Ada", LastName: "Lovelace", Email: "Ada@Example.com"})
	require.NoError(t, err)
	return f
}

func (f *fixture) mustRoom(t *testing.T, number string, typeID uint) *models.Room {
	t.Helper()
	room, err := f.svcs.Rooms.Create(f.ctx, f.hotel.ID, RoomInput{RoomNumber: number, RoomTypeID: typeID})
	require.NoError(t, err)
	return room
}

func (f *fixture) book(t *testing.T, room *models.Room, from, to string) (*models.Reservation, error) {
	t.Helper()
	return f.svcs.Reservations.Create(f.ctx, f.hotel.ID, CreateReservationInput{
		RoomID:       room.ID,
		GuestID:      f.guest.ID,
		CheckInDate:  day(t, from),
		CheckOutDate: day(t, to),
		Adults:       2,
	})
}

func (f *fixture) mustBook(t *testing.T, room *models.Room, from, to string) *models.Reservation {
	t.Helper()
	r, err := f.book(t, room, from, to)
	require.NoError(t, err)
	return r
}

func (f *fixture) roomStatus(t *testing.T, id uint) models.RoomStatus {
	t.Helper()
	room, err := f.svcs.Rooms.Get(f.ctx, f.hotel.ID, id)
	require.NoError(t, err)
	return room.Status
}

// requireKind asserts err is a service error of the given kind and code.
func requireKind(t *testing.T, err error, kind ErrorKind, code string) *Error {
	t.Helper()
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se), "expected *Error, got %T: %v", err, err)
	require.Equal(t, kind, se.Kind, se.Error())
	if code != "" {
		require.Equal(t, code, se.Code)
	}
	return se
}
