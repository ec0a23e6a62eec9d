package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-pms/repository"
)

// Deps are the collaborators shared by the services. Store is required;
// everything else has a usable default.
type Deps struct {
	Store  repository.Store
	Locker RoomLocker
	Events EventPublisher
	Log    logrus.FieldLogger
	Policy Policy
	Now    func() time.Time

	// Defaults for new hotels.
	DefaultCurrency string
	DefaultTaxRate  decimal.Decimal
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Locker == nil {
		d.Locker = NewLocalRoomLocker()
	}
	if d.Events == nil {
		d.Events = LogPublisher{Log: d.Log}
	}
	if d.DefaultCurrency == "" {
		d.DefaultCurrency = "USD"
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// publish sends an event after commit. Failures are logged, never returned.
func (d Deps) publish(ctx context.Context, key string, payload interface{}) {
	if err := d.Events.Publish(ctx, key, payload); err != nil {
		d.Log.WithError(err).WithField("event", key).Warn("event publish failed")
	}
}

// Services bundles every service built from one Deps so they share the
// same room locker and publisher.
type Services struct {
	Hotels          *HotelService
	RoomTypes       *RoomTypeService
	Rooms           *RoomService
	Guests          *GuestService
	Availability    *AvailabilityService
	Reservations    *ReservationService
	Stays           *StayService
	Billing         *BillingService
	ServiceRequests *ServiceRequestService
	Reports         *ReportService
}

func New(deps Deps) *Services {
	deps = deps.withDefaults()
	billing := NewBillingService(deps)
	return &Services{
		Hotels:          NewHotelService(deps),
		RoomTypes:       NewRoomTypeService(deps),
		Rooms:           NewRoomService(deps),
		Guests:          NewGuestService(deps),
		Availability:    NewAvailabilityService(deps),
		Reservations:    NewReservationService(deps),
		Stays:           NewStayService(deps, billing),
		Billing:         billing,
		ServiceRequests: NewServiceRequestService(deps),
		Reports:         NewReportService(deps),
	}
}
