package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"hotel-pms/models"
	"hotel-pms/repository"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// HotelService manages the tenant records and their floors.
type HotelService struct {
	deps Deps
}

func NewHotelService(deps Deps) *HotelService {
	return &HotelService{deps: deps.withDefaults()}
}

type HotelInput struct {
	Name            string
	Address         string
	Phone           string
	Email           string
	Website         string
	DefaultCurrency string
	TaxRate         *decimal.Decimal
	CheckInTime     string
	CheckOutTime    string
}

func (in HotelInput) apply(h *models.Hotel) error {
	h.Name = strings.TrimSpace(in.Name)
	if h.Name == "" {
		return validationError("error.nameRequired", "name is required")
	}
	if in.TaxRate != nil {
		if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(hundred) {
			return validationError("error.invalidTaxRate", "tax_rate must be between 0 and 100")
		}
		h.TaxRate = *in.TaxRate
	}
	h.Address = in.Address
	h.Phone = in.Phone
	h.Email = strings.TrimSpace(in.Email)
	h.Website = in.Website
	if in.DefaultCurrency != "" {
		h.DefaultCurrency = strings.ToUpper(in.DefaultCurrency)
	}
	for _, t := range []*string{&in.CheckInTime, &in.CheckOutTime} {
		if *t != "" && !clockPattern.MatchString(*t) {
			return validationError("error.invalidTime", "check-in/check-out times must be HH:MM")
		}
	}
	if in.CheckInTime != "" {
		h.CheckInTime = in.CheckInTime
	}
	if in.CheckOutTime != "" {
		h.CheckOutTime = in.CheckOutTime
	}
	return nil
}

func (s *HotelService) Create(ctx context.Context, in HotelInput) (*models.Hotel, error) {
	h := &models.Hotel{
		DefaultCurrency: s.deps.DefaultCurrency,
		TaxRate:         s.deps.DefaultTaxRate,
		CheckInTime:     "14:00",
		CheckOutTime:    "12:00",
	}
	if err := in.apply(h); err != nil {
		return nil, err
	}
	if err := s.deps.Store.CreateHotel(ctx, h); err != nil {
		return nil, internalError("create hotel", err)
	}
	s.deps.Log.WithField("hotel_id", h.ID).Infof("hotel %q created", h.Name)
	return h, nil
}

func (s *HotelService) Get(ctx context.Context, id uint) (*models.Hotel, error) {
	h, err := s.deps.Store.GetHotel(ctx, id)
	if err != nil {
		return nil, lookupError(err, "error.hotelNotFound", "hotel not found", "get hotel")
	}
	return h, nil
}

func (s *HotelService) List(ctx context.Context) ([]models.Hotel, error) {
	out, err := s.deps.Store.ListHotels(ctx)
	if err != nil {
		return nil, internalError("list hotels", err)
	}
	return out, nil
}

func (s *HotelService) Update(ctx context.Context, id uint, in HotelInput) (*models.Hotel, error) {
	h, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(h); err != nil {
		return nil, err
	}
	if err := s.deps.Store.UpdateHotel(ctx, h); err != nil {
		return nil, lookupError(err, "error.hotelNotFound", "hotel not found", "update hotel")
	}
	return h, nil
}

// ---------------------------
// Floors
// ---------------------------

func (s *HotelService) CreateFloor(ctx context.Context, hotelID uint, number int, name string) (*models.Floor, error) {
	f := &models.Floor{HotelID: hotelID, Number: number, Name: strings.TrimSpace(name)}
	if err := s.deps.Store.CreateFloor(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError("error.floorExists", "floor number already exists", nil)
		}
		return nil, internalError("create floor", err)
	}
	return f, nil
}

func (s *HotelService) ListFloors(ctx context.Context, hotelID uint) ([]models.Floor, error) {
	out, err := s.deps.Store.ListFloors(ctx, hotelID)
	if err != nil {
		return nil, internalError("list floors", err)
	}
	return out, nil
}
