package services

import (
	"context"
	"strings"
	"time"

	"hotel-pms/models"
	"hotel-pms/repository"
	"hotel-pms/utils"
)

type GuestService struct {
	deps Deps
}

func NewGuestService(deps Deps) *GuestService {
	return &GuestService{deps: deps.withDefaults()}
}

type GuestInput struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	DocumentType    string
	DocumentNumber  string
	DocumentCountry string
	Nationality     string
	DateOfBirth     *time.Time
	VIPStatus       bool
	Address         string
	Notes           string
}

func (in GuestInput) apply(g *models.Guest) error {
	g.FirstName = strings.TrimSpace(in.FirstName)
	g.LastName = strings.TrimSpace(in.LastName)
	if g.FirstName == "" || g.LastName == "" {
		return validationError("error.nameRequired", "first_name and last_name are required")
	}
	g.Email = strings.ToLower(strings.TrimSpace(in.Email))
	g.Phone = strings.TrimSpace(in.Phone)
	g.DocumentType = strings.TrimSpace(in.DocumentType)
	g.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	g.DocumentCountry = strings.ToUpper(strings.TrimSpace(in.DocumentCountry))
	g.Nationality = strings.ToUpper(strings.TrimSpace(in.Nationality))
	g.VIPStatus = in.VIPStatus
	g.Address = in.Address
	g.Notes = in.Notes
	g.DateOfBirth = nil
	if in.DateOfBirth != nil {
		dob := utils.DateOnly(*in.DateOfBirth)
		g.DateOfBirth = &dob
	}
	return nil
}

// ----------------------------------------------------
// CREATE
// ----------------------------------------------------
func (s *GuestService) Create(ctx context.Context, hotelID uint, in GuestInput) (*models.Guest, error) {
	g := &models.Guest{HotelID: hotelID}
	if err := in.apply(g); err != nil {
		return nil, err
	}
	if err := s.deps.Store.CreateGuest(ctx, g); err != nil {
		return nil, internalError("create guest", err)
	}
	entry := s.deps.Log.WithField("hotel_id", hotelID).WithField("guest_id", g.ID)
	if g.Email == "" {
		entry.Warn("guest created without an email")
	} else {
		entry.Infof("guest created (%s)", utils.MaskEmail(g.Email))
	}
	return g, nil
}

// ----------------------------------------------------
// READ
// ----------------------------------------------------
func (s *GuestService) Get(ctx context.Context, hotelID, id uint) (*models.Guest, error) {
	g, err := s.deps.Store.GetGuest(ctx, hotelID, id)
	if err != nil {
		return nil, lookupError(err, "error.guestNotFound", "guest not found", "get guest")
	}
	return g, nil
}

func (s *GuestService) List(ctx context.Context, hotelID uint, f repository.GuestFilter) ([]models.Guest, error) {
	out, err := s.deps.Store.ListGuests(ctx, hotelID, f)
	if err != nil {
		return nil, internalError("list guests", err)
	}
	return out, nil
}

// ----------------------------------------------------
// UPDATE (full replace of the editable profile)
// ----------------------------------------------------
func (s *GuestService) Update(ctx context.Context, hotelID, id uint, in GuestInput) (*models.Guest, error) {
	g, err := s.Get(ctx, hotelID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(g); err != nil {
		return nil, err
	}
	if err := s.deps.Store.UpdateGuest(ctx, g); err != nil {
		return nil, lookupError(err, "error.guestNotFound", "guest not found", "update guest")
	}
	s.deps.Log.WithField("hotel_id", hotelID).WithField("guest_id", id).Info("guest updated")
	return g, nil
}

// Guests are never deleted: reservations and invoices keep pointing at them.
