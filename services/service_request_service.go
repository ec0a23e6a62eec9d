package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"hotel-pms/models"
	"hotel-pms/repository"
)

// ServiceRequestService tracks housekeeping and guest service requests.
// Completed requests with an amount end up on the checkout invoice.
type ServiceRequestService struct {
	deps Deps
}

func NewServiceRequestService(deps Deps) *ServiceRequestService {
	return &ServiceRequestService{deps: deps.withDefaults()}
}

type ServiceRequestInput struct {
	ReservationID uint
	Category      models.ServiceCategory
	Description   string
	Amount        decimal.Decimal
}

func (s *ServiceRequestService) Create(ctx context.Context, hotelID uint, in ServiceRequestInput) (*models.ServiceRequest, error) {
	if in.Category == "" {
		in.Category = models.CategoryOther
	}
	if !in.Category.Valid() {
		return nil, validationError("error.invalidCategory", "unknown category "+string(in.Category))
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, validationError("error.descriptionRequired", "description is required")
	}
	if in.Amount.IsNegative() {
		return nil, validationError("error.invalidAmount", "amount must not be negative")
	}
	r, err := s.deps.Store.GetReservation(ctx, hotelID, in.ReservationID)
	if err != nil {
		return nil, lookupError(err, "error.reservationNotFound", "reservation not found", "get reservation")
	}
	if r.Status != models.StatusConfirmed && r.Status != models.StatusCheckedIn {
		return nil, conflictError("error.reservationClosed", "requests can only be added to confirmed or checked-in reservations",
			map[string]interface{}{"status": r.Status})
	}
	req := &models.ServiceRequest{
		HotelID:       hotelID,
		ReservationID: r.ID,
		RoomID:        r.RoomID,
		Category:      in.Category,
		Description:   desc,
		Amount:        in.Amount.Round(2),
		Status:        models.RequestOpen,
	}
	if err := s.deps.Store.CreateServiceRequest(ctx, req); err != nil {
		return nil, internalError("create service request", err)
	}
	s.deps.Log.WithField("hotel_id", hotelID).WithField("reservation_id", r.ID).
		Infof("service request %d (%s) opened", req.ID, req.Category)
	return req, nil
}

func (s *ServiceRequestService) List(ctx context.Context, hotelID uint, f repository.ServiceRequestFilter) ([]models.ServiceRequest, error) {
	out, err := s.deps.Store.ListServiceRequests(ctx, hotelID, f)
	if err != nil {
		return nil, internalError("list service requests", err)
	}
	return out, nil
}

// Complete closes an OPEN request. amount, when given, replaces the quoted
// amount.
func (s *ServiceRequestService) Complete(ctx context.Context, hotelID, id uint, amount *decimal.Decimal) (*models.ServiceRequest, error) {
	if amount != nil && amount.IsNegative() {
		return nil, validationError("error.invalidAmount", "amount must not be negative")
	}
	return s.close(ctx, hotelID, id, models.RequestCompleted, amount)
}

func (s *ServiceRequestService) Cancel(ctx context.Context, hotelID, id uint) (*models.ServiceRequest, error) {
	return s.close(ctx, hotelID, id, models.RequestCancelled, nil)
}

func (s *ServiceRequestService) close(ctx context.Context, hotelID, id uint, to models.ServiceRequestStatus, amount *decimal.Decimal) (*models.ServiceRequest, error) {
	var closed *models.ServiceRequest
	err := s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		req, err := tx.GetServiceRequest(ctx, hotelID, id)
		if err != nil {
			return lookupError(err, "error.serviceRequestNotFound", "service request not found", "get service request")
		}
		if req.Status != models.RequestOpen {
			return conflictError("error.serviceRequestClosed", "service request is already "+string(req.Status),
				map[string]interface{}{"status": req.Status})
		}
		req.Status = to
		if to == models.RequestCompleted {
			now := s.deps.Now()
			req.CompletedAt = &now
			if amount != nil {
				req.Amount = amount.Round(2)
			}
		}
		if err := tx.UpdateServiceRequest(ctx, req); err != nil {
			return err
		}
		closed = req
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "close service request")
	}
	s.deps.Log.WithField("hotel_id", hotelID).WithField("service_request_id", id).Infof("service request %s", to)
	return closed, nil
}
