package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hotel-pms/models"
	"hotel-pms/repository"
	"hotel-pms/services"
	"hotel-pms/utils"
)

type serviceRequestPayload struct {
	ReservationID uint                   `json:"reservation_id" binding:"required"`
	Category      models.ServiceCategory `json:"category" binding:"omitempty,service_category"`
	Description   string                 `json:"description" binding:"required"`
	Amount        decimal.Decimal        `json:"amount"`
}

type completeRequestPayload struct {
	Amount *decimal.Decimal `json:"amount"`
}

type ServiceRequestController struct {
	RequestSvc *services.ServiceRequestService
}

func NewServiceRequestController(svc *services.ServiceRequestService) *ServiceRequestController {
	return &ServiceRequestController{RequestSvc: svc}
}

// POST /api/hotels/:hotelID/service-requests
func (sc *ServiceRequestController) CreateServiceRequest(c *gin.Context) {
	var p serviceRequestPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	req, err := sc.RequestSvc.Create(c.Request.Context(), hotelIDFrom(c), services.ServiceRequestInput{
		ReservationID: p.ReservationID,
		Category:      p.Category,
		Description:   p.Description,
		Amount:        p.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, req)
}

// GET /api/hotels/:hotelID/service-requests?reservation_id=&status=
func (sc *ServiceRequestController) GetServiceRequests(c *gin.Context) {
	var f repository.ServiceRequestFilter
	var ok bool
	if f.ReservationID, ok = queryUint(c, "reservation_id"); !ok {
		return
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		st := models.ServiceRequestStatus(strings.ToUpper(raw))
		f.Status = &st
	}
	list, err := sc.RequestSvc.List(c.Request.Context(), hotelIDFrom(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// POST /api/hotels/:hotelID/service-requests/:id/complete
func (sc *ServiceRequestController) CompleteServiceRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p completeRequestPayload
	if !bindOptionalJSON(c, &p) {
		return
	}
	req, err := sc.RequestSvc.Complete(c.Request.Context(), hotelIDFrom(c), id, p.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, req)
}

// POST /api/hotels/:hotelID/service-requests/:id/cancel
func (sc *ServiceRequestController) CancelServiceRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, err := sc.RequestSvc.Cancel(c.Request.Context(), hotelIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, req)
}
