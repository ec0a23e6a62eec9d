package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/utils"
)

type checkInPayload struct {
	RoomID       *uint  `json:"room_id"`
	KeyCardCount int    `json:"key_card_count" binding:"omitempty,min=1,max=10"`
	Notes        string `json:"notes"`
}

type chargePayload struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type checkOutPayload struct {
	Charges         []chargePayload      `json:"charges" binding:"dive"`
	RoomCondition   models.RoomCondition `json:"room_condition"`
	Notes           string               `json:"notes"`
	GenerateInvoice *bool                `json:"generate_invoice"`
}

type StayController struct {
	StaySvc *services.StayService
}

func NewStayController(svc *services.StayService) *StayController {
	return &StayController{StaySvc: svc}
}

// POST /api/hotels/:hotelID/reservations/:id/check-in
func (sc *StayController) CheckIn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p checkInPayload
	if !bindOptionalJSON(c, &p) {
		return
	}
	out, err := sc.StaySvc.CheckIn(c.Request.Context(), hotelIDFrom(c), id, services.CheckInInput{
		RoomID:       p.RoomID,
		KeyCardCount: p.KeyCardCount,
		Notes:        p.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}

// POST /api/hotels/:hotelID/reservations/:id/check-out
func (sc *StayController) CheckOut(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p checkOutPayload
	if !bindOptionalJSON(c, &p) {
		return
	}
	charges := make([]services.LineInput, 0, len(p.Charges))
	for _, ch := range p.Charges {
		qty := ch.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		charges = append(charges, services.LineInput{
			Kind:        models.ItemCharge,
			Description: ch.Description,
			Quantity:    qty,
			UnitPrice:   ch.UnitPrice,
		})
	}
	out, err := sc.StaySvc.CheckOut(c.Request.Context(), hotelIDFrom(c), id, services.CheckOutInput{
		Charges:         charges,
		RoomCondition:   p.RoomCondition,
		Notes:           p.Notes,
		GenerateInvoice: p.GenerateInvoice,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}
