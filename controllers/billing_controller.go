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

type invoiceItemPayload struct {
	Kind        models.ItemKind `json:"kind"`
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type paymentPayload struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
}

type createInvoicePayload struct {
	Source        models.InvoiceSource `json:"source"`
	ReservationID *uint                `json:"reservation_id"`
	GuestID       *uint                `json:"guest_id"`
	Currency      string               `json:"currency" binding:"omitempty,iso4217"`
	Notes         string               `json:"notes"`
	Items         []invoiceItemPayload `json:"items" binding:"required,min=1,dive"`
	Payment       *paymentPayload      `json:"payment"`
}

type refundPayload struct {
	Reason string `json:"reason"`
	Method string `json:"method"`
}

type BillingController struct {
	BillingSvc *services.BillingService
}

func NewBillingController(svc *services.BillingService) *BillingController {
	return &BillingController{BillingSvc: svc}
}

func (p paymentPayload) input() services.PaymentInput {
	return services.PaymentInput{Amount: p.Amount, Method: p.Method, Reference: p.Reference}
}

// POST /api/hotels/:hotelID/invoices
func (bc *BillingController) CreateInvoice(c *gin.Context) {
	var p createInvoicePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	in := services.CreateInvoiceInput{
		Source:        models.InvoiceSource(strings.ToUpper(string(p.Source))),
		ReservationID: p.ReservationID,
		GuestID:       p.GuestID,
		Currency:      p.Currency,
		Notes:         p.Notes,
	}
	for _, it := range p.Items {
		qty := it.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		in.Items = append(in.Items, services.LineInput{
			Kind:        it.Kind,
			Description: it.Description,
			Quantity:    qty,
			UnitPrice:   it.UnitPrice,
		})
	}
	if p.Payment != nil {
		pay := p.Payment.input()
		in.Payment = &pay
	}
	inv, err := bc.BillingSvc.CreateInvoice(c.Request.Context(), hotelIDFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, inv)
}

// GET /api/hotels/:hotelID/invoices?reservation_id=&status=&from=&to=
func (bc *BillingController) GetInvoices(c *gin.Context) {
	var f repository.InvoiceFilter
	var ok bool
	if f.ReservationID, ok = queryUint(c, "reservation_id"); !ok {
		return
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		st := models.InvoiceStatus(strings.ToUpper(raw))
		f.Status = &st
	}
	if f.IssuedFrom, ok = queryDate(c, "from", false); !ok {
		return
	}
	to, ok := queryDate(c, "to", false)
	if !ok {
		return
	}
	if !to.IsZero() {
		// inclusive end date
		f.IssuedTo = to.AddDate(0, 0, 1)
	}
	list, err := bc.BillingSvc.List(c.Request.Context(), hotelIDFrom(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GET /api/hotels/:hotelID/invoices/:id
func (bc *BillingController) GetInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	inv, err := bc.BillingSvc.Get(c.Request.Context(), hotelIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}

// POST /api/hotels/:hotelID/invoices/:id/payments
func (bc *BillingController) RecordPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p paymentPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	inv, err := bc.BillingSvc.RecordPayment(c.Request.Context(), hotelIDFrom(c), id, p.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, inv)
}

// POST /api/hotels/:hotelID/invoices/:id/refund
func (bc *BillingController) RefundInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p refundPayload
	if !bindOptionalJSON(c, &p) {
		return
	}
	inv, err := bc.BillingSvc.RefundInvoice(c.Request.Context(), hotelIDFrom(c), id, strings.TrimSpace(p.Reason), p.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}
