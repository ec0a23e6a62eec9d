package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hotel-pms/models"
	"hotel-pms/repository"
	"hotel-pms/utils"
)

const (
	seqInvoice = "invoice"
	seqPayment = "payment"
)

// BillingService issues invoices and records payments and refunds against
// them. Numbers come from per-hotel sequences incremented inside the same
// transaction as the insert.
type BillingService struct {
	deps Deps
}

func NewBillingService(deps Deps) *BillingService {
	return &BillingService{deps: deps.withDefaults()}
}

type LineInput struct {
	Kind        models.ItemKind
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

func (l LineInput) validate(field string) error {
	if strings.TrimSpace(l.Description) == "" {
		return validationError("error.invalidCharge", field+": description is required")
	}
	if !l.Quantity.IsPositive() {
		return validationError("error.invalidCharge", field+": quantity must be positive")
	}
	if l.UnitPrice.IsNegative() {
		return validationError("error.invalidCharge", field+": unit_price must not be negative")
	}
	return nil
}

func newItem(kind models.ItemKind, description string, qty, unit, taxRate decimal.Decimal) models.InvoiceItem {
	line := qty.Mul(unit).Round(2)
	return models.InvoiceItem{
		Kind:        kind,
		Description: description,
		Quantity:    qty,
		UnitPrice:   unit,
		LineTotal:   line,
		TaxAmount:   LineTax(line, taxRate),
	}
}

// applyTotals sums the lines into the header. Tax is computed per line.
func applyTotals(inv *models.Invoice) {
	sub, tax := decimal.Zero, decimal.Zero
	for _, it := range inv.Items {
		sub = sub.Add(it.LineTotal)
		tax = tax.Add(it.TaxAmount)
	}
	inv.Subtotal = sub
	inv.TaxTotal = tax
	inv.Total = sub.Add(tax)
	inv.Status = invoiceStatusFor(inv.Total, inv.AmountPaid)
}

func invoiceStatusFor(total, paid decimal.Decimal) models.InvoiceStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return models.InvoicePaid
	case paid.IsPositive():
		return models.InvoicePartial
	}
	return models.InvoiceUnpaid
}

// insertInvoice numbers and stores inv within tx.
func (s *BillingService) insertInvoice(ctx context.Context, tx repository.Store, inv *models.Invoice) error {
	n, err := tx.NextSequence(ctx, inv.HotelID, seqInvoice)
	if err != nil {
		return internalError("next invoice number", err)
	}
	inv.InvoiceNumber = utils.DisplayNumber("INV", n)
	inv.PublicID = uuid.New()
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = s.deps.Now()
	}
	applyTotals(inv)
	return tx.CreateInvoice(ctx, inv)
}

// issueCheckoutInvoice bills the room nights, every completed service
// request not yet billed, and the extra charges. Runs inside the checkout
// transaction.
func (s *BillingService) issueCheckoutInvoice(ctx context.Context, tx repository.Store, r *models.Reservation, roomNumber string, charges []LineInput) (*models.Invoice, error) {
	hotel, err := tx.GetHotel(ctx, r.HotelID)
	if err != nil {
		return nil, lookupError(err, "error.hotelNotFound", "hotel not found", "get hotel")
	}
	rate := hotel.TaxRate
	resID, guestID := r.ID, r.GuestID
	inv := &models.Invoice{
		HotelID:       r.HotelID,
		ReservationID: &resID,
		GuestID:       &guestID,
		Source:        models.SourceCheckout,
		Currency:      r.Currency,
		TaxRate:       rate,
		AmountPaid:    decimal.Zero,
	}
	inv.Items = append(inv.Items, newItem(models.ItemRoom,
		fmt.Sprintf("Room %s, %d night(s)", roomNumber, r.Nights),
		decimal.NewFromInt(int64(r.Nights)), r.RoomRate, rate))

	completed := models.RequestCompleted
	requests, err := tx.ListServiceRequests(ctx, r.HotelID, repository.ServiceRequestFilter{
		ReservationID: &resID,
		Status:        &completed,
		UnbilledOnly:  true,
	})
	if err != nil {
		return nil, internalError("list service requests", err)
	}
	billed := make([]models.ServiceRequest, 0, len(requests))
	for _, req := range requests {
		if !req.Amount.IsPositive() {
			continue
		}
		inv.Items = append(inv.Items, newItem(models.ItemService,
			fmt.Sprintf("%s: %s", req.Category, req.Description),
			decimal.NewFromInt(1), req.Amount, rate))
		billed = append(billed, req)
	}
	for _, c := range charges {
		inv.Items = append(inv.Items, newItem(models.ItemCharge, c.Description, c.Quantity, c.UnitPrice, rate))
	}

	if err := s.insertInvoice(ctx, tx, inv); err != nil {
		return nil, err
	}
	for i := range billed {
		billed[i].BilledInvoiceID = &inv.ID
		if err := tx.UpdateServiceRequest(ctx, &billed[i]); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

type PaymentInput struct {
	Amount    decimal.Decimal
	Method    string
	Reference string
}

type CreateInvoiceInput struct {
	Source        models.InvoiceSource
	ReservationID *uint
	GuestID       *uint
	Currency      string
	Notes         string
	Items         []LineInput
	// Payment, when set, is recorded against the new invoice in the same
	// transaction (typical for POS sales).
	Payment *PaymentInput
}

// CreateInvoice issues a POS or manual invoice outside of checkout.
func (s *BillingService) CreateInvoice(ctx context.Context, hotelID uint, in CreateInvoiceInput) (*models.Invoice, error) {
	if in.Source == "" {
		in.Source = models.SourceManual
	}
	if in.Source != models.SourcePOS && in.Source != models.SourceManual {
		return nil, validationError("error.invalidSource", "source must be POS or MANUAL")
	}
	if len(in.Items) == 0 {
		return nil, validationError("error.itemsRequired", "at least one item is required")
	}
	for i, it := range in.Items {
		if err := it.validate(fmt.Sprintf("items[%d]", i)); err != nil {
			return nil, err
		}
	}
	if in.Payment != nil {
		if err := in.Payment.validate(); err != nil {
			return nil, err
		}
	}

	hotel, err := s.deps.Store.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, lookupError(err, "error.hotelNotFound", "hotel not found", "get hotel")
	}
	currency := in.Currency
	guestID := in.GuestID
	if in.ReservationID != nil {
		r, err := s.deps.Store.GetReservation(ctx, hotelID, *in.ReservationID)
		if err != nil {
			return nil, lookupError(err, "error.reservationNotFound", "reservation not found", "get reservation")
		}
		if currency == "" {
			currency = r.Currency
		}
		if guestID == nil {
			g := r.GuestID
			guestID = &g
		}
	}
	if guestID != nil {
		if _, err := s.deps.Store.GetGuest(ctx, hotelID, *guestID); err != nil {
			return nil, lookupError(err, "error.guestNotFound", "guest not found", "get guest")
		}
	}
	if currency == "" {
		currency = hotel.DefaultCurrency
	}

	defaultKind := models.ItemCharge
	if in.Source == models.SourcePOS {
		defaultKind = models.ItemPOS
	}
	inv := &models.Invoice{
		HotelID:       hotelID,
		ReservationID: in.ReservationID,
		GuestID:       guestID,
		Source:        in.Source,
		Currency:      currency,
		TaxRate:       hotel.TaxRate,
		AmountPaid:    decimal.Zero,
		Notes:         in.Notes,
	}
	for _, it := range in.Items {
		kind := it.Kind
		if kind == "" {
			kind = defaultKind
		}
		inv.Items = append(inv.Items, newItem(kind, it.Description, it.Quantity, it.UnitPrice, hotel.TaxRate))
	}

	var payment *models.Payment
	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		if err := s.insertInvoice(ctx, tx, inv); err != nil {
			return err
		}
		if in.Payment == nil {
			return nil
		}
		p, err := s.applyPayment(ctx, tx, inv, *in.Payment)
		payment = p
		return err
	})
	if err != nil {
		return nil, passThrough(err, "create invoice")
	}

	s.deps.Log.WithField("hotel_id", hotelID).WithField("invoice_id", inv.ID).
		Infof("invoice %s issued (%s) total %s %s", inv.InvoiceNumber, inv.Source, inv.Total.StringFixed(2), inv.Currency)
	s.deps.publish(ctx, EventInvoiceIssued, newInvoiceEvent(inv, s.deps.Now()))
	if payment != nil {
		s.publishPayment(ctx, inv, payment)
	}
	return s.Get(ctx, hotelID, inv.ID)
}

func (p PaymentInput) validate() error {
	if !p.Amount.IsPositive() {
		return validationError("error.invalidAmount", "amount must be positive")
	}
	return nil
}

// RecordPayment applies a payment of at most the outstanding balance.
func (s *BillingService) RecordPayment(ctx context.Context, hotelID, invoiceID uint, in PaymentInput) (*models.Invoice, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var (
		inv     *models.Invoice
		payment *models.Payment
	)
	err := s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		inv, err = tx.GetInvoice(ctx, hotelID, invoiceID)
		if err != nil {
			return lookupError(err, "error.invoiceNotFound", "invoice not found", "get invoice")
		}
		payment, err = s.applyPayment(ctx, tx, inv, in)
		return err
	})
	if err != nil {
		return nil, passThrough(err, "record payment")
	}
	s.publishPayment(ctx, inv, payment)
	return s.Get(ctx, hotelID, invoiceID)
}

func (s *BillingService) applyPayment(ctx context.Context, tx repository.Store, inv *models.Invoice, in PaymentInput) (*models.Payment, error) {
	if inv.Status == models.InvoiceRefunded {
		return nil, conflictError("error.invoiceRefunded", "invoice has been refunded", nil)
	}
	outstanding := inv.Outstanding()
	if in.Amount.GreaterThan(outstanding) {
		return nil, validationError("error.overpayment",
			fmt.Sprintf("amount %s exceeds outstanding balance %s", in.Amount.StringFixed(2), outstanding.StringFixed(2)))
	}
	method := strings.ToUpper(strings.TrimSpace(in.Method))
	if method == "" {
		method = "CASH"
	}
	p, err := s.insertPayment(ctx, tx, inv, in.Amount, method, in.Reference)
	if err != nil {
		return nil, err
	}
	inv.AmountPaid = inv.AmountPaid.Add(in.Amount)
	inv.Status = invoiceStatusFor(inv.Total, inv.AmountPaid)
	if err := tx.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	if err := syncReservationPayment(ctx, tx, inv); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *BillingService) insertPayment(ctx context.Context, tx repository.Store, inv *models.Invoice, amount decimal.Decimal, method, reference string) (*models.Payment, error) {
	n, err := tx.NextSequence(ctx, inv.HotelID, seqPayment)
	if err != nil {
		return nil, internalError("next payment number", err)
	}
	p := &models.Payment{
		PublicID:      uuid.New(),
		InvoiceID:     inv.ID,
		PaymentNumber: utils.DisplayNumber("PAY", n),
		Amount:        amount,
		Method:        method,
		Reference:     reference,
		PaidAt:        s.deps.Now(),
	}
	if err := tx.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RefundInvoice returns everything paid on the invoice as one negative
// payment and marks the invoice, and its reservation, REFUNDED.
func (s *BillingService) RefundInvoice(ctx context.Context, hotelID, invoiceID uint, reason, method string) (*models.Invoice, error) {
	var (
		inv    *models.Invoice
		refund *models.Payment
	)
	err := s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		inv, err = tx.GetInvoice(ctx, hotelID, invoiceID)
		if err != nil {
			return lookupError(err, "error.invoiceNotFound", "invoice not found", "get invoice")
		}
		if inv.Status == models.InvoiceRefunded {
			return conflictError("error.invoiceRefunded", "invoice has already been refunded", nil)
		}
		if !inv.AmountPaid.IsPositive() {
			return conflictError("error.nothingToRefund", "nothing has been paid on this invoice", nil)
		}
		m := strings.ToUpper(strings.TrimSpace(method))
		if m == "" {
			m = "REFUND"
		}
		refund, err = s.insertPayment(ctx, tx, inv, inv.AmountPaid.Neg(), m, reason)
		if err != nil {
			return err
		}
		inv.AmountPaid = decimal.Zero
		inv.Status = models.InvoiceRefunded
		if reason != "" {
			inv.Notes = strings.TrimSpace(inv.Notes + "\nRefund: " + reason)
		}
		if err := tx.UpdateInvoice(ctx, inv); err != nil {
			return err
		}
		return syncReservationPayment(ctx, tx, inv)
	})
	if err != nil {
		return nil, passThrough(err, "refund invoice")
	}

	s.deps.Log.WithField("hotel_id", hotelID).WithField("invoice_id", invoiceID).
		Infof("invoice %s refunded %s", inv.InvoiceNumber, refund.Amount.Neg().StringFixed(2))
	ev := newInvoiceEvent(inv, s.deps.Now())
	ev.PaymentNumber = refund.PaymentNumber
	ev.PaymentAmount = &refund.Amount
	s.deps.publish(ctx, EventInvoiceRefunded, ev)
	return s.Get(ctx, hotelID, invoiceID)
}

func (s *BillingService) publishPayment(ctx context.Context, inv *models.Invoice, p *models.Payment) {
	s.deps.Log.WithField("hotel_id", inv.HotelID).WithField("invoice_id", inv.ID).
		Infof("payment %s of %s recorded on %s", p.PaymentNumber, p.Amount.StringFixed(2), inv.InvoiceNumber)
	ev := newInvoiceEvent(inv, s.deps.Now())
	ev.PaymentNumber = p.PaymentNumber
	ev.PaymentAmount = &p.Amount
	s.deps.publish(ctx, EventPaymentRecorded, ev)
}

// syncReservationPayment derives the reservation's payment status from all
// of its invoices.
func syncReservationPayment(ctx context.Context, tx repository.Store, inv *models.Invoice) error {
	if inv.ReservationID == nil {
		return nil
	}
	r, err := tx.GetReservation(ctx, inv.HotelID, *inv.ReservationID)
	if err != nil {
		return lookupError(err, "error.reservationNotFound", "reservation not found", "get reservation")
	}
	invoices, err := tx.ListInvoices(ctx, inv.HotelID, repository.InvoiceFilter{ReservationID: inv.ReservationID})
	if err != nil {
		return internalError("list invoices", err)
	}
	total, paid := decimal.Zero, decimal.Zero
	refunded, live := 0, 0
	for _, i := range invoices {
		if i.Status == models.InvoiceRefunded {
			refunded++
			continue
		}
		live++
		total = total.Add(i.Total)
		paid = paid.Add(i.AmountPaid)
	}
	status := models.PaymentPending
	switch {
	case live == 0 && refunded > 0:
		status = models.PaymentRefunded
	case paid.IsPositive() && paid.GreaterThanOrEqual(total):
		status = models.PaymentPaid
	case paid.IsPositive():
		status = models.PaymentPartial
	}
	if r.PaymentStatus == status {
		return nil
	}
	r.PaymentStatus = status
	return tx.UpdateReservation(ctx, r)
}

func (s *BillingService) Get(ctx context.Context, hotelID, id uint) (*models.Invoice, error) {
	inv, err := s.deps.Store.GetInvoice(ctx, hotelID, id)
	if err != nil {
		return nil, lookupError(err, "error.invoiceNotFound", "invoice not found", "get invoice")
	}
	return inv, nil
}

func (s *BillingService) List(ctx context.Context, hotelID uint, f repository.InvoiceFilter) ([]models.Invoice, error) {
	out, err := s.deps.Store.ListInvoices(ctx, hotelID, f)
	if err != nil {
		return nil, internalError("list invoices", err)
	}
	return out, nil
}
