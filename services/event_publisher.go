package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-pms/models"
)

const (
	EventReservationCreated   = "reservation.created"
	EventReservationUpdated   = "reservation.updated"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationNoShow    = "reservation.no_show"
	EventCheckedIn            = "stay.checked_in"
	EventCheckedOut           = "stay.checked_out"
	EventInvoiceIssued        = "invoice.issued"
	EventPaymentRecorded      = "payment.recorded"
	EventInvoiceRefunded      = "invoice.refunded"
)

// EventPublisher delivers lifecycle events after their transaction has
// committed.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

type ReservationEvent struct {
	HotelID           uint                     `json:"hotel_id"`
	ReservationID     uint                     `json:"reservation_id"`
	ReservationNumber string                   `json:"reservation_number"`
	RoomID            uint                     `json:"room_id"`
	GuestID           uint                     `json:"guest_id"`
	CheckInDate       string                   `json:"check_in_date"`
	CheckOutDate      string                   `json:"check_out_date"`
	Status            models.ReservationStatus `json:"status"`
	TotalAmount       decimal.Decimal          `json:"total_amount"`
	Currency          string                   `json:"currency"`
	OccurredAt        time.Time                `json:"occurred_at"`
}

func newReservationEvent(r *models.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		HotelID:           r.HotelID,
		ReservationID:     r.ID,
		ReservationNumber: r.ReservationNumber,
		RoomID:            r.RoomID,
		GuestID:           r.GuestID,
		CheckInDate:       r.CheckInDate.Format("2006-01-02"),
		CheckOutDate:      r.CheckOutDate.Format("2006-01-02"),
		Status:            r.Status,
		TotalAmount:       r.TotalAmount,
		Currency:          r.Currency,
		OccurredAt:        at,
	}
}

type InvoiceEvent struct {
	HotelID       uint                 `json:"hotel_id"`
	InvoiceID     uint                 `json:"invoice_id"`
	PublicID      string               `json:"public_id"`
	InvoiceNumber string               `json:"invoice_number"`
	ReservationID *uint                `json:"reservation_id,omitempty"`
	Source        models.InvoiceSource `json:"source"`
	Status        models.InvoiceStatus `json:"status"`
	Total         decimal.Decimal      `json:"total"`
	AmountPaid    decimal.Decimal      `json:"amount_paid"`
	PaymentNumber string               `json:"payment_number,omitempty"`
	PaymentAmount *decimal.Decimal     `json:"payment_amount,omitempty"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

func newInvoiceEvent(inv *models.Invoice, at time.Time) InvoiceEvent {
	return InvoiceEvent{
		HotelID:       inv.HotelID,
		InvoiceID:     inv.ID,
		PublicID:      inv.PublicID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		ReservationID: inv.ReservationID,
		Source:        inv.Source,
		Status:        inv.Status,
		Total:         inv.Total,
		AmountPaid:    inv.AmountPaid,
		OccurredAt:    at,
	}
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	Log logrus.FieldLogger
}

func (p LogPublisher) Publish(_ context.Context, routingKey string, payload interface{}) error {
	p.Log.WithField("event", routingKey).WithField("payload", payload).Info("event")
	return nil
}

const (
	EventExchange     = "hotel.events"
	eventExchangeKind = "topic"
)

// RabbitPublisher publishes JSON events to a durable topic exchange.
type RabbitPublisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "rabbitmq dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "rabbitmq channel")
	}
	if err := ch.ExchangeDeclare(EventExchange, eventExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrap(err, "rabbitmq exchange declare")
	}
	return &RabbitPublisher{conn: conn, channel: ch}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx, EventExchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	return errors.Wrapf(err, "publish %s", routingKey)
}

func (p *RabbitPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
