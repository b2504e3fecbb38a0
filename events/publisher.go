// Package events publishes booking lifecycle events. Publishing is best
// effort: a broker outage never fails the write that produced the event.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

// Routing keys.
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingRejected  = "booking.rejected"
	BookingDeleted   = "booking.deleted"
)

type Event struct {
	Type        string               `json:"type"`
	BookingID   string               `json:"bookingId"`
	VenueID     string               `json:"venueId"`
	Status      models.BookingStatus `json:"status,omitempty"`
	CompanyName string               `json:"companyName,omitempty"`
	Email       string               `json:"email,omitempty"`
	OccurredAt  time.Time            `json:"occurredAt"`
}

// ForBooking builds an event of type typ describing b.
func ForBooking(typ string, b models.Booking, at time.Time) Event {
	return Event{
		Type:        typ,
		BookingID:   b.ID,
		VenueID:     b.VenueID,
		Status:      b.Status,
		CompanyName: b.CompanyName,
		Email:       b.Email,
		OccurredAt:  at.UTC(),
	}
}

// StatusEvent maps a booking status to the routing key announcing it.
func StatusEvent(s models.BookingStatus) string {
	switch s {
	case models.StatusConfirmed:
		return BookingConfirmed
	case models.StatusRejected:
		return BookingRejected
	}
	return ""
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// AMQP publishes JSON events to a durable topic exchange.
type AMQP struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex // channels are not safe for concurrent publishing
}

func NewAMQP(url, exchange string) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQP{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQP) Publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, p.exchange, e.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Type:         e.Type,
		Body:         b,
	})
}

func (p *AMQP) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types lists the recorded routing keys in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
