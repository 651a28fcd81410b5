// Package notify publishes booking confirmation events for delivery by a mailer.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

const (
	EventBookingConfirmed   = "booking.confirmed"
	EventConfirmationResent = "booking.confirmation_resent"
)

// ConfirmationEvent is the message body consumed by the mailer.
type ConfirmationEvent struct {
	Type          string    `json:"type"`
	BookingID     string    `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	RoomName      string    `json:"room_name"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	Nights        int       `json:"nights"`
	Guests        int       `json:"guests"`
	TotalPrice    string    `json:"total_price"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishConfirmation(ctx context.Context, ev ConfirmationEvent) error
	Close() error
}

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends events to a durable queue on the default exchange.
type AMQPPublisher struct {
	conn  *amqp.Connection
	queue string

	mu sync.Mutex // amqp channels are not safe for concurrent publishing
	ch channel
}

// NewAMQPPublisher connects to the broker and declares the queue.
func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", queue, err)
	}

	log.Printf("publishing booking confirmations to queue %q", queue)
	return &AMQPPublisher{conn: conn, queue: queue, ch: ch}, nil
}

func (p *AMQPPublisher) PublishConfirmation(ctx context.Context, ev ConfirmationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", ev.Type, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.BookingNumber,
			Type:         ev.Type,
			Timestamp:    ev.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s for %s: %w", ev.Type, ev.BookingNumber, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// LogPublisher writes events to the process log. Used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) PublishConfirmation(ctx context.Context, ev ConfirmationEvent) error {
	log.Printf("%s: booking %s for %s <%s>, %s → %s, total %s",
		ev.Type, ev.BookingNumber, ev.Name, ev.Email, ev.CheckIn, ev.CheckOut, ev.TotalPrice)
	return nil
}

func (LogPublisher) Close() error { return nil }
