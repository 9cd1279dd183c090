package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const bookingQueueName = "booking.lifecycle"

// Publisher pushes lifecycle events to RabbitMQ. Errors are returned so the
// caller can log them; publishing never interrupts the request flow.
type Publisher interface {
	PublishBooking(ctx context.Context, ev BookingEvent) error
}

type amqpPublisher struct{ url string }

func NewAMQP(url string) Publisher { return &amqpPublisher{url: url} }

func (p *amqpPublisher) PublishBooking(ctx context.Context, ev BookingEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(bookingQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",               // default exchange
		bookingQueueName, // routing key = queue name
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) PublishBooking(context.Context, BookingEvent) error { return nil }
