package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Dialer opens a channel to the broker.
type Dialer func() (Channel, func() error, error)

// AMQPDialer dials url and opens a channel on the new connection.
func AMQPDialer(url string) Dialer {
	return func() (Channel, func() error, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, nil, fmt.Errorf("dial broker: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("open channel: %w", err)
		}
		return ch, conn.Close, nil
	}
}

// RabbitPublisher sends each booking event to a durable queue named after
// the event type. The channel is opened lazily and reopened after a failure.
type RabbitPublisher struct {
	dial   Dialer
	logger *logrus.Logger

	mu        sync.Mutex
	ch        Channel
	closeConn func() error
	declared  map[string]bool
}

func NewRabbitPublisher(dial Dialer, logger *logrus.Logger) *RabbitPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RabbitPublisher{dial: dial, logger: logger, declared: map[string]bool{}}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	queue := string(event.Type)
	if !p.declared[queue] {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			p.reset()
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		p.declared[queue] = true
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.BookingID.String() + ":" + queue,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", queue, err)
	}

	p.logger.WithFields(logrus.Fields{"queue": queue, "booking_id": event.BookingID}).Debug("booking event published")
	return nil
}

// Close releases the broker connection, if one is open.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reset()
}

func (p *RabbitPublisher) channel() (Channel, error) {
	if p.ch != nil {
		return p.ch, nil
	}
	ch, closeConn, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.ch, p.closeConn = ch, closeConn
	return ch, nil
}

func (p *RabbitPublisher) reset() error {
	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.closeConn != nil {
		if cerr := p.closeConn(); err == nil {
			err = cerr
		}
	}
	p.ch, p.closeConn = nil, nil
	p.declared = map[string]bool{}
	return err
}

// NopPublisher drops events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.BookingEvent) error { return nil }
