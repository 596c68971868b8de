package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/adapter/messaging"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/domain"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declared   []string
	published  []amqp.Publishing
	keys       []string
	publishErr error
	closed     bool
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	c.declared = append(c.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type fakeDialer struct {
	channels []*fakeChannel
	dials    int
	err      error
}

func (d *fakeDialer) dial() (messaging.Channel, func() error, error) {
	if d.err != nil {
		return nil, nil, d.err
	}
	ch := d.channels[d.dials]
	d.dials++
	return ch, func() error { return nil }, nil
}

func event(t domain.BookingEventType) domain.BookingEvent {
	return domain.BookingEvent{
		Type:       t,
		BookingID:  uuid.New(),
		PNR:        "ABCD234567",
		Status:     domain.BookingCancelled,
		OccurredAt: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
	}
}

func TestRabbitPublisher_DeclaresQueueOncePerEventType(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ch := &fakeChannel{}
	d := &fakeDialer{channels: []*fakeChannel{ch}}
	p := messaging.NewRabbitPublisher(d.dial, logger)
	ctx := context.Background()

	first := event(domain.EventBookingExpired)
	require.NoError(t, p.Publish(ctx, first))
	require.NoError(t, p.Publish(ctx, event(domain.EventBookingExpired)))
	require.NoError(t, p.Publish(ctx, event(domain.EventBookingConfirmed)))

	assert.Equal(t, 1, d.dials)
	assert.Equal(t, []string{"booking.expired", "booking.confirmed"}, ch.declared)
	assert.Equal(t, []string{"booking.expired", "booking.expired", "booking.confirmed"}, ch.keys)

	msg := ch.published[0]
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, first.BookingID.String()+":booking.expired", msg.MessageId)

	var decoded domain.BookingEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, first.BookingID, decoded.BookingID)
	assert.Equal(t, domain.EventBookingExpired, decoded.Type)
}

func TestRabbitPublisher_RedialsAfterFailure(t *testing.T) {
	logger, _ := test.NewNullLogger()
	broken := &fakeChannel{publishErr: errors.New("channel closed")}
	healthy := &fakeChannel{}
	d := &fakeDialer{channels: []*fakeChannel{broken, healthy}}
	p := messaging.NewRabbitPublisher(d.dial, logger)
	ctx := context.Background()

	err := p.Publish(ctx, event(domain.EventBookingCancelled))
	assert.ErrorContains(t, err, "publish booking.cancelled")
	assert.True(t, broken.closed)

	require.NoError(t, p.Publish(ctx, event(domain.EventBookingCancelled)))
	assert.Equal(t, 2, d.dials)
	assert.Equal(t, []string{"booking.cancelled"}, healthy.declared)

	require.NoError(t, p.Close())
	assert.True(t, healthy.closed)
}

func TestRabbitPublisher_DialFailure(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	p := messaging.NewRabbitPublisher(d.dial, nil)

	assert.ErrorContains(t, p.Publish(context.Background(), event(domain.EventBookingConfirmed)), "connection refused")
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, messaging.NopPublisher{}.Publish(context.Background(), event(domain.EventBookingConfirmed)))
}
