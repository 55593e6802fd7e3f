package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/multierr"
)

const CancelledRoutingKey = "reservation.cancelled"

// ChannelPublisher is the part of *amqp.Channel the broker subscriber uses.
type ChannelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Broker forwards cancellation events to a topic exchange.
type Broker struct {
	ch       ChannelPublisher
	exchange string
	timeout  time.Duration
}

func NewBroker(ch ChannelPublisher, exchange string) *Broker {
	return &Broker{ch: ch, exchange: exchange, timeout: 5 * time.Second}
}

func (b *Broker) Notify(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	err = b.ch.PublishWithContext(ctx, b.exchange, CancelledRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ConfirmationCode,
		Timestamp:    ev.CancelledAt,
		Type:         CancelledRoutingKey,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", b.exchange, err)
	}
	return nil
}

// BrokerConn owns the AMQP connection and channel behind a Broker.
type BrokerConn struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// DialBroker connects and declares the durable topic exchange.
func DialBroker(url, exchange string) (*BrokerConn, *Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &BrokerConn{conn: conn, ch: ch}, NewBroker(ch, exchange), nil
}

func (c *BrokerConn) Close() error {
	if c == nil {
		return nil
	}
	return multierr.Combine(c.ch.Close(), c.conn.Close())
}
