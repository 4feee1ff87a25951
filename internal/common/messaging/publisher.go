// Package messaging publishes career events to a RabbitMQ topic exchange.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// RoutingKeyAnalysisCompleted is used for finished analyses.
const RoutingKeyAnalysisCompleted = "analysis.completed"

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher opens a channel per publish on a shared connection.
type Publisher struct {
	conn     *amqp.Connection
	open     func() (channel, error)
	exchange string

	declareOnce sync.Once
	declareErr  error
}

// NewPublisher dials url and returns a publisher for exchange.
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error dialling rabbitmq: %w", err)
	}
	p := &Publisher{conn: conn, exchange: exchange}
	p.open = func() (channel, error) { return conn.Channel() }
	return p, nil
}

// Publish sends payload as JSON. The exchange is declared on first use.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	p.declareOnce.Do(func() {
		p.declareErr = ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil)
	})
	if p.declareErr != nil {
		return fmt.Errorf("declare exchange %s: %w", p.exchange, p.declareErr)
	}

	return ch.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Close closes the underlying connection.
func (p *Publisher) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
