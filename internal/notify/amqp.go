package notify

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
)

// RoutingKeyWelcome is the routing key of welcome jobs on the exchange.
const RoutingKeyWelcome = "mail.welcome"

// publisher is the part of *amqp.Channel used by AMQPQueue.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPQueue publishes persistent JSON jobs to a durable topic exchange.
type AMQPQueue struct {
	conn     *amqp.Connection
	ch       publisher
	exchange string
}

func NewAMQPQueue(url, exchange string) (*AMQPQueue, error) {
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
	return &AMQPQueue{conn: conn, ch: ch, exchange: exchange}, nil
}

// Enqueue publishes a welcome job for to.
func (q *AMQPQueue) Enqueue(ctx context.Context, to string, u *entity.User) error {
	job := NewWelcomeJob(to, u)
	body, err := job.encode()
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	return q.ch.PublishWithContext(ctx, q.exchange, RoutingKeyWelcome, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    job.QueuedAt,
		Body:         body,
	})
}

func (q *AMQPQueue) Close() error {
	if q.ch != nil {
		_ = q.ch.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}
