package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	OrdersExchange       = "orders_topic"
	ReservationsExchange = "reservations_topic"
)

// ErrPublishNacked is returned when the broker refuses a message
var ErrPublishNacked = errors.New("broker did not confirm message")

// Publisher sends one message and returns once the broker has confirmed it
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) error
}

// AMQPSubmitter hands snapshots to the external services through RabbitMQ.
// A submission is acknowledged when the broker confirms the message.
type AMQPSubmitter struct {
	publisher Publisher
	log       *slog.Logger
}

// NewAMQPSubmitter creates a submitter on top of publisher
func NewAMQPSubmitter(publisher Publisher, log *slog.Logger) *AMQPSubmitter {
	return &AMQPSubmitter{
		publisher: publisher,
		log:       log,
	}
}

// SubmitOrder publishes the order with routing key order.<payment method>
func (s *AMQPSubmitter) SubmitOrder(ctx context.Context, order models.OrderSnapshot) error {
	routingKey := fmt.Sprintf("order.%s", order.PaymentMethod)
	return s.publish(ctx, OrdersExchange, routingKey, order.ID, order)
}

// SubmitReservation publishes the reservation with routing key reservation.table.<id>
func (s *AMQPSubmitter) SubmitReservation(ctx context.Context, req models.ReservationRequest) error {
	routingKey := fmt.Sprintf("reservation.table.%s", req.TableID)
	return s.publish(ctx, ReservationsExchange, routingKey, req.ID, req)
}

func (s *AMQPSubmitter) publish(ctx context.Context, exchange, routingKey, messageID string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now(),
		Body:         body,
	}

	if err := s.publisher.Publish(ctx, exchange, routingKey, msg); err != nil {
		s.log.Error("message publish failed",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", messageID,
			"error", err,
		)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	s.log.Debug("message published",
		"exchange", exchange,
		"routing_key", routingKey,
		"message_id", messageID,
		"message_size", len(body),
	)
	return nil
}

// Connection is a RabbitMQ connection with a confirm-mode channel and the
// submission exchanges declared. It implements Publisher.
type Connection struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *slog.Logger
}

// Dial connects to RabbitMQ, retrying a few times while the broker starts
func Dial(url string, log *slog.Logger) (*Connection, error) {
	const maxRetries = 5

	var err error
	for i := 0; i < maxRetries; i++ {
		var c *Connection
		c, err = connect(url, log)
		if err == nil {
			return c, nil
		}

		if i < maxRetries-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			log.Warn("rabbitmq connection failed, retrying", "retry_in", wait.String(), "error", err)
			time.Sleep(wait)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

func connect(url string, log *slog.Logger) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, exchange := range []string{OrdersExchange, ReservationsExchange} {
		err := ch.ExchangeDeclare(
			exchange, // name
			"topic",  // type
			true,     // durable
			false,    // auto-deleted
			false,    // internal
			false,    // no-wait
			nil,      // arguments
		)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to declare %s exchange: %w", exchange, err)
		}
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	return &Connection{conn: conn, channel: ch, log: log}, nil
}

// Publish sends msg and waits for the broker's confirmation
func (c *Connection) Publish(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) error {
	if c.conn.IsClosed() {
		return amqp.ErrClosed
	}

	confirm, err := c.channel.PublishWithDeferredConfirmWithContext(
		ctx,
		exchange,   // exchange
		routingKey, // routing key
		true,       // mandatory
		false,      // immediate
		msg,
	)
	if err != nil {
		return err
	}
	if confirm == nil {
		return nil
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return ErrPublishNacked
	}
	return nil
}

// Close closes the channel and connection
func (c *Connection) Close() error {
	if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		c.log.Warn("failed to close channel", "error", err)
	}
	return c.conn.Close()
}
