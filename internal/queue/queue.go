// Package queue carries "project queued" notifications from the API to the
// worker over RabbitMQ. Postgres stays the source of truth; a lost message
// only delays a project until the worker's next tick.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"reelgen/internal/infra"
)

// Notifier announces newly queued projects.
type Notifier interface {
	ProjectQueued(ctx context.Context, projectID string) error
}

// Nop is used when no broker is configured.
type Nop struct{}

func (Nop) ProjectQueued(context.Context, string) error { return nil }

type message struct {
	ProjectID string    `json:"project_id"`
	QueuedAt  time.Time `json:"queued_at"`
}

func encode(projectID string, at time.Time) ([]byte, error) {
	if projectID == "" {
		return nil, errors.New("queue: project id is required")
	}
	return json.Marshal(message{ProjectID: projectID, QueuedAt: at.UTC()})
}

func decode(body []byte) (string, error) {
	var m message
	if err := json.Unmarshal(body, &m); err != nil {
		return "", fmt.Errorf("queue: decode message: %w", err)
	}
	if m.ProjectID == "" {
		return "", errors.New("queue: message without project id")
	}
	return m.ProjectID, nil
}

// channel is the subset of *amqp.Channel used here.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// AMQP publishes and consumes notifications on one durable queue.
type AMQP struct {
	conn   *amqp.Connection
	ch     channel
	queue  string
	logger *infra.Logger
}

// Dial connects to url and declares queueName as a durable queue.
func Dial(url, queueName string, logger *infra.Logger) (*AMQP, error) {
	if logger == nil {
		logger = infra.NopLogger()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue: open channel: %w", err)
	}
	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("queue: declare %s: %w", queueName, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Warn().Err(err).Msg("queue: set prefetch failed")
	}
	return &AMQP{conn: conn, ch: ch, queue: q.Name, logger: logger}, nil
}

func (q *AMQP) ProjectQueued(ctx context.Context, projectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := encode(projectID, time.Now())
	if err != nil {
		return err
	}
	err = q.ch.Publish("", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    projectID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("queue: publish %s: %w", projectID, err)
	}
	return nil
}

// Wake consumes the queue and emits one signal per valid message until ctx
// ends. Messages are acked on receipt; malformed ones are dropped.
func (q *AMQP) Wake(ctx context.Context) (<-chan string, error) {
	deliveries, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue: consume: %w", err)
	}
	out := make(chan string, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				q.handle(ctx, d, out)
			}
		}
	}()
	return out, nil
}

func (q *AMQP) handle(ctx context.Context, d amqp.Delivery, out chan<- string) {
	id, err := decode(d.Body)
	if err != nil {
		q.logger.Warn().Err(err).Msg("queue: dropping message")
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
	select {
	case out <- id:
	case <-ctx.Done():
	default:
		// a wake-up is already pending
	}
}

func (q *AMQP) Close() error {
	if q == nil {
		return nil
	}
	var errs []error
	if q.ch != nil {
		errs = append(errs, q.ch.Close())
	}
	if q.conn != nil {
		errs = append(errs, q.conn.Close())
	}
	return errors.Join(errs...)
}
