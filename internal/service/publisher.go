// Package service holds the business operations that span more than one
// repository: the assignment engine and the event publisher it notifies.
package service

import (
    "context"
    "encoding/json"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/grave-assignment/internal/queue"
)

// Publisher delivers assignment events after the owning transaction
// commits.  A failed publish never undoes the committed change.
type Publisher interface {
    Publish(ctx context.Context, ev queue.AssignmentEvent) error
}

// NopPublisher discards events.  It is used when EVENTS_ENABLED is off.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.AssignmentEvent) error { return nil }

// AMQPPublisher publishes events to a durable RabbitMQ queue through the
// default exchange.  Each call dials its own connection, so the publisher
// holds no state that could go stale between requests.
type AMQPPublisher struct {
    url   string
    queue string
}

// NewAMQPPublisher returns a publisher for the given broker and queue.
func NewAMQPPublisher(url, queueName string) *AMQPPublisher {
    return &AMQPPublisher{url: url, queue: queueName}
}

// Publish sends ev as a persistent JSON message.  EventID is generated when
// empty and doubles as the AMQP message id.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.AssignmentEvent) error {
    if ev.EventID == "" {
        ev.EventID = uuid.NewString()
    }
    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(dialTimeout(ctx)),
    })
    if err != nil {
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    return ch.PublishWithContext(ctx,
        "",      // default exchange
        p.queue, // routing key = queue name
        false,   // mandatory
        false,   // immediate
        amqp.Publishing{
            ContentType:  "application/json",
            DeliveryMode: amqp.Persistent,
            MessageId:    ev.EventID,
            Type:         ev.Type,
            Timestamp:    time.Now().UTC(),
            Body:         body,
        },
    )
}

// dialTimeout is the time left before ctx's deadline, or publishTimeout
// when ctx has none.
func dialTimeout(ctx context.Context) time.Duration {
    deadline, ok := ctx.Deadline()
    if !ok {
        return publishTimeout
    }
    if d := time.Until(deadline); d > 0 {
        return d
    }
    return time.Millisecond
}
