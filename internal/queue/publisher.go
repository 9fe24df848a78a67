package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers catalog events.  Implementations must be safe for
// concurrent use by request goroutines.
type Publisher interface {
    Publish(ctx context.Context, ev CatalogEvent) error
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, CatalogEvent) error { return nil }

// AMQPPublisher publishes events as persistent JSON messages on a durable
// queue through the default exchange.  It dials per publish, so a broker
// restart never leaves it holding a dead connection.
type AMQPPublisher struct {
    url     string
    queue   string
    timeout time.Duration
}

// NewAMQPPublisher returns a publisher for the given broker URL and queue.
func NewAMQPPublisher(url, queue string) *AMQPPublisher {
    return &AMQPPublisher{url: url, queue: queue, timeout: 3 * time.Second}
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, ev CatalogEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.timeout)})
    if err != nil {
        return fmt.Errorf("dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if _, err := declareQueue(ch, p.queue); err != nil {
        return err
    }

    ctx, cancel := context.WithTimeout(ctx, p.timeout)
    defer cancel()
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        return fmt.Errorf("publish %s: %w", ev.Type, err)
    }
    return nil
}

// declareQueue makes sure the durable queue exists.  It is idempotent.
func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
    q, err := ch.QueueDeclare(name, true, false, false, false, nil)
    if err != nil {
        return q, fmt.Errorf("queue declare %s: %w", name, err)
    }
    return q, nil
}
