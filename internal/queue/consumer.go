// Package queue also contains the background consumer that listens to the
// assignments queue and appends one line per event to assignments.log.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"
)

// LogFileName is the file, inside the consumer's log directory, that events
// are appended to.
const LogFileName = "assignments.log"

// Consumer drains the assignments queue.
type Consumer struct {
    URL    string
    Queue  string
    LogDir string
    Logger *log.Logger
}

// NewConsumer returns a Consumer writing to logDir.
func NewConsumer(url, queue, logDir string) *Consumer {
    return &Consumer{URL: url, Queue: queue, LogDir: logDir, Logger: log.New("consumer")}
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes
// messages until ctx is cancelled.  Broker failures are retried with
// exponential backoff capped at 30s; Run only returns ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Logger.Warnf("dial broker failed: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Logger.Warnf("consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Logger.Warnf("set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }
    c.Logger.Infof("consuming %s", c.Queue)

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handleMessage(d.Body); err != nil {
                c.Logger.Errorf("handle message failed: %v", err)
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *Consumer) handleMessage(body []byte) error {
    var ev AssignmentEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.AssignmentID == 0 {
        return fmt.Errorf("malformed event %q", ev.EventID)
    }
    if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", c.LogDir, err)
    }
    f, err := os.OpenFile(filepath.Join(c.LogDir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev as a single newline-terminated log line.
func FormatLine(ev AssignmentEvent) string {
    switch ev.Type {
    case EventAssignmentCreated:
        return fmt.Sprintf("[%s] Grave assigned | assignment_id=%d | deceased_id=%d | grave_id=%s | section=%s | assigned_by=%q | burial=%s %s\n",
            ev.OccurredAt, ev.AssignmentID, ev.DeceasedID, ev.GraveID, ev.Section, ev.AssignedBy, ev.BurialDate, ev.BurialTime)
    case EventBurialCompleted:
        return fmt.Sprintf("[%s] Burial completed | assignment_id=%d | deceased_id=%d | grave_id=%s\n",
            ev.OccurredAt, ev.AssignmentID, ev.DeceasedID, ev.GraveID)
    }
    return fmt.Sprintf("[%s] %s | assignment_id=%d\n", ev.OccurredAt, ev.Type, ev.AssignmentID)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
