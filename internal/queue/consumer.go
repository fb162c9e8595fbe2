package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartOrderConsumer connects to RabbitMQ, declares the order.confirmed
// and order.picked queues (durable), and starts consuming messages.
// Each message is appended to logs/orders.log in a single-line,
// human-friendly format.  The function runs a reconnect loop with
// backoff; processing errors are logged and the offending message is
// rejected without requeue so the server keeps operating.
func StartOrderConsumer() error {
    url := brokerURL()

    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("order-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn); err != nil {
            log.Printf("order-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
            continue
        }
    }
}

func consumeLoop(conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("order-consumer: set QoS failed: %v", err)
    }

    for _, name := range []string{OrderConfirmedQueue, OrderPickedQueue} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
    }

    confirmed, err := ch.Consume(OrderConfirmedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", OrderConfirmedQueue, err)
    }
    picked, err := ch.Consume(OrderPickedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", OrderPickedQueue, err)
    }

    for {
        select {
        case d, ok := <-confirmed:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            ackOrReject(d, handleConfirmed(d.Body))
        case d, ok := <-picked:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            ackOrReject(d, handlePicked(d.Body))
        }
    }
}

func ackOrReject(d amqp.Delivery, err error) {
    if err != nil {
        log.Printf("order-consumer: handle message failed: %v", err)
        _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
        return
    }
    _ = d.Ack(false)
}

func handleConfirmed(body []byte) error {
    var ev OrderConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := fmt.Sprintf("[%s] Order confirmed | order_id=%d | ref=%s | customer_id=%d | company_id=%d | items=%d | total=%d cents\n",
        ev.ConfirmedAt, ev.OrderID, ev.Reference, ev.CustomerID, ev.CompanyID, ev.ItemCount, ev.TotalCents)
    return appendLog(line)
}

func handlePicked(body []byte) error {
    var ev OrderPickedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := fmt.Sprintf("[%s] Order picked up | order_id=%d | ref=%s | customer_id=%d | company_id=%d\n",
        ev.PickedAt, ev.OrderID, ev.Reference, ev.CustomerID, ev.CompanyID)
    return appendLog(line)
}

func appendLog(line string) error {
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join("logs", "orders.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
