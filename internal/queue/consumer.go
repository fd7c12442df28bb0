package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Nota0515/bhakti/internal/mail"
)

// StartNotificationConsumer connects to RabbitMQ, declares the
// notification queues (durable) and consumes both. Each event is
// turned into a best-effort email through the mailer and appended to
// logs/notifications.log. The function runs a reconnect loop forever;
// processing errors are logged and the offending message rejected so
// the server keeps operating.
func StartNotificationConsumer(mailer mail.Mailer) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("notify-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, mailer); err != nil {
			log.Printf("notify-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, mailer mail.Mailer) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("notify-consumer: set QoS failed: %v", err)
	}

	for _, q := range []string{mandalQueueName, orderQueueName} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
	}

	mandals, err := ch.Consume(mandalQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", mandalQueueName, err)
	}
	orders, err := ch.Consume(orderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", orderQueueName, err)
	}

	for {
		select {
		case d, ok := <-mandals:
			if !ok {
				return errors.New("mandal deliveries channel closed")
			}
			ackOrReject(d, handleMandalRegistered(d.Body, mailer))
		case d, ok := <-orders:
			if !ok {
				return errors.New("order deliveries channel closed")
			}
			ackOrReject(d, handleOrderCompleted(d.Body, mailer))
		}
	}
}

func ackOrReject(d amqp.Delivery, err error) {
	if err != nil {
		log.Printf("notify-consumer: handle message failed: %v", err)
		_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
		return
	}
	_ = d.Ack(false)
}

func handleMandalRegistered(body []byte, mailer mail.Mailer) error {
	var ev MandalRegisteredEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	to := "admin@ganpatimandalapp.com"
	if strings.Contains(ev.ContactPhone, "@") {
		to = ev.ContactPhone
	}
	name := ev.ContactName
	if name == "" {
		name = "Valued Mandal Member"
	}
	msg := mail.Message{
		To:      to,
		Subject: fmt.Sprintf("Thank you for registering %s with Ganpati Mandal App", ev.Name),
		Text: fmt.Sprintf("Dear %s,\n\nThank you for registering %s with Ganpati Mandal App!\n\n"+
			"Registration details:\n- Mandal Name: %s\n- Location: %s\n- Contact: %s (%s)\n\n"+
			"Our team will review your registration and get in touch shortly.\n\nGanpati Bappa Morya!",
			name, ev.Name, ev.Name, ev.Location, ev.ContactName, ev.ContactPhone),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := mailer.Send(ctx, msg); err != nil {
		// Mail failure stays best-effort; the event is still recorded.
		log.Printf("notify-consumer: thank-you mail failed for %q: %v", ev.Name, err)
	}

	line := fmt.Sprintf("[%s] Mandal registered | mandal_id=%d | name=%q | location=%q | contact=%q\n",
		ev.RegisteredAt, ev.MandalID, ev.Name, ev.Location, ev.ContactName)
	return appendLog(line)
}

func handleOrderCompleted(body []byte, mailer mail.Mailer) error {
	var ev OrderCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	var items []string
	for _, it := range ev.Items {
		items = append(items, fmt.Sprintf("%s x%d (₹%d)", it.Item, it.Qty, it.Price*it.Qty))
	}
	line := fmt.Sprintf("[%s] Prasad order completed | order_id=%s | user_id=%d | mandal_id=%d | total=₹%d | items=[%s]\n",
		ev.CompletedAt, ev.OrderID, ev.UserID, ev.MandalID, ev.Total, strings.Join(items, ", "))
	return appendLog(line)
}

func appendLog(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "notifications.log")
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
