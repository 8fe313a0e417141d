package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// RelayObserver counts relayed notifications by result.
type RelayObserver interface {
	ObserveRelay(result string)
}

// Relay consumes the notification queue and appends each event to
// notifications.log in Dir.  It stands in for the delivery collaborator.
type Relay struct {
	URL      string
	Dir      string
	Log      logrus.FieldLogger
	Observer RelayObserver

	mu sync.Mutex
}

// Run connects to RabbitMQ, declares the queue and consumes until ctx is
// cancelled.  Broker failures are retried with exponential backoff capped
// at 30s; Run only returns when ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(r.URL)
		if err != nil {
			r.Log.WithError(err).WithField("retry_in", backoff).Warn("notification-relay: failed to dial broker")
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = r.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		r.Log.WithError(err).Warn("notification-relay: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
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

func (r *Relay) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		r.Log.WithError(err).Warn("notification-relay: set QoS failed")
	}
	if _, err := ch.QueueDeclare(NotificationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, NotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := r.Handle(d.Body); err != nil {
				r.Log.WithError(err).Error("notification-relay: handle message failed")
				r.observe("rejected")
				_ = d.Nack(false, false) // do not requeue poison messages
				continue
			}
			r.observe("written")
			_ = d.Ack(false)
		}
	}
}

func (r *Relay) observe(result string) {
	if r.Observer != nil {
		r.Observer.ObserveRelay(result)
	}
}

// Handle decodes one message body and appends it to the log file.
func (r *Relay) Handle(body []byte) error {
	var ev NotificationCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.NotificationID == 0 {
		return errors.New("event without notification_id")
	}

	recipient := "guest"
	switch {
	case ev.AccountID != nil:
		recipient = fmt.Sprintf("account=%d", *ev.AccountID)
	case ev.Broadcast:
		recipient = "broadcast"
	}
	line := fmt.Sprintf("[%s] %s | notification_id=%d | %s | title=%q | message=%q\n",
		ev.CreatedAt, strings.ToUpper(ev.Type), ev.NotificationID, recipient, ev.Title, ev.Message)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", r.Dir, err)
	}
	f, err := os.OpenFile(filepath.Join(r.Dir, "notifications.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
