package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/clausewise/backend/internal/db"
	"github.com/clausewise/backend/internal/util"
	"github.com/clausewise/backend/pkg/logger"
)

// SinkQueue is the queue the external audit sink consumes.
const SinkQueue = "audit_events"

// Connect dials RabbitMQ from the environment.
func Connect() *amqp091.Connection {
	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		util.GetEnv("RABBITMQ_USER"),
		util.GetEnv("RABBITMQ_PASSWORD"),
		util.GetEnv("RABBITMQ_HOST"),
		util.GetEnv("RABBITMQ_PORT"),
	)

	conn, err := amqp091.Dial(connURL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}
	return conn
}

// SetupQueue declares the sink queue and its dead-letter companion.
func SetupQueue(ch *amqp091.Channel) error {
	for _, name := range []string{SinkQueue, SinkQueue + "_dlq"} {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Fanout publishes a committed audit row to the sink queue. Best effort: a
// publish failure is logged and swallowed, the relational row already holds
// the event.
func Fanout(ch *amqp091.Channel, event db.AuditEvent) {
	if ch == nil {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal audit event", "err", err)
		return
	}

	err = ch.Publish(
		"",
		SinkQueue,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		logger.Error("Failed to publish audit event", "eventType", event.EventType, "err", err)
	}
}
