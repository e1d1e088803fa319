package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shaiso/Shellboard/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeExecute MessageType = "command.execute"
	MessageTypeResult  MessageType = "command.result"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage создаёт сообщение с новым ID.
func NewMessage(msgType MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// ExecutePayload — payload запроса на выполнение команды.
type ExecutePayload struct {
	Command string              `json:"command"`
	Inputs  []domain.InputValue `json:"inputs,omitempty"`
}

// ResultPayload — payload ответа с результатом.
// Error заполнен, если команду не удалось выполнить (не путать с exit code).
type ResultPayload struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
	Error    string `json:"error,omitempty"`
	NotFound bool   `json:"not_found,omitempty"`
}

// PublishOptions — свойства AMQP сообщения для request/reply.
type PublishOptions struct {
	// ReplyTo — очередь для ответа.
	ReplyTo string

	// CorrelationID — идентификатор, по которому сопоставляется ответ.
	CorrelationID string

	// TTL — время жизни сообщения в очереди (0 — без ограничения).
	TTL time.Duration

	// Transient — не сохранять сообщение на диск.
	Transient bool
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	return p.PublishWithOptions(ctx, exchange, routingKey, msg, PublishOptions{})
}

// PublishWithOptions публикует сообщение с дополнительными свойствами.
func (p *Publisher) PublishWithOptions(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message, opts PublishOptions) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
		MessageId:     msg.ID,
		Timestamp:     msg.Timestamp,
		ReplyTo:       opts.ReplyTo,
		CorrelationId: opts.CorrelationID,
		Body:          body,
	}
	if opts.Transient {
		publishing.DeliveryMode = amqp.Transient
	}
	if opts.TTL > 0 {
		publishing.Expiration = strconv.FormatInt(opts.TTL.Milliseconds(), 10)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			publishing,
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
			"correlation_id", opts.CorrelationID,
		)

		return nil
	})
}

// PublishResult отправляет результат выполнения в reply-очередь.
// Потребитель: AMQP gateway, ожидающий ответ с correlationID.
func (p *Publisher) PublishResult(ctx context.Context, replyTo, correlationID string, payload ResultPayload) error {
	msg := NewMessage(MessageTypeResult, payload)

	return p.PublishWithOptions(ctx, ExchangeDefault, RoutingKey(replyTo), msg, PublishOptions{
		CorrelationID: correlationID,
		Transient:     true,
	})
}
