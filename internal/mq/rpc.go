package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Ошибки RPC.
var (
	// ErrRPCNotReady — reply-очередь ещё не объявлена (Start не вызван или идёт reconnect).
	ErrRPCNotReady = errors.New("rpc reply queue not ready")

	// ErrRPCClosed — клиент остановлен.
	ErrRPCClosed = errors.New("rpc client closed")
)

// RPCClient реализует request/reply поверх RabbitMQ.
//
// Ответы приходят в exclusive server-named очередь и сопоставляются
// с запросами по CorrelationId.
type RPCClient struct {
	conn      *Connection
	publisher *Publisher
	logger    *slog.Logger

	mu         sync.Mutex
	replyQueue string
	pending    map[string]chan *Message
	closed     bool

	cancelFunc context.CancelFunc
	done       chan struct{}
}

// NewRPCClient создаёт RPC клиент.
func NewRPCClient(conn *Connection, publisher *Publisher, logger *slog.Logger) *RPCClient {
	return &RPCClient{
		conn:      conn,
		publisher: publisher,
		logger:    logger,
		pending:   make(map[string]chan *Message),
		done:      make(chan struct{}),
	}
}

// Start объявляет reply-очередь и запускает приём ответов в фоне.
// Ошибка возвращается, если первая настройка не удалась.
func (c *RPCClient) Start(ctx context.Context) error {
	reconnected := c.conn.ReconnectNotify()

	deliveries, err := c.setupReplyQueue()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancelFunc = cancel

	go c.run(ctx, deliveries, reconnected)

	return nil
}

// run принимает ответы и пересоздаёт reply-очередь после reconnect.
func (c *RPCClient) run(ctx context.Context, deliveries <-chan amqp.Delivery, reconnected <-chan struct{}) {
	defer close(c.done)

	for {
		c.dispatch(ctx, deliveries)

		// Запросы, ожидающие ответа в старой очереди, уже не дождутся его
		c.mu.Lock()
		c.replyQueue = ""
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-reconnected:
		}

		reconnected = c.conn.ReconnectNotify()

		var err error
		deliveries, err = c.setupReplyQueue()
		if err != nil {
			c.logger.Error("failed to redeclare reply queue", "error", err)
			deliveries = nil
		}
	}
}

// setupReplyQueue объявляет exclusive очередь и подписывается на неё.
func (c *RPCClient) setupReplyQueue() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, ErrNoChannel
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare reply queue: %w", err)
	}

	deliveries, err := ch.Consume(
		q.Name,
		"",
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume reply queue: %w", err)
	}

	c.mu.Lock()
	c.replyQueue = q.Name
	c.mu.Unlock()

	c.logger.Info("rpc reply queue ready", "queue", q.Name)

	return deliveries, nil
}

// dispatch раздаёт ответы ожидающим запросам. nil-канал ждёт только ctx.
func (c *RPCClient) dispatch(ctx context.Context, deliveries <-chan amqp.Delivery) {
	if deliveries == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-deliveries:
			if !ok {
				return
			}

			var msg Message
			if err := json.Unmarshal(raw.Body, &msg); err != nil {
				c.logger.Warn("malformed reply", "error", err)
				continue
			}

			c.mu.Lock()
			waiter, found := c.pending[raw.CorrelationId]
			delete(c.pending, raw.CorrelationId)
			c.mu.Unlock()

			if !found {
				// Запрос уже завершился по таймауту
				c.logger.Debug("late reply dropped", "correlation_id", raw.CorrelationId)
				continue
			}

			waiter <- &msg
		}
	}
}

// Call публикует запрос и ждёт ответ до отмены ctx.
// ttl ограничивает время жизни запроса в очереди.
func (c *RPCClient) Call(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message, ttl time.Duration) (*Message, error) {
	waiter := make(chan *Message, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrRPCClosed
	}
	replyQueue := c.replyQueue
	if replyQueue == "" {
		c.mu.Unlock()
		return nil, ErrRPCNotReady
	}
	c.pending[msg.ID] = waiter
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, msg.ID)
		c.mu.Unlock()
	}()

	err := c.publisher.PublishWithOptions(ctx, exchange, routingKey, msg, PublishOptions{
		ReplyTo:       replyQueue,
		CorrelationID: msg.ID,
		TTL:           ttl,
		Transient:     true,
	})
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case reply := <-waiter:
		return reply, nil
	}
}

// Stop останавливает приём ответов.
func (c *RPCClient) Stop() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	if c.cancelFunc != nil {
		c.cancelFunc()
		<-c.done
	}
}
