package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeCommands Exchange = "shellboard.commands"
	ExchangeDLQ      Exchange = "shellboard.dlq"

	// ExchangeDefault — default exchange, маршрутизирует по имени очереди.
	// Через него уходят ответы в reply-очереди.
	ExchangeDefault Exchange = ""
)

// Queues — имена очередей.
const (
	QueueCommandsExecute Queue = "commands.execute"
	QueueDLQCommands     Queue = "dlq.commands"
)

// Routing keys.
const (
	RoutingKeyExecute     RoutingKey = "execute"
	RoutingKeyDLQCommands RoutingKey = "commands"
)

// SetupTopology объявляет exchanges, queues и bindings.
// Операции идемпотентны: сервисы вызывают SetupTopology при старте.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		// 1. Создаём exchanges
		if err := declareExchanges(ch); err != nil {
			return err
		}

		// 2. Создаём queues
		if err := declareQueues(ch); err != nil {
			return err
		}

		// 3. Привязываем queues к exchanges
		return bindQueues(ch)
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	for _, name := range []Exchange{ExchangeCommands, ExchangeDLQ} {
		err := ch.ExchangeDeclare(
			string(name), // name
			"direct",     // type
			true,         // durable
			false,        // auto-deleted
			false,        // internal
			false,        // no-wait
			nil,          // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// commands.execute — отклонённые запросы уходят в DLQ
		{QueueCommandsExecute, amqp.Table{
			"x-dead-letter-exchange":    string(ExchangeDLQ),
			"x-dead-letter-routing-key": string(RoutingKeyDLQCommands),
		}},

		// dlq.commands — сама DLQ очередь
		{QueueDLQCommands, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueCommandsExecute, RoutingKeyExecute, ExchangeCommands},
		{QueueDLQCommands, RoutingKeyDLQCommands, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Shellboard RabbitMQ Topology:

    shellboard.commands (direct)
    └── commands.execute [routing: execute]
            Consumer: shellboard-worker
            DLQ: dlq.commands

    shellboard.dlq (direct)
    └── dlq.commands [routing: commands]
            Manual processing

    (default exchange)
    └── amq.gen-* exclusive reply queues
            Consumer: AMQP gateway (RPC client)
  `
}
