// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений и ответов
//   - consumer.go   — потребление сообщений из очередей
//   - rpc.go        — request/reply поверх exclusive reply-очереди
//
// Типы сообщений:
//   - command.execute — запрос на выполнение команды
//   - command.result  — результат выполнения (ответ в reply-очередь)
//
// Exchanges:
//   - shellboard.commands — запросы на выполнение
//   - shellboard.dlq      — dead letter queue
package mq
