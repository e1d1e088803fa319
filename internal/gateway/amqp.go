package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/mq"
)

const opAMQP = "amqp"

// Caller отправляет запрос и ждёт ответ. *mq.RPCClient реализует его.
type Caller interface {
	Call(ctx context.Context, exchange mq.Exchange, routingKey mq.RoutingKey, msg *mq.Message, ttl time.Duration) (*mq.Message, error)
}

// AMQP выполняет команды через shellboard-worker.
type AMQP struct {
	rpc     Caller
	timeout time.Duration
}

// NewAMQP создаёт AMQP gateway. timeout <= 0 — DefaultTimeout.
func NewAMQP(rpc Caller, timeout time.Duration) *AMQP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AMQP{rpc: rpc, timeout: timeout}
}

// Execute публикует command.execute и ждёт command.result.
//
// Запрос живёт в очереди не дольше таймаута: если воркеров нет,
// сообщение истечёт, а вызов вернёт ErrTimeout.
func (a *AMQP) Execute(ctx context.Context, commandRef string, inputs []domain.InputValue) (*domain.ExecutionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	msg := mq.NewMessage(mq.MessageTypeExecute, mq.ExecutePayload{
		Command: commandRef,
		Inputs:  inputs,
	})

	reply, err := a.rpc.Call(ctx, mq.ExchangeCommands, mq.RoutingKeyExecute, msg, a.timeout)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, newError(opAMQP, commandRef, ErrTimeout, err)
		}
		return nil, newError(opAMQP, commandRef, ErrUnavailable, err)
	}

	payload, err := mq.ParsePayload[mq.ResultPayload](reply)
	if err != nil {
		return nil, newError(opAMQP, commandRef, ErrProtocol, err)
	}

	if payload.NotFound {
		return nil, newError(opAMQP, commandRef, ErrUnknownCommand, errors.New(payload.Error))
	}
	if payload.Error != "" {
		return nil, newError(opAMQP, commandRef, ErrService, errors.New(payload.Error))
	}

	return &domain.ExecutionResult{
		Stdout:   payload.Stdout,
		Stderr:   payload.Stderr,
		ExitCode: payload.ExitCode,
	}, nil
}
