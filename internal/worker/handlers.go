package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/Shellboard/internal/mq"
)

// handleExecute обрабатывает запрос command.execute.
//
// Ошибки выполнения уходят запрашивающему в ResultPayload.Error.
// Ошибка возвращается consumer'у только если не удалось отправить ответ.
func (w *Worker) handleExecute(ctx context.Context, delivery *mq.Delivery) error {
	if delivery.Message.Type != mq.MessageTypeExecute {
		return fmt.Errorf("%w: unexpected message type %q", mq.ErrReject, delivery.Message.Type)
	}

	replyTo := delivery.ReplyTo()
	if replyTo == "" {
		return fmt.Errorf("%w: %w", mq.ErrReject, ErrNoReplyTo)
	}

	payload, err := mq.ParsePayload[mq.ExecutePayload](&delivery.Message)
	if err != nil {
		return fmt.Errorf("%w: %v", mq.ErrReject, err)
	}

	logger := w.logger.With("command", payload.Command, "correlation_id", delivery.CorrelationID())
	logger.Debug("executing command", "inputs", len(payload.Inputs))

	reply := w.execute(ctx, payload)

	if reply.Error != "" {
		logger.Warn("command failed", "error", reply.Error)
	} else {
		logger.Info("command executed", "exit_code", reply.ExitCode)
	}

	if err := w.publisher.PublishResult(ctx, replyTo, delivery.CorrelationID(), reply); err != nil {
		return fmt.Errorf("publish result: %w", err)
	}

	return nil
}

// execute выполняет команду и переводит результат в ResultPayload.
func (w *Worker) execute(ctx context.Context, payload mq.ExecutePayload) mq.ResultPayload {
	result, err := w.executor.Execute(ctx, payload.Command, payload.Inputs)
	if err != nil {
		return mq.ResultPayload{
			Error:    err.Error(),
			NotFound: errors.Is(err, ErrUnknownCommand),
		}
	}

	return mq.ResultPayload{
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		ExitCode: result.ExitCode,
	}
}
