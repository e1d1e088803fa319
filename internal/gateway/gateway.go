package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/shaiso/Shellboard/internal/domain"
)

// Gateway выполняет команду по slug.
//
// Контракт совпадает с sequencer.Gateway: любая реализация
// подходит для секвенсора без адаптеров.
type Gateway interface {
	Execute(ctx context.Context, commandRef string, inputs []domain.InputValue) (*domain.ExecutionResult, error)
}

// Kind — тип gateway в конфигурации (GATEWAY).
type Kind string

const (
	KindHTTP  Kind = "http"
	KindAMQP  Kind = "amqp"
	KindLocal Kind = "local"
)

// ParseKind разбирает тип gateway. Пустая строка — http.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindHTTP:
		return KindHTTP, nil
	case KindAMQP:
		return KindAMQP, nil
	case KindLocal:
		return KindLocal, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Func — адаптер функции к Gateway.
type Func func(ctx context.Context, commandRef string, inputs []domain.InputValue) (*domain.ExecutionResult, error)

func (f Func) Execute(ctx context.Context, commandRef string, inputs []domain.InputValue) (*domain.ExecutionResult, error) {
	return f(ctx, commandRef, inputs)
}
