package sequencer

import (
	"fmt"
	"strings"

	"github.com/shaiso/Shellboard/internal/domain"
)

// GatePolicy определяет, когда шаг с объявленными inputs готов к выполнению.
type GatePolicy int

const (
	// GateAnyInput — достаточно одного непустого значения.
	// Не проверяет, что заполнены все объявленные inputs.
	GateAnyInput GatePolicy = iota

	// GateAllInputs — все объявленные inputs должны иметь непустое значение.
	GateAllInputs
)

// String возвращает имя политики.
func (p GatePolicy) String() string {
	switch p {
	case GateAllInputs:
		return "all"
	default:
		return "any"
	}
}

// ParseGatePolicy парсит имя политики ("any", "all").
func ParseGatePolicy(s string) (GatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return GateAnyInput, nil
	case "all":
		return GateAllInputs, nil
	default:
		return GateAnyInput, fmt.Errorf("%w: %s", ErrUnknownGatePolicy, s)
	}
}

// Collector хранит собранные значения inputs по индексам шагов.
//
// Collector не потокобезопасен: синхронизацию обеспечивает Sequencer.
type Collector struct {
	values [][]domain.InputValue
}

// NewCollector создаёт Collector для steps шагов.
func NewCollector(steps int) *Collector {
	return &Collector{values: make([][]domain.InputValue, steps)}
}

func (c *Collector) check(step int) error {
	if step < 0 || step >= len(c.values) {
		return fmt.Errorf("%w: %d", ErrStepIndex, step)
	}
	return nil
}

// SetValue добавляет или обновляет значение name для шага.
// Существующее значение перезаписывается на месте, порядок сбора сохраняется.
func (c *Collector) SetValue(step int, name, value string) error {
	if err := c.check(step); err != nil {
		return err
	}

	for i := range c.values[step] {
		if c.values[step][i].Name == name {
			c.values[step][i].Value = value
			return nil
		}
	}

	c.values[step] = append(c.values[step], domain.InputValue{Name: name, Value: value})
	return nil
}

// Value возвращает значение name для шага.
func (c *Collector) Value(step int, name string) (string, bool) {
	if c.check(step) != nil {
		return "", false
	}
	for _, v := range c.values[step] {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Values возвращает копию собранных значений шага.
func (c *Collector) Values(step int) []domain.InputValue {
	if c.check(step) != nil || len(c.values[step]) == 0 {
		return nil
	}
	return append([]domain.InputValue(nil), c.values[step]...)
}

// IsComplete сообщает, готов ли шаг к выполнению.
//
// Шаг без объявленных inputs готов всегда. Пустая строка значением
// не считается.
func (c *Collector) IsComplete(step int, specs []domain.InputSpec, policy GatePolicy) bool {
	if len(specs) == 0 {
		return true
	}

	switch policy {
	case GateAllInputs:
		for _, spec := range specs {
			if v, ok := c.Value(step, spec.Slug); !ok || v == "" {
				return false
			}
		}
		return true
	default:
		if c.check(step) != nil {
			return false
		}
		for _, v := range c.values[step] {
			if v.Value != "" {
				return true
			}
		}
		return false
	}
}

// Reset очищает значения шага.
func (c *Collector) Reset(step int) {
	if c.check(step) != nil {
		return
	}
	c.values[step] = nil
}

// snapshot возвращает глубокую копию всех значений.
func (c *Collector) snapshot() [][]domain.InputValue {
	out := make([][]domain.InputValue, len(c.values))
	for i := range c.values {
		out[i] = c.Values(i)
	}
	return out
}
