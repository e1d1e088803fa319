package domain

// InputValue — собранное значение входного параметра.
// Name совпадает с InputSpec.Slug.
type InputValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ExecutionResult — результат выполнения команды.
//
// Ненулевой ExitCode — это нормальный результат (ExecutionFailure),
// а не ошибка gateway.
type ExecutionResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// Succeeded возвращает true, если команда завершилась с кодом 0.
func (r *ExecutionResult) Succeeded() bool {
	return r != nil && r.ExitCode == 0
}

// Output возвращает stdout, а если он пустой — stderr.
func (r *ExecutionResult) Output() string {
	if r == nil {
		return ""
	}
	if r.Stdout != "" {
		return r.Stdout
	}
	return r.Stderr
}
