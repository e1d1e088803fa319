package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
	"unicode/utf8"

	"github.com/shaiso/Shellboard/internal/domain"
)

// Значения по умолчанию.
const (
	DefaultShell          = "/bin/sh"
	DefaultCommandTimeout = 30 * time.Second
	DefaultMaxOutput      = 1 << 20
)

// ShellExecutor запускает команды через shell.
type ShellExecutor struct {
	// Shell — путь к интерпретатору (default: /bin/sh).
	Shell string

	// Timeout — ограничение времени выполнения (default: 30s).
	Timeout time.Duration

	// Dir — рабочий каталог процесса (пусто — текущий).
	Dir string

	// MaxOutput — лимит байт для stdout и stderr по отдельности (default: 1 MiB).
	MaxOutput int
}

// Run выполняет команду и возвращает её вывод и exit code.
func (e *ShellExecutor) Run(ctx context.Context, command string, inputs []domain.InputValue) (*domain.ExecutionResult, error) {
	if command == "" {
		return nil, ErrEmptyCommand
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shell := e.Shell
	if shell == "" {
		shell = DefaultShell
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = e.Dir
	cmd.Env = Environ(os.Environ(), inputs)
	cmd.WaitDelay = time.Second

	limit := e.MaxOutput
	if limit <= 0 {
		limit = DefaultMaxOutput
	}

	stdout := &limitedBuffer{limit: limit}
	stderr := &limitedBuffer{limit: limit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %s", ErrExecutionTimeout, timeout)
		}
		return nil, ctx.Err()
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %v", ErrExecutionFailed, err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &domain.ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}, nil
}

// Environ добавляет inputs к базовому окружению как NAME=VALUE.
// Пустые имена пропускаются.
func Environ(base []string, inputs []domain.InputValue) []string {
	env := make([]string, 0, len(base)+len(inputs))
	env = append(env, base...)
	for _, in := range inputs {
		if in.Name == "" {
			continue
		}
		env = append(env, in.Name+"="+in.Value)
	}
	return env
}

// limitedBuffer хранит первые limit байт вывода, остальное отбрасывает.
// Write всегда сообщает об успехе, чтобы процесс не получил EPIPE.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if room := b.limit - b.buf.Len(); room < len(p) {
		p = p[:max(room, 0)]
		b.truncated = true
	}
	b.buf.Write(p)
	return n, nil
}

// String возвращает сохранённый вывод. Если вывод обрезан посреди
// UTF-8 символа, неполный символ отбрасывается.
func (b *limitedBuffer) String() string {
	out := b.buf.Bytes()
	if b.truncated {
		out = trimPartialRune(out)
	}
	return string(out)
}

// trimPartialRune отрезает незавершённый UTF-8 символ в конце p.
func trimPartialRune(p []byte) []byte {
	for i := len(p) - 1; i >= 0 && i >= len(p)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(p[i]) {
			continue
		}
		if !utf8.FullRune(p[i:]) {
			return p[:i]
		}
		break
	}
	return p
}
