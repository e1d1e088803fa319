package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Shellboard/internal/domain"
)

// execResult — результат exec в JSON режиме.
type execResult struct {
	Command  string `json:"command"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// NewExecCmd создаёт команду exec — однократное выполнение команды по slug.
func NewExecCmd(env *Env) *cobra.Command {
	var inputs []string
	var raw bool

	cmd := &cobra.Command{
		Use:   "exec COMMAND",
		Short: "Execute a dashboard command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := env.Output()
			slug := args[0]

			values, err := InputValues(inputs)
			if err != nil {
				return err
			}

			s, err := env.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.Gateway.Execute(cmd.Context(), slug, values)
			if err != nil {
				return err
			}

			printResult(out, slug, res, raw)

			if !res.Succeeded() {
				return &ExitError{Step: slug, Command: slug, Code: res.ExitCode}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "Input value NAME=VALUE (repeatable)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print command output only")

	return cmd
}

// printResult выводит результат команды: сырой вывод, JSON или таблицу.
func printResult(out *Output, command string, res *domain.ExecutionResult, raw bool) {
	if raw {
		out.Raw(res.Output())
		return
	}

	if out.JSONMode() {
		out.JSON(execResult{
			Command:  command,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		})
		return
	}

	out.Table(
		[]string{"COMMAND", "EXIT"},
		[][]string{{command, strconv.Itoa(res.ExitCode)}},
	)
	out.Raw(res.Stdout)
	if res.Stderr != "" {
		out.Success(fmt.Sprintf("stderr:\n%s", res.Stderr))
	}
}
