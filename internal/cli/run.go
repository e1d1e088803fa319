package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// stepOutput — шаг view в JSON режиме.
type stepOutput struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Command  string `json:"command"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// NewRunCmd создаёт команду run — прогон view от первого до последнего шага.
func NewRunCmd(env *Env) *cobra.Command {
	var inputs []string
	var raw bool

	cmd := &cobra.Command{
		Use:   "run VIEW",
		Short: "Run a view through all its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := env.Output()

			values, err := ParseInputs(inputs)
			if err != nil {
				return err
			}

			gate, err := env.GatePolicy()
			if err != nil {
				return err
			}

			s, err := env.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			view, ok := s.Dashboard.View(args[0])
			if !ok {
				return fmt.Errorf("view not found: %s", args[0])
			}

			steps := []stepOutput{}
			err = RunView(cmd.Context(), view, s.Gateway, values, gate, func(r StepReport) {
				if out.JSONMode() && !raw {
					steps = append(steps, stepOutput{
						Index:    r.Index,
						Name:     r.Name,
						Command:  r.Command,
						Stdout:   r.Result.Stdout,
						Stderr:   r.Result.Stderr,
						ExitCode: r.Result.ExitCode,
					})
					return
				}
				if !raw {
					out.Success(fmt.Sprintf("==> %s (%s)", r.Name, r.Command))
				}
				printResult(out, r.Command, r.Result, true)
			})

			if out.JSONMode() && !raw {
				out.JSON(steps)
			}
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "Input value NAME=VALUE (repeatable)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print command output only")

	return cmd
}
