package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Shellboard/internal/config"
	"github.com/shaiso/Shellboard/internal/engine"
)

// validateResult — итог проверки файла в JSON режиме.
type validateResult struct {
	File       string `json:"file"`
	Valid      bool   `json:"valid"`
	Views      int    `json:"views"`
	Commands   int    `json:"commands"`
	Categories int    `json:"categories"`
}

// NewValidateCmd создаёт команду validate — проверку файла определения.
func NewValidateCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a dashboard definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			def, err := config.LoadFile(args[0])
			if err != nil {
				return err
			}

			dash, err := engine.Resolve(def)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			res := validateResult{
				File:       args[0],
				Valid:      true,
				Views:      len(dash.Views),
				Commands:   len(dash.Commands),
				Categories: len(dash.Categories),
			}

			out.Success(fmt.Sprintf("Definition is valid: %s", args[0]))
			out.Print(
				[]string{"VIEWS", "COMMANDS", "CATEGORIES"},
				[][]string{{strconv.Itoa(res.Views), strconv.Itoa(res.Commands), strconv.Itoa(res.Categories)}},
				res,
			)
			return nil
		},
	}
}
