package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Shellboard/internal/config"
	"github.com/shaiso/Shellboard/internal/engine"
)

// NewDashboardCmd создаёт группу команд для версий дашбордов в API.
func NewDashboardCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Manage stored dashboard versions",
	}

	cmd.AddCommand(
		newDashboardListCmd(clientFn, outputFn),
		newDashboardVersionsCmd(clientFn, outputFn),
		newDashboardPublishCmd(clientFn, outputFn),
		newDashboardShowCmd(clientFn, outputFn),
	)

	return cmd
}

func newDashboardListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored dashboards",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			names, err := client.ListDashboards(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, len(names))
			for i, n := range names {
				rows[i] = []string{n}
			}

			out.Print([]string{"NAME"}, rows, names)
			return nil
		},
	}
}

func newDashboardVersionsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "versions NAME",
		Short: "List dashboard versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			versions, err := client.ListVersions(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "VERSION", "CREATED"}
			rows := make([][]string, len(versions))
			for i, v := range versions {
				rows[i] = []string{v.ID, strconv.Itoa(v.Version), v.CreatedAt}
			}

			out.Print(headers, rows, versions)
			return nil
		},
	}
}

func newDashboardPublishCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "publish FILE",
		Short: "Publish a definition file as a new dashboard version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			def, err := config.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := engine.Validate(def); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			v, err := client.PublishVersion(cmd.Context(), name, *def)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Dashboard %s published: version %d", v.Name, v.Version))
			out.Print(
				[]string{"ID", "NAME", "VERSION", "CREATED"},
				[][]string{{v.ID, v.Name, strconv.Itoa(v.Version), v.CreatedAt}},
				v,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Dashboard name (required)")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newDashboardShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME [VERSION]",
		Short: "Show a dashboard version (latest by default)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			version := "latest"
			if len(args) == 2 {
				version = args[1]
			}

			v, err := client.GetVersion(cmd.Context(), args[0], version)
			if err != nil {
				return err
			}

			if out.JSONMode() {
				out.JSON(v)
				return nil
			}

			out.Table(
				[]string{"ID", "NAME", "VERSION", "VIEWS", "COMMANDS", "CREATED"},
				[][]string{{
					v.ID,
					v.Name,
					strconv.Itoa(v.Version),
					strconv.Itoa(len(v.Spec.Views)),
					strconv.Itoa(len(v.Spec.Commands)),
					v.CreatedAt,
				}},
			)
			return nil
		},
	}
}
