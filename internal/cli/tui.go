package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Shellboard/internal/orchestrator"
	"github.com/shaiso/Shellboard/internal/scheduler"
	"github.com/shaiso/Shellboard/internal/telemetry"
	"github.com/shaiso/Shellboard/internal/tui"
)

// bridgeSize — буфер событий между views и TUI.
const bridgeSize = 64

// NewTUICmd создаёт команду tui — интерактивный терминальный дашборд.
func NewTUICmd(env *Env) *cobra.Command {
	var logFile string
	var chainDelay time.Duration
	var noColor bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Терминал занят TUI, логи пишутся в файл или отбрасываются.
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				w = f
			}
			env.Logger = telemetry.SetupLoggerTo(w)

			tui.ConfigureColors(!noColor && os.Getenv("NO_COLOR") == "")

			gate, err := env.GatePolicy()
			if err != nil {
				return err
			}

			s, err := env.Open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			bridge := tui.NewBridge(bridgeSize)

			dash, err := orchestrator.NewDashboard(orchestrator.DashboardConfig{
				Dashboard:  s.Dashboard,
				Gateway:    s.Gateway,
				Gate:       gate,
				ChainDelay: chainDelay,
				Callbacks:  bridge.Callbacks(),
				Logger:     env.Logger,
			})
			if err != nil {
				return err
			}

			sched, err := scheduler.New(scheduler.Config{
				Views:     s.Dashboard.Views,
				Triggerer: dash,
				Logger:    env.Logger,
			})
			if err != nil {
				return err
			}

			if err := dash.Start(ctx); err != nil {
				return err
			}
			defer dash.Stop()

			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			if sched.Len() > 0 {
				go sched.Run(runCtx, time.Second)
			}

			return tui.Run(runCtx, dash, bridge, tui.Options{RawBaseURL: s.RawBaseURL})
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file")
	cmd.Flags().DurationVar(&chainDelay, "chain-delay", orchestrator.DefaultChainDelay, "Delay before auto-chained steps")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colors")

	return cmd
}
