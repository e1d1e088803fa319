// Shellboard CLI — терминальный дашборд и инструмент командной строки.
//
// Использование:
//
//	shellboard [--api-url URL] [--config FILE|db:NAME] [--gateway KIND] [--json] <command> [flags]
//
// Команды:
//
//	tui         Интерактивный дашборд
//	views       Список views
//	categories  Список категорий
//	exec        Выполнить команду
//	run         Прогнать view по всем шагам
//	validate    Проверить файл определения
//	dashboard   Версии дашбордов в API
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Shellboard/internal/cli"
	"github.com/shaiso/Shellboard/internal/config"
	"github.com/shaiso/Shellboard/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	env := &cli.Env{}

	rootCmd := &cobra.Command{
		Use:           "shellboard",
		Short:         "Shellboard — dashboard of shell commands",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Логи CLI идут в stderr, stdout остаётся для данных.
			if env.Logger == nil {
				env.Logger = telemetry.SetupLoggerTo(os.Stderr)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&env.APIURL, "api-url", envOr("API_URL", config.DefaultAPIURL), "API server URL")
	flags.StringVarP(&env.Source, "config", "c", os.Getenv("SHELLBOARD_CONFIG"), "Definition file or db:NAME (default: load from API)")
	flags.StringVar(&env.Gateway, "gateway", os.Getenv("GATEWAY"), "Command gateway with --config: local, http, amqp")
	flags.StringVar(&env.Gate, "gate", os.Getenv("GATE_POLICY"), "Input gating policy: any, all")
	flags.DurationVar(&env.Timeout, "timeout", 30*time.Second, "Command timeout")
	flags.BoolVar(&env.JSON, "json", false, "Output in JSON format")
	env.RabbitURL = os.Getenv("RABBITMQ_URL")

	clientFn := env.Client
	outputFn := env.Output

	rootCmd.AddCommand(
		cli.NewTUICmd(env),
		cli.NewViewsCmd(env),
		cli.NewCategoriesCmd(env),
		cli.NewExecCmd(env),
		cli.NewRunCmd(env),
		cli.NewValidateCmd(outputFn),
		cli.NewDashboardCmd(clientFn, outputFn),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		// Код выхода команды передаётся как есть
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
