// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cirello.io/oversight/v2"
	"github.com/spf13/cobra"

	"github.com/codifryed/coolercontrold/internal/config"
	"github.com/codifryed/coolercontrold/internal/engine"
	"github.com/codifryed/coolercontrold/internal/eventbus"
	"github.com/codifryed/coolercontrold/pkg/log"
	"github.com/codifryed/coolercontrold/pkg/metrics"
	"github.com/codifryed/coolercontrold/pkg/process"
)

const defaultConfigPath = "/etc/coolercontrol/config.toml"

func main() {
	var configPath string
	var logLevel string

	root := &cobra.Command{
		Use:   "coolercontrold",
		Short: "Fan and pump control daemon",
		Long: `coolercontrold normalizes temperature samples from heterogeneous
cooling hardware, runs them through a processor pipeline of
smoothing/hysteresis/EMA, evaluates Graph/Mix/Overlay profiles, and
dispatches duty commands on a fixed poll cadence.`,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to config.toml")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newRunCommand(&configPath, &logLevel))
	root.AddCommand(newSampleConfigCommand(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCommand(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the control engine in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(*configPath, *logLevel)
		},
	}
}

func newSampleConfigCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sample-config",
		Short: "Write a sample config.toml to --config and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.WriteSample(*configPath)
		},
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runDaemon(configPath, logLevel string) error {
	logger := log.NewDefaultLogger(parseLevel(logLevel))

	cfg, err := config.LoadTOMLProvider(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := eventbus.New(logger)
	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	defer func() { _ = bus.Shutdown(context.Background()) }()

	metricsReg := metrics.New()
	eng := engine.New(cfg, bus, metricsReg, logger)

	tree := oversight.New(
		oversight.NeverHalt(),
		oversight.DefaultRestartStrategy(),
		oversight.WithLogger(log.NewOversightLogger(logger)),
	)
	if err := tree.Add(process.New(eng), oversight.Transient(), oversight.Timeout(30*time.Second), eng.Name()); err != nil {
		return fmt.Errorf("add engine to supervision tree: %w", err)
	}

	logger.Info("coolercontrold starting", "config", configPath)
	return tree.Start(ctx)
}
