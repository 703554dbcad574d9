package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	logLevel   string
	logFile    string
)

// main wires the cobra commands and exits 1 on any returned error. The
// root command with no subcommand starts an interactive flight.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "dronesim",
		Short:         "single-drone flight simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runFly,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a named preset")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")

	flyCmd := &cobra.Command{
		Use:   "fly",
		Short: "fly the drone in the terminal",
		RunE:  runFly,
	}
	addFlyFlags(flyCmd)
	addFlyFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "run scenarios headless",
		RunE:  runScenarios,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&format, "format", "table", "output format: table, csv, json, plot, svg, canvas-svg")
	runCmd.Flags().IntVar(&parallel, "parallel", 0, "max scenarios in flight (0 = unlimited)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	plotCmd := &cobra.Command{
		Use:   "plot [scenario]",
		Short: "plot one field of a scenario run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotScenario,
	}
	addRunFlags(plotCmd)
	plotCmd.Flags().StringVar(&csvFile, "csv", "", "plot from an exported csv instead of running")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list headless scenarios",
		RunE:  listScenarios,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as yaml",
		RunE:  printConfig,
	}
	configCmd.Flags().StringVar(&writePath, "write", "", "save the configuration to this path")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}
		},
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search the altitude-hold gains",
		RunE:  tuneHold,
	}
	addTuneFlags(tuneCmd)

	rootCmd.AddCommand(flyCmd, runCmd, plotCmd, scenariosCmd, configCmd, presetsCmd, tuneCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig starts from the preset (or defaults) and overlays the config
// file on top. Command flags are applied by the caller, only when set.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	return cfg, nil
}

// newLogger builds the text logger for --log-level. The returned closer
// releases the log file, if any.
func newLogger(fallback io.Writer) (*slog.Logger, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	out, closer := fallback, func() error { return nil }
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		out, closer = f, f.Close
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closer, nil
}
