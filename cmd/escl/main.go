// Escl is a command line client for network scanners that speak eSCL
// (AirScan).
//
// It finds scanners with mDNS, shows their capabilities and status, and runs
// scan jobs, writing each delivered page to a file.
//
// Usage:
//
//	escl [command] [flags]
//
// Scanners are addressed with --device, which takes either a full eSCL base
// URL or a name remembered by 'escl discover --save'. Without --device the
// command runs discovery and uses the only scanner found, or asks which one
// when several answer and the terminal is interactive.
// See 'escl --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/escl/internal/config"
	"github.com/muurk/escl/internal/escl"
	"github.com/muurk/escl/internal/logging"
	"github.com/muurk/escl/internal/version"
)

// Global flags and state shared by commands
var (
	deviceRef       string
	outputFormat    string
	logLevel        string
	metricsTextfile string

	registry        *config.Registry
	metrics         *escl.Metrics
	metricsRegistry *prometheus.Registry
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	// Metrics are written for failed runs too
	if mErr := writeMetrics(); mErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", mErr)
	}
	logging.Sync()

	if err != nil {
		var shown *shownError
		if !errors.As(err, &shown) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "escl",
	Short: "eSCL (AirScan) network scanner client",
	Long: `A command line client for network scanners that speak eSCL (AirScan).

Finds scanners on the local network with mDNS, shows their capabilities and
status, and runs scan jobs, saving every page the scanner delivers.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&deviceRef, "device", "d", "", "Scanner base URL or remembered name (skips discovery)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "detailed", "Output format (detailed, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.LogLevelEnvVar)
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write client metrics in Prometheus text format to this file on exit")

	rootCmd.AddCommand(versionCmd)
}

// setup runs before every command: logging, the user registry and metrics
func setup(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	switch outputFormat {
	case "detailed", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q (use detailed, json or yaml)", outputFormat)
	}

	reg, err := config.LoadRegistry()
	if err != nil {
		// A broken config file should not stop one-off commands
		logging.Warn("Ignoring unreadable config file", zap.Error(err))
		reg = config.NewRegistry()
	}
	registry = reg

	if metricsTextfile != "" {
		metricsRegistry = prometheus.NewRegistry()
		metrics = escl.NewMetrics(metricsRegistry)
	}
	return nil
}

func writeMetrics() error {
	if metricsRegistry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(metricsTextfile, metricsRegistry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	logging.Debug("Metrics written", zap.String("path", metricsTextfile))
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("escl %s\n", version.Full())
		fmt.Printf("User-Agent: %s\n", version.UserAgent())
	},
}
