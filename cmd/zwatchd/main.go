// Package main is the CLI entry point for zwatchd.
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
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/zwatch/internal/config"
	"github.com/eliteGoblin/zwatch/internal/daemon"
	"github.com/eliteGoblin/zwatch/internal/domain"
	"github.com/eliteGoblin/zwatch/internal/infra"
	"github.com/eliteGoblin/zwatch/internal/lifecycle"
	"github.com/eliteGoblin/zwatch/internal/usecase"
	"github.com/eliteGoblin/zwatch/internal/zscaler"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "zwatchd",
	Short: "Watches the ZScaler Internet Security feature",
	Long: `zwatchd watches the ZScaler client's Internet Security feature and runs
a notification command once each time the feature switches on. It is
meant to run as a systemd user service; 'zwatchd install' sets that up.

The notification command and the poll cadence come from
~/.config/zwatch/config.json.`,
	Version: Version,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitoring loop in the foreground",
	Long: `Runs the monitoring loop until interrupted. This is what the systemd
unit executes; running it by hand is useful for debugging.`,
	RunE: runRun,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate the current status once and print it",
	RunE:  runCheck,
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the daemon and the vpn CLI for this user",
	Long: `Copies the vpn CLI and this binary to ~/.local/bin, writes the systemd
user unit and starts it. Installing over an existing installation is
safe and updates the binaries in place.`,
	RunE: runInstall,
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop the daemon and remove everything install created",
	RunE:  runUninstall,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the installation and service state",
	RunE:  runStatus,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run:   runVersion,
}

var jsonOutput bool

func init() {
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("cannot load configuration", zap.Error(err))
		return err
	}
	if _, err := os.Stat(cfg.NotificationBin); err != nil {
		logger.Warn("notification command does not exist yet",
			zap.String("bin", cfg.NotificationBin))
	}

	monitorCfg := daemon.DefaultMonitorConfig()
	monitorCfg.PollInterval = cfg.WaitBetweenChecks

	notifier := infra.NewExecNotifier(cfg.NotificationBin, logger)
	monitor := daemon.NewMonitor(monitorCfg, buildChecker(logger), notifier, logger)

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), daemon.DefaultProbeTimeout)
	defer cancel()

	result, err := buildChecker(logger).Evaluate(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("client:   %s\n", result.Client)
	fmt.Printf("security: %s\n", result.Security)
	fmt.Printf("in call:  %v\n", result.InCall)
	return nil
}

// buildChecker wires the production checker: real process table, real
// client database.
func buildChecker(logger *zap.Logger) domain.SecurityChecker {
	inspector := infra.NewProcessInspector()
	client := zscaler.NewClient(inspector, logger)
	probe := zscaler.NewAppDBProbe(logger)
	calls := infra.NewCallDetector(inspector)
	return usecase.NewChecker(client, probe, calls, logger)
}

func runInstall(cmd *cobra.Command, args []string) error {
	installer, err := buildInstaller()
	if err != nil {
		return err
	}
	return installer.Install(context.Background())
}

func runUninstall(cmd *cobra.Command, args []string) error {
	installer, err := buildInstaller()
	if err != nil {
		return err
	}
	return installer.Uninstall(context.Background())
}

func buildInstaller() (*lifecycle.Installer, error) {
	target, err := lifecycle.DefaultTarget()
	if err != nil {
		return nil, err
	}
	assets, err := lifecycle.LocateAssets()
	if err != nil {
		return nil, err
	}

	units := infra.NewUserSystemd(createLogger())
	return lifecycle.NewInstaller(target, assets, infra.NewFileSystemManager(), units, os.Stdout), nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	target, err := lifecycle.DefaultTarget()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fs := infra.NewFileSystemManager()
	if !fs.Exists(target.UnitPath) {
		fmt.Println("installed: no")
		fmt.Println("\nRun 'zwatchd install' to set up the service.")
		return nil
	}
	fmt.Printf("installed: yes (%s)\n", target.UnitPath)

	units := infra.NewUserSystemd(zap.NewNop())
	if enabled, err := units.IsEnabled(ctx, lifecycle.UnitName); err == nil {
		fmt.Printf("enabled:   %v\n", enabled)
	}
	if active, err := units.IsActive(ctx, lifecycle.UnitName); err == nil {
		fmt.Printf("active:    %v\n", active)
	}

	configPath, err := config.Path()
	if err != nil {
		return err
	}
	if fs.Exists(configPath) {
		fmt.Printf("config:    %s\n", configPath)
	} else {
		fmt.Printf("config:    %s (missing)\n", configPath)
	}
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("zwatchd %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}

// createLogger builds the daemon logger. Everything goes to stderr so
// systemd forwards it to the journal.
func createLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
