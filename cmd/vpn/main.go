// Package main is the vpn CLI: start or fully stop the ZScaler client.
//
// The client wants to stay resident and start when the system starts.
// No way. 'vpn down' stops every process and disables the boot-time
// unit; 'vpn up' brings it all back for the hours it is actually needed.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/zwatch/internal/domain"
	"github.com/eliteGoblin/zwatch/internal/infra"
	"github.com/eliteGoblin/zwatch/internal/vpnctl"
	"github.com/eliteGoblin/zwatch/internal/zscaler"
)

var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vpn",
	Short: "Start or fully stop the ZScaler VPN client",
	Long: `vpn drives every piece of the ZScaler client: the system service, the
tunnel it spawns and the tray UI in the user session. Run without a
subcommand it reports how much of the client is running.

Starting and stopping touch a system-level unit, so both prompt for
sudo once up front.`,
	RunE: runStatus,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the ZScaler client",
	RunE:  runUp,
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop the ZScaler client and keep it from starting at boot",
	RunE:  runDown,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "show debug logs")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
}

func runUp(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer func() { _ = logger.Sync() }()

	if err := vpnctl.PrimeSudo(); err != nil {
		return err
	}

	return buildController(logger).Up(context.Background())
}

func runDown(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer func() { _ = logger.Sync() }()

	if err := vpnctl.PrimeSudo(); err != nil {
		return err
	}

	return buildController(logger).Down(context.Background())
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer func() { _ = logger.Sync() }()

	status, err := buildController(logger).Status(context.Background())
	if err != nil {
		return err
	}

	switch status {
	case domain.ClientRunning:
		fmt.Println("zscaler is running")
	case domain.ClientPartial:
		fmt.Println("zscaler is half-running")
	case domain.ClientStopped:
		fmt.Println("zscaler is not running")
	}
	return nil
}

func buildController(logger *zap.Logger) *vpnctl.Controller {
	inspector := infra.NewProcessInspector()
	client := zscaler.NewClient(inspector, logger)
	system := infra.NewSystemSystemd(logger)
	user := infra.NewUserSystemd(logger)
	return vpnctl.NewController(client, system, user, logger)
}

// createLogger builds a console logger; --verbose turns on debug lines
// including every systemctl invocation.
func createLogger() *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true
	config.DisableCaller = true
	if !verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := config.Build()
	if err != nil {
		logger, _ = zap.NewDevelopment()
	}
	return logger
}
