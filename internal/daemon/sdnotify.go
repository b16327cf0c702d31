package daemon

import (
	"net"
	"os"

	"go.uber.org/zap"
)

const (
	stateReady    = "READY=1"
	stateStopping = "STOPPING=1"
)

// notifySupervisor sends a service state to systemd via NOTIFY_SOCKET.
// Outside systemd (no socket in the environment) it returns silently.
// Dial failures are logged but do not fail the caller (fire-and-forget).
func notifySupervisor(state string, logger *zap.Logger) {
	socket := os.Getenv("NOTIFY_SOCKET")
	if socket == "" {
		return
	}

	conn, err := net.Dial("unixgram", socket)
	if err != nil {
		logger.Warn("sd-notify dial failed",
			zap.String("socket", socket),
			zap.Error(err))
		return
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(state)); err != nil {
		logger.Warn("sd-notify write failed", zap.Error(err))
	}
}
