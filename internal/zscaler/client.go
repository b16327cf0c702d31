// Package zscaler holds everything specific to the ZScaler client
// install on this host: binary locations, service units and the
// notification database the client writes its status into.
package zscaler

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/zwatch/internal/domain"
)

const (
	// TrayBinary is the per-user tray UI process.
	TrayBinary = "/opt/zscaler/bin/ZSTray"

	// ServiceBinary is the root-owned control service.
	ServiceBinary = "/opt/zscaler/bin/zsaservice"

	// TunnelBinary is the root-owned tunnel the service spawns.
	TunnelBinary = "/opt/zscaler/bin/zstunnel"

	// SystemServiceUnit runs zsaservice (and through it the tunnel).
	SystemServiceUnit = "zsaservice.service"

	// TrayServiceUnit runs the tray UI in the user's session.
	TrayServiceUnit = "ZSTray.service"
)

const (
	defaultRetryAttempts = 5
	defaultRetryInterval = time.Second
)

// AllBinaries lists every process a fully running client has.
func AllBinaries() []string {
	return []string{TrayBinary, ServiceBinary, TunnelBinary}
}

// DaemonBinaries lists the processes the system service is responsible
// for; the tray is started separately in the user session.
func DaemonBinaries() []string {
	return []string{ServiceBinary, TunnelBinary}
}

// AppDBPath returns the client's notification database under home.
func AppDBPath(home string) string {
	return filepath.Join(home, ".Zscaler", "DB", "ZscalerApp.db")
}

// Client inspects and awaits the ZScaler processes on this host.
type Client struct {
	inspector     domain.ProcessInspector
	logger        *zap.Logger
	retryAttempts int
	retryInterval time.Duration
}

// NewClient creates a client inspector with production retry timing.
func NewClient(inspector domain.ProcessInspector, logger *zap.Logger) *Client {
	return NewClientWithRetry(inspector, logger, defaultRetryAttempts, defaultRetryInterval)
}

// NewClientWithRetry creates a client with custom retry timing (for testing).
func NewClientWithRetry(inspector domain.ProcessInspector, logger *zap.Logger, attempts int, interval time.Duration) *Client {
	return &Client{
		inspector:     inspector,
		logger:        logger,
		retryAttempts: attempts,
		retryInterval: interval,
	}
}

// Status reports how much of the client is running right now.
func (c *Client) Status(ctx context.Context) (domain.ClientStatus, error) {
	running := 0
	for _, bin := range AllBinaries() {
		up, err := c.inspector.IsExecutableRunning(ctx, bin)
		if err != nil {
			return "", err
		}
		if up {
			running++
		}
	}

	switch running {
	case 0:
		return domain.ClientStopped, nil
	case len(AllBinaries()):
		return domain.ClientRunning, nil
	default:
		return domain.ClientPartial, nil
	}
}

// WaitUntilRunning polls until every given binary has a process, giving
// the service manager time to actually spawn them. Returns false when
// the attempts are exhausted.
func (c *Client) WaitUntilRunning(ctx context.Context, bins []string) (bool, error) {
	return c.await(ctx, bins, true)
}

// WaitUntilStopped polls until none of the given binaries has a process.
func (c *Client) WaitUntilStopped(ctx context.Context, bins []string) (bool, error) {
	return c.await(ctx, bins, false)
}

func (c *Client) await(ctx context.Context, bins []string, wantRunning bool) (bool, error) {
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		settled, err := c.allInState(ctx, bins, wantRunning)
		if err != nil {
			return false, err
		}
		if settled {
			return true, nil
		}

		c.logger.Debug("processes not settled yet",
			zap.Strings("binaries", bins),
			zap.Bool("want_running", wantRunning),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.retryAttempts))

		if attempt == c.retryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(c.retryInterval):
		}
	}
	return false, nil
}

func (c *Client) allInState(ctx context.Context, bins []string, wantRunning bool) (bool, error) {
	for _, bin := range bins {
		up, err := c.inspector.IsExecutableRunning(ctx, bin)
		if err != nil {
			return false, err
		}
		if up != wantRunning {
			return false, nil
		}
	}
	return true, nil
}
