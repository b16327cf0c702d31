// Package vpnctl drives the ZScaler client up and down through systemd.
// Every step is verified against the actual process table instead of
// trusting systemctl's exit code; the client's units are known to report
// success while the processes quietly fail to appear.
package vpnctl

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/eliteGoblin/zwatch/internal/domain"
	"github.com/eliteGoblin/zwatch/internal/zscaler"
)

// Controller reconciles the ZScaler client with a desired state.
type Controller struct {
	client *zscaler.Client
	system domain.UnitManager
	user   domain.UnitManager
	logger *zap.Logger
}

// NewController creates a controller over the given unit scopes.
func NewController(client *zscaler.Client, system, user domain.UnitManager, logger *zap.Logger) *Controller {
	return &Controller{
		client: client,
		system: system,
		user:   user,
		logger: logger,
	}
}

// Status reports how much of the client is running right now.
func (c *Controller) Status(ctx context.Context) (domain.ClientStatus, error) {
	return c.client.Status(ctx)
}

// Up brings the whole client up: system service first, then the tray in
// the user session. A fully running client is a no-op.
func (c *Controller) Up(ctx context.Context) error {
	action, err := c.decide(ctx, domain.ClientRunning)
	if err != nil {
		return err
	}
	if action == domain.ActionNone {
		c.logger.Info("zscaler is already up")
		return nil
	}
	return c.startup(ctx)
}

// Down fully stops the client and keeps it from coming back at boot.
// A stopped client is a no-op.
func (c *Controller) Down(ctx context.Context) error {
	action, err := c.decide(ctx, domain.ClientStopped)
	if err != nil {
		return err
	}
	if action == domain.ActionNone {
		c.logger.Info("zscaler is already down")
		return nil
	}
	return c.shutdown(ctx)
}

func (c *Controller) decide(ctx context.Context, desired domain.ClientStatus) (domain.ReconcileAction, error) {
	current, err := c.client.Status(ctx)
	if err != nil {
		return "", err
	}
	return domain.DecideAction(current, desired)
}

func (c *Controller) startup(ctx context.Context) error {
	c.logger.Info("enabling system service", zap.String("unit", zscaler.SystemServiceUnit))
	if err := c.system.Enable(ctx, zscaler.SystemServiceUnit); err != nil {
		return err
	}
	enabled, err := c.system.IsEnabled(ctx, zscaler.SystemServiceUnit)
	if err != nil {
		return err
	}
	if !enabled {
		return fmt.Errorf("failed to enable %s", zscaler.SystemServiceUnit)
	}

	c.logger.Info("starting system service", zap.String("unit", zscaler.SystemServiceUnit))
	if err := c.system.Start(ctx, zscaler.SystemServiceUnit); err != nil {
		return err
	}
	up, err := c.client.WaitUntilRunning(ctx, zscaler.DaemonBinaries())
	if err != nil {
		return err
	}
	if !up {
		return fmt.Errorf("failed to start %s", zscaler.SystemServiceUnit)
	}

	c.logger.Info("starting tray service", zap.String("unit", zscaler.TrayServiceUnit))
	if err := c.user.Start(ctx, zscaler.TrayServiceUnit); err != nil {
		return err
	}
	up, err = c.client.WaitUntilRunning(ctx, []string{zscaler.TrayBinary})
	if err != nil {
		return err
	}
	if !up {
		return fmt.Errorf("failed to start %s", zscaler.TrayServiceUnit)
	}

	c.logger.Info("zscaler correctly started")
	return nil
}

// shutdown reverses startup: tray first so the user-visible part dies
// before the tunnel underneath it.
func (c *Controller) shutdown(ctx context.Context) error {
	c.logger.Info("stopping tray service", zap.String("unit", zscaler.TrayServiceUnit))
	if err := c.user.Stop(ctx, zscaler.TrayServiceUnit); err != nil {
		return err
	}
	gone, err := c.client.WaitUntilStopped(ctx, []string{zscaler.TrayBinary})
	if err != nil {
		return err
	}
	if !gone {
		return fmt.Errorf("failed to stop %s", zscaler.TrayServiceUnit)
	}

	c.logger.Info("stopping system service", zap.String("unit", zscaler.SystemServiceUnit))
	if err := c.system.Stop(ctx, zscaler.SystemServiceUnit); err != nil {
		return err
	}
	gone, err = c.client.WaitUntilStopped(ctx, zscaler.DaemonBinaries())
	if err != nil {
		return err
	}
	if !gone {
		return fmt.Errorf("failed to stop %s", zscaler.SystemServiceUnit)
	}

	c.logger.Info("disabling system service", zap.String("unit", zscaler.SystemServiceUnit))
	if err := c.system.Disable(ctx, zscaler.SystemServiceUnit); err != nil {
		return err
	}
	enabled, err := c.system.IsEnabled(ctx, zscaler.SystemServiceUnit)
	if err != nil {
		return err
	}
	if enabled {
		return fmt.Errorf("failed to disable %s", zscaler.SystemServiceUnit)
	}

	c.logger.Info("zscaler correctly stopped")
	return nil
}
