package infra

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/zwatch/internal/domain"
)

// CommandRunner abstracts command execution for testing.
// Production code uses ExecRunner, tests record invocations.
type CommandRunner interface {
	// Run executes a command and returns its combined output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner uses actual exec.Command for production use.
type ExecRunner struct{}

// Run executes a command and returns combined stdout/stderr.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// SystemdScope selects which systemd instance a manager talks to.
type SystemdScope string

const (
	// ScopeUser targets the per-user instance (systemctl --user).
	ScopeUser SystemdScope = "user"

	// ScopeSystem targets the system instance through sudo.
	ScopeSystem SystemdScope = "system"
)

// benignMarkers are systemctl complaints about units that are already in
// the requested state or were never installed. Stop and Disable treat
// them as success so teardown can repeat.
var benignMarkers = []string{
	"not loaded",
	"does not exist",
	"could not be found",
	"no such file",
}

// SystemdManager implements domain.UnitManager by shelling out to
// systemctl in one scope.
type SystemdManager struct {
	scope  SystemdScope
	runner CommandRunner
	logger *zap.Logger
}

// NewUserSystemd drives the invoking user's systemd instance.
func NewUserSystemd(logger *zap.Logger) *SystemdManager {
	return NewSystemdWithRunner(ScopeUser, ExecRunner{}, logger)
}

// NewSystemSystemd drives the system instance, elevating via sudo.
func NewSystemSystemd(logger *zap.Logger) *SystemdManager {
	return NewSystemdWithRunner(ScopeSystem, ExecRunner{}, logger)
}

// NewSystemdWithRunner creates a manager with a custom runner (for testing).
func NewSystemdWithRunner(scope SystemdScope, runner CommandRunner, logger *zap.Logger) *SystemdManager {
	return &SystemdManager{scope: scope, runner: runner, logger: logger}
}

// DaemonReload makes systemd re-read unit files.
func (s *SystemdManager) DaemonReload(ctx context.Context) error {
	_, err := s.systemctl(ctx, "daemon-reload")
	return err
}

// Start activates the unit.
func (s *SystemdManager) Start(ctx context.Context, unit string) error {
	_, err := s.systemctl(ctx, "start", unit)
	return err
}

// Stop deactivates the unit. A unit that is not loaded counts as stopped.
func (s *SystemdManager) Stop(ctx context.Context, unit string) error {
	out, err := s.systemctl(ctx, "stop", unit)
	return s.tolerateBenign("stop", unit, out, err)
}

// Enable marks the unit to start on login/boot.
func (s *SystemdManager) Enable(ctx context.Context, unit string) error {
	_, err := s.systemctl(ctx, "enable", unit)
	return err
}

// Disable unmarks the unit. A unit file that no longer exists counts as
// disabled.
func (s *SystemdManager) Disable(ctx context.Context, unit string) error {
	out, err := s.systemctl(ctx, "disable", unit)
	return s.tolerateBenign("disable", unit, out, err)
}

// IsEnabled reports whether the unit starts on login/boot. systemctl
// exits non-zero for disabled units, so the answer is parsed from the
// output rather than the exit code.
func (s *SystemdManager) IsEnabled(ctx context.Context, unit string) (bool, error) {
	out, err := s.systemctl(ctx, "is-enabled", unit)
	state := firstLine(out)
	switch state {
	case "enabled", "enabled-runtime", "static", "alias", "linked":
		return true, nil
	case "disabled", "masked", "not-found":
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return false, fmt.Errorf("unexpected is-enabled state %q for %s", state, unit)
}

// IsActive reports whether the unit is currently running.
func (s *SystemdManager) IsActive(ctx context.Context, unit string) (bool, error) {
	out, err := s.systemctl(ctx, "is-active", unit)
	state := firstLine(out)
	switch state {
	case "active", "activating", "reloading":
		return true, nil
	case "inactive", "deactivating", "failed", "unknown":
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return false, fmt.Errorf("unexpected is-active state %q for %s", state, unit)
}

// systemctl runs one systemctl verb in the manager's scope. Errors carry
// the command line and trimmed output.
func (s *SystemdManager) systemctl(ctx context.Context, args ...string) ([]byte, error) {
	name, argv := s.commandLine(args...)

	s.logger.Debug("running systemctl",
		zap.String("command", name),
		zap.Strings("args", argv))

	out, err := s.runner.Run(ctx, name, argv...)
	if err != nil {
		return out, fmt.Errorf("systemctl %s failed: %w (%s)",
			strings.Join(args, " "), err, firstLine(out))
	}
	return out, nil
}

func (s *SystemdManager) commandLine(args ...string) (string, []string) {
	if s.scope == ScopeSystem {
		return "sudo", append([]string{"systemctl"}, args...)
	}
	return "systemctl", append([]string{"--user"}, args...)
}

func (s *SystemdManager) tolerateBenign(verb, unit string, out []byte, err error) error {
	if err == nil {
		return nil
	}
	lower := strings.ToLower(string(out))
	for _, marker := range benignMarkers {
		if strings.Contains(lower, marker) {
			s.logger.Debug("unit already in requested state",
				zap.String("verb", verb),
				zap.String("unit", unit),
				zap.String("output", firstLine(out)))
			return nil
		}
	}
	return err
}

func firstLine(out []byte) string {
	text := strings.TrimSpace(string(out))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

// Ensure SystemdManager implements domain.UnitManager.
var _ domain.UnitManager = (*SystemdManager)(nil)
