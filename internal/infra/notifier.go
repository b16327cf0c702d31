package infra

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/zwatch/internal/domain"
)

// ExecNotifier implements domain.Notifier by spawning the configured
// notification command with the message as its single argument.
type ExecNotifier struct {
	binPath string
	logger  *zap.Logger
}

// NewExecNotifier creates a notifier around the given executable path.
func NewExecNotifier(binPath string, logger *zap.Logger) domain.Notifier {
	return &ExecNotifier{binPath: binPath, logger: logger}
}

// Notify runs the notification command. The command failing (non-zero
// exit) is logged but not an error; that contract belongs to the user's
// script. Not being able to spawn it at all is an error.
func (n *ExecNotifier) Notify(ctx context.Context, message string) error {
	cmd := exec.CommandContext(ctx, n.binPath, message)
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		n.logger.Warn("notification command exited non-zero",
			zap.String("bin", n.binPath),
			zap.Int("exit_code", exitErr.ExitCode()),
			zap.String("output", strings.TrimSpace(string(out))))
		return nil
	}
	if err != nil {
		return fmt.Errorf("spawning %s: %w", n.binPath, err)
	}

	n.logger.Debug("notification command completed",
		zap.String("bin", n.binPath),
		zap.String("message", message))
	return nil
}

// Ensure ExecNotifier implements domain.Notifier.
var _ domain.Notifier = (*ExecNotifier)(nil)
