// Package daemon implements the monitoring loop.
package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/zwatch/internal/domain"
)

const (
	securityOnMessage = "Z Scaler internet security is on"

	// During a call the notification script is asked to flip the room
	// lights instead of popping a banner over the meeting.
	inCallMessage = "turn lights off"
)

const (
	// DefaultPollInterval matches the configuration default.
	DefaultPollInterval = 5 * time.Second

	// DefaultProbeTimeout bounds one evaluation so a wedged database or
	// process scan cannot stall the loop.
	DefaultProbeTimeout = 10 * time.Second
)

// MonitorConfig holds monitoring loop configuration.
type MonitorConfig struct {
	PollInterval time.Duration // pause between two evaluations
	ProbeTimeout time.Duration // budget for a single evaluation
}

// DefaultMonitorConfig returns default monitor configuration.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		PollInterval: DefaultPollInterval,
		ProbeTimeout: DefaultProbeTimeout,
	}
}

// Monitor polls the security status and raises at most one notification
// per enabled episode. An episode begins when the status turns on and
// ends with the first evaluation that is anything else; only a fresh
// episode notifies again.
type Monitor struct {
	config   MonitorConfig
	checker  domain.SecurityChecker
	notifier domain.Notifier
	logger   *zap.Logger

	notified      bool // current enabled episode already notified
	failureStreak int
}

// NewMonitor creates a monitor. Non-positive config values fall back to
// the defaults.
func NewMonitor(
	config MonitorConfig,
	checker domain.SecurityChecker,
	notifier domain.Notifier,
	logger *zap.Logger,
) *Monitor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.ProbeTimeout <= 0 {
		config.ProbeTimeout = DefaultProbeTimeout
	}
	return &Monitor{
		config:   config,
		checker:  checker,
		notifier: notifier,
		logger:   logger,
	}
}

// Run starts the monitoring loop. It evaluates once immediately, then on
// every tick, and blocks until the context is canceled.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor started",
		zap.Duration("poll_interval", m.config.PollInterval))

	notifySupervisor(stateReady, m.logger)
	defer notifySupervisor(stateStopping, m.logger)

	m.tick(ctx)

	ticker := time.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopping")
			return ctx.Err()

		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick runs one evaluation and advances the notification state machine.
func (m *Monitor) tick(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.config.ProbeTimeout)
	defer cancel()

	result, err := m.checker.Evaluate(probeCtx)
	if err != nil {
		m.failureStreak++
		m.logger.Warn("status check failed, treating security as disabled",
			zap.Error(err),
			zap.Int("consecutive_failures", m.failureStreak))
		m.notified = false
		return
	}
	m.failureStreak = 0

	if !result.SecurityEnabled() {
		if m.notified {
			m.logger.Info("security no longer enabled, re-arming",
				zap.String("client", string(result.Client)),
				zap.String("security", string(result.Security)))
		} else {
			m.logger.Debug("security not enabled",
				zap.String("client", string(result.Client)),
				zap.String("security", string(result.Security)))
		}
		m.notified = false
		return
	}

	if m.notified {
		m.logger.Debug("security still enabled, notification already sent")
		return
	}

	message := securityOnMessage
	if result.InCall {
		message = inCallMessage
	}

	// The attempt itself arms the suppression: a notifier that fails to
	// spawn does not earn a retry on the next tick.
	m.notified = true
	if err := m.notifier.Notify(probeCtx, message); err != nil {
		m.logger.Warn("notification failed", zap.Error(err))
		return
	}

	m.logger.Info("notification sent", zap.String("message", message))
}
