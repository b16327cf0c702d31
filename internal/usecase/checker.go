// Package usecase contains application business logic.
package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/eliteGoblin/zwatch/internal/domain"
	"github.com/eliteGoblin/zwatch/internal/zscaler"
)

// CheckerImpl implements domain.SecurityChecker.
type CheckerImpl struct {
	client       *zscaler.Client
	probe        domain.SecurityProbe
	callDetector domain.CallDetector
	logger       *zap.Logger
}

// NewChecker creates a security checker.
func NewChecker(
	client *zscaler.Client,
	probe domain.SecurityProbe,
	cd domain.CallDetector,
	logger *zap.Logger,
) domain.SecurityChecker {
	return &CheckerImpl{
		client:       client,
		probe:        probe,
		callDetector: cd,
		logger:       logger,
	}
}

// Evaluate performs one monitoring pass. With the client fully stopped
// the security feature cannot be on, so the database probe is skipped.
// Call detection is best-effort: losing it only costs message selection,
// never the check itself.
func (c *CheckerImpl) Evaluate(ctx context.Context) (domain.CheckResult, error) {
	clientStatus, err := c.client.Status(ctx)
	if err != nil {
		return domain.CheckResult{}, err
	}

	result := domain.CheckResult{
		Client:   clientStatus,
		Security: domain.SecurityOff,
	}

	if clientStatus == domain.ClientStopped {
		c.logger.Debug("vpn client is not running, skipping security probe")
		return result, nil
	}

	security, err := c.probe.Check(ctx)
	if err != nil {
		return domain.CheckResult{}, err
	}
	result.Security = security

	if result.SecurityEnabled() {
		inCall, err := c.callDetector.InCall(ctx)
		if err != nil {
			c.logger.Warn("call detection failed, assuming no call", zap.Error(err))
		} else {
			result.InCall = inCall
		}
	}

	c.logger.Debug("evaluation finished",
		zap.String("client", string(result.Client)),
		zap.String("security", string(result.Security)),
		zap.Bool("in_call", result.InCall))

	return result, nil
}

// Ensure CheckerImpl implements domain.SecurityChecker.
var _ domain.SecurityChecker = (*CheckerImpl)(nil)
