package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/zwatch/internal/domain"
	"github.com/eliteGoblin/zwatch/internal/zscaler"
)

// mockInspector implements domain.ProcessInspector for testing.
type mockInspector struct {
	running map[string]bool
	err     error
}

func (m *mockInspector) IsExecutableRunning(_ context.Context, path string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.running[path], nil
}

func (m *mockInspector) RunningExecutables(context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var paths []string
	for p, up := range m.running {
		if up {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// mockProbe implements domain.SecurityProbe for testing.
type mockProbe struct {
	status domain.SecurityStatus
	err    error
	called bool
}

func (m *mockProbe) Check(context.Context) (domain.SecurityStatus, error) {
	m.called = true
	return m.status, m.err
}

// mockCallDetector implements domain.CallDetector for testing.
type mockCallDetector struct {
	inCall bool
	err    error
}

func (m *mockCallDetector) InCall(context.Context) (bool, error) {
	return m.inCall, m.err
}

func clientOver(inspector domain.ProcessInspector) *zscaler.Client {
	return zscaler.NewClientWithRetry(inspector, zap.NewNop(), 1, 0)
}

func allClientProcesses() map[string]bool {
	return map[string]bool{
		zscaler.TrayBinary:    true,
		zscaler.ServiceBinary: true,
		zscaler.TunnelBinary:  true,
	}
}

func TestChecker_ClientStoppedSkipsProbe(t *testing.T) {
	probe := &mockProbe{status: domain.SecurityOn}
	checker := NewChecker(
		clientOver(&mockInspector{running: map[string]bool{}}),
		probe,
		&mockCallDetector{},
		zap.NewNop(),
	)

	result, err := checker.Evaluate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ClientStopped, result.Client)
	assert.Equal(t, domain.SecurityOff, result.Security)
	assert.False(t, probe.called, "probe must not run while the client is stopped")
}

func TestChecker_SecurityOn(t *testing.T) {
	checker := NewChecker(
		clientOver(&mockInspector{running: allClientProcesses()}),
		&mockProbe{status: domain.SecurityOn},
		&mockCallDetector{inCall: false},
		zap.NewNop(),
	)

	result, err := checker.Evaluate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ClientRunning, result.Client)
	assert.True(t, result.SecurityEnabled())
	assert.False(t, result.InCall)
}

func TestChecker_SecurityOnDuringCall(t *testing.T) {
	checker := NewChecker(
		clientOver(&mockInspector{running: allClientProcesses()}),
		&mockProbe{status: domain.SecurityOn},
		&mockCallDetector{inCall: true},
		zap.NewNop(),
	)

	result, err := checker.Evaluate(context.Background())
	require.NoError(t, err)
	assert.True(t, result.InCall)
}

func TestChecker_PartialClientStillProbes(t *testing.T) {
	probe := &mockProbe{status: domain.SecurityOff}
	checker := NewChecker(
		clientOver(&mockInspector{running: map[string]bool{zscaler.TrayBinary: true}}),
		probe,
		&mockCallDetector{},
		zap.NewNop(),
	)

	result, err := checker.Evaluate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ClientPartial, result.Client)
	assert.True(t, probe.called)
	assert.False(t, result.SecurityEnabled())
}

func TestChecker_ProbeErrorPropagates(t *testing.T) {
	checker := NewChecker(
		clientOver(&mockInspector{running: allClientProcesses()}),
		&mockProbe{err: errors.New("db locked")},
		&mockCallDetector{},
		zap.NewNop(),
	)

	_, err := checker.Evaluate(context.Background())
	assert.Error(t, err)
}

func TestChecker_CallDetectionFailureIsNotFatal(t *testing.T) {
	checker := NewChecker(
		clientOver(&mockInspector{running: allClientProcesses()}),
		&mockProbe{status: domain.SecurityOn},
		&mockCallDetector{err: errors.New("proc unavailable")},
		zap.NewNop(),
	)

	result, err := checker.Evaluate(context.Background())
	require.NoError(t, err)
	assert.True(t, result.SecurityEnabled())
	assert.False(t, result.InCall)
}

func TestChecker_InspectorErrorPropagates(t *testing.T) {
	checker := NewChecker(
		clientOver(&mockInspector{err: errors.New("proc unavailable")}),
		&mockProbe{},
		&mockCallDetector{},
		zap.NewNop(),
	)

	_, err := checker.Evaluate(context.Background())
	assert.Error(t, err)
}

// Ensure the mocks satisfy their interfaces.
var (
	_ domain.ProcessInspector = (*mockInspector)(nil)
	_ domain.SecurityProbe    = (*mockProbe)(nil)
	_ domain.CallDetector     = (*mockCallDetector)(nil)
)
