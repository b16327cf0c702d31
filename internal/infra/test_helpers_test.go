package infra

import (
	"context"
	"sort"

	"github.com/eliteGoblin/zwatch/internal/domain"
)

// recordedCall captures a single command invocation.
type recordedCall struct {
	Name string
	Args []string
}

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	calls      []recordedCall
	outputFunc func(name string, args []string) ([]byte, error)
}

func newMockRunner(fn func(name string, args []string) ([]byte, error)) *mockRunner {
	return &mockRunner{outputFunc: fn}
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, recordedCall{Name: name, Args: args})
	if m.outputFunc != nil {
		return m.outputFunc(name, args)
	}
	return nil, nil
}

// commandLines flattens recorded calls for easy assertions.
func (m *mockRunner) commandLines() []string {
	var lines []string
	for _, c := range m.calls {
		line := c.Name
		for _, a := range c.Args {
			line += " " + a
		}
		lines = append(lines, line)
	}
	return lines
}

// mockInspector is a test double for domain.ProcessInspector.
type mockInspector struct {
	running map[string]bool
	listErr error
}

func newMockInspector(paths ...string) *mockInspector {
	m := &mockInspector{running: make(map[string]bool)}
	for _, p := range paths {
		m.running[p] = true
	}
	return m
}

func (m *mockInspector) IsExecutableRunning(_ context.Context, path string) (bool, error) {
	if m.listErr != nil {
		return false, m.listErr
	}
	return m.running[path], nil
}

func (m *mockInspector) RunningExecutables(_ context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var paths []string
	for p, up := range m.running {
		if up {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Ensure mockInspector implements domain.ProcessInspector.
var _ domain.ProcessInspector = (*mockInspector)(nil)
