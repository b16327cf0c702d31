// Package infra implements infrastructure concerns (processes, filesystem,
// the notification command and the service supervisor).
package infra

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/eliteGoblin/zwatch/internal/domain"
)

// ProcessInspectorImpl implements domain.ProcessInspector using gopsutil.
type ProcessInspectorImpl struct{}

// NewProcessInspector creates a new process inspector.
func NewProcessInspector() domain.ProcessInspector {
	return &ProcessInspectorImpl{}
}

// IsExecutableRunning checks whether any visible process was started from
// the given executable path.
func (pi *ProcessInspectorImpl) IsExecutableRunning(ctx context.Context, path string) (bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("listing processes: %w", err)
	}

	for _, p := range procs {
		if executableOf(ctx, p) == path {
			return true, nil
		}
	}
	return false, nil
}

// RunningExecutables returns the distinct executable paths of all visible
// processes. Processes that exit mid-scan or hide their command line are
// skipped.
func (pi *ProcessInspectorImpl) RunningExecutables(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}

	seen := make(map[string]struct{}, len(procs))
	var paths []string
	for _, p := range procs {
		exe := executableOf(ctx, p)
		if exe == "" {
			continue
		}
		if _, ok := seen[exe]; ok {
			continue
		}
		seen[exe] = struct{}{}
		paths = append(paths, exe)
	}
	return paths, nil
}

// executableOf resolves the path a process was started from. argv[0] is
// world-readable even for processes owned by other users, which matters
// for the root-owned tunnel daemons; /proc/<pid>/exe is not.
func executableOf(ctx context.Context, p *process.Process) string {
	if args, err := p.CmdlineSliceWithContext(ctx); err == nil && len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if exe, err := p.ExeWithContext(ctx); err == nil {
		return exe
	}
	return ""
}

// Ensure ProcessInspectorImpl implements domain.ProcessInspector.
var _ domain.ProcessInspector = (*ProcessInspectorImpl)(nil)
