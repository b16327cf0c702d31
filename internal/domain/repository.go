package domain

import (
	"context"
	"io/fs"
)

// SecurityProbe reports the current state of the Internet Security feature.
// Implementation: reads the client's SQLite notification log.
type SecurityProbe interface {
	// Check returns the latest known status. A missing or empty log is
	// SecurityUnknown with a nil error; an unreadable log is an error.
	Check(ctx context.Context) (SecurityStatus, error)
}

// SecurityChecker performs one full monitoring evaluation.
type SecurityChecker interface {
	// Evaluate combines client liveness, the security probe and call
	// detection into a single CheckResult.
	Evaluate(ctx context.Context) (CheckResult, error)
}

// CallDetector reports whether the user is currently in a meeting.
type CallDetector interface {
	InCall(ctx context.Context) (bool, error)
}

// Notifier delivers a message to the user.
// Implementation: spawns the configured notification executable.
type Notifier interface {
	// Notify passes message as the command's only argument. A non-zero
	// exit from the command is not an error; failing to spawn it is.
	Notify(ctx context.Context, message string) error
}

// ProcessInspector handles OS process queries.
// Implementation: uses gopsutil for cross-platform support.
type ProcessInspector interface {
	// IsExecutableRunning checks whether any process was started from
	// the given executable path.
	IsExecutableRunning(ctx context.Context, path string) (bool, error)

	// RunningExecutables returns the distinct executable paths of all
	// visible processes.
	RunningExecutables(ctx context.Context) ([]string, error)
}

// UnitManager drives service units of the host supervisor.
// Implementations must be idempotent: stopping a unit that is not
// loaded, or disabling one that was never enabled, returns nil.
type UnitManager interface {
	DaemonReload(ctx context.Context) error

	Start(ctx context.Context, unit string) error

	Stop(ctx context.Context, unit string) error

	Enable(ctx context.Context, unit string) error

	Disable(ctx context.Context, unit string) error

	// IsEnabled reports whether the unit starts at boot/login. A clean
	// "disabled" answer is (false, nil), not an error.
	IsEnabled(ctx context.Context, unit string) (bool, error)

	// IsActive reports whether the unit is currently running.
	IsActive(ctx context.Context, unit string) (bool, error)
}

// FileSystemManager handles filesystem operations.
type FileSystemManager interface {
	// Exists checks if a path exists.
	Exists(path string) bool

	// CopyFile copies src to dst with the given mode, replacing dst
	// atomically. Copying a path onto itself is a no-op.
	CopyFile(src, dst string, mode fs.FileMode) error

	// WriteFile writes data to path with the given mode.
	WriteFile(path string, data []byte, mode fs.FileMode) error

	// RemoveFile deletes path. Returns false with a nil error when the
	// file was already absent.
	RemoveFile(path string) (bool, error)

	// MkdirAll creates path and any missing parents.
	MkdirAll(path string, mode fs.FileMode) error

	// ExpandHome expands ~ to the user's home directory.
	ExpandHome(path string) string
}
