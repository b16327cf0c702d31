package infra

import (
	"context"
	"strings"

	"github.com/eliteGoblin/zwatch/internal/domain"
)

// meetingExecutableSuffixes identifies meeting clients by the tail of
// their executable path ("/usr/bin/zoom", "/opt/zoom/zoom", ...).
var meetingExecutableSuffixes = []string{"zoom"}

// CallDetectorImpl implements domain.CallDetector by scanning running
// executables for known meeting clients.
type CallDetectorImpl struct {
	inspector domain.ProcessInspector
}

// NewCallDetector creates a call detector over the given inspector.
func NewCallDetector(inspector domain.ProcessInspector) domain.CallDetector {
	return &CallDetectorImpl{inspector: inspector}
}

// InCall reports whether a meeting client is currently running.
func (d *CallDetectorImpl) InCall(ctx context.Context) (bool, error) {
	paths, err := d.inspector.RunningExecutables(ctx)
	if err != nil {
		return false, err
	}
	for _, path := range paths {
		for _, suffix := range meetingExecutableSuffixes {
			if strings.HasSuffix(path, suffix) {
				return true, nil
			}
		}
	}
	return false, nil
}

// Ensure CallDetectorImpl implements domain.CallDetector.
var _ domain.CallDetector = (*CallDetectorImpl)(nil)
