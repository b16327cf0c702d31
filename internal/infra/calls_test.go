package infra

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallDetector_MeetingClientRunning(t *testing.T) {
	inspector := newMockInspector("/usr/lib/firefox/firefox", "/opt/zoom/zoom")
	d := NewCallDetector(inspector)

	inCall, err := d.InCall(context.Background())
	require.NoError(t, err)
	assert.True(t, inCall)
}

func TestCallDetector_NoMeetingClient(t *testing.T) {
	inspector := newMockInspector("/usr/lib/firefox/firefox", "/usr/bin/vim")
	d := NewCallDetector(inspector)

	inCall, err := d.InCall(context.Background())
	require.NoError(t, err)
	assert.False(t, inCall)
}

func TestCallDetector_InspectorFailure(t *testing.T) {
	inspector := newMockInspector()
	inspector.listErr = errors.New("proc unavailable")
	d := NewCallDetector(inspector)

	_, err := d.InCall(context.Background())
	assert.Error(t, err)
}
