// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import "fmt"

// SecurityStatus is the state of the VPN client's Internet Security feature,
// as reported by the client's own notification log.
type SecurityStatus string

const (
	SecurityOn      SecurityStatus = "on"
	SecurityOff     SecurityStatus = "off"
	SecurityUnknown SecurityStatus = "unknown"
)

// ClientStatus describes how much of the VPN client is running:
// all of its processes, some of them, or none.
type ClientStatus string

const (
	ClientRunning ClientStatus = "running"
	ClientPartial ClientStatus = "partially-running"
	ClientStopped ClientStatus = "stopped"
)

// ReconcileAction is the step needed to move the VPN client from its
// current state to a desired state.
type ReconcileAction string

const (
	ActionNone     ReconcileAction = "nothing-to-reconcile"
	ActionStartup  ReconcileAction = "startup"
	ActionShutdown ReconcileAction = "shutdown"
)

// DecideAction maps (current, desired) client states to the action that
// reconciles them. A partially running client is a valid current state
// (startup or shutdown completes it) but never a valid target.
func DecideAction(current, desired ClientStatus) (ReconcileAction, error) {
	if current == desired {
		return ActionNone, nil
	}
	switch desired {
	case ClientRunning:
		return ActionStartup, nil
	case ClientStopped:
		return ActionShutdown, nil
	default:
		return "", fmt.Errorf("unsupported desired client state %q", desired)
	}
}

// CheckResult is the outcome of one monitoring evaluation.
type CheckResult struct {
	Client   ClientStatus
	Security SecurityStatus
	InCall   bool // a meeting app is running, so notifications should stay quiet
}

// SecurityEnabled reports whether this result should trigger the
// notification edge. Only a definite "on" counts; off and unknown both
// re-arm the notifier.
func (r CheckResult) SecurityEnabled() bool {
	return r.Security == SecurityOn
}
