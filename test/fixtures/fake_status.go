// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"context"
	"sync"

	"github.com/eliteGoblin/zwatch/internal/domain"
)

// CheckStep is one scripted evaluation outcome.
type CheckStep struct {
	Result domain.CheckResult
	Err    error
}

// SecurityOn is a fully running client with the feature on.
func SecurityOn() CheckStep {
	return CheckStep{Result: domain.CheckResult{
		Client:   domain.ClientRunning,
		Security: domain.SecurityOn,
	}}
}

// SecurityOnInCall is SecurityOn while a meeting app is running.
func SecurityOnInCall() CheckStep {
	return CheckStep{Result: domain.CheckResult{
		Client:   domain.ClientRunning,
		Security: domain.SecurityOn,
		InCall:   true,
	}}
}

// SecurityOff is a fully running client with the feature off.
func SecurityOff() CheckStep {
	return CheckStep{Result: domain.CheckResult{
		Client:   domain.ClientRunning,
		Security: domain.SecurityOff,
	}}
}

// ClientDown is a stopped client.
func ClientDown() CheckStep {
	return CheckStep{Result: domain.CheckResult{
		Client:   domain.ClientStopped,
		Security: domain.SecurityOff,
	}}
}

// CheckFailure is an evaluation that errors out.
func CheckFailure(err error) CheckStep {
	return CheckStep{Err: err}
}

// ScriptedChecker replays a fixed sequence of evaluation outcomes,
// sticking at the last step once the script runs out. Safe to inspect
// while the monitor goroutine is still evaluating.
type ScriptedChecker struct {
	mu    sync.Mutex
	steps []CheckStep
	pos   int
	seen  int
}

// NewScriptedChecker creates a checker that replays steps in order.
func NewScriptedChecker(steps ...CheckStep) *ScriptedChecker {
	return &ScriptedChecker{steps: steps}
}

// Evaluate returns the next scripted outcome.
func (c *ScriptedChecker) Evaluate(context.Context) (domain.CheckResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seen++
	step := c.steps[c.pos]
	if c.pos < len(c.steps)-1 {
		c.pos++
	}
	return step.Result, step.Err
}

// Evaluations reports how many times Evaluate has run.
func (c *ScriptedChecker) Evaluations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen
}

// RecordingNotifier captures messages instead of spawning a command.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

// Notify records the message.
func (n *RecordingNotifier) Notify(_ context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

// Messages returns a copy of everything notified so far.
func (n *RecordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

var (
	_ domain.SecurityChecker = (*ScriptedChecker)(nil)
	_ domain.Notifier        = (*RecordingNotifier)(nil)
)
