package domain

import (
	"testing"
)

func TestDecideAction(t *testing.T) {
	tests := []struct {
		name    string
		current ClientStatus
		desired ClientStatus
		want    ReconcileAction
		wantErr bool
	}{
		{"already running", ClientRunning, ClientRunning, ActionNone, false},
		{"already stopped", ClientStopped, ClientStopped, ActionNone, false},
		{"cold start", ClientStopped, ClientRunning, ActionStartup, false},
		{"finish partial start", ClientPartial, ClientRunning, ActionStartup, false},
		{"full shutdown", ClientRunning, ClientStopped, ActionShutdown, false},
		{"finish partial shutdown", ClientPartial, ClientStopped, ActionShutdown, false},
		{"partial is not a target", ClientRunning, ClientPartial, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecideAction(tt.current, tt.desired)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got action %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCheckResultSecurityEnabled(t *testing.T) {
	cases := map[SecurityStatus]bool{
		SecurityOn:      true,
		SecurityOff:     false,
		SecurityUnknown: false,
	}
	for status, want := range cases {
		r := CheckResult{Security: status}
		if r.SecurityEnabled() != want {
			t.Errorf("SecurityEnabled for %q: expected %v", status, want)
		}
	}
}
