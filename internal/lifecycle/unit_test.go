package lifecycle

import (
	"strings"
	"testing"
)

func TestRenderUnit(t *testing.T) {
	content, err := RenderUnit(UnitParams{ExecPath: "/home/frank/.local/bin/zwatchd"})
	if err != nil {
		t.Fatalf("RenderUnit: %v", err)
	}

	unit := string(content)
	for _, want := range []string{
		"ExecStart=/home/frank/.local/bin/zwatchd run",
		"Type=notify",
		"Restart=on-failure",
		"WantedBy=default.target",
	} {
		if !strings.Contains(unit, want) {
			t.Errorf("unit missing %q:\n%s", want, unit)
		}
	}
}

func TestTargetWithHome(t *testing.T) {
	target := TargetWithHome("/home/frank")

	if target.DaemonPath != "/home/frank/.local/bin/zwatchd" {
		t.Errorf("DaemonPath = %q", target.DaemonPath)
	}
	if target.VpnPath != "/home/frank/.local/bin/vpn" {
		t.Errorf("VpnPath = %q", target.VpnPath)
	}
	if target.UnitPath != "/home/frank/.config/systemd/user/zwatchd.service" {
		t.Errorf("UnitPath = %q", target.UnitPath)
	}
}
