//go:build integration

package integration

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/eliteGoblin/zwatch/internal/infra"
	"github.com/eliteGoblin/zwatch/internal/lifecycle"
)

// journalRunner pretends to be systemctl, recording every invocation.
type journalRunner struct {
	lines []string
}

func (r *journalRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.lines = append(r.lines, name+" "+strings.Join(args, " "))
	return nil, nil
}

// crankyRunner answers stop/disable the way systemd does for units that
// were never installed.
type crankyRunner struct {
	journalRunner
}

func (r *crankyRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, _ := r.journalRunner.Run(ctx, name, args...)
	switch {
	case len(args) > 1 && args[1] == "stop":
		return []byte("Failed to stop zwatchd.service: Unit zwatchd.service not loaded."), errors.New("exit status 5")
	case len(args) > 1 && args[1] == "disable":
		return []byte("Failed to disable unit: Unit file zwatchd.service does not exist."), errors.New("exit status 1")
	}
	return out, nil
}

func stageAssets(t *testing.T) lifecycle.Assets {
	t.Helper()
	srcDir := t.TempDir()

	daemonSrc := filepath.Join(srcDir, "zwatchd")
	vpnSrc := filepath.Join(srcDir, "vpn")
	if err := os.WriteFile(daemonSrc, []byte("daemon-payload"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(vpnSrc, []byte("vpn-payload"), 0755); err != nil {
		t.Fatal(err)
	}
	return lifecycle.Assets{DaemonSource: daemonSrc, VpnSource: vpnSrc}
}

func TestInstallUninstallRoundTrip(t *testing.T) {
	home := t.TempDir()
	target := lifecycle.TargetWithHome(home)
	runner := &journalRunner{}
	units := infra.NewSystemdWithRunner(infra.ScopeUser, runner, zap.NewNop())
	fs := infra.NewFileSystemManagerWithHome(home)

	installer := lifecycle.NewInstallerForTesting(target, stageAssets(t), fs, units, io.Discard)
	ctx := context.Background()

	if err := installer.Install(ctx); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	unit, err := os.ReadFile(target.UnitPath)
	if err != nil {
		t.Fatalf("unit file missing: %v", err)
	}
	if !strings.Contains(string(unit), "ExecStart="+target.DaemonPath+" run") {
		t.Errorf("unit does not start the installed binary:\n%s", unit)
	}

	wantInstall := []string{
		"systemctl --user daemon-reload",
		"systemctl --user start zwatchd.service",
		"systemctl --user enable zwatchd.service",
	}
	if !reflect.DeepEqual(runner.lines, wantInstall) {
		t.Errorf("install systemctl calls = %v, want %v", runner.lines, wantInstall)
	}

	// Installing over an existing installation must succeed.
	if err := installer.Install(ctx); err != nil {
		t.Fatalf("reinstall failed: %v", err)
	}

	runner.lines = nil
	if err := installer.Uninstall(ctx); err != nil {
		t.Fatalf("uninstall failed: %v", err)
	}

	for _, path := range []string{target.VpnPath, target.DaemonPath, target.UnitPath} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s still present after uninstall", path)
		}
	}

	wantUninstall := []string{
		"systemctl --user stop zwatchd.service",
		"systemctl --user disable zwatchd.service",
		"systemctl --user daemon-reload",
	}
	if !reflect.DeepEqual(runner.lines, wantUninstall) {
		t.Errorf("uninstall systemctl calls = %v, want %v", runner.lines, wantUninstall)
	}
}

func TestUninstallOnCleanHost(t *testing.T) {
	home := t.TempDir()
	target := lifecycle.TargetWithHome(home)
	runner := &crankyRunner{}
	units := infra.NewSystemdWithRunner(infra.ScopeUser, runner, zap.NewNop())
	fs := infra.NewFileSystemManagerWithHome(home)

	installer := lifecycle.NewInstallerForTesting(target, stageAssets(t), fs, units, io.Discard)

	// Nothing installed, systemd complaining about unknown units: still
	// a clean exit.
	if err := installer.Uninstall(context.Background()); err != nil {
		t.Fatalf("uninstall on clean host failed: %v", err)
	}
}
