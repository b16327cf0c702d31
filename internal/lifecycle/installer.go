package lifecycle

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/eliteGoblin/zwatch/internal/domain"
)

// Assets are the source binaries an installation deploys.
type Assets struct {
	DaemonSource string
	VpnSource    string
}

// LocateAssets finds the binaries to deploy. The running executable is
// the daemon; the vpn CLI is expected next to it, with $PATH as a
// fallback for source checkouts.
func LocateAssets() (Assets, error) {
	self, err := os.Executable()
	if err != nil {
		return Assets{}, fmt.Errorf("locating running executable: %w", err)
	}

	vpn := filepath.Join(filepath.Dir(self), vpnBinaryName)
	if _, statErr := os.Stat(vpn); statErr != nil {
		vpn, err = exec.LookPath(vpnBinaryName)
		if err != nil {
			return Assets{}, fmt.Errorf("vpn binary not found next to %s or in PATH", self)
		}
	}

	return Assets{DaemonSource: self, VpnSource: vpn}, nil
}

// Installer deploys and removes the daemon, the vpn CLI and the systemd
// user unit. Both sequences are idempotent and print one line per step.
type Installer struct {
	target Target
	assets Assets
	fs     domain.FileSystemManager
	units  domain.UnitManager
	out    io.Writer

	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	gray   func(a ...interface{}) string
}

// NewInstaller creates an Installer writing colored progress to out.
func NewInstaller(target Target, assets Assets, fs domain.FileSystemManager, units domain.UnitManager, out io.Writer) *Installer {
	return &Installer{
		target: target,
		assets: assets,
		fs:     fs,
		units:  units,
		out:    out,
		green:  color.New(color.FgGreen, color.Bold).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		gray:   color.New(color.FgHiBlack).SprintFunc(),
	}
}

// NewInstallerForTesting creates an Installer with colors disabled.
func NewInstallerForTesting(target Target, assets Assets, fs domain.FileSystemManager, units domain.UnitManager, out io.Writer) *Installer {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	ins := NewInstaller(target, assets, fs, units, out)
	ins.green = noColor
	ins.yellow = noColor
	ins.gray = noColor
	return ins
}

// Install deploys both binaries, writes the unit file and brings the
// service up. Re-running it over an existing installation is safe.
func (i *Installer) Install(ctx context.Context) error {
	if err := i.fs.MkdirAll(i.target.BinDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", i.target.BinDir, err)
	}

	if err := i.fs.CopyFile(i.assets.VpnSource, i.target.VpnPath, 0755); err != nil {
		return fmt.Errorf("installing vpn CLI: %w", err)
	}
	fmt.Fprintf(i.out, "%s Installed %s\n", i.green("*"), i.target.VpnPath)

	if err := i.fs.CopyFile(i.assets.DaemonSource, i.target.DaemonPath, 0755); err != nil {
		return fmt.Errorf("installing daemon binary: %w", err)
	}
	fmt.Fprintf(i.out, "%s Installed %s\n", i.green("*"), i.target.DaemonPath)

	if err := i.fs.MkdirAll(i.target.UnitDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", i.target.UnitDir, err)
	}
	content, err := RenderUnit(UnitParams{ExecPath: i.target.DaemonPath})
	if err != nil {
		return err
	}
	if err := i.fs.WriteFile(i.target.UnitPath, content, 0644); err != nil {
		return fmt.Errorf("writing unit file: %w", err)
	}
	fmt.Fprintf(i.out, "%s Wrote %s\n", i.green("*"), i.target.UnitPath)

	if err := i.units.DaemonReload(ctx); err != nil {
		return err
	}
	if err := i.units.Start(ctx, UnitName); err != nil {
		return err
	}
	if err := i.units.Enable(ctx, UnitName); err != nil {
		return err
	}
	fmt.Fprintf(i.out, "%s Service %s started and enabled\n", i.green("*"), UnitName)

	return nil
}

// Uninstall stops the service and removes everything Install created.
// A host that was never installed uninstalls cleanly.
func (i *Installer) Uninstall(ctx context.Context) error {
	if err := i.removeFile(i.target.VpnPath); err != nil {
		return err
	}
	if err := i.removeFile(i.target.DaemonPath); err != nil {
		return err
	}

	if err := i.units.Stop(ctx, UnitName); err != nil {
		return err
	}
	if err := i.units.Disable(ctx, UnitName); err != nil {
		return err
	}
	fmt.Fprintf(i.out, "%s Service %s stopped and disabled\n", i.yellow("-"), UnitName)

	if err := i.removeFile(i.target.UnitPath); err != nil {
		return err
	}

	if err := i.units.DaemonReload(ctx); err != nil {
		return err
	}

	return nil
}

func (i *Installer) removeFile(path string) error {
	removed, err := i.fs.RemoveFile(path)
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintf(i.out, "%s Removed %s\n", i.yellow("-"), path)
	} else {
		fmt.Fprintf(i.out, "%s %s\n", i.gray("-"), i.gray(path+" (already absent)"))
	}
	return nil
}
