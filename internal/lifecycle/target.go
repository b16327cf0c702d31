package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
)

// UnitName is the systemd user unit the daemon runs under.
const UnitName = "zwatchd.service"

const (
	daemonBinaryName = "zwatchd"
	vpnBinaryName    = "vpn"
)

// Target holds the per-user installation paths. Everything lives under
// the invoking user's home; nothing system-wide is touched.
type Target struct {
	BinDir     string
	DaemonPath string
	VpnPath    string
	UnitDir    string
	UnitPath   string
}

// DefaultTarget resolves the installation paths for the current user.
func DefaultTarget() (Target, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Target{}, fmt.Errorf("resolving home directory: %w", err)
	}
	return TargetWithHome(home), nil
}

// TargetWithHome builds a Target rooted at an explicit home directory (for testing).
func TargetWithHome(home string) Target {
	binDir := filepath.Join(home, ".local", "bin")
	unitDir := filepath.Join(home, ".config", "systemd", "user")

	return Target{
		BinDir:     binDir,
		DaemonPath: filepath.Join(binDir, daemonBinaryName),
		VpnPath:    filepath.Join(binDir, vpnBinaryName),
		UnitDir:    unitDir,
		UnitPath:   filepath.Join(unitDir, UnitName),
	}
}
