package vpnctl

import (
	"fmt"
	"os"
	"os/exec"
)

// PrimeSudo refreshes the sudo timestamp up front so the system-scope
// systemctl calls that follow don't each prompt for a password. It
// inherits the terminal for the password prompt. Running as root needs
// no priming.
func PrimeSudo() error {
	if os.Geteuid() == 0 {
		return nil
	}

	cmd := exec.Command("sudo", "-v")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("priming sudo: %w", err)
	}
	return nil
}
