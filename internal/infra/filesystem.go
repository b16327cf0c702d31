package infra

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/eliteGoblin/zwatch/internal/domain"
)

// FileSystemManagerImpl implements domain.FileSystemManager.
type FileSystemManagerImpl struct {
	homeDir string
}

// NewFileSystemManager creates a new filesystem manager.
func NewFileSystemManager() domain.FileSystemManager {
	home, _ := os.UserHomeDir()
	return &FileSystemManagerImpl{homeDir: home}
}

// NewFileSystemManagerWithHome creates a filesystem manager with custom home (for testing).
func NewFileSystemManagerWithHome(home string) domain.FileSystemManager {
	return &FileSystemManagerImpl{homeDir: home}
}

// Exists checks if a path exists.
func (fm *FileSystemManagerImpl) Exists(path string) bool {
	_, err := os.Stat(fm.ExpandHome(path))
	return err == nil
}

// CopyFile copies src to dst using an atomic write pattern.
// Writes to a temp file first, syncs, chmods, then renames to avoid
// leaving a half-written file behind. Copying a path onto itself is a
// no-op so reinstalling from the installed location stays safe.
func (fm *FileSystemManagerImpl) CopyFile(src, dst string, mode fs.FileMode) error {
	src = fm.ExpandHome(src)
	dst = fm.ExpandHome(dst)

	if fm.sameFile(src, dst) {
		return nil
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	// Create temp file in same directory for atomic rename
	dstDir := filepath.Dir(dst)
	tmpFile, err := os.CreateTemp(dstDir, ".zwatch-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on any error
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmpFile, sourceFile); err != nil {
		tmpFile.Close()
		return err
	}

	// Sync to disk before rename
	if err = tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return err
	}
	tmpFile.Close()

	if err = os.Chmod(tmpPath, mode); err != nil {
		return err
	}

	// Atomic rename
	if err = os.Rename(tmpPath, dst); err != nil {
		return err
	}

	success = true
	return nil
}

// WriteFile writes data to path with the given mode.
func (fm *FileSystemManagerImpl) WriteFile(path string, data []byte, mode fs.FileMode) error {
	return os.WriteFile(fm.ExpandHome(path), data, mode)
}

// RemoveFile deletes path, reporting whether anything was removed.
// An already-absent file is (false, nil) so uninstall steps can repeat.
func (fm *FileSystemManagerImpl) RemoveFile(path string) (bool, error) {
	err := os.Remove(fm.ExpandHome(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("removing %s: %w", path, err)
}

// MkdirAll creates path and any missing parents.
func (fm *FileSystemManagerImpl) MkdirAll(path string, mode fs.FileMode) error {
	return os.MkdirAll(fm.ExpandHome(path), mode)
}

// ExpandHome expands ~ to the user's home directory.
func (fm *FileSystemManagerImpl) ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(fm.homeDir, path[2:])
	}
	if path == "~" {
		return fm.homeDir
	}
	return path
}

func (fm *FileSystemManagerImpl) sameFile(a, b string) bool {
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

// Ensure FileSystemManagerImpl implements domain.FileSystemManager.
var _ domain.FileSystemManager = (*FileSystemManagerImpl)(nil)
