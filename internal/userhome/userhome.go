package userhome

import (
	"os"
	"path/filepath"
)

const stateDir = ".gdbx"

// Dir returns the per-user state directory holding config and history.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, stateDir), nil
}

// Path joins elem under the state directory.
func Path(elem ...string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}

// EnsureDirOf creates the parent directory of path if missing.
func EnsureDirOf(path string) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
