package filesystem

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

var ErrNoModuleRoot = errors.New("no go.mod found")

// ModuleRoot returns the closest directory at or above dir that contains a
// go.mod file.
func ModuleRoot(fs afero.Fs, dir string) (string, error) {
	dir = filepath.Clean(dir)
	for {
		exists, err := afero.Exists(fs, filepath.Join(dir, "go.mod"))
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", dir, err)
		}
		if exists {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrNoModuleRoot, dir)
		}
		dir = parent
	}
}
