package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFile is the name of the configuration file FindRoot looks for.
const ConfigFile = "backoffice.yaml"

// DataDir is the default fs storage directory, also a root indicator.
const DataDir = ".backoffice"

// FindRoot looks upwards from startDir for a project root: a directory holding
// backoffice.yaml or a .backoffice storage directory. It returns the absolute path
// of the first match.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFile) || hasFile(dir, DataDir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("root not found")
}

// FindConfig returns the backoffice.yaml of the project containing startDir, or ""
// when there is none.
func FindConfig(startDir string) string {
	root, err := FindRoot(startDir)
	if err != nil {
		return ""
	}
	path := filepath.Join(root, ConfigFile)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
