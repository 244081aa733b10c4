package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/teval/pkg"
)

// configPath returns the path of the user's configuration file. The file
// need not exist; the resolver ignores a missing file.
func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, pkg.Name, "config.yaml")
}

// cacheDir returns the user's cache directory for this application.
func cacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}

	return filepath.Join(dir, pkg.Name)
}
