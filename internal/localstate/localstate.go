// Package localstate resolves where on-disk application state lives.
package localstate

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// EnvDataDir overrides the default data directory when set.
	EnvDataDir = "WAYBOOK_DATA_DIR"

	dirName = ".waybook"
	dbName  = "waybook.db"
)

// DataDir returns the directory holding local state, creating it if needed.
// Defaults to ~/.waybook, overridable with WAYBOOK_DATA_DIR.
func DataDir() (string, error) {
	dir := os.Getenv(EnvDataDir)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home directory")
		}
		dir = filepath.Join(home, dirName)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data directory %s", dir)
	}
	return dir, nil
}

// DBPath returns the default SQLite database path inside DataDir.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbName), nil
}
