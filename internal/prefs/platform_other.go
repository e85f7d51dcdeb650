//go:build !darwin

package prefs

import (
	"os"
	"path/filepath"
)

// DefaultDir is where the platform backend keeps namespace files:
// $XDG_CONFIG_HOME/simpledraw/prefs, falling back to ~/.config.
func DefaultDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "simpledraw", "prefs")
}

func platformOpener(namespace string) (Backend, error) {
	return FileOpener(DefaultDir())(namespace)
}
