//go:build darwin

package prefs

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultDir is where file backends keep namespace files on macOS when the
// file backend is selected explicitly.
func DefaultDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Library", "Application Support", "simpledraw", "prefs")
	}
	return filepath.Join("simpledraw-data", "prefs")
}

func platformOpener(namespace string) (Backend, error) {
	return NewDefaultsBackend(namespace)
}

// DefaultsBackend stores values in macOS UserDefaults through the
// `defaults` CLI, using the namespace as the defaults domain. cfprefsd owns
// caching and flushing.
type DefaultsBackend struct {
	domain string
}

func NewDefaultsBackend(domain string) (*DefaultsBackend, error) {
	if _, err := exec.LookPath("defaults"); err != nil {
		return nil, fmt.Errorf("defaults CLI not available: %w", err)
	}
	return &DefaultsBackend{domain: domain}, nil
}

func (b *DefaultsBackend) read(key string) (string, bool, error) {
	cmd := exec.Command("defaults", "read", b.domain, key)
	out, err := cmd.CombinedOutput()
	s := strings.TrimSpace(string(out))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading default for key '%s': %w, output: %s", key, err, s)
	}
	return s, true, nil
}

func (b *DefaultsBackend) write(key, typ, val string) error {
	out, err := exec.Command("defaults", "write", b.domain, key, typ, val).CombinedOutput()
	if err != nil {
		return fmt.Errorf("writing default for key '%s': %w, output: %s", key, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *DefaultsBackend) GetBool(key string) (bool, bool, error) {
	s, ok, err := b.read(key)
	if !ok || err != nil {
		return false, ok, err
	}
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true, true, nil
	case "0", "false", "no":
		return false, true, nil
	}
	return false, true, fmt.Errorf("%w: %s=%q is not a bool", ErrTypeMismatch, key, s)
}

func (b *DefaultsBackend) GetInt(key string) (int32, bool, error) {
	s, ok, err := b.read(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	i, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s=%q is not a 32-bit integer", ErrTypeMismatch, key, s)
	}
	return int32(i), true, nil
}

func (b *DefaultsBackend) GetFloat(key string) (float32, bool, error) {
	s, ok, err := b.read(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s=%q is not a float", ErrTypeMismatch, key, s)
	}
	return float32(f), true, nil
}

func (b *DefaultsBackend) GetString(key string) (string, bool, error) {
	return b.read(key)
}

func (b *DefaultsBackend) SetBool(key string, val bool) error {
	return b.write(key, "-bool", strconv.FormatBool(val))
}

func (b *DefaultsBackend) SetInt(key string, val int32) error {
	return b.write(key, "-int", strconv.FormatInt(int64(val), 10))
}

func (b *DefaultsBackend) SetFloat(key string, val float32) error {
	return b.write(key, "-float", strconv.FormatFloat(float64(val), 'g', -1, 32))
}

func (b *DefaultsBackend) SetString(key, val string) error {
	return b.write(key, "-string", val)
}

func (b *DefaultsBackend) Delete(key string) error {
	err := exec.Command("defaults", "delete", b.domain, key).Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return nil
	}
	return err
}
