package config

import (
	"fmt"
	"strings"
)

// Backend kinds accepted by prefs.backend.
const (
	BackendPlatform = "platform"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

type Config struct {
	Prefs   PrefsConfig
	Storage StorageConfig
	Server  ServerConfig
	Log     LogConfig
}

type PrefsConfig struct {
	Backend   string
	Namespace string
}

type StorageConfig struct {
	DataDir string
}

type ServerConfig struct {
	Port     int
	Token    string
	MCPStdio bool
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Prefs: PrefsConfig{
			Backend:   BackendPlatform,
			Namespace: "com.simplemobiletools.draw",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Server: ServerConfig{
			Port: 4100,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load returns the runtime configuration: built-in defaults overridden by
// SIMPLEDRAW_* environment variables.
func Load() (Config, error) {
	cfg := defaults()
	applyEnvOverrides(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Prefs.Backend {
	case BackendPlatform, BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("invalid prefs.backend %q: want one of %s", c.Prefs.Backend,
			strings.Join([]string{BackendPlatform, BackendFile, BackendSQLite, BackendMemory}, ", "))
	}
	if strings.TrimSpace(c.Prefs.Namespace) == "" {
		return fmt.Errorf("missing required config: prefs.namespace")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	return nil
}
