package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/kalambet/simpledraw/internal/config"
	"github.com/kalambet/simpledraw/internal/prefs"
	"github.com/kalambet/simpledraw/internal/storage"
)

// memoryRegistry backs the memory backend for the life of the process.
var memoryRegistry = prefs.NewMemoryRegistry()

// openStore opens the preference store selected by cfg. The returned
// close function releases the store and any database it opened.
func openStore(cfg config.Config, opts ...prefs.Option) (*prefs.Store, func() error, error) {
	opts = append([]prefs.Option{prefs.WithLogger(slog.Default())}, opts...)

	var db *storage.Store
	switch cfg.Prefs.Backend {
	case config.BackendPlatform:
	case config.BackendFile:
		opts = append(opts, prefs.WithOpener(prefs.FileOpener(filepath.Join(cfg.Storage.DataDir, "prefs"))))
	case config.BackendSQLite:
		var err error
		db, err = storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening storage: %w", err)
		}
		opts = append(opts, prefs.WithOpener(prefs.SQLiteOpener(db)))
	case config.BackendMemory:
		opts = append(opts, prefs.WithOpener(memoryRegistry.Open))
	default:
		return nil, nil, fmt.Errorf("unsupported prefs backend %q", cfg.Prefs.Backend)
	}

	store, err := prefs.Open(cfg.Prefs.Namespace, opts...)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, err
	}

	closeFn := func() error {
		err := store.Close()
		if db != nil {
			if dbErr := db.Close(); err == nil {
				err = dbErr
			}
		}
		return err
	}
	return store, closeFn, nil
}

// loadStore loads the runtime config, configures logging and opens the store.
func loadStore(opts ...prefs.Option) (config.Config, *prefs.Store, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	setupLogging(cfg.Log.Level)

	store, closeFn, err := openStore(cfg, opts...)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, store, closeFn, nil
}

// greetFirstRun prints a one-time hint and clears is-first-run.
func greetFirstRun(store *prefs.Store) {
	if !store.IsFirstRun() {
		return
	}
	printStep("First run: every setting starts at its default. Try `simpledraw settings set brush-color \"#FF2196F3\"`.")
	store.SetIsFirstRun(false)
}
