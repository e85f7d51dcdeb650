package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/simpledraw/internal/api"
	"github.com/kalambet/simpledraw/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve preferences over HTTP (and MCP on stdio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the preference server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

// watcher is implemented by backends that can follow external edits.
type watcher interface {
	Watch(ctx context.Context) error
}

func runServer(ctx context.Context) error {
	fmt.Fprintf(os.Stderr, "simpledraw version %s\n", version)

	cfg, store, closeFn, err := loadStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing store: %v\n", err)
		}
	}()

	if cfg.Server.Token == "" {
		slog.Warn("server.token is empty; settings endpoints are unauthenticated")
	}

	handler := api.NewSettingsHandler(api.SettingsDeps{
		Store: store,
		Token: cfg.Server.Token,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fmt.Fprintf(os.Stderr, "simpledraw listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if w, ok := store.Backend().(watcher); ok {
		g.Go(func() error {
			watchBackend(ctx, w)
			return nil
		})
	}

	if cfg.Server.MCPStdio {
		mcpSrv := api.NewMCPServer(api.MCPDeps{Store: store, Version: version})
		stdioSrv := server.NewStdioServer(mcpSrv)
		g.Go(func() error {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
			return nil
		})
		slog.Info("MCP server started (stdio transport)")
	}

	return g.Wait()
}

// watchBackend follows external edits until ctx is done. Reload is best
// effort, so a watcher failure is logged and does not stop serving.
func watchBackend(ctx context.Context, w watcher) {
	slog.Info("watching preference file for external changes")
	if err := w.Watch(ctx); err != nil {
		slog.Warn("preference file watcher stopped, external edits will not be picked up", "error", err)
	}
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	printStatus("Backend", "%s", cfg.Prefs.Backend)
	printStatus("Namespace", "%s", cfg.Prefs.Namespace)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)

	client := newAPIClient(cfg)
	client.httpClient.Timeout = 2 * time.Second

	resp, err := client.get(ctx, "/health")
	if err != nil {
		printStatus("Server", "stopped")
		return nil
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		return nil
	}
	printStatus("Server", "running on port %d", cfg.Server.Port)

	entries, err := client.settings(ctx)
	if err != nil {
		printWarning("could not list settings: %v", err)
		return nil
	}
	changed := 0
	for _, e := range entries {
		if e.Value != e.Default {
			changed++
		}
	}
	printStatus("Settings", "%d of %d changed from default", changed, len(entries))
	return nil
}
