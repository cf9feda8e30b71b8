package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpadapter "github.com/fredcamaral/slideforge/internal/adapters/primary/http"
	"github.com/fredcamaral/slideforge/internal/adapters/secondary/browser"
	"github.com/fredcamaral/slideforge/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/ports"
	"github.com/fredcamaral/slideforge/internal/domain/services"
)

var (
	// Serve command flags
	port       int
	host       string
	noBrowser  bool
	themeName  string
	watchFiles bool
	saveFiles  bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [deck-file]",
	Short: "Start the deck editor server",
	Long: `Start a local HTTP server exposing the deck editor API and a live
preview of the exported document. Connected browsers are updated over a
websocket after every change.

The deck is loaded from a saved-state file, a markdown outline or an
exported document; without one the editor starts with the welcome deck.

Example:
  slideforge serve talk.json --save --watch
  slideforge serve --port 8080 --no-browser`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// defaults are taken from config unless a flag is set
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().StringVar(&host, "host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Don't open browser automatically (overrides config)")
	serveCmd.Flags().StringVarP(&themeName, "theme", "t", "", "Theme to use (overrides the deck's)")
	serveCmd.Flags().BoolVarP(&watchFiles, "watch", "w", false, "Reload the state file when it changes on disk")
	serveCmd.Flags().BoolVarP(&saveFiles, "save", "s", false, "Write the state file after every change")
}

func runServe(cmd *cobra.Command, args []string) error {
	var deckPath string
	if len(args) == 1 {
		deckPath = args[0]
	}

	flags := map[string]interface{}{
		"port":  port,
		"host":  host,
		"theme": themeName,
	}
	if cmd.Flags().Changed("no-browser") {
		flags["no-browser"] = noBrowser
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, appOptionsFrom(cmd, deckPath, flags))
	if err != nil {
		return err
	}
	defer a.close()

	if (watchFiles || saveFiles) && !isStatePath(deckPath) {
		return errors.New("--watch and --save need a saved-state file (.json, .yaml or .yml)")
	}

	if err := seedDeck(ctx, a, deckPath, saveFiles); err != nil {
		return err
	}
	if themeName != "" {
		a.store.SetTheme(themeName)
	}

	server := httpadapter.NewServer(a.deck, a.registry, &a.config.Server, a.log)
	server.SetExportConfig(a.config.Export)
	if err := server.Start(ctx, a.config.Server.Port, a.config.Server.Host); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	var fileWatcher ports.FileWatcher
	if watchFiles {
		w := watcher.NewPollingWatcher(a.config.Watcher.GetInterval(), a.config.Watcher.GetDebounce(), a.log)
		defer func() { _ = w.Stop() }()
		fileWatcher = w
	}
	reloader := services.NewLiveReloadService(fileWatcher, server, a.deck, a.log)
	defer func() { _ = reloader.Stop() }()
	if watchFiles {
		if err := reloader.Start(ctx, deckPath); err != nil {
			_ = server.Stop(context.Background())
			return fmt.Errorf("watching %s: %w", deckPath, err)
		}
	}
	if saveFiles {
		reloader.AutoSave(deckPath)
	}

	url := editorURL(a.config.Server)
	a.log.Info("editor running", zap.String("url", url), zap.String("deck", deckPath))

	launcher := browser.NewLauncher(a.config.Browser, a.log)
	if err := launcher.Launch(url, !a.config.Browser.AutoOpen); err != nil {
		a.log.Warn("failed to open browser", zap.Error(err))
	}

	<-ctx.Done()
	a.log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.GetShutdownTimeout())
	defer cancel()
	return server.Stop(shutdownCtx)
}

// seedDeck loads path into the store. A missing state file is created from the
// welcome deck when it is going to be saved anyway.
func seedDeck(ctx context.Context, a *app, path string, create bool) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) || !create {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		a.log.Info("creating state file", zap.String("path", path))
		return a.deck.SaveState(ctx, path)
	}

	return a.open(ctx, path)
}

// editorURL is the address the browser is pointed at
func editorURL(cfg entities.ServerConfig) string {
	h := cfg.Host
	if h == "" || h == "0.0.0.0" || h == "::" {
		h = "localhost"
	}
	return "http://" + net.JoinHostPort(h, strconv.Itoa(cfg.Port))
}

func isStatePath(path string) bool {
	return path != "" && !services.IsMarkdownPath(path) && !isHTMLPath(path)
}
