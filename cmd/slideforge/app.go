package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fredcamaral/slideforge/internal/adapters/secondary/config"
	"github.com/fredcamaral/slideforge/internal/adapters/secondary/export"
	"github.com/fredcamaral/slideforge/internal/adapters/secondary/logging"
	"github.com/fredcamaral/slideforge/internal/adapters/secondary/parser"
	"github.com/fredcamaral/slideforge/internal/adapters/secondary/state"
	"github.com/fredcamaral/slideforge/internal/adapters/secondary/templates"
	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/services"
)

// app is the wiring shared by every subcommand
type app struct {
	config   *entities.Config
	log      *zap.Logger
	registry *templates.Registry
	store    *services.DeckStore
	deck     *services.DeckService
}

type appOptions struct {
	configPath string
	deckPath   string
	verbose    bool
	flags      map[string]interface{}
}

// appOptionsFrom reads the global flags of cmd
func appOptionsFrom(cmd *cobra.Command, deckPath string, flags map[string]interface{}) appOptions {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	return appOptions{
		configPath: configPath,
		deckPath:   deckPath,
		verbose:    verbose,
		flags:      flags,
	}
}

// newApp resolves the configuration, builds the logger and wires the deck
// store to the template registry, exporter, importers and state repository
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	loader := config.NewTOMLLoader()
	if opts.configPath != "" {
		loader = config.NewTOMLLoaderWithPath(opts.configPath)
	}

	flags := make(map[string]interface{}, len(opts.flags)+1)
	for k, v := range opts.flags {
		flags[k] = v
	}
	if opts.verbose {
		flags["verbose"] = true
	}

	deckDir := ""
	if opts.deckPath != "" {
		deckDir = filepath.Dir(opts.deckPath)
	}

	cfg, err := services.NewConfigService(loader, config.NewConfigMerger(), nil).LoadConfig(ctx, deckDir, flags)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	registry := templates.NewRegistry()
	store := services.NewDeckStore(registry,
		services.WithDeckConfig(cfg.Deck),
		services.WithLogger(log),
	)
	deck := services.NewDeckService(
		store,
		export.NewHTMLExporter(registry, cfg.Export, log),
		parser.NewHTMLParser(registry, services.NewUUID, log),
		parser.NewMarkdownParser(services.NewUUID, log),
		state.NewFileRepository(log),
		log,
	)

	return &app{
		config:   cfg,
		log:      log,
		registry: registry,
		store:    store,
		deck:     deck,
	}, nil
}

// open loads path into the store: markdown outlines and HTML documents are
// imported, anything else is read as a saved-state file
func (a *app) open(ctx context.Context, path string) error {
	switch {
	case services.IsMarkdownPath(path), isHTMLPath(path):
		return a.deck.ImportFile(ctx, path)
	default:
		return a.deck.LoadStateFile(ctx, path)
	}
}

func (a *app) close() {
	_ = a.log.Sync()
}

func isHTMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}
