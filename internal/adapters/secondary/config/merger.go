package config

import (
	"os"
	"strconv"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges configurations with later configs taking precedence. Empty
// values never override; booleans override only when their file defined them.
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 || configs[0] == nil {
		configs = append([]*entities.Config{GetDefaultConfig()}, configs...)
	}

	result := deepCopy(configs[0])
	for _, c := range configs[1:] {
		if c != nil {
			m.mergeInto(result, c)
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if theme, ok := flags["theme"].(string); ok && theme != "" {
		result.Deck.DefaultTheme = theme
	}

	if template, ok := flags["template"].(string); ok && template != "" {
		result.Deck.DefaultTemplate = template
	}

	if noBrowser, ok := flags["no-browser"].(bool); ok {
		result.Browser.AutoOpen = !noBrowser
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
	}

	if output, ok := flags["output"].(string); ok && output != "" {
		result.Export.OutputName = output
	}

	return result
}

// ApplyEnvVars applies SLIDEFORGE_* environment overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	if host := os.Getenv(envPrefix + "HOST"); host != "" {
		result.Server.Host = host
	}

	if portStr := os.Getenv(envPrefix + "PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			result.Server.Port = port
		}
	}

	if origins := splitList(os.Getenv(envPrefix + "CORS_ORIGINS")); len(origins) > 0 {
		result.Server.CORSOrigins = origins
	}

	if theme := os.Getenv(envPrefix + "THEME"); theme != "" {
		result.Deck.DefaultTheme = theme
	}

	if template := os.Getenv(envPrefix + "TEMPLATE"); template != "" {
		result.Deck.DefaultTemplate = template
	}

	if noBrowserStr := os.Getenv(envPrefix + "NO_BROWSER"); noBrowserStr != "" {
		if noBrowser, err := strconv.ParseBool(noBrowserStr); err == nil {
			result.Browser.AutoOpen = !noBrowser
		}
	}

	if browser := os.Getenv(envPrefix + "BROWSER"); browser != "" {
		result.Browser.Browser = browser
	}

	if intervalStr := os.Getenv(envPrefix + "WATCH_INTERVAL"); intervalStr != "" {
		if interval, err := strconv.Atoi(intervalStr); err == nil && interval > 0 {
			result.Watcher.IntervalMs = interval
		}
	}

	if debounceStr := os.Getenv(envPrefix + "WATCH_DEBOUNCE"); debounceStr != "" {
		if debounce, err := strconv.Atoi(debounceStr); err == nil && debounce >= 0 {
			result.Watcher.DebounceMs = debounce
		}
	}

	if level := os.Getenv(envPrefix + "LOG_LEVEL"); level != "" {
		result.Logging.Level = level
	}

	if jsonStr := os.Getenv(envPrefix + "LOG_JSON"); jsonStr != "" {
		if jsonFormat, err := strconv.ParseBool(jsonStr); err == nil {
			result.Logging.JSONFormat = jsonFormat
		}
	}

	if file := os.Getenv(envPrefix + "LOG_FILE"); file != "" {
		result.Logging.File = file
	}

	return result
}

// mergeInto merges source configuration into target configuration
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = append([]string(nil), source.Server.CORSOrigins...)
	}

	// Deck config
	if source.Deck.DefaultTemplate != "" {
		target.Deck.DefaultTemplate = source.Deck.DefaultTemplate
	}
	if source.Deck.DefaultTheme != "" {
		target.Deck.DefaultTheme = source.Deck.DefaultTheme
	}
	if source.Deck.DefaultName != "" {
		target.Deck.DefaultName = source.Deck.DefaultName
	}

	// Export config
	if source.Export.OutputName != "" {
		target.Export.OutputName = source.Export.OutputName
	}
	if source.Export.TitleOverride != "" {
		target.Export.TitleOverride = source.Export.TitleOverride
	}
	if source.IsSet("export.name_from_deck") {
		target.Export.NameFromDeck = source.Export.NameFromDeck
	}

	// Browser config
	if source.Browser.Browser != "" {
		target.Browser.Browser = source.Browser.Browser
	}
	if source.IsSet("browser.auto_open") {
		target.Browser.AutoOpen = source.Browser.AutoOpen
	}

	// Watcher config
	if source.Watcher.IntervalMs != 0 {
		target.Watcher.IntervalMs = source.Watcher.IntervalMs
	}
	if source.Watcher.DebounceMs != 0 {
		target.Watcher.DebounceMs = source.Watcher.DebounceMs
	}

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.IsSet("logging.verbose") {
		target.Logging.Verbose = source.Logging.Verbose
	}
	if source.IsSet("logging.json_format") {
		target.Logging.JSONFormat = source.Logging.JSONFormat
	}
	if source.Logging.File != "" {
		target.Logging.File = source.Logging.File
	}
}

// deepCopy creates a deep copy of a configuration. The copy reports every key
// as set, since it has already been merged.
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := &entities.Config{
		Server:  src.Server,
		Deck:    src.Deck,
		Export:  src.Export,
		Browser: src.Browser,
		Watcher: src.Watcher,
		Logging: src.Logging,
	}
	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = append([]string(nil), src.Server.CORSOrigins...)
	}

	return dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
