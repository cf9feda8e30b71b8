package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/multierr"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Deck    DeckConfig    `toml:"deck"`
	Export  ExportConfig  `toml:"export"`
	Browser BrowserConfig `toml:"browser"`
	Watcher WatcherConfig `toml:"watcher"`
	Logging LoggingConfig `toml:"logging"`

	// set records the dotted keys a config file defined explicitly, so that
	// booleans left out of a file do not override earlier layers
	set map[string]bool
}

// MarkSet records keys (e.g. "browser.auto_open") as explicitly defined
func (c *Config) MarkSet(keys ...string) {
	if c.set == nil {
		c.set = make(map[string]bool, len(keys))
	}
	for _, k := range keys {
		c.set[k] = true
	}
}

// IsSet reports whether key was explicitly defined. Configs built in code,
// without MarkSet, report every key as set.
func (c *Config) IsSet(key string) bool {
	if c.set == nil {
		return true
	}
	return c.set[key]
}

// Validate validates every section and reports all problems at once
func (c *Config) Validate() error {
	var err error

	if e := c.Server.Validate(); e != nil {
		err = multierr.Append(err, fmt.Errorf("server config: %w", e))
	}

	if e := c.Deck.Validate(); e != nil {
		err = multierr.Append(err, fmt.Errorf("deck config: %w", e))
	}

	if e := c.Export.Validate(); e != nil {
		err = multierr.Append(err, fmt.Errorf("export config: %w", e))
	}

	if e := c.Watcher.Validate(); e != nil {
		err = multierr.Append(err, fmt.Errorf("watcher config: %w", e))
	}

	if e := c.Logging.Validate(); e != nil {
		err = multierr.Append(err, fmt.Errorf("logging config: %w", e))
	}

	return err
}

// ServerConfig contains editor HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" && strings.ContainsAny(s.Host, " !") {
		return fmt.Errorf("invalid host: %s", s.Host)
	}

	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		return errors.New("timeouts must be non-negative")
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetCORSOrigins returns CORS origins with localhost defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:4000",
			"http://127.0.0.1:4000",
		}
	}
	return s.CORSOrigins
}

// IsDevelopment returns true if the server is running in development mode
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// DeckConfig contains the defaults applied to new decks and slides
type DeckConfig struct {
	DefaultTemplate string `toml:"default_template"`
	DefaultTheme    string `toml:"default_theme"`
	DefaultName     string `toml:"default_name"`
}

// Validate validates deck configuration
func (d DeckConfig) Validate() error {
	if d.DefaultTemplate != "" && !TemplateName(d.DefaultTemplate).IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, d.DefaultTemplate)
	}
	if strings.TrimSpace(d.DefaultTheme) == "" {
		return errors.New("default theme cannot be empty")
	}
	return nil
}

// GetDefaultTemplate returns the configured template or the built-in default
func (d DeckConfig) GetDefaultTemplate() TemplateName {
	if d.DefaultTemplate == "" {
		return DefaultTemplate
	}
	return TemplateName(d.DefaultTemplate)
}

// GetDefaultName returns the configured deck name or the built-in default
func (d DeckConfig) GetDefaultName() string {
	if d.DefaultName == "" {
		return DefaultDeckName
	}
	return d.DefaultName
}

// ExportConfig contains HTML export configuration
type ExportConfig struct {
	OutputName    string `toml:"output_name"`
	TitleOverride string `toml:"title_override"`
	// NameFromDeck names exports after the deck, e.g. "q3-review.html"
	NameFromDeck bool `toml:"name_from_deck"`
}

// Validate validates export configuration
func (e ExportConfig) Validate() error {
	if e.OutputName != "" && filepath.Base(e.OutputName) != e.OutputName {
		return errors.New("output name must be a bare file name")
	}
	return nil
}

// GetOutputName returns the default export file name
func (e ExportConfig) GetOutputName() string {
	if e.OutputName == "" {
		return "presentation.html"
	}
	return e.OutputName
}

// OutputNameFor returns the export file name for a deck called deckName
func (e ExportConfig) OutputNameFor(deckName string) string {
	if e.NameFromDeck {
		if base := slug.Make(deckName); base != "" {
			return base + ".html"
		}
	}
	return e.GetOutputName()
}

// BrowserConfig contains browser launch configuration
type BrowserConfig struct {
	AutoOpen bool   `toml:"auto_open"`
	Browser  string `toml:"browser"`
}

// WatcherConfig contains state file watcher configuration
type WatcherConfig struct {
	IntervalMs int `toml:"interval_ms"`
	DebounceMs int `toml:"debounce_ms"`
}

// Validate validates watcher configuration
func (w WatcherConfig) Validate() error {
	if w.IntervalMs != 0 && w.IntervalMs < 50 {
		return errors.New("watcher interval must be at least 50ms")
	}
	if w.DebounceMs < 0 {
		return errors.New("debounce time must be non-negative")
	}
	return nil
}

// GetInterval returns the watcher interval as a duration
func (w WatcherConfig) GetInterval() time.Duration {
	if w.IntervalMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(w.IntervalMs) * time.Millisecond
}

// GetDebounce returns the debounce time as a duration
func (w WatcherConfig) GetDebounce() time.Duration {
	if w.DebounceMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	Verbose    bool   `toml:"verbose"`     // Lower the level to debug
	JSONFormat bool   `toml:"json_format"` // Output logs in JSON format
	File       string `toml:"file"`        // Also log to file (optional)
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, "":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}

	if l.File != "" {
		if !filepath.IsAbs(l.File) {
			return errors.New("log file path must be absolute")
		}

		dir := filepath.Dir(l.File)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("log file directory does not exist: %s", dir)
		}
	}

	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Verbose {
		return LogLevelDebug
	}
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}
