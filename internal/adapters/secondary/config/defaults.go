package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
)

const envPrefix = "SLIDEFORGE_"

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	config := &entities.Config{
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("HOST", "localhost"),
			Port:            getEnvIntOrDefault("PORT", 4000),
			ReadTimeout:     getEnvIntOrDefault("READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvIntOrDefault("SHUTDOWN_TIMEOUT", 5),
			Environment:     getEnvOrDefault("ENV", "development"),
			CORSOrigins: getEnvSliceOrDefault("CORS_ORIGINS", []string{
				"http://localhost:4000",
				"http://127.0.0.1:4000",
			}),
		},
		Deck: entities.DeckConfig{
			DefaultTemplate: getEnvOrDefault("TEMPLATE", string(entities.DefaultTemplate)),
			DefaultTheme:    getEnvOrDefault("THEME", entities.DefaultTheme),
			DefaultName:     getEnvOrDefault("DECK_NAME", entities.DefaultDeckName),
		},
		Export: entities.ExportConfig{
			OutputName:   getEnvOrDefault("EXPORT_NAME", "presentation.html"),
			NameFromDeck: getEnvBoolOrDefault("EXPORT_NAME_FROM_DECK", false),
		},
		Browser: entities.BrowserConfig{
			AutoOpen: !getEnvBoolOrDefault("NO_BROWSER", false),
			Browser:  getEnvOrDefault("BROWSER", "default"),
		},
		Watcher: entities.WatcherConfig{
			IntervalMs: getEnvIntOrDefault("WATCH_INTERVAL", 200),
			DebounceMs: getEnvIntOrDefault("WATCH_DEBOUNCE", 500),
		},
		Logging: entities.LoggingConfig{
			Level:      getEnvOrDefault("LOG_LEVEL", "info"),
			Verbose:    getEnvBoolOrDefault("LOG_VERBOSE", false),
			JSONFormat: getEnvBoolOrDefault("LOG_JSON", false),
			File:       getEnvOrDefault("LOG_FILE", ""),
		},
	}

	return config
}

// getEnvOrDefault returns SLIDEFORGE_<key> or the default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns SLIDEFORGE_<key> as int or the default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns SLIDEFORGE_<key> as bool or the default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(envPrefix + key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault splits SLIDEFORGE_<key> on commas or returns the default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(envPrefix + key); value != "" {
		if parts := splitList(value); len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
