package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

// ConfigService resolves the effective configuration: defaults, the global
// file, the local file next to the deck, environment overrides and CLI flags,
// each later source taking precedence
type ConfigService struct {
	loader ports.ConfigLoader
	merger ports.ConfigMerger
	log    *zap.Logger
}

// NewConfigService creates a new configuration service
func NewConfigService(loader ports.ConfigLoader, merger ports.ConfigMerger, log *zap.Logger) *ConfigService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfigService{
		loader: loader,
		merger: merger,
		log:    log.Named("config"),
	}
}

// LoadConfig loads the complete configuration. An empty deckDir skips the local file.
func (s *ConfigService) LoadConfig(ctx context.Context, deckDir string, flags map[string]interface{}) (*entities.Config, error) {
	globalConfig, err := s.loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	var localConfig *entities.Config
	if deckDir != "" {
		localConfig, err = s.loader.LoadLocal(ctx, deckDir)
		if err != nil {
			return nil, fmt.Errorf("loading local config: %w", err)
		}
	}

	configs := []*entities.Config{s.GetDefaultConfig()}
	if globalConfig != nil {
		configs = append(configs, globalConfig)
	}
	if localConfig != nil {
		s.log.Debug("local config found", zap.String("dir", deckDir))
		configs = append(configs, localConfig)
	}

	merged := s.merger.Merge(configs...)
	merged = s.merger.ApplyEnvVars(merged)
	final := s.merger.ApplyFlags(merged, flags)

	if err := s.ValidateConfig(final); err != nil {
		return nil, fmt.Errorf("final config validation: %w", err)
	}

	return final, nil
}

// GetDefaultConfig returns the default configuration; the merger owns the defaults
func (s *ConfigService) GetDefaultConfig() *entities.Config {
	return s.merger.Merge()
}

// ValidateConfig validates a configuration
func (s *ConfigService) ValidateConfig(config *entities.Config) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}

	return config.Validate()
}

// CreateGlobalConfig writes the global configuration file with defaults
func (s *ConfigService) CreateGlobalConfig(ctx context.Context) error {
	return s.loader.CreateDefaults(ctx, s.loader.GetGlobalPath())
}
