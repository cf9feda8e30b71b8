package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
)

type MockConfigLoader struct {
	mock.Mock
}

func (m *MockConfigLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) CreateDefaults(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockConfigLoader) GetGlobalPath() string {
	args := m.Called()
	return args.String(0)
}

type MockConfigMerger struct {
	mock.Mock
}

func (m *MockConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	args := m.Called(configs)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	args := m.Called(config, flags)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	args := m.Called(config)
	return args.Get(0).(*entities.Config)
}

func testConfig(port int, theme string) *entities.Config {
	return &entities.Config{
		Server:  entities.ServerConfig{Host: "localhost", Port: port},
		Deck:    entities.DeckConfig{DefaultTemplate: "title", DefaultTheme: theme},
		Watcher: entities.WatcherConfig{IntervalMs: 200, DebounceMs: 500},
		Logging: entities.LoggingConfig{Level: "info"},
	}
}

func mergeOf(n int) interface{} {
	return mock.MatchedBy(func(configs []*entities.Config) bool {
		return len(configs) == n
	})
}

func TestConfigService_LoadConfig(t *testing.T) {
	t.Run("merges the hierarchy then env then flags", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		defaults := testConfig(4000, "default")
		global := testConfig(4100, "dark")
		local := testConfig(4200, "ocean")
		merged := testConfig(4200, "ocean")
		withEnv := testConfig(4300, "ocean")
		final := testConfig(5000, "ocean")
		flags := map[string]interface{}{"port": 5000}

		merger.On("Merge", mergeOf(0)).Return(defaults).Once()
		loader.On("LoadGlobal", mock.Anything).Return(global, nil)
		loader.On("LoadLocal", mock.Anything, "/decks").Return(local, nil)
		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 3 && configs[0] == defaults && configs[1] == global && configs[2] == local
		})).Return(merged)
		merger.On("ApplyEnvVars", merged).Return(withEnv)
		merger.On("ApplyFlags", withEnv, flags).Return(final)

		service := NewConfigService(loader, merger, nil)
		result, err := service.LoadConfig(context.Background(), "/decks", flags)

		require.NoError(t, err)
		assert.Same(t, final, result)
		loader.AssertExpectations(t)
		merger.AssertExpectations(t)
	})

	t.Run("no local file", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}
		cfg := testConfig(4000, "default")

		merger.On("Merge", mergeOf(0)).Return(cfg).Once()
		loader.On("LoadGlobal", mock.Anything).Return(cfg, nil)
		loader.On("LoadLocal", mock.Anything, "/decks").Return(nil, nil)
		merger.On("Merge", mergeOf(2)).Return(cfg)
		merger.On("ApplyEnvVars", cfg).Return(cfg)
		merger.On("ApplyFlags", cfg, map[string]interface{}(nil)).Return(cfg)

		service := NewConfigService(loader, merger, nil)
		_, err := service.LoadConfig(context.Background(), "/decks", nil)

		require.NoError(t, err)
		merger.AssertExpectations(t)
	})

	t.Run("empty deck dir skips local file", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}
		cfg := testConfig(4000, "default")

		merger.On("Merge", mergeOf(0)).Return(cfg).Once()
		loader.On("LoadGlobal", mock.Anything).Return(cfg, nil)
		merger.On("Merge", mergeOf(2)).Return(cfg)
		merger.On("ApplyEnvVars", cfg).Return(cfg)
		merger.On("ApplyFlags", cfg, mock.Anything).Return(cfg)

		service := NewConfigService(loader, merger, nil)
		_, err := service.LoadConfig(context.Background(), "", nil)

		require.NoError(t, err)
		loader.AssertNotCalled(t, "LoadLocal", mock.Anything, mock.Anything)
	})

	t.Run("global config error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}
		loader.On("LoadGlobal", mock.Anything).Return(nil, errors.New("permission denied"))

		service := NewConfigService(loader, merger, nil)
		_, err := service.LoadConfig(context.Background(), "/decks", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading global config")
	})

	t.Run("local config error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}
		loader.On("LoadGlobal", mock.Anything).Return(testConfig(4000, "default"), nil)
		loader.On("LoadLocal", mock.Anything, "/decks").Return(nil, errors.New("bad toml"))

		service := NewConfigService(loader, merger, nil)
		_, err := service.LoadConfig(context.Background(), "/decks", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading local config")
	})

	t.Run("final config is validated", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}
		cfg := testConfig(4000, "default")
		invalid := testConfig(-1, "default")

		loader.On("LoadGlobal", mock.Anything).Return(cfg, nil)
		loader.On("LoadLocal", mock.Anything, mock.Anything).Return(nil, nil)
		merger.On("Merge", mock.Anything).Return(cfg)
		merger.On("ApplyEnvVars", mock.Anything).Return(cfg)
		merger.On("ApplyFlags", mock.Anything, mock.Anything).Return(invalid)

		service := NewConfigService(loader, merger, nil)
		_, err := service.LoadConfig(context.Background(), "/decks", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "final config validation")
	})
}

func TestConfigService_ValidateConfig(t *testing.T) {
	service := NewConfigService(&MockConfigLoader{}, &MockConfigMerger{}, nil)

	assert.NoError(t, service.ValidateConfig(testConfig(4000, "default")))

	err := service.ValidateConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config cannot be nil")

	assert.Error(t, service.ValidateConfig(testConfig(4000, "")))
}

func TestConfigService_CreateGlobalConfig(t *testing.T) {
	t.Run("writes defaults to the global path", func(t *testing.T) {
		loader := &MockConfigLoader{}
		loader.On("GetGlobalPath").Return("/home/user/.config/slideforge/config.toml")
		loader.On("CreateDefaults", mock.Anything, "/home/user/.config/slideforge/config.toml").Return(nil)

		service := NewConfigService(loader, &MockConfigMerger{}, nil)

		require.NoError(t, service.CreateGlobalConfig(context.Background()))
		loader.AssertExpectations(t)
	})

	t.Run("propagates errors", func(t *testing.T) {
		loader := &MockConfigLoader{}
		creationErr := errors.New("permission denied")
		loader.On("GetGlobalPath").Return("/invalid/config.toml")
		loader.On("CreateDefaults", mock.Anything, "/invalid/config.toml").Return(creationErr)

		service := NewConfigService(loader, &MockConfigMerger{}, nil)

		assert.ErrorIs(t, service.CreateGlobalConfig(context.Background()), creationErr)
	})
}
