package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
)

const appName = "slideforge"

// New builds the program logger: console (or JSON) on stderr and, when
// cfg.File is set, the same entries appended to that file.
func New(cfg entities.LoggingConfig) (*zap.Logger, error) {
	return build(cfg, zapcore.Lock(os.Stderr))
}

func build(cfg entities.LoggingConfig, console zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := parseLevel(cfg.GetLevel())
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{zapcore.NewCore(newEncoder(cfg.JSONFormat), console, level)}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) // #nosec G304 - configured log path
		if err != nil {
			return nil, fmt.Errorf("opening log file %s: %w", cfg.File, err)
		}
		// files always get structured entries
		cores = append(cores, zapcore.NewCore(newEncoder(true), zapcore.Lock(f), level))
	}

	opts := []zap.Option{zap.ErrorOutput(console)}
	if level.Enabled(zapcore.DebugLevel) {
		opts = append(opts, zap.AddCaller())
	}

	return zap.New(zapcore.NewTee(cores...), opts...).Named(appName), nil
}

func newEncoder(json bool) zapcore.Encoder {
	if json {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(ec)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

func parseLevel(level entities.LogLevel) (zap.AtomicLevel, error) {
	switch level {
	case entities.LogLevelDebug:
		return zap.NewAtomicLevelAt(zapcore.DebugLevel), nil
	case entities.LogLevelInfo:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
	case entities.LogLevelWarn:
		return zap.NewAtomicLevelAt(zapcore.WarnLevel), nil
	case entities.LogLevelError:
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel), nil
	default:
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level: %s", level)
	}
}
