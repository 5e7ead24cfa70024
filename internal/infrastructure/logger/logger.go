package logger

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sangkips/kassensystem/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a zap logger writing to stdout and, when cfg.File is set,
// to a rotating JSON log file.
func New(cfg config.LogConfig, production bool) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if !production {
		level.SetLevel(zapcore.DebugLevel)
	}
	if cfg.Level != "" {
		parsed, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
		}
		level = parsed
	}

	consoleEncoder := zap.NewDevelopmentEncoderConfig()
	if production {
		consoleEncoder = zap.NewProductionEncoderConfig()
		consoleEncoder.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoder),
			zapcore.AddSync(os.Stdout),
			level,
		),
	}

	if cfg.File != "" {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(lumberJackLogger),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// Init builds the logger and installs it as the zap global
func Init(cfg config.LogConfig, production bool) (*zap.Logger, error) {
	logger, err := New(cfg, production)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
