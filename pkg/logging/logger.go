// Package logging provides a process-wide structured logger for the
// join engine, backed by go.uber.org/zap. The package mirrors the
// initialize-once / GetLogger() shape used elsewhere in this codebase:
// subsystems obtain a logger through this package rather than
// constructing their own zap.Logger, so that level, format, and
// rotation are controlled from a single place.
package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger   *zap.SugaredLogger
	loggerMu sync.RWMutex
	isInited bool
	initOnce sync.Once
)

// Level is the logging verbosity accepted by Init.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config holds logger configuration.
type Config struct {
	Level Level

	// OutputPath is empty for stderr, or a file path to log to. When
	// set, the file is rotated through lumberjack. Logs never default
	// to stdout: stdout is the batch protocol's response stream, and
	// interleaving log lines onto it would corrupt every batch run.
	OutputPath string

	// MaxSizeMB is the lumberjack rotation threshold. Defaults to 100.
	MaxSizeMB int

	// JSON selects the JSON encoder; otherwise a console encoder is used.
	JSON bool
}

func zapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init initializes the global logger with the given configuration.
// Safe to call once at process startup; subsequent calls are no-ops
// until Close() is called.
func Init(cfg Config) error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if isInited {
		return nil
	}

	var ws zapcore.WriteSyncer
	if cfg.OutputPath == "" {
		ws = zapcore.AddSync(os.Stderr)
	} else {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename: cfg.OutputPath,
			MaxSize:  maxSize,
			Compress: true,
		})
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.JSON {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, ws, zapLevel(cfg.Level))
	logger = zap.New(core).Sugar()
	isInited = true
	return nil
}

// initDefault initializes a stderr, info-level logger.
func initDefault() {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if isInited {
		return
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(os.Stderr),
		zapcore.InfoLevel,
	)
	logger = zap.New(core).Sugar()
	isInited = true
}

// Close flushes and releases the logger. Safe to call multiple times.
func Close() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if !isInited {
		return nil
	}
	err := logger.Sync()
	logger = nil
	isInited = false
	initOnce = sync.Once{}
	// zap.Sync on a plain stderr/file writer commonly returns an
	// ENOTTY-style error on Linux terminals; that is not a real
	// failure to report to the caller.
	if err != nil {
		return nil
	}
	return nil
}

// GetLogger returns the current logger, lazily initializing a stderr
// default if Init was never called.
func GetLogger() *zap.SugaredLogger {
	loggerMu.RLock()
	if isInited {
		l := logger
		loggerMu.RUnlock()
		return l
	}
	loggerMu.RUnlock()

	initOnce.Do(initDefault)

	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

func Debug(msg string, args ...any) { GetLogger().Debugw(msg, args...) }
func Info(msg string, args ...any)  { GetLogger().Infow(msg, args...) }
func Warn(msg string, args ...any)  { GetLogger().Warnw(msg, args...) }
func Error(msg string, args ...any) { GetLogger().Errorw(msg, args...) }
