// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// The service writes submission outcomes, limiter warnings, and webhook
// failures to one JSON log per day under `<root>/logs/YYYY-MM-DD.log`.
// When running in an interactive TTY the same events are teed, in console
// form, to stdout.  Rotation, compression, and retention are handled by
// Lumberjack.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Root: root, Tee: isTTY, Level: "debug"})
//	if err != nil { … }
//	log.Infow("form accepted", "form", "lead")
//
// Notes
// -----
// • Form field values are never passed to the logger; callers log form IDs,
//   field names, and outcomes only.
// • Oxford commas, two spaces after periods.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where and how much the logger writes.
type Options struct {
	Root  string // log files go to Root/logs
	Tee   bool   // also write console lines to stdout
	Level string // debug, info, warn, error; empty means info
}

// New returns a *zap.SugaredLogger and installs it via zap.ReplaceGlobals so
// packages can log through zap.S() without plumbing.
func New(opts Options) (*zap.SugaredLogger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		level = l
	}

	logDir := filepath.Join(opts.Root, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	fileSink := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, time.Now().Format("2006-01-02")+".log"),
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(fileSink), level),
	}
	if opts.Tee {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig()),
			zapcore.AddSync(os.Stdout),
			level,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.ErrorOutput(zapcore.AddSync(fileSink)),
	).Sugar()
	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "tee", opts.Tee, "level", level.String())
	return z, nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
}
