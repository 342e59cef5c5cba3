package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

const (
	// LogLevelEnvVar selects the level when no explicit level is given.
	// Unset means silent.
	LogLevelEnvVar = "ESCL_LOG_LEVEL"

	// LogFormatEnvVar switches the encoder: "console" (default) or "json"
	LogFormatEnvVar = "ESCL_LOG_FORMAT"
)

// maxDump bounds how many bytes of a body are written to the log
const maxDump = 512

var logger = zap.NewNop()

// Initialize installs a logger at level ("debug", "info", "warn" or
// "error"). An empty level falls back to ESCL_LOG_LEVEL, and when that is
// empty too logging stays silent.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	l, err := New(os.Stderr, level, os.Getenv(LogFormatEnvVar))
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// New builds a logger writing to w. Levels come from zapcore.ParseLevel;
// colors are used only when w is a terminal.
func New(w io.Writer, level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: want debug, info, warn or error", level)
	}

	var encoder zapcore.Encoder
	switch format {
	case "", "console":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(cfg)
	case "json":
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	default:
		return nil, fmt.Errorf("invalid log format %q: want console or json", format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), lvl)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)), nil
}

// SetLogger replaces the global logger (used by tests to observe output)
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// GetLogger returns the global logger
func GetLogger() *zap.Logger {
	return logger
}

func Debug(msg string, fields ...zap.Field) { logger.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { logger.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { logger.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { logger.Error(msg, fields...) }

// LogRequest logs an outgoing request to a scanner
func LogRequest(method, url string) {
	Debug("eSCL request",
		zap.String("method", method),
		zap.String("url", url),
	)
}

// LogResponse logs a scanner's answer to a request
func LogResponse(method, url string, statusCode int, size int, elapsed time.Duration) {
	Debug("eSCL response",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status_code", statusCode),
		zap.Int("bytes", size),
		zap.Duration("elapsed", elapsed),
	)
}

// LogBody logs a textual body (XML documents), cut at 512 bytes
func LogBody(label string, data []byte) {
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	size := len(data)
	if size > maxDump {
		data = data[:maxDump]
	}
	Debug(label,
		zap.Int("length", size),
		zap.Bool("truncated", size > maxDump),
		zap.String("body", string(data)),
	)
}

// Sync flushes any buffered log entries
func Sync() {
	_ = logger.Sync()
}
