package logging

import (
	"fmt"
	"os"
	"strings"

	"logevents/internal/config"
	"logevents/internal/settings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceLevel sits one step below zap's DebugLevel.
const TraceLevel = zapcore.DebugLevel - 1

// Backend writes formatted event lines.
type Backend interface {
	Log(level settings.Level, msg string)
}

// ZapBackend writes event lines through a zap logger.
type ZapBackend struct {
	logger *zap.Logger
}

// NewBackend returns a backend writing to l.
func NewBackend(l *zap.Logger) *ZapBackend {
	return &ZapBackend{logger: l}
}

// Log writes msg at level. Lines below the logger's level are dropped
// before any allocation.
func (b *ZapBackend) Log(level settings.Level, msg string) {
	if ce := b.logger.Check(ZapLevel(level), msg); ce != nil {
		ce.Write()
	}
}

// Enabled reports whether lines at level would be written.
func (b *ZapBackend) Enabled(level settings.Level) bool {
	return b.logger.Core().Enabled(ZapLevel(level))
}

// ZapLevel maps an event severity to a zap level.
func ZapLevel(l settings.Level) zapcore.Level {
	switch l {
	case settings.LevelTrace:
		return TraceLevel
	case settings.LevelDebug:
		return zapcore.DebugLevel
	case settings.LevelWarn:
		return zapcore.WarnLevel
	case settings.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel parses a backend level name, accepting "trace".
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.EqualFold(s, "trace") {
		return TraceLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// CapitalLevelEncoder is zapcore.CapitalLevelEncoder that knows TRACE.
func CapitalLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString("TRACE")
		return
	}
	zapcore.CapitalLevelEncoder(l, enc)
}

// CapitalColorLevelEncoder is zapcore.CapitalColorLevelEncoder that knows
// TRACE, printed in magenta.
func CapitalColorLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString("\x1b[35mTRACE\x1b[0m")
		return
	}
	zapcore.CapitalColorLevelEncoder(l, enc)
}

// New builds the process logger from the logging config: console or JSON
// encoding, written to the configured file or stderr.
func New(c config.LoggingConfig) (*zap.Logger, error) {
	lvl, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Sampling = nil
	zc.DisableStacktrace = true
	zc.OutputPaths = []string{"stderr"}
	if c.File != "" {
		zc.OutputPaths = []string{c.File}
	}

	switch c.Format {
	case "json":
		zc.Encoding = "json"
		zc.EncoderConfig.EncodeLevel = CapitalLevelEncoder
	case "console", "":
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		zc.EncoderConfig.EncodeLevel = CapitalLevelEncoder
		if c.File == "" && isTerminal(os.Stderr) {
			zc.EncoderConfig.EncodeLevel = CapitalColorLevelEncoder
		}
	default:
		return nil, fmt.Errorf("invalid log format: %s", c.Format)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
