// internal/platform/logx/logx.go
package logx

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Err(err error, kv ...any)
	With(kv ...any) Logger
	SetLevel(lvl Level)
}

type zapLogger struct {
	level *zap.AtomicLevel // shared by every With() clone
	sugar *zap.SugaredLogger
}

// New builds a console logger on stderr. The level comes from RECONPIPE_LOG_LEVEL.
func New() Logger {
	return NewWithLevel(ParseLevel(os.Getenv("RECONPIPE_LOG_LEVEL")))
}

// NewWithLevel creates a logger with a specific log level
func NewWithLevel(lvl Level) Logger {
	atom := zap.NewAtomicLevelAt(toZap(lvl))

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.CallerKey = ""

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		atom,
	)
	return &zapLogger{level: &atom, sugar: zap.New(core).Sugar()}
}

// NewWithCore wraps an arbitrary zap core. Tests pass zaptest/observer cores here.
func NewWithCore(core zapcore.Core) Logger {
	atom := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	return &zapLogger{level: &atom, sugar: zap.New(core).Sugar()}
}

// NewSilent creates a logger that only outputs errors
func NewSilent() Logger {
	return NewWithLevel(LevelError)
}

// Nop discards everything.
func Nop() Logger {
	atom := zap.NewAtomicLevelAt(zapcore.FatalLevel)
	return &zapLogger{level: &atom, sugar: zap.NewNop().Sugar()}
}

func (z *zapLogger) With(kv ...any) Logger {
	return &zapLogger{level: z.level, sugar: z.sugar.With(normalizeKV(kv)...)}
}

func (z *zapLogger) SetLevel(lvl Level) {
	z.level.SetLevel(toZap(lvl))
}

func (z *zapLogger) Debug(msg string, kv ...any) {
	if !z.level.Enabled(zapcore.DebugLevel) {
		return
	}
	z.sugar.Debugw(msg, normalizeKV(kv)...)
}

func (z *zapLogger) Info(msg string, kv ...any) {
	if !z.level.Enabled(zapcore.InfoLevel) {
		return
	}
	z.sugar.Infow(msg, normalizeKV(kv)...)
}

func (z *zapLogger) Warn(msg string, kv ...any) {
	if !z.level.Enabled(zapcore.WarnLevel) {
		return
	}
	z.sugar.Warnw(msg, normalizeKV(kv)...)
}

func (z *zapLogger) Err(err error, kv ...any) {
	if err == nil || !z.level.Enabled(zapcore.ErrorLevel) {
		return
	}
	z.sugar.Errorw(err.Error(), normalizeKV(kv)...)
}

// normalizeKV pads odd-length pairs so zap never reports "ignored key".
func normalizeKV(kv []any) []any {
	if len(kv)%2 == 0 {
		return kv
	}
	out := make([]any, 0, len(kv)+1)
	out = append(out, kv...)
	return append(out, "(missing)")
}

func toZap(lvl Level) zapcore.Level {
	switch lvl {
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

// ParseLevel maps user input to a Level; unknown strings fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return LevelDebug
	case "info", "inf", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "err", "error":
		return LevelError
	default:
		return LevelInfo
	}
}
