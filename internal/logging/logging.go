// Package logging builds the application logger. Two variants sit behind one
// interface: a human console stream with level coloring for local runs, and a
// structured JSON stream shipped to the telemetry endpoint for everything
// else. The variant is chosen once at construction; call sites never branch
// on mode.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/CRDigitalAndMining/go-service-template/internal/telemetry"
)

// Mode selects the logger output strategy.
type Mode string

const (
	// ModeLocal formats records for a human-readable console stream.
	ModeLocal Mode = "local"
	// ModeRemote ships structured records to the telemetry endpoint.
	ModeRemote Mode = "remote"
)

// ParseMode maps a string onto a Mode. Unknown values fall back to ModeLocal.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeRemote)) {
		return ModeRemote
	}
	return ModeLocal
}

// Logger is the severity surface shared by both variants.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warning(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Critical(msg string, fields ...zap.Field)

	// With returns a child logger carrying persistent fields.
	With(fields ...zap.Field) Logger
	// Named appends a segment to the logger name.
	Named(name string) Logger
	// Sync flushes any buffered records.
	Sync() error
}

// Option tweaks logger construction.
type Option func(*options)

type options struct {
	writer io.Writer
	level  zapcore.Level
}

// WithWriter redirects the local console stream, primarily for tests.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithLevel raises the minimum emitted severity. Default: debug.
func WithLevel(level zapcore.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// New constructs a Logger for the given mode. ModeRemote requires a non-empty
// connection target and fails construction without one; beyond non-emptiness
// the target stays opaque. ModeLocal ignores the target entirely.
func New(name string, mode Mode, connectionTarget string, opts ...Option) (Logger, error) {
	o := options{writer: os.Stdout, level: zapcore.DebugLevel}
	for _, opt := range opts {
		opt(&o)
	}

	switch mode {
	case ModeRemote:
		if strings.TrimSpace(connectionTarget) == "" {
			return nil, ErrMissingConnectionTarget
		}
		return newRemote(name, connectionTarget, o), nil
	case ModeLocal, "":
		return newLocal(name, o), nil
	default:
		return nil, fmt.Errorf("unknown log mode %q", mode)
	}
}

// Wrap adapts an existing zap logger, primarily for tests that need zaptest
// or observer cores behind the Logger interface.
func Wrap(z *zap.Logger) Logger {
	return &zapLogger{z: z.WithOptions(zap.AddCallerSkip(1))}
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return &zapLogger{z: zap.NewNop()}
}

type zapLogger struct {
	z *zap.Logger
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field)   { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)    { l.z.Info(msg, fields...) }
func (l *zapLogger) Warning(msg string, fields ...zap.Field) { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field)   { l.z.Error(msg, fields...) }

// Critical logs at zap's DPanic level, rendered as CRITICAL by both
// encoders. Without zap's development option the call never panics.
func (l *zapLogger) Critical(msg string, fields ...zap.Field) { l.z.DPanic(msg, fields...) }

func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{z: l.z.With(fields...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name)}
}

func (l *zapLogger) Sync() error {
	return l.z.Sync()
}

func newLocal(name string, o options) Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout("01-02|15:04:05.000"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    consoleLevelEncoder(colorEnabled(o.writer)),
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(o.writer)),
		o.level,
	)
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Named(name)
	return &zapLogger{z: z}
}

func newRemote(name, connectionTarget string, o options) Logger {
	shipper := telemetry.NewShipper(telemetry.ParseTarget(connectionTarget))

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "module",
		CallerKey:      "line",
		FunctionKey:    "function",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    remoteLevelEncoder,
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(shipper), o.level)
	z := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	).Named(name)
	return &zapLogger{z: z}
}

// colorEnabled reports whether the writer is an interactive terminal.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func consoleLevelEncoder(color bool) zapcore.LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		label := levelLabel(l)
		if !color {
			enc.AppendString(label)
			return
		}
		enc.AppendString(fmt.Sprintf("\x1b[%dm%s\x1b[0m", levelColor(l), label))
	}
}

func remoteLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(levelLabel(l))
}

// levelLabel renders zap's DPanic level as CRITICAL; the rest keep their
// capitalized names.
func levelLabel(l zapcore.Level) string {
	if l == zapcore.DPanicLevel {
		return "CRITICAL"
	}
	return l.CapitalString()
}

func levelColor(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 36 // cyan
	case zapcore.InfoLevel:
		return 32 // green
	case zapcore.WarnLevel:
		return 33 // yellow
	case zapcore.ErrorLevel:
		return 31 // red
	default:
		return 35 // magenta, critical and above
	}
}
