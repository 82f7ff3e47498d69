package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelDebug
	LevelTrace
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type Logger struct {
	sugar     *zap.SugaredLogger
	out       io.Writer
	prefix    string
	format    string
	level     LogLevel
	isVerbose bool
}

type Option func(*Logger)

func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.out = w
	}
}

// WithPrefix names the logger; the name shows up on every entry.
func WithPrefix(prefix string) Option {
	return func(l *Logger) {
		l.prefix = strings.Trim(strings.TrimSpace(prefix), "[]")
	}
}

func WithFormat(format string) Option {
	return func(l *Logger) {
		l.format = format
	}
}

func New(options ...Option) *Logger {
	l := &Logger{
		out:    os.Stdout,
		format: FormatConsole,
		level:  LevelInfo,
	}

	for _, opt := range options {
		opt(l)
	}

	l.sugar = l.build()
	return l
}

func (l *Logger) build() *zap.SugaredLogger {
	var encoder zapcore.Encoder
	if l.format == FormatJSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	// Level gating happens in the wrapper so verbose/trace can be toggled after construction.
	core := zapcore.NewCore(encoder, zapcore.AddSync(l.out), zapcore.DebugLevel)
	return zap.New(core).Named(l.prefix).Sugar()
}

// ParseLevel maps a config string onto a LogLevel.
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return LevelInfo, eris.Errorf("logger: unknown level %q", level)
	}
}

func (l *Logger) SetVerbose(verbose bool) {
	l.isVerbose = verbose
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.isVerbose || l.level >= LevelDebug {
		l.sugar.Debugf(format, args...)
	}
}

func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LevelTrace {
		l.sugar.Debugf("TRACE: "+format, args...)
	}
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.sugar.Fatalf(format, args...)
}

func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Nop discards everything; handy as a default for library constructors.
func Nop() *Logger {
	return New(WithOutput(io.Discard))
}
