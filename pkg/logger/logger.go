package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelDebug
	LevelTrace
)

// levelState is shared between a logger and the children created with With,
// so SetVerbose/SetLevel on the root apply everywhere.
type levelState struct {
	level     LogLevel
	isVerbose bool
}

type Logger struct {
	sugar  *zap.SugaredLogger
	out    zapcore.WriteSyncer
	prefix string
	state  *levelState
}

type Option func(*Logger)

func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.out = zapcore.AddSync(w)
	}
}

func WithPrefix(prefix string) Option {
	return func(l *Logger) {
		l.prefix = strings.Trim(strings.TrimSpace(prefix), "[]")
	}
}

func New(options ...Option) *Logger {
	l := &Logger{
		out:   zapcore.Lock(os.Stdout),
		state: &levelState{level: LevelInfo},
	}

	for _, opt := range options {
		opt(l)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.CallerKey = ""
	encCfg.StacktraceKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), l.out, zapcore.DebugLevel)
	base := zap.New(core)
	if l.prefix != "" {
		base = base.Named(l.prefix)
	}
	l.sugar = base.Sugar()

	return l
}

// With returns a child logger that attaches the given key/value pairs to
// every line. Level settings stay shared with the parent.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		sugar:  l.sugar.With(keysAndValues...),
		out:    l.out,
		prefix: l.prefix,
		state:  l.state,
	}
}

func (l *Logger) SetVerbose(verbose bool) {
	l.state.isVerbose = verbose
}

func (l *Logger) SetLevel(level LogLevel) {
	l.state.level = level
}

func (l *Logger) IsVerbose() bool {
	return l.state.isVerbose || l.state.level >= LevelDebug
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.IsVerbose() {
		l.sugar.Debugf(format, args...)
	}
}

func (l *Logger) Trace(format string, args ...interface{}) {
	if l.state.level >= LevelTrace {
		l.sugar.Debugf("TRACE: "+format, args...)
	}
}

func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
