// Package logging builds the zap logger used by the standalone server and
// adapts it to the Nakama runtime.Logger interface the rest of the code logs through.
package logging

import (
	"fmt"
	"os"

	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process logger.
type Options struct {
	Level      string // debug, info, warn, error
	File       string // optional path; enables a rotated JSON file sink
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns a zap logger writing console output to stderr and, when
// opts.File is set, JSON lines to a lumberjack-rotated file.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if opts.Level == "" {
		opts.Level = "info"
	}
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000")

	consoleCfg := encCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 14),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type runtimeLogger struct {
	s      *zap.SugaredLogger
	fields map[string]interface{}
}

// NewRuntimeLogger adapts a zap logger to runtime.Logger.
func NewRuntimeLogger(z *zap.Logger) runtime.Logger {
	return &runtimeLogger{s: z.Sugar(), fields: map[string]interface{}{}}
}

// Nop returns a logger that discards everything.
func Nop() runtime.Logger {
	return NewRuntimeLogger(zap.NewNop())
}

func (l *runtimeLogger) Debug(format string, v ...interface{}) { l.s.Debugf(format, v...) }
func (l *runtimeLogger) Info(format string, v ...interface{})  { l.s.Infof(format, v...) }
func (l *runtimeLogger) Warn(format string, v ...interface{})  { l.s.Warnf(format, v...) }
func (l *runtimeLogger) Error(format string, v ...interface{}) { l.s.Errorf(format, v...) }

func (l *runtimeLogger) WithField(key string, v interface{}) runtime.Logger {
	return l.WithFields(map[string]interface{}{key: v})
}

func (l *runtimeLogger) WithFields(fields map[string]interface{}) runtime.Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	args := make([]interface{}, 0, 2*len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
		args = append(args, k, v)
	}
	return &runtimeLogger{s: l.s.With(args...), fields: merged}
}

func (l *runtimeLogger) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		out[k] = v
	}
	return out
}
