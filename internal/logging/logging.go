package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger shared by the commands and the player.
type Logger struct {
	*zap.SugaredLogger
}

// NewLogger returns a console logger on stderr. Verbose enables debug output,
// otherwise only warnings and errors are written.
func NewLogger(verbose bool) *Logger {
	return newLogger(verbose, zapcore.Lock(os.Stderr), true)
}

// NewFileLogger writes to path instead of stderr, which keeps log lines out of
// the interactive display. An empty path discards everything.
func NewFileLogger(verbose bool, path string) (*Logger, error) {
	if path == "" {
		return Nop(), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return newLogger(verbose, zapcore.Lock(f), false), nil
}

// Nop returns a logger that drops every entry.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

func newLogger(verbose bool, out zapcore.WriteSyncer, color bool) *Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		out,
		zap.NewAtomicLevelAt(level),
	)
	return &Logger{zap.New(core).Sugar()}
}

// Named returns a child logger scoped to a component.
func (l *Logger) Named(name string) *Logger {
	return &Logger{l.SugaredLogger.Named(name)}
}
