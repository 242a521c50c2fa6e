package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type customLogger struct {
	fd *os.File
}

func (c customLogger) Write(p []byte) (n int, err error) {
	return c.fd.Write(p)
}

func (c customLogger) Sync() error {
	return c.fd.Sync()
}

// Level is shared by every logger derived from Logger, so SetLevel affects
// named sub-loggers created before the call as well.
var Level = zap.NewAtomicLevelAt(levelFromEnv(os.Getenv("LOG_LEVEL")))

func levelFromEnv(s string) zapcore.Level {
	if s == "" {
		return zapcore.InfoLevel
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// getFd opens LOG_FILE truncated, or falls back to stderr. Generated sources go
// to the output directory, never to stdout, so stderr is always safe.
func getFd() *os.File {
	logPath := os.Getenv("LOG_FILE")
	if logPath == "" {
		return os.Stderr
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return os.Stderr
	}
	return f
}

var Logger = zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(
	zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		TimeKey:        "ts",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}), &customLogger{fd: getFd()}, Level)).Named("p4-pd-gen")

// SetLevel changes the level of Logger and all of its named children.
func SetLevel(l zapcore.Level) {
	Level.SetLevel(l)
}

// Named is a shortcut for Logger.Named.
func Named(name string) *zap.Logger {
	return Logger.Named(name)
}

// Error logs on the root logger. Used for failures reported before exit.
func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}
