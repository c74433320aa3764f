package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds a SugaredLogger writing to a rolling file. The console
// encoder keeps the file readable during development; switch to
// zapcore.NewJSONEncoder for machine ingestion.
func NewLogger(filePath string) (*zap.SugaredLogger, error) {
	lj := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   false,
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(lj), zapcore.InfoLevel)
	return zap.New(core, zap.AddCaller()).Sugar(), nil
}

// NopLogger is a discard logger for tests and tools.
func NopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
