package pkg

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 进程日志，InitLogger 之前是 Nop，测试里可以直接调用
var Logger = zap.NewNop()

func InitLogger(level string) error {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level.SetLevel(lvl)
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = l
	return nil
}
