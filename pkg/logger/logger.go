package logger

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tokebook/config"
)

const serviceName = "tokebook"

// NewLogger 根据配置初始化 Zap 日志实例
//
//   - format=json（默认）：JSON 编码，UTC ISO8601 时间，高频日志采样
//   - format=console：彩色开发格式，不采样
//
// Warn 及以上写 stderr，其余写 stdout
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}

	encoder, sampled, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	atomic := zap.NewAtomicLevelAt(level)
	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return atomic.Enabled(l) && l < zapcore.WarnLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return atomic.Enabled(l) && l >= zapcore.WarnLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), low),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), high),
	)
	if sampled {
		core = zapcore.NewSamplerWithOptions(core, 1e9, 100, 100)
	}

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
		zap.Fields(zap.String("service", serviceName)),
	), nil
}

// newEncoder 返回编码器以及是否启用采样
func newEncoder(format string) (zapcore.Encoder, bool, error) {
	switch format {
	case "", "json":
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "ts"
		ec.EncodeTime = utcISO8601
		return zapcore.NewJSONEncoder(ec), true, nil
	case "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec), false, nil
	default:
		return nil, false, fmt.Errorf("无效的日志格式 %q，仅支持 json / console", format)
	}
}

func utcISO8601(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	zapcore.ISO8601TimeEncoder(t.UTC(), enc)
}
