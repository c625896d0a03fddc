package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// Init builds the process-wide logger. Development mode writes colored console
// output at debug level, production mode writes JSON at info level.
func Init(isDev bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if isDev {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err = cfg.Build()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		l, err = cfg.Build()
	}
	if err != nil {
		return err
	}

	mu.Lock()
	global = l
	mu.Unlock()
	zap.ReplaceGlobals(l)
	return nil
}

func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Sync() {
	_ = L().Sync()
}
